package http

import (
	"rental-backend/internal/handlers"
	"rental-backend/internal/middleware"
	"rental-backend/internal/notify"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	vehicleHandler *handlers.VehicleHandler,
	agreementHandler *handlers.AgreementHandler,
	paymentHandler *handlers.PaymentHandler,
	trafficFineHandler *handlers.TrafficFineHandler,
	maintenanceHandler *handlers.MaintenanceHandler,
	legalCaseHandler *handlers.LegalCaseHandler,
	systemSettingHandler *handlers.SystemSettingHandler,
	reportHandler *handlers.ReportHandler,
	razorpayHandler *handlers.RazorpayHandler,
	healthHandler *handlers.HealthHandler,
	hub *notify.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Razorpay webhook authenticates with its own signature, not a JWT
	r.HandleFunc("/webhooks/razorpay", razorpayHandler.Webhook).Methods("POST")

	// Real-time staff notifications
	r.HandleFunc("/ws/notifications", hub.HandleWebSocket)

	// Authenticated profile
	meAPI := r.PathPrefix("/api/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.Use(authMiddleware.RequireAdmin)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", userHandler.CreateUser).Methods("POST")
	usersAPI.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")
	usersAPI.HandleFunc("/{id}", userHandler.UpdateUser).Methods("PUT")
	usersAPI.HandleFunc("/{id}", userHandler.DeleteUser).Methods("DELETE")

	// Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", customerHandler.DeleteCustomer).Methods("DELETE")
	customersAPI.HandleFunc("/{id}/id-document", customerHandler.UploadIDDocument).Methods("POST")

	// Vehicles
	vehiclesAPI := r.PathPrefix("/api/vehicles").Subrouter()
	vehiclesAPI.Use(authMiddleware.Authenticate)
	vehiclesAPI.HandleFunc("", vehicleHandler.ListVehicles).Methods("GET")
	vehiclesAPI.HandleFunc("", vehicleHandler.CreateVehicle).Methods("POST")
	vehiclesAPI.HandleFunc("/available", vehicleHandler.ListAvailable).Methods("GET")
	vehiclesAPI.HandleFunc("/{id}", vehicleHandler.GetVehicle).Methods("GET")
	vehiclesAPI.HandleFunc("/{id}", vehicleHandler.UpdateVehicle).Methods("PUT")
	vehiclesAPI.HandleFunc("/{id}", vehicleHandler.DeleteVehicle).Methods("DELETE")
	vehiclesAPI.HandleFunc("/{id}/status", vehicleHandler.UpdateStatus).Methods("PATCH")

	// Agreements and booking conflicts
	agreementsAPI := r.PathPrefix("/api/agreements").Subrouter()
	agreementsAPI.Use(authMiddleware.Authenticate)
	agreementsAPI.HandleFunc("", agreementHandler.ListAgreements).Methods("GET")
	agreementsAPI.HandleFunc("", agreementHandler.CreateAgreement).Methods("POST")
	agreementsAPI.HandleFunc("/conflicts/audit", agreementHandler.AuditConflicts).Methods("POST")
	agreementsAPI.HandleFunc("/conflicts/{vehicleId}", agreementHandler.DetectConflicts).Methods("GET")
	agreementsAPI.HandleFunc("/conflicts/{vehicleId}/resolve", agreementHandler.ResolveConflicts).Methods("POST")
	agreementsAPI.HandleFunc("/{id}", agreementHandler.GetAgreement).Methods("GET")
	agreementsAPI.HandleFunc("/{id}", agreementHandler.UpdateAgreement).Methods("PUT")
	agreementsAPI.HandleFunc("/{id}", agreementHandler.DeleteAgreement).Methods("DELETE")
	agreementsAPI.HandleFunc("/{id}/activate", agreementHandler.Activate).Methods("POST")
	agreementsAPI.HandleFunc("/{id}/close", agreementHandler.Close).Methods("POST")

	// Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", paymentHandler.RecordPayment).Methods("POST")
	paymentsAPI.HandleFunc("/backfill", paymentHandler.Backfill).Methods("POST")
	paymentsAPI.HandleFunc("/agreement/{agreementId}", paymentHandler.ListByAgreement).Methods("GET")
	paymentsAPI.HandleFunc("/agreement/{agreementId}/statement.pdf", paymentHandler.StatementPDF).Methods("GET")
	paymentsAPI.HandleFunc("/{id}/receipt.pdf", paymentHandler.ReceiptPDF).Methods("GET")

	// Traffic fines
	finesAPI := r.PathPrefix("/api/traffic-fines").Subrouter()
	finesAPI.Use(authMiddleware.Authenticate)
	finesAPI.HandleFunc("", trafficFineHandler.ListFines).Methods("GET")
	finesAPI.HandleFunc("/sync", trafficFineHandler.SyncFines).Methods("POST")
	finesAPI.HandleFunc("/{id}", trafficFineHandler.GetFine).Methods("GET")
	finesAPI.HandleFunc("/{id}/pay", trafficFineHandler.MarkPaid).Methods("POST")
	finesAPI.HandleFunc("/{id}/dispute", trafficFineHandler.Dispute).Methods("POST")

	// Maintenance
	maintenanceAPI := r.PathPrefix("/api/maintenance").Subrouter()
	maintenanceAPI.Use(authMiddleware.Authenticate)
	maintenanceAPI.HandleFunc("", maintenanceHandler.ListRecords).Methods("GET")
	maintenanceAPI.HandleFunc("", maintenanceHandler.ScheduleMaintenance).Methods("POST")
	maintenanceAPI.HandleFunc("/{id}", maintenanceHandler.GetRecord).Methods("GET")
	maintenanceAPI.HandleFunc("/{id}", maintenanceHandler.DeleteRecord).Methods("DELETE")
	maintenanceAPI.HandleFunc("/{id}/start", maintenanceHandler.Start).Methods("POST")
	maintenanceAPI.HandleFunc("/{id}/complete", maintenanceHandler.Complete).Methods("POST")

	// Legal cases
	legalAPI := r.PathPrefix("/api/legal-cases").Subrouter()
	legalAPI.Use(authMiddleware.Authenticate)
	legalAPI.HandleFunc("", legalCaseHandler.ListCases).Methods("GET")
	legalAPI.HandleFunc("", legalCaseHandler.OpenCase).Methods("POST")
	legalAPI.HandleFunc("/{id}", legalCaseHandler.GetCase).Methods("GET")
	legalAPI.HandleFunc("/{id}", legalCaseHandler.DeleteCase).Methods("DELETE")
	legalAPI.HandleFunc("/{id}/recovery", legalCaseHandler.RecordRecovery).Methods("POST")

	// System settings (admin only)
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.Use(authMiddleware.RequireAdmin)
	settingsAPI.HandleFunc("", systemSettingHandler.ListSettings).Methods("GET")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.GetSetting).Methods("GET")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.UpdateSetting).Methods("PUT")

	// Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/summary", reportHandler.Summary).Methods("GET")
	reportsAPI.HandleFunc("/fleet.pdf", reportHandler.FleetPDF).Methods("GET")
	reportsAPI.HandleFunc("/payments.csv", reportHandler.PaymentsCSV).Methods("GET")

	// Online payments
	onlineAPI := r.PathPrefix("/api/online-payments").Subrouter()
	onlineAPI.Use(authMiddleware.Authenticate)
	onlineAPI.HandleFunc("/status", razorpayHandler.Status).Methods("GET")
	onlineAPI.HandleFunc("/orders", razorpayHandler.CreateOrder).Methods("POST")
	onlineAPI.HandleFunc("/verify", razorpayHandler.VerifyPayment).Methods("POST")
	onlineAPI.HandleFunc("/agreement/{agreementId}", razorpayHandler.ListTransactions).Methods("GET")

	return r
}
