package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/cache"
	"rental-backend/internal/config"
	"rental-backend/internal/database"
	"rental-backend/internal/db"
	"rental-backend/internal/handlers"
	"rental-backend/internal/health"
	h "rental-backend/internal/http"
	"rental-backend/internal/middleware"
	"rental-backend/internal/notify"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/storage"
	"rental-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis cache is optional - graceful fallback if unavailable
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (availability queries will hit Postgres)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations from the embedded filesystem
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg)

	// Document storage is optional; unset credentials disable it
	var documents *storage.DocumentStore
	if cfg.Storage.Bucket != "" && cfg.Storage.AccessKey != "" {
		store, err := storage.NewDocumentStore(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
		})
		if err != nil {
			log.Printf("[Storage] Document store unavailable: %v", err)
		} else {
			documents = store
			log.Printf("[Storage] Document store ready, bucket %s", cfg.Storage.Bucket)
		}
	}

	// Real-time notification hub
	hub := notify.NewHub()
	go hub.Run()
	defer hub.Stop()

	healthChecker := health.NewHealthChecker(pool, hub)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	vehicleRepo := repositories.NewVehicleRepository(pool)
	agreementRepo := repositories.NewAgreementRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	trafficFineRepo := repositories.NewTrafficFineRepository(pool)
	maintenanceRepo := repositories.NewMaintenanceRepository(pool)
	legalCaseRepo := repositories.NewLegalCaseRepository(pool)
	systemSettingRepo := repositories.NewSystemSettingRepository(pool)
	onlineTransactionRepo := repositories.NewOnlineTransactionRepository(pool)

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	customerService := services.NewCustomerService(customerRepo, documents)
	vehicleService := services.NewVehicleService(vehicleRepo)
	conflictService := services.NewBookingConflictService(agreementRepo, hub)
	agreementService := services.NewAgreementService(agreementRepo, vehicleRepo, conflictService, hub)
	paymentService := services.NewPaymentService(paymentRepo, agreementRepo, systemSettingRepo, hub)
	fineSyncService := services.NewFineSyncService(
		cfg.FineAuthority.BaseURL,
		cfg.FineAuthority.APIToken,
		cfg.FineAuthority.MaxRetries,
		time.Duration(cfg.FineAuthority.BaseDelayMs)*time.Millisecond,
		cfg.FineAuthority.MaxConcurrent,
		trafficFineRepo,
		vehicleRepo,
		systemSettingRepo,
		hub,
	)
	trafficFineService := services.NewTrafficFineService(trafficFineRepo, fineSyncService)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, vehicleRepo)
	legalCaseService := services.NewLegalCaseService(legalCaseRepo, customerRepo)
	systemSettingService := services.NewSystemSettingService(systemSettingRepo)
	reportService := services.NewReportService(agreementRepo, customerRepo, vehicleRepo, paymentRepo, documents)
	razorpayService := services.NewRazorpayService(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		onlineTransactionRepo,
		agreementRepo,
		paymentRepo,
		systemSettingRepo,
	)

	// Host metrics collector
	metricsCollector := services.NewMetricsCollector(30 * time.Second)
	metricsCollector.Start()
	defer metricsCollector.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	agreementHandler := handlers.NewAgreementHandler(agreementService, conflictService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, reportService)
	trafficFineHandler := handlers.NewTrafficFineHandler(trafficFineService, fineSyncService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	legalCaseHandler := handlers.NewLegalCaseHandler(legalCaseService)
	systemSettingHandler := handlers.NewSystemSettingHandler(systemSettingService)
	reportHandler := handlers.NewReportHandler(reportService)
	razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := h.NewRouter(
		authHandler,
		userHandler,
		customerHandler,
		vehicleHandler,
		agreementHandler,
		paymentHandler,
		trafficFineHandler,
		maintenanceHandler,
		legalCaseHandler,
		systemSettingHandler,
		reportHandler,
		razorpayHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Rental backend running on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
