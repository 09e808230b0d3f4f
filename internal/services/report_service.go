package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/storage"
	"rental-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// StatementData holds everything printed on an agreement statement.
type StatementData struct {
	Agreement *models.Agreement
	Customer  *models.Customer
	Vehicle   *models.Vehicle
	Payments  []*models.Payment
	TotalDue  float64
	TotalPaid float64
	Balance   float64
}

// ReportService renders receipts, statements and fleet reports.
type ReportService struct {
	AgreementRepo *repositories.AgreementRepository
	CustomerRepo  *repositories.CustomerRepository
	VehicleRepo   *repositories.VehicleRepository
	PaymentRepo   *repositories.PaymentRepository
	Documents     *storage.DocumentStore // nil when storage is not configured
}

func NewReportService(
	agreementRepo *repositories.AgreementRepository,
	customerRepo *repositories.CustomerRepository,
	vehicleRepo *repositories.VehicleRepository,
	paymentRepo *repositories.PaymentRepository,
	documents *storage.DocumentStore,
) *ReportService {
	return &ReportService{
		AgreementRepo: agreementRepo,
		CustomerRepo:  customerRepo,
		VehicleRepo:   vehicleRepo,
		PaymentRepo:   paymentRepo,
		Documents:     documents,
	}
}

// DashboardSummary holds the headline numbers shown on the staff dashboard.
type DashboardSummary struct {
	VehiclesTotal     int     `json:"vehicles_total"`
	VehiclesAvailable int     `json:"vehicles_available"`
	VehiclesRented    int     `json:"vehicles_rented"`
	VehiclesInShop    int     `json:"vehicles_in_shop"`
	ActiveAgreements  int     `json:"active_agreements"`
	MonthCollected    float64 `json:"month_collected"`
	MonthOutstanding  float64 `json:"month_outstanding"`
	GeneratedAt       string  `json:"generated_at"`
}

// GetDashboardSummary aggregates fleet and month-to-date payment figures,
// served from Redis when a fresh copy is cached.
func (s *ReportService) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	if data, ok := cache.GetDashboardSummary(ctx); ok {
		var summary DashboardSummary
		if err := json.Unmarshal(data, &summary); err == nil {
			return &summary, nil
		}
	}

	vehicles, err := s.VehicleRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	now := time.Now()
	summary := &DashboardSummary{
		VehiclesTotal: len(vehicles),
		GeneratedAt:   now.Format(time.RFC3339),
	}
	for _, v := range vehicles {
		switch v.Status {
		case models.VehicleStatusAvailable:
			summary.VehiclesAvailable++
		case models.VehicleStatusRented:
			summary.VehiclesRented++
		case models.VehicleStatusMaintenance:
			summary.VehiclesInShop++
		}
	}

	active, err := s.AgreementRepo.List(ctx, models.AgreementStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}
	summary.ActiveAgreements = len(active)

	payments, err := s.PaymentRepo.List(ctx, timeutil.StartOfMonth(now), now)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	for _, p := range payments {
		summary.MonthCollected += p.AmountPaid
		summary.MonthOutstanding += p.Balance
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.SetDashboardSummary(ctx, data)
	}
	return summary, nil
}

// GetStatementData gathers the agreement, its parties and its payment ledger.
func (s *ReportService) GetStatementData(ctx context.Context, agreementID int) (*StatementData, error) {
	agreement, err := s.AgreementRepo.Get(ctx, agreementID)
	if err != nil {
		return nil, fmt.Errorf("agreement %d not found: %w", agreementID, err)
	}
	customer, err := s.CustomerRepo.Get(ctx, agreement.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer not found: %w", err)
	}
	vehicle, err := s.VehicleRepo.Get(ctx, agreement.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("vehicle not found: %w", err)
	}
	payments, err := s.PaymentRepo.GetByAgreement(ctx, agreementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	data := &StatementData{
		Agreement: agreement,
		Customer:  customer,
		Vehicle:   vehicle,
		Payments:  payments,
	}
	for _, p := range payments {
		data.TotalDue += p.Amount
		data.TotalPaid += p.AmountPaid
	}
	data.Balance = data.TotalDue - data.TotalPaid
	return data, nil
}

// GenerateReceiptPDF renders a single payment receipt.
func (s *ReportService) GenerateReceiptPDF(ctx context.Context, paymentID int) ([]byte, error) {
	payment, err := s.PaymentRepo.Get(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment %d not found: %w", paymentID, err)
	}
	agreement, err := s.AgreementRepo.Get(ctx, payment.AgreementID)
	if err != nil {
		return nil, fmt.Errorf("agreement not found: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", time.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Receipt %s", payment.ReceiptNumber), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Agreement: %s", agreement.AgreementNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Customer: %s", agreement.CustomerName), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Vehicle: %s", agreement.VehiclePlate), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", payment.PaymentDate.Format("02-Jan-2006")), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Payment Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Type: %s", payment.Type), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Amount: Rs. %.2f", payment.Amount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Paid: Rs. %.2f", payment.AmountPaid), "1", 1, "C", false, 0, "")

	if payment.LateFineAmount > 0 {
		pdf.SetFillColor(255, 230, 200)
		pdf.CellFormat(190, 8, fmt.Sprintf("Late fee: Rs. %.2f (%d day(s) overdue)", payment.LateFineAmount, payment.DaysOverdue), "1", 1, "C", true, 0, "")
	}

	if payment.Balance > 0 {
		pdf.SetFillColor(255, 200, 200)
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(190, 10, fmt.Sprintf("Balance Due: Rs. %.2f", payment.Balance), "1", 1, "C", true, 0, "")
	} else {
		pdf.SetFillColor(200, 255, 200)
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(190, 10, "FULLY PAID", "1", 1, "C", true, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateStatementPDF renders the full payment history of an agreement.
func (s *ReportService) GenerateStatementPDF(ctx context.Context, agreementID int) ([]byte, error) {
	data, err := s.GetStatementData(ctx, agreementID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Rental Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", time.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Agreement %s", data.Agreement.AgreementNumber), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Customer: %s", data.Customer.FullName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", data.Customer.Phone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Vehicle: %s %s (%s)", data.Vehicle.Make, data.Vehicle.Model, data.Vehicle.LicensePlate), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Rent: Rs. %.2f / month", data.Agreement.RentAmount), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Payment History", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(35, 7, "Receipt #", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Paid", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, p := range data.Payments {
		pdf.CellFormat(35, 6, p.ReceiptNumber, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, p.PaymentDate.Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, p.Type, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", p.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", p.AmountPaid), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, p.Status, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	if data.Balance > 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	balanceText := fmt.Sprintf("Balance Due: Rs. %.2f", data.Balance)
	if data.Balance <= 0 {
		balanceText = "FULLY PAID"
	}
	pdf.CellFormat(190, 10, balanceText, "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateFleetPDF renders a landscape overview of every vehicle.
func (s *ReportService) GenerateFleetPDF(ctx context.Context) ([]byte, error) {
	vehicles, err := s.VehicleRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "") // Landscape for more columns
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Fleet Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", time.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(35, 7, "Plate", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 7, "Make / Model", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Year", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Mileage", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Daily Rate", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, v := range vehicles {
		pdf.CellFormat(35, 6, v.LicensePlate, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%s %s", v.Make, v.Model), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, strconv.Itoa(v.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, v.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, strconv.Itoa(v.Mileage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %.2f", v.DailyRate), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GeneratePaymentsCSV exports payments in a date range for accounting.
func (s *ReportService) GeneratePaymentsCSV(ctx context.Context, from, to time.Time) ([]byte, error) {
	payments, err := s.PaymentRepo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Receipt", "Agreement ID", "Type", "Date", "Amount", "Paid", "Balance", "Late Fee", "Status", "Processed By"})
	for _, p := range payments {
		w.Write([]string{
			p.ReceiptNumber,
			strconv.Itoa(p.AgreementID),
			p.Type,
			p.PaymentDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", p.Amount),
			fmt.Sprintf("%.2f", p.AmountPaid),
			fmt.Sprintf("%.2f", p.Balance),
			fmt.Sprintf("%.2f", p.LateFineAmount),
			p.Status,
			p.ProcessedByName,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArchiveReport stores a generated report for long-term retention. Archival
// failures are logged, not returned; the caller already has the bytes.
func (s *ReportService) ArchiveReport(ctx context.Context, name string, data []byte, contentType string) {
	if s.Documents == nil {
		return
	}
	key := fmt.Sprintf("reports/%s/%s", time.Now().Format("2006-01"), name)
	if _, err := s.Documents.Put(ctx, key, data, contentType); err != nil {
		log.Printf("[Report] Archive of %s failed: %v", name, err)
	}
}
