package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

const (
	// Late fees stop growing once they hit this cap.
	LateFeeCap = 3000.0

	defaultDailyLateFeeRate = 120.0
)

// PaymentStore is the subset of the payment repository the service needs.
type PaymentStore interface {
	GenerateReceiptNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, id int) (*models.Payment, error)
	GetByAgreement(ctx context.Context, agreementID int) ([]*models.Payment, error)
	UpdateProgress(ctx context.Context, id int, amountPaid, balance float64, status string, notes string) error
	ExistsForMonth(ctx context.Context, agreementID int, monthStart time.Time) (bool, error)
}

// AgreementGetter loads a single agreement.
type AgreementGetter interface {
	Get(ctx context.Context, id int) (*models.Agreement, error)
}

// SettingsReader reads a system setting with a fallback.
type SettingsReader interface {
	GetValue(ctx context.Context, key, fallback string) string
}

// PaymentResult is returned by payment operations; Message is shown to staff.
type PaymentResult struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	Payment        *models.Payment `json:"payment,omitempty"`
	LateFeePayment *models.Payment `json:"late_fee_payment,omitempty"`
}

// BackfillResult summarizes a missing-month catch-up run.
type BackfillResult struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	MonthsCovered []string          `json:"months_covered"`
	FailedMonths  []string          `json:"failed_months,omitempty"`
	Created       []*models.Payment `json:"created"`
}

type PaymentService struct {
	Payments   PaymentStore
	Agreements AgreementGetter
	Settings   SettingsReader
	Notify     Notifier

	// now is swapped in tests
	now func() time.Time
}

func NewPaymentService(payments PaymentStore, agreements AgreementGetter, settings SettingsReader, notify Notifier) *PaymentService {
	return &PaymentService{
		Payments:   payments,
		Agreements: agreements,
		Settings:   settings,
		Notify:     notify,
		now:        time.Now,
	}
}

// dailyLateFeeRate reads the configured per-day late fee, falling back to the
// default when the setting is missing or malformed.
func (s *PaymentService) dailyLateFeeRate(ctx context.Context) float64 {
	raw := s.Settings.GetValue(ctx, models.SettingDailyLateFeeRate, "")
	if raw == "" {
		return defaultDailyLateFeeRate
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate <= 0 {
		return defaultDailyLateFeeRate
	}
	return rate
}

// CalculateLateFee returns the fee and days-late count for a payment made on
// the given date. Rent is due on the 1st; each day past it accrues the daily
// rate, capped at LateFeeCap.
func (s *PaymentService) CalculateLateFee(ctx context.Context, paymentDate time.Time) (fee float64, daysLate int) {
	daysLate = timeutil.DaysLate(paymentDate)
	if daysLate == 0 {
		return 0, 0
	}
	fee = float64(daysLate) * s.dailyLateFeeRate(ctx)
	if fee > LateFeeCap {
		fee = LateFeeCap
	}
	return fee, daysLate
}

// RecordPayment records rent received against an agreement. A payment smaller
// than the rent amount may be recorded as partial and continued later by
// passing the open payment's ID; once the balance reaches zero the payment
// completes. When the payment lands after the 1st and the caller asks for it,
// a separate LATE_PAYMENT_FEE record is created alongside the rent.
func (s *PaymentService) RecordPayment(ctx context.Context, req *models.RecordPaymentRequest, userID int) (*PaymentResult, error) {
	if req.Amount <= 0 {
		return &PaymentResult{Message: "payment amount must be positive"}, nil
	}

	agreement, err := s.Agreements.Get(ctx, req.AgreementID)
	if err != nil {
		return nil, fmt.Errorf("agreement %d not found: %w", req.AgreementID, err)
	}
	if agreement.Status != models.AgreementStatusActive && agreement.Status != models.AgreementStatusExpired {
		return &PaymentResult{Message: fmt.Sprintf("agreement %s is %s; payments need an active or expired agreement", agreement.AgreementNumber, agreement.Status)}, nil
	}

	paymentDate := timeutil.StartOfDay(s.now())
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse(timeutil.DateLayout, req.PaymentDate)
		if err != nil {
			return &PaymentResult{Message: "payment_date must be YYYY-MM-DD"}, nil
		}
	}

	// Continuing a previously recorded partial payment.
	if req.PaymentID > 0 {
		return s.continuePartial(ctx, req)
	}

	rent := agreement.RentAmount
	paid := req.Amount
	if paid > rent {
		paid = rent // Overpayment is clamped; the remainder is not banked.
	}
	balance := rent - paid

	status := models.PaymentStatusCompleted
	if balance > 0 {
		if !req.IsPartial {
			return &PaymentResult{Message: fmt.Sprintf(
				"amount %.2f is less than rent %.2f; mark the payment as partial to accept it", req.Amount, rent)}, nil
		}
		status = models.PaymentStatusPartiallyPaid
	}

	receiptNumber, err := s.Payments.GenerateReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate receipt number: %w", err)
	}

	payment := &models.Payment{
		ReceiptNumber:     receiptNumber,
		AgreementID:       agreement.ID,
		Type:              models.PaymentTypeRent,
		Amount:            rent,
		AmountPaid:        paid,
		Balance:           balance,
		Status:            status,
		PaymentDate:       paymentDate,
		ProcessedByUserID: userID,
		Notes:             req.Notes,
	}

	if err := s.Payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	metrics.PaymentsGenerated.WithLabelValues(models.PaymentTypeRent).Inc()

	result := &PaymentResult{
		Success: true,
		Message: fmt.Sprintf("Recorded %.2f against %s", paid, agreement.AgreementNumber),
		Payment: payment,
	}

	// Late fee rides as its own record so rent and penalty reconcile separately.
	if req.IncludeLateFee {
		if feePayment := s.recordLateFee(ctx, agreement, paymentDate, userID); feePayment != nil {
			result.LateFeePayment = feePayment
		}
	}

	if s.Notify != nil {
		s.Notify.Broadcast("info", fmt.Sprintf("Payment of %.2f received for %s", paid, agreement.AgreementNumber))
	}
	return result, nil
}

// continuePartial adds money to an open partially-paid record. The original
// payment date is kept; only the paid amount, balance and status move.
func (s *PaymentService) continuePartial(ctx context.Context, req *models.RecordPaymentRequest) (*PaymentResult, error) {
	payment, err := s.Payments.Get(ctx, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("payment %d not found: %w", req.PaymentID, err)
	}
	if payment.AgreementID != req.AgreementID {
		return &PaymentResult{Message: "payment does not belong to this agreement"}, nil
	}
	if payment.Status == models.PaymentStatusCompleted {
		return &PaymentResult{Message: fmt.Sprintf("payment %s is already completed", payment.ReceiptNumber)}, nil
	}

	amountPaid := payment.AmountPaid + req.Amount
	if amountPaid > payment.Amount {
		amountPaid = payment.Amount
	}
	balance := payment.Amount - amountPaid

	status := models.PaymentStatusPartiallyPaid
	if balance <= 0 {
		balance = 0
		status = models.PaymentStatusCompleted
	}

	notes := payment.Notes
	if req.Notes != "" {
		if notes != "" {
			notes += "; "
		}
		notes += req.Notes
	}

	if err := s.Payments.UpdateProgress(ctx, payment.ID, amountPaid, balance, status, notes); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	payment.AmountPaid = amountPaid
	payment.Balance = balance
	payment.Status = status
	payment.Notes = notes

	message := fmt.Sprintf("Partial payment updated; balance %.2f remains", balance)
	if status == models.PaymentStatusCompleted {
		message = fmt.Sprintf("Payment %s completed", payment.ReceiptNumber)
	}
	return &PaymentResult{Success: true, Message: message, Payment: payment}, nil
}

// recordLateFee inserts the LATE_PAYMENT_FEE record for a late rent payment.
// A failure here is logged but never rolls back the rent payment.
func (s *PaymentService) recordLateFee(ctx context.Context, agreement *models.Agreement, paymentDate time.Time, userID int) *models.Payment {
	fee, daysLate := s.CalculateLateFee(ctx, paymentDate)
	if fee == 0 {
		return nil
	}

	receiptNumber, err := s.Payments.GenerateReceiptNumber(ctx)
	if err != nil {
		log.Printf("[Payment] Late fee receipt number failed for %s: %v", agreement.AgreementNumber, err)
		return nil
	}

	feePayment := &models.Payment{
		ReceiptNumber:     receiptNumber,
		AgreementID:       agreement.ID,
		Type:              models.PaymentTypeLateFee,
		Amount:            fee,
		AmountPaid:        fee,
		Balance:           0,
		Status:            models.PaymentStatusCompleted,
		PaymentDate:       paymentDate,
		LateFineAmount:    fee,
		DaysOverdue:       daysLate,
		ProcessedByUserID: userID,
		Notes:             fmt.Sprintf("Late fee: %d day(s) past the 1st", daysLate),
	}

	if err := s.Payments.Create(ctx, feePayment); err != nil {
		log.Printf("[Payment] Late fee insert failed for %s: %v", agreement.AgreementNumber, err)
		return nil
	}
	metrics.PaymentsGenerated.WithLabelValues(models.PaymentTypeLateFee).Inc()
	return feePayment
}

// GenerateMissingPayments creates a pending RENT record, dated the 1st, for
// every month after the last payment that has no rent record yet. Months that
// already have one are skipped, so the catch-up is safe to re-run.
func (s *PaymentService) GenerateMissingPayments(ctx context.Context, req *models.BackfillPaymentsRequest) (*BackfillResult, error) {
	agreement, err := s.Agreements.Get(ctx, req.AgreementID)
	if err != nil {
		return nil, fmt.Errorf("agreement %d not found: %w", req.AgreementID, err)
	}

	lastPaid, err := time.Parse(timeutil.DateLayout, req.LastPaymentDate)
	if err != nil {
		return &BackfillResult{Message: "last_payment_date must be YYYY-MM-DD"}, nil
	}

	rent := req.RentAmount
	if rent <= 0 {
		rent = agreement.RentAmount
	}

	months := timeutil.MonthsBetween(lastPaid, s.now())
	if len(months) == 0 {
		return &BackfillResult{Success: true, Message: "No months to cover"}, nil
	}

	// One bad month must not abort the catch-up; the run reports the
	// failures and covers every month it still can.
	result := &BackfillResult{Success: true}
	for _, monthStart := range months {
		monthKey := timeutil.MonthKey(monthStart)

		exists, err := s.Payments.ExistsForMonth(ctx, agreement.ID, monthStart)
		if err != nil {
			log.Printf("[Payment] Backfill check failed for %s %s: %v", agreement.AgreementNumber, monthKey, err)
			result.FailedMonths = append(result.FailedMonths, monthKey)
			continue
		}
		if exists {
			continue
		}

		receiptNumber, err := s.Payments.GenerateReceiptNumber(ctx)
		if err != nil {
			log.Printf("[Payment] Receipt number failed for %s %s: %v", agreement.AgreementNumber, monthKey, err)
			result.FailedMonths = append(result.FailedMonths, monthKey)
			continue
		}

		payment := &models.Payment{
			ReceiptNumber: receiptNumber,
			AgreementID:   agreement.ID,
			Type:          models.PaymentTypeRent,
			Amount:        rent,
			AmountPaid:    0,
			Balance:       rent,
			Status:        models.PaymentStatusPending,
			PaymentDate:   monthStart,
			Notes:         fmt.Sprintf("Generated for %s", monthKey),
		}
		if err := s.Payments.Create(ctx, payment); err != nil {
			log.Printf("[Payment] Backfill insert failed for %s %s: %v", agreement.AgreementNumber, monthKey, err)
			result.FailedMonths = append(result.FailedMonths, monthKey)
			continue
		}
		metrics.PaymentsGenerated.WithLabelValues(models.PaymentTypeRent).Inc()

		result.MonthsCovered = append(result.MonthsCovered, monthKey)
		result.Created = append(result.Created, payment)
	}

	if len(result.FailedMonths) > 0 {
		result.Success = false
		result.Message = fmt.Sprintf("Created %d pending payment(s) for %s, %d month(s) failed",
			len(result.Created), agreement.AgreementNumber, len(result.FailedMonths))
	} else {
		result.Message = fmt.Sprintf("Created %d pending payment(s) for %s", len(result.Created), agreement.AgreementNumber)
	}
	log.Printf("[Payment] Backfill for %s: %d month(s) covered, %d failed",
		agreement.AgreementNumber, len(result.Created), len(result.FailedMonths))
	return result, nil
}
