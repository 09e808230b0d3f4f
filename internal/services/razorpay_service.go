package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"

	razorpay "github.com/razorpay/razorpay-go"
)

// CreateOrderResponse carries everything the checkout page needs.
type CreateOrderResponse struct {
	OrderID     string  `json:"order_id"`
	Amount      int     `json:"amount"`       // paise
	FeeAmount   int     `json:"fee_amount"`   // paise
	TotalAmount int     `json:"total_amount"` // paise
	Currency    string  `json:"currency"`
	KeyID       string  `json:"key_id"`
	FeePercent  float64 `json:"fee_percent"`
}

type RazorpayService struct {
	transactionRepo   *repositories.OnlineTransactionRepository
	agreementRepo     *repositories.AgreementRepository
	paymentRepo       *repositories.PaymentRepository
	systemSettingRepo *repositories.SystemSettingRepository
	keyID             string
	keySecret         string
	webhookSecret     string
}

func NewRazorpayService(
	keyID, keySecret, webhookSecret string,
	transactionRepo *repositories.OnlineTransactionRepository,
	agreementRepo *repositories.AgreementRepository,
	paymentRepo *repositories.PaymentRepository,
	systemSettingRepo *repositories.SystemSettingRepository,
) *RazorpayService {
	return &RazorpayService{
		transactionRepo:   transactionRepo,
		agreementRepo:     agreementRepo,
		paymentRepo:       paymentRepo,
		systemSettingRepo: systemSettingRepo,
		keyID:             keyID,
		keySecret:         keySecret,
		webhookSecret:     webhookSecret,
	}
}

func (s *RazorpayService) client() *razorpay.Client {
	if s.keyID == "" || s.keySecret == "" {
		return nil
	}
	return razorpay.NewClient(s.keyID, s.keySecret)
}

// IsEnabled checks the online payment toggle in system settings.
func (s *RazorpayService) IsEnabled(ctx context.Context) bool {
	return s.systemSettingRepo.GetValue(ctx, models.SettingOnlinePaymentEnabled, "false") == "true"
}

// GetFeePercent returns the configured gateway fee percentage.
func (s *RazorpayService) GetFeePercent(ctx context.Context) float64 {
	raw := s.systemSettingRepo.GetValue(ctx, "online_payment_fee_percent", "")
	fee, err := strconv.ParseFloat(raw, 64)
	if err != nil || fee < 0 {
		return 2.5
	}
	return fee
}

// CalculateFee rounds the fee to two decimal places.
func (s *RazorpayService) CalculateFee(amount, feePercent float64) float64 {
	return float64(int((amount*feePercent/100)*100+0.5)) / 100
}

// CreateOrder opens a Razorpay order for a month of rent and stores the
// pending transaction.
func (s *RazorpayService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*CreateOrderResponse, error) {
	if !s.IsEnabled(ctx) {
		return nil, fmt.Errorf("online payments are currently disabled")
	}

	client := s.client()
	if client == nil {
		return nil, fmt.Errorf("razorpay client not configured")
	}

	agreement, err := s.agreementRepo.Get(ctx, req.AgreementID)
	if err != nil {
		return nil, fmt.Errorf("agreement %d not found: %w", req.AgreementID, err)
	}
	if agreement.Status != models.AgreementStatusActive {
		return nil, fmt.Errorf("agreement %s is not active", agreement.AgreementNumber)
	}

	amount := req.Amount
	if amount <= 0 {
		amount = agreement.RentAmount
	}

	feePercent := s.GetFeePercent(ctx)
	feeAmount := s.CalculateFee(amount, feePercent)
	totalAmount := amount + feeAmount
	amountPaise := int(totalAmount * 100)

	orderData := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("rcpt_%d_%d", agreement.ID, time.Now().Unix()),
		"notes": map[string]interface{}{
			"agreement_id":     agreement.ID,
			"agreement_number": agreement.AgreementNumber,
			"customer_id":      agreement.CustomerID,
		},
	}

	order, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	orderID := order["id"].(string)

	tx := &models.OnlineTransaction{
		RazorpayOrderID: orderID,
		CustomerID:      agreement.CustomerID,
		AgreementID:     agreement.ID,
		Amount:          amount,
		FeeAmount:       feeAmount,
		TotalAmount:     totalAmount,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	return &CreateOrderResponse{
		OrderID:     orderID,
		Amount:      int(amount * 100),
		FeeAmount:   int(feeAmount * 100),
		TotalAmount: amountPaise,
		Currency:    "INR",
		KeyID:       s.keyID,
		FeePercent:  feePercent,
	}, nil
}

// VerifyPayment checks the checkout signature, marks the transaction, and
// books the rent payment. Verification of an already-successful transaction
// is a no-op returning the stored record.
func (s *RazorpayService) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.OnlineTransaction, error) {
	tx, err := s.transactionRepo.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, fmt.Errorf("transaction not found: %w", err)
	}

	if !s.verifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		_ = s.transactionRepo.MarkFailed(ctx, tx.ID, "Invalid signature")
		return nil, fmt.Errorf("invalid payment signature")
	}

	if tx.Status == models.OnlineTxStatusSuccess {
		return tx, nil
	}

	rentPaymentID := 0
	if payment, err := s.createRentPayment(ctx, tx); err != nil {
		// The money was collected; losing the booking must not fail the
		// verification. Staff reconcile from the transaction record.
		log.Printf("[Razorpay] Failed to book rent payment for %s: %v", tx.RazorpayOrderID, err)
	} else {
		rentPaymentID = payment.ID
	}

	if err := s.transactionRepo.MarkSuccess(ctx, tx.ID, req.RazorpayPaymentID, req.RazorpaySignature, rentPaymentID); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return s.transactionRepo.GetByOrderID(ctx, req.RazorpayOrderID)
}

func (s *RazorpayService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	data := orderID + "|" + paymentID
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(data))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature verifies the webhook body signature. Skipped when no
// webhook secret is configured.
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return true
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *RazorpayService) createRentPayment(ctx context.Context, tx *models.OnlineTransaction) (*models.Payment, error) {
	receiptNumber, err := s.paymentRepo.GenerateReceiptNumber(ctx)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ReceiptNumber: receiptNumber,
		AgreementID:   tx.AgreementID,
		Type:          models.PaymentTypeRent,
		Amount:        tx.Amount,
		AmountPaid:    tx.Amount,
		Balance:       0,
		Status:        models.PaymentStatusCompleted,
		PaymentDate:   time.Now(),
		Notes:         fmt.Sprintf("Paid online, order %s", tx.RazorpayOrderID),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListTransactions shows an agreement's online payment attempts.
func (s *RazorpayService) ListTransactions(ctx context.Context, agreementID int) ([]*models.OnlineTransaction, error) {
	return s.transactionRepo.ListByAgreement(ctx, agreementID)
}
