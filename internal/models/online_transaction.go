package models

import "time"

// OnlineTransactionStatus represents the status of an online payment
type OnlineTransactionStatus string

const (
	OnlineTxStatusPending  OnlineTransactionStatus = "pending"
	OnlineTxStatusSuccess  OnlineTransactionStatus = "success"
	OnlineTxStatusFailed   OnlineTransactionStatus = "failed"
	OnlineTxStatusRefunded OnlineTransactionStatus = "refunded"
)

// OnlineTransaction represents a Razorpay payment transaction
type OnlineTransaction struct {
	ID                int    `json:"id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `json:"-"` // Don't expose signature in JSON

	CustomerID  int `json:"customer_id"`
	AgreementID int `json:"agreement_id"`
	PaymentID   int `json:"payment_id,omitempty"` // Linked rent payment after success

	// Amounts (in rupees)
	Amount      float64 `json:"amount"`
	FeeAmount   float64 `json:"fee_amount"`
	TotalAmount float64 `json:"total_amount"` // What customer pays (amount + fee)

	PaymentMethod string `json:"payment_method,omitempty"` // upi, card, netbanking, wallet

	Status        OnlineTransactionStatus `json:"status"`
	FailureReason string                  `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateOrderRequest is the request to start an online payment
type CreateOrderRequest struct {
	AgreementID int     `json:"agreement_id"`
	Amount      float64 `json:"amount"`
}

// VerifyPaymentRequest carries the checkout callback fields from Razorpay
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
