package models

import "time"

const (
	PaymentStatusPending       = "pending"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusCompleted     = "completed"
)

const (
	PaymentTypeRent    = "RENT"
	PaymentTypeLateFee = "LATE_PAYMENT_FEE"
	PaymentTypeDeposit = "SECURITY_DEPOSIT"
)

type Payment struct {
	ID            int       `json:"id"`
	ReceiptNumber string    `json:"receipt_number"`
	AgreementID   int       `json:"agreement_id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	AmountPaid    float64   `json:"amount_paid"`
	Balance       float64   `json:"balance"`
	Status        string    `json:"status"`
	PaymentDate   time.Time `json:"payment_date"`
	LateFineAmount float64  `json:"late_fine_amount"`
	DaysOverdue   int       `json:"days_overdue"`
	ProcessedByUserID int   `json:"processed_by_user_id"`
	ProcessedByName   string `json:"processed_by_name,omitempty"` // Joined from users table
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RecordPaymentRequest struct {
	AgreementID        int     `json:"agreement_id"`
	PaymentID          int     `json:"payment_id,omitempty"` // continue an existing partial payment
	Amount             float64 `json:"amount"`
	PaymentDate        string  `json:"payment_date"` // YYYY-MM-DD, defaults to today
	IsPartial          bool    `json:"is_partial"`
	IncludeLateFee     bool    `json:"include_late_fee"`
	Notes              string  `json:"notes"`
}

type BackfillPaymentsRequest struct {
	AgreementID     int     `json:"agreement_id"`
	LastPaymentDate string  `json:"last_payment_date"` // YYYY-MM-DD
	RentAmount      float64 `json:"rent_amount"`
}
