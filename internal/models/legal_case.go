package models

import "time"

const (
	LegalCaseStatusOpen     = "open"
	LegalCaseStatusPending  = "pending_settlement"
	LegalCaseStatusResolved = "resolved"
)

type LegalCase struct {
	ID           int       `json:"id"`
	CaseNumber   string    `json:"case_number"`
	CustomerID   int       `json:"customer_id"`
	AgreementID  int       `json:"agreement_id,omitempty"`
	CaseType     string    `json:"case_type"` // unpaid_dues, vehicle_damage, fine_dispute
	Description  string    `json:"description"`
	AmountClaimed float64  `json:"amount_claimed"`
	AmountRecovered float64 `json:"amount_recovered"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateLegalCaseRequest struct {
	CustomerID    int     `json:"customer_id"`
	AgreementID   int     `json:"agreement_id"`
	CaseType      string  `json:"case_type"`
	Description   string  `json:"description"`
	AmountClaimed float64 `json:"amount_claimed"`
}
