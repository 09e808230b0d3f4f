package models

import "time"

// Agreement status lifecycle: draft -> pending -> active -> expired/closed.
// Cancelled is a terminal state set by the booking conflict resolver or by staff.
const (
	AgreementStatusDraft     = "draft"
	AgreementStatusPending   = "pending"
	AgreementStatusActive    = "active"
	AgreementStatusExpired   = "expired"
	AgreementStatusCancelled = "cancelled"
	AgreementStatusClosed    = "closed"
)

type Agreement struct {
	ID              int       `json:"id"`
	AgreementNumber string    `json:"agreement_number"`
	VehicleID       int       `json:"vehicle_id"`
	CustomerID      int       `json:"customer_id"`
	Status          string    `json:"status"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	RentAmount      float64   `json:"rent_amount"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined for list views
	VehiclePlate string `json:"vehicle_plate,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

type CreateAgreementRequest struct {
	VehicleID  int     `json:"vehicle_id"`
	CustomerID int     `json:"customer_id"`
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`
	RentAmount float64 `json:"rent_amount"`
	Notes      string  `json:"notes"`
}

type UpdateAgreementRequest struct {
	Status     string  `json:"status"`
	EndDate    string  `json:"end_date"`
	RentAmount float64 `json:"rent_amount"`
	Notes      string  `json:"notes"`
}
