package models

import "time"

const (
	FineStatusPending  = "pending"
	FineStatusPaid     = "paid"
	FineStatusDisputed = "disputed"
)

type TrafficFine struct {
	ID             int       `json:"id"`
	ViolationNumber string   `json:"violation_number"`
	VehicleID      int       `json:"vehicle_id"`
	AgreementID    int       `json:"agreement_id,omitempty"` // assigned after matching by date
	ViolationDate  time.Time `json:"violation_date"`
	Location       string    `json:"location"`
	ViolationType  string    `json:"violation_type"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AuthorityFine is the shape returned by the external traffic authority API.
type AuthorityFine struct {
	ViolationNumber string  `json:"violation_number"`
	PlateNumber     string  `json:"plate_number"`
	ViolationDate   string  `json:"violation_date"`
	Location        string  `json:"location"`
	ViolationType   string  `json:"violation_type"`
	Amount          float64 `json:"amount"`
}
