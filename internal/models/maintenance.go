package models

import "time"

const (
	MaintenanceStatusScheduled  = "scheduled"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusCompleted  = "completed"
)

type MaintenanceRecord struct {
	ID            int        `json:"id"`
	VehicleID     int        `json:"vehicle_id"`
	ServiceType   string     `json:"service_type"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Cost          float64    `json:"cost"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CreateMaintenanceRequest struct {
	VehicleID     int     `json:"vehicle_id"`
	ServiceType   string  `json:"service_type"`
	Description   string  `json:"description"`
	Cost          float64 `json:"cost"`
	ScheduledDate string  `json:"scheduled_date"` // YYYY-MM-DD
}
