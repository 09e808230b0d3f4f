package models

import "time"

const (
	VehicleStatusAvailable   = "available"
	VehicleStatusRented      = "rented"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusRetired     = "retired"
)

type Vehicle struct {
	ID           int       `json:"id"`
	LicensePlate string    `json:"license_plate"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color"`
	VIN          string    `json:"vin"`
	Status       string    `json:"status"`
	Mileage      int       `json:"mileage"`
	DailyRate    float64   `json:"daily_rate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateVehicleRequest struct {
	LicensePlate string  `json:"license_plate"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Color        string  `json:"color"`
	VIN          string  `json:"vin"`
	Mileage      int     `json:"mileage"`
	DailyRate    float64 `json:"daily_rate"`
}
