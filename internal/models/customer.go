package models

import "time"

type Customer struct {
	ID            int       `json:"id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	DriverLicense string    `json:"driver_license"`
	IDDocumentURL string    `json:"id_document_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateCustomerRequest struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	DriverLicense string `json:"driver_license"`
}
