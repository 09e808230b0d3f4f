package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/storage"
)

type CustomerService struct {
	Repo      *repositories.CustomerRepository
	Documents *storage.DocumentStore // nil when storage is not configured
}

func NewCustomerService(repo *repositories.CustomerRepository, documents *storage.DocumentStore) *CustomerService {
	return &CustomerService{Repo: repo, Documents: documents}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if req.FullName == "" || req.Phone == "" {
		return nil, errors.New("full name and phone are required")
	}

	customer := &models.Customer{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		DriverLicense: req.DriverLicense,
	}
	if err := s.Repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.Repo.Get(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, search string) ([]*models.Customer, error) {
	return s.Repo.List(ctx, search)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.Repo.Update(ctx, customer)
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}

// AttachIDDocument stores a scanned ID document and links it to the customer.
func (s *CustomerService) AttachIDDocument(ctx context.Context, customerID int, document []byte, contentType string) (string, error) {
	if s.Documents == nil {
		return "", errors.New("document storage is not configured")
	}

	customer, err := s.Repo.Get(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("customer %d not found: %w", customerID, err)
	}

	key := fmt.Sprintf("customers/%d/id-document-%d", customerID, time.Now().Unix())
	if _, err := s.Documents.Put(ctx, key, document, contentType); err != nil {
		return "", err
	}

	customer.IDDocumentURL = key
	if err := s.Repo.Update(ctx, customer); err != nil {
		return "", fmt.Errorf("failed to link document: %w", err)
	}
	return key, nil
}
