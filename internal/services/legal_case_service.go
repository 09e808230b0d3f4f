package services

import (
	"context"
	"errors"
	"fmt"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type LegalCaseService struct {
	Repo         *repositories.LegalCaseRepository
	CustomerRepo *repositories.CustomerRepository
}

func NewLegalCaseService(repo *repositories.LegalCaseRepository, customerRepo *repositories.CustomerRepository) *LegalCaseService {
	return &LegalCaseService{Repo: repo, CustomerRepo: customerRepo}
}

func (s *LegalCaseService) OpenCase(ctx context.Context, req *models.CreateLegalCaseRequest) (*models.LegalCase, error) {
	if req.CustomerID == 0 || req.CaseType == "" {
		return nil, errors.New("customer and case type are required")
	}
	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("customer %d not found: %w", req.CustomerID, err)
	}

	number, err := s.Repo.GenerateCaseNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate case number: %w", err)
	}

	legalCase := &models.LegalCase{
		CaseNumber:    number,
		CustomerID:    req.CustomerID,
		AgreementID:   req.AgreementID,
		CaseType:      req.CaseType,
		Description:   req.Description,
		AmountClaimed: req.AmountClaimed,
		Status:        models.LegalCaseStatusOpen,
	}
	if err := s.Repo.Create(ctx, legalCase); err != nil {
		return nil, err
	}
	return legalCase, nil
}

func (s *LegalCaseService) GetCase(ctx context.Context, id int) (*models.LegalCase, error) {
	return s.Repo.Get(ctx, id)
}

func (s *LegalCaseService) ListCases(ctx context.Context, status string) ([]*models.LegalCase, error) {
	return s.Repo.List(ctx, status)
}

// RecordRecovery adds a recovered amount; the case resolves once the claim is
// fully recovered.
func (s *LegalCaseService) RecordRecovery(ctx context.Context, id int, amount float64) (*models.LegalCase, error) {
	if amount <= 0 {
		return nil, errors.New("recovery amount must be positive")
	}

	legalCase, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("case %d not found: %w", id, err)
	}
	if legalCase.Status == models.LegalCaseStatusResolved {
		return nil, errors.New("case is already resolved")
	}

	legalCase.AmountRecovered += amount
	if legalCase.AmountRecovered >= legalCase.AmountClaimed {
		legalCase.Status = models.LegalCaseStatusResolved
	} else {
		legalCase.Status = models.LegalCaseStatusPending
	}

	if err := s.Repo.Update(ctx, legalCase); err != nil {
		return nil, err
	}
	return legalCase, nil
}

func (s *LegalCaseService) UpdateCase(ctx context.Context, legalCase *models.LegalCase) error {
	return s.Repo.Update(ctx, legalCase)
}

func (s *LegalCaseService) DeleteCase(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}
