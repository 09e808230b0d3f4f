package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

type AgreementService struct {
	Repo        *repositories.AgreementRepository
	VehicleRepo *repositories.VehicleRepository
	Conflicts   *BookingConflictService
	Notify      Notifier
}

func NewAgreementService(
	repo *repositories.AgreementRepository,
	vehicleRepo *repositories.VehicleRepository,
	conflicts *BookingConflictService,
	notify Notifier,
) *AgreementService {
	return &AgreementService{
		Repo:        repo,
		VehicleRepo: vehicleRepo,
		Conflicts:   conflicts,
		Notify:      notify,
	}
}

func (s *AgreementService) CreateAgreement(ctx context.Context, req *models.CreateAgreementRequest) (*models.Agreement, error) {
	if req.VehicleID == 0 || req.CustomerID == 0 {
		return nil, errors.New("vehicle and customer are required")
	}

	startDate, err := time.Parse(timeutil.DateLayout, req.StartDate)
	if err != nil {
		return nil, errors.New("start_date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse(timeutil.DateLayout, req.EndDate)
	if err != nil {
		return nil, errors.New("end_date must be YYYY-MM-DD")
	}
	if !endDate.After(startDate) {
		return nil, errors.New("end_date must be after start_date")
	}

	number, err := s.Repo.GenerateAgreementNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate agreement number: %w", err)
	}

	agreement := &models.Agreement{
		AgreementNumber: number,
		VehicleID:       req.VehicleID,
		CustomerID:      req.CustomerID,
		Status:          models.AgreementStatusDraft,
		StartDate:       startDate,
		EndDate:         endDate,
		RentAmount:      req.RentAmount,
		Notes:           req.Notes,
	}
	if err := s.Repo.Create(ctx, agreement); err != nil {
		return nil, err
	}
	return agreement, nil
}

func (s *AgreementService) GetAgreement(ctx context.Context, id int) (*models.Agreement, error) {
	return s.Repo.Get(ctx, id)
}

func (s *AgreementService) ListAgreements(ctx context.Context, status string) ([]*models.Agreement, error) {
	return s.Repo.List(ctx, status)
}

// Activate moves an agreement to active, marks the vehicle rented, and then
// runs conflict resolution so the newest booking wins if two were activated
// against the same vehicle.
func (s *AgreementService) Activate(ctx context.Context, id int) (*models.Agreement, error) {
	agreement, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("agreement %d not found: %w", id, err)
	}

	switch agreement.Status {
	case models.AgreementStatusDraft, models.AgreementStatusPending:
	default:
		return nil, fmt.Errorf("agreement %s is %s and cannot be activated", agreement.AgreementNumber, agreement.Status)
	}

	if err := s.Repo.UpdateStatus(ctx, id, models.AgreementStatusActive); err != nil {
		return nil, err
	}
	agreement.Status = models.AgreementStatusActive

	if err := s.VehicleRepo.UpdateStatus(ctx, agreement.VehicleID, models.VehicleStatusRented); err != nil {
		return nil, fmt.Errorf("failed to mark vehicle rented: %w", err)
	}
	cache.InvalidateAvailability(ctx)

	// The agreement we just activated wins any double booking.
	if _, err := s.Conflicts.ResolveConflicts(ctx, agreement.VehicleID, agreement.ID); err != nil {
		return nil, fmt.Errorf("activation conflict check failed: %w", err)
	}

	if s.Notify != nil {
		s.Notify.Broadcast("info", fmt.Sprintf("Agreement %s activated", agreement.AgreementNumber))
	}
	return agreement, nil
}

// Close ends an agreement and returns the vehicle to the available pool.
func (s *AgreementService) Close(ctx context.Context, id int, status string) (*models.Agreement, error) {
	switch status {
	case models.AgreementStatusClosed, models.AgreementStatusExpired, models.AgreementStatusCancelled:
	default:
		return nil, errors.New("close status must be closed, expired, or cancelled")
	}

	agreement, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("agreement %d not found: %w", id, err)
	}

	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	agreement.Status = status

	// Only free the vehicle when no other active agreement claims it.
	active, err := s.Repo.GetActiveByVehicle(ctx, agreement.VehicleID)
	if err == nil && len(active) == 0 {
		if err := s.VehicleRepo.UpdateStatus(ctx, agreement.VehicleID, models.VehicleStatusAvailable); err == nil {
			cache.InvalidateAvailability(ctx)
		}
	}
	return agreement, nil
}

func (s *AgreementService) UpdateAgreement(ctx context.Context, id int, req *models.UpdateAgreementRequest) (*models.Agreement, error) {
	agreement, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("agreement %d not found: %w", id, err)
	}

	if req.EndDate != "" {
		endDate, err := time.Parse(timeutil.DateLayout, req.EndDate)
		if err != nil {
			return nil, errors.New("end_date must be YYYY-MM-DD")
		}
		agreement.EndDate = endDate
	}
	if req.RentAmount > 0 {
		agreement.RentAmount = req.RentAmount
	}
	if req.Notes != "" {
		agreement.Notes = req.Notes
	}
	if req.Status != "" {
		agreement.Status = req.Status
	}

	if err := s.Repo.Update(ctx, agreement); err != nil {
		return nil, err
	}
	return agreement, nil
}

func (s *AgreementService) DeleteAgreement(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}
