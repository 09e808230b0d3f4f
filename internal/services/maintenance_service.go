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

type MaintenanceService struct {
	Repo        *repositories.MaintenanceRepository
	VehicleRepo *repositories.VehicleRepository
}

func NewMaintenanceService(repo *repositories.MaintenanceRepository, vehicleRepo *repositories.VehicleRepository) *MaintenanceService {
	return &MaintenanceService{Repo: repo, VehicleRepo: vehicleRepo}
}

func (s *MaintenanceService) ScheduleMaintenance(ctx context.Context, req *models.CreateMaintenanceRequest) (*models.MaintenanceRecord, error) {
	if req.VehicleID == 0 || req.ServiceType == "" {
		return nil, errors.New("vehicle and service type are required")
	}

	scheduledDate, err := time.Parse(timeutil.DateLayout, req.ScheduledDate)
	if err != nil {
		return nil, errors.New("scheduled_date must be YYYY-MM-DD")
	}

	if _, err := s.VehicleRepo.Get(ctx, req.VehicleID); err != nil {
		return nil, fmt.Errorf("vehicle %d not found: %w", req.VehicleID, err)
	}

	record := &models.MaintenanceRecord{
		VehicleID:     req.VehicleID,
		ServiceType:   req.ServiceType,
		Description:   req.Description,
		Status:        models.MaintenanceStatusScheduled,
		Cost:          req.Cost,
		ScheduledDate: scheduledDate,
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *MaintenanceService) GetRecord(ctx context.Context, id int) (*models.MaintenanceRecord, error) {
	return s.Repo.Get(ctx, id)
}

func (s *MaintenanceService) ListRecords(ctx context.Context, vehicleID int) ([]*models.MaintenanceRecord, error) {
	return s.Repo.List(ctx, vehicleID)
}

// Start moves the record in progress and pulls the vehicle off the road.
func (s *MaintenanceService) Start(ctx context.Context, id int) error {
	record, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("maintenance record %d not found: %w", id, err)
	}
	if record.Status != models.MaintenanceStatusScheduled {
		return fmt.Errorf("maintenance record is %s, expected scheduled", record.Status)
	}

	if err := s.Repo.UpdateStatus(ctx, id, models.MaintenanceStatusInProgress); err != nil {
		return err
	}
	if err := s.VehicleRepo.UpdateStatus(ctx, record.VehicleID, models.VehicleStatusMaintenance); err != nil {
		return fmt.Errorf("failed to mark vehicle in maintenance: %w", err)
	}
	cache.InvalidateAvailability(ctx)
	return nil
}

// Complete finishes the work and returns the vehicle to the available pool.
func (s *MaintenanceService) Complete(ctx context.Context, id int, cost float64) error {
	record, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("maintenance record %d not found: %w", id, err)
	}
	if record.Status == models.MaintenanceStatusCompleted {
		return errors.New("maintenance record is already completed")
	}

	if cost <= 0 {
		cost = record.Cost
	}
	if err := s.Repo.Complete(ctx, id, timeutil.StartOfDay(time.Now()), cost); err != nil {
		return err
	}
	if err := s.VehicleRepo.UpdateStatus(ctx, record.VehicleID, models.VehicleStatusAvailable); err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}
	cache.InvalidateAvailability(ctx)
	return nil
}

func (s *MaintenanceService) DeleteRecord(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}
