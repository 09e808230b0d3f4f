package services

import (
	"context"
	"encoding/json"
	"errors"

	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type VehicleService struct {
	Repo *repositories.VehicleRepository
}

func NewVehicleService(repo *repositories.VehicleRepository) *VehicleService {
	return &VehicleService{Repo: repo}
}

func (s *VehicleService) CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	if req.LicensePlate == "" || req.Make == "" || req.Model == "" {
		return nil, errors.New("license plate, make, and model are required")
	}

	vehicle := &models.Vehicle{
		LicensePlate: req.LicensePlate,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		VIN:          req.VIN,
		Mileage:      req.Mileage,
		DailyRate:    req.DailyRate,
		Status:       models.VehicleStatusAvailable,
	}
	if err := s.Repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	cache.InvalidateAvailability(ctx)
	return vehicle, nil
}

func (s *VehicleService) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	return s.Repo.Get(ctx, id)
}

func (s *VehicleService) ListVehicles(ctx context.Context, status string) ([]*models.Vehicle, error) {
	return s.Repo.List(ctx, status)
}

// ListAvailable serves the most common fleet query through the Redis cache.
// A cache miss falls through to Postgres and repopulates.
func (s *VehicleService) ListAvailable(ctx context.Context) ([]*models.Vehicle, error) {
	if data, ok := cache.GetAvailableVehicles(ctx); ok {
		var vehicles []*models.Vehicle
		if err := json.Unmarshal(data, &vehicles); err == nil {
			return vehicles, nil
		}
	}

	vehicles, err := s.Repo.List(ctx, models.VehicleStatusAvailable)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vehicles); err == nil {
		cache.SetAvailableVehicles(ctx, data)
	}
	return vehicles, nil
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if err := s.Repo.Update(ctx, vehicle); err != nil {
		return err
	}
	cache.InvalidateAvailability(ctx)
	return nil
}

func (s *VehicleService) UpdateStatus(ctx context.Context, id int, status string) error {
	switch status {
	case models.VehicleStatusAvailable, models.VehicleStatusRented,
		models.VehicleStatusMaintenance, models.VehicleStatusRetired:
	default:
		return errors.New("invalid vehicle status")
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	cache.InvalidateAvailability(ctx)
	return nil
}

func (s *VehicleService) DeleteVehicle(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateAvailability(ctx)
	return nil
}
