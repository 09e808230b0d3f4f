package services

import (
	"context"
	"fmt"
	"log"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type TrafficFineService struct {
	Repo *repositories.TrafficFineRepository
	Sync *FineSyncService
}

func NewTrafficFineService(repo *repositories.TrafficFineRepository, sync *FineSyncService) *TrafficFineService {
	return &TrafficFineService{Repo: repo, Sync: sync}
}

func (s *TrafficFineService) GetFine(ctx context.Context, id int) (*models.TrafficFine, error) {
	return s.Repo.Get(ctx, id)
}

func (s *TrafficFineService) ListFines(ctx context.Context, vehicleID int) ([]*models.TrafficFine, error) {
	return s.Repo.List(ctx, vehicleID)
}

// MarkPaid settles a fine locally and reports the settlement upstream. The
// upstream report is best effort; a failure there leaves the fine paid here.
func (s *TrafficFineService) MarkPaid(ctx context.Context, id int) (*models.TrafficFine, error) {
	fine, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fine %d not found: %w", id, err)
	}
	if fine.Status == models.FineStatusPaid {
		return fine, nil
	}

	if err := s.Repo.UpdateStatus(ctx, id, models.FineStatusPaid); err != nil {
		return nil, err
	}
	fine.Status = models.FineStatusPaid

	if s.Sync != nil {
		if err := s.Sync.ReportPaid(ctx, fine); err != nil {
			log.Printf("[Fines] Upstream payment report failed for %s: %v", fine.ViolationNumber, err)
		}
	}
	return fine, nil
}

func (s *TrafficFineService) Dispute(ctx context.Context, id int) error {
	return s.Repo.UpdateStatus(ctx, id, models.FineStatusDisputed)
}
