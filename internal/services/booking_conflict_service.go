package services

import (
	"context"
	"fmt"
	"log"

	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
)

// AgreementStore is the subset of the agreement repository the conflict
// resolver needs. Declared here so tests can swap in a fake.
type AgreementStore interface {
	GetActiveByVehicle(ctx context.Context, vehicleID int) ([]*models.Agreement, error)
	CancelOtherActive(ctx context.Context, vehicleID, keepID int) (int, error)
	VehiclesWithMultipleActive(ctx context.Context) ([]int, error)
}

// Notifier pushes real-time events to staff dashboards.
type Notifier interface {
	Broadcast(level, message string)
}

// ConflictReport describes a vehicle that holds more than one active agreement.
type ConflictReport struct {
	VehicleID           int                 `json:"vehicle_id"`
	VehiclePlate        string              `json:"vehicle_plate,omitempty"`
	ExcludedAgreementID int                 `json:"excluded_agreement_id,omitempty"`
	Agreements          []*models.Agreement `json:"agreements"`
}

// HasConflict reports whether the vehicle is double-booked. When the caller's
// own agreement was excluded, any remaining active agreement is a conflict.
func (r *ConflictReport) HasConflict() bool {
	if r.ExcludedAgreementID != 0 {
		return len(r.Agreements) > 0
	}
	return len(r.Agreements) > 1
}

// ResolutionResult records the outcome of resolving one vehicle's conflict.
type ResolutionResult struct {
	VehicleID       int    `json:"vehicle_id"`
	KeptAgreementID int    `json:"kept_agreement_id"`
	KeptNumber      string `json:"kept_agreement_number"`
	CancelledCount  int    `json:"cancelled_count"`
}

type BookingConflictService struct {
	Agreements AgreementStore
	Notify     Notifier
}

func NewBookingConflictService(agreements AgreementStore, notify Notifier) *BookingConflictService {
	return &BookingConflictService{Agreements: agreements, Notify: notify}
}

// DetectConflicts reports the active agreements on a vehicle without changing
// anything. A non-zero excludeAgreementID leaves the caller's own agreement
// out of the report, so a booking flow can ask "does anyone else hold this
// vehicle" before committing.
func (s *BookingConflictService) DetectConflicts(ctx context.Context, vehicleID, excludeAgreementID int) (*ConflictReport, error) {
	active, err := s.Agreements.GetActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active agreements: %w", err)
	}

	report := &ConflictReport{VehicleID: vehicleID, ExcludedAgreementID: excludeAgreementID}
	if len(active) > 0 {
		report.VehiclePlate = active[0].VehiclePlate
	}
	for _, a := range active {
		if excludeAgreementID != 0 && a.ID == excludeAgreementID {
			continue
		}
		report.Agreements = append(report.Agreements, a)
	}
	return report, nil
}

// ResolveConflicts cancels every active agreement on the vehicle except one.
// A non-zero keepAgreementID names the winner; when unset the most recently
// created active agreement wins. The cancel is a single UPDATE, so two
// concurrent resolver passes cannot cancel the same row twice.
func (s *BookingConflictService) ResolveConflicts(ctx context.Context, vehicleID, keepAgreementID int) (*ResolutionResult, error) {
	active, err := s.Agreements.GetActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active agreements: %w", err)
	}

	if len(active) == 0 {
		return nil, fmt.Errorf("vehicle %d has no active agreement", vehicleID)
	}

	// Rows come back newest first; the newest one wins unless the caller
	// named a different winner.
	keep := active[0]
	if keepAgreementID != 0 {
		keep = nil
		for _, a := range active {
			if a.ID == keepAgreementID {
				keep = a
				break
			}
		}
		if keep == nil {
			return nil, fmt.Errorf("agreement %d is not active on vehicle %d", keepAgreementID, vehicleID)
		}
	}
	result := &ResolutionResult{
		VehicleID:       vehicleID,
		KeptAgreementID: keep.ID,
		KeptNumber:      keep.AgreementNumber,
	}

	if len(active) == 1 {
		return result, nil
	}

	cancelled, err := s.Agreements.CancelOtherActive(ctx, vehicleID, keep.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel conflicting agreements: %w", err)
	}
	result.CancelledCount = cancelled

	metrics.BookingConflictsResolved.Add(float64(cancelled))
	log.Printf("[Conflict] Vehicle %d: kept %s, cancelled %d agreement(s)",
		vehicleID, keep.AgreementNumber, cancelled)

	if s.Notify != nil && cancelled > 0 {
		s.Notify.Broadcast("warning", fmt.Sprintf(
			"Booking conflict on %s resolved: kept %s, cancelled %d agreement(s)",
			keep.VehiclePlate, keep.AgreementNumber, cancelled))
	}
	return result, nil
}

// AuditAllVehicles sweeps the fleet and resolves every vehicle that holds more
// than one active agreement. Individual failures are logged and skipped so one
// bad vehicle does not abort the sweep.
func (s *BookingConflictService) AuditAllVehicles(ctx context.Context) ([]*ResolutionResult, error) {
	vehicleIDs, err := s.Agreements.VehiclesWithMultipleActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicted vehicles: %w", err)
	}

	var results []*ResolutionResult
	for _, id := range vehicleIDs {
		result, err := s.ResolveConflicts(ctx, id, 0)
		if err != nil {
			log.Printf("[Conflict] Audit skipping vehicle %d: %v", id, err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}
