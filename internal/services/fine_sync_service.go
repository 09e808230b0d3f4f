package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"rental-backend/internal/apiclient"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

// FineStore is the subset of the traffic fine repository the sync needs.
type FineStore interface {
	Upsert(ctx context.Context, f *models.TrafficFine) (bool, error)
	FindAgreementForDate(ctx context.Context, vehicleID int, violationDate time.Time) (int, error)
	AssignAgreement(ctx context.Context, fineID, agreementID int) error
}

// PlateResolver maps a license plate to the vehicle that carries it.
type PlateResolver interface {
	GetByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
}

// SyncResult summarizes one pull from the traffic authority.
type SyncResult struct {
	Fetched       int      `json:"fetched"`
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	UnknownPlates []string `json:"unknown_plates,omitempty"`
}

// FineSyncService pulls traffic fines from the external authority API and
// reconciles them into the local database.
type FineSyncService struct {
	client   *apiclient.Client
	baseURL  string
	Fines    FineStore
	Vehicles PlateResolver
	Settings SettingsReader
	Notify   Notifier
}

func NewFineSyncService(
	baseURL, apiToken string,
	maxRetries int,
	baseDelay time.Duration,
	maxConcurrent int,
	fines FineStore,
	vehicles PlateResolver,
	settings SettingsReader,
	notify Notifier,
) *FineSyncService {
	client := apiclient.New(
		apiclient.WithMaxRetries(maxRetries),
		apiclient.WithBaseDelay(baseDelay),
		apiclient.WithMaxConcurrent(maxConcurrent),
		apiclient.WithCache(apiclient.NewMemoryCache()),
		apiclient.WithTokenProvider(func() string { return apiToken }),
		apiclient.WithMonitor(func(sample apiclient.MonitorSample) {
			metrics.ExternalRequestDuration.WithLabelValues(sample.Method, sample.URL).Observe(sample.Duration.Seconds())
			metrics.ExternalResponseBytes.WithLabelValues(sample.Method, sample.URL).Add(float64(sample.ResponseSize))
		}),
		apiclient.WithRateLimitCallback(func(delay time.Duration) {
			metrics.ExternalRateLimitDelay.Observe(delay.Seconds())
			log.Printf("[FineSync] Authority API rate limited, backing off %s", delay)
		}),
	)

	return &FineSyncService{
		client:   client,
		baseURL:  baseURL,
		Fines:    fines,
		Vehicles: vehicles,
		Settings: settings,
		Notify:   notify,
	}
}

// endpoint prefers the runtime override in system settings so operators can
// repoint the sync without a restart.
func (s *FineSyncService) endpoint(ctx context.Context) string {
	if override := s.Settings.GetValue(ctx, models.SettingFineSyncEndpoint, ""); override != "" {
		return override
	}
	return s.baseURL + "/v1/fines"
}

// SyncFines fetches open fines issued since the given date and upserts them.
// Fines for plates we do not manage are reported, not stored.
func (s *FineSyncService) SyncFines(ctx context.Context, since time.Time) (*SyncResult, error) {
	params := url.Values{}
	params.Set("since", since.Format("2006-01-02"))
	params.Set("status", "open")

	body, err := s.client.Get(ctx, s.endpoint(ctx), params, true)
	if err != nil {
		var clientErr *apiclient.ClientError
		if errors.As(err, &clientErr) {
			log.Printf("[FineSync] Authority API failed (%s): %v", clientErr.Type, err)
		}
		return nil, fmt.Errorf("authority API unavailable: %w", err)
	}

	var fines []models.AuthorityFine
	if err := json.Unmarshal(body, &fines); err != nil {
		return nil, fmt.Errorf("failed to decode authority response: %w", err)
	}

	result := &SyncResult{Fetched: len(fines)}
	for i := range fines {
		if err := s.reconcile(ctx, &fines[i], result); err != nil {
			log.Printf("[FineSync] Skipping fine %s: %v", fines[i].ViolationNumber, err)
		}
	}

	log.Printf("[FineSync] Synced %d fine(s): %d new, %d updated, %d unknown plate(s)",
		result.Fetched, result.Created, result.Updated, len(result.UnknownPlates))

	if s.Notify != nil && result.Created > 0 {
		s.Notify.Broadcast("warning", fmt.Sprintf("%d new traffic fine(s) received", result.Created))
	}
	return result, nil
}

func (s *FineSyncService) reconcile(ctx context.Context, af *models.AuthorityFine, result *SyncResult) error {
	vehicle, err := s.Vehicles.GetByPlate(ctx, af.PlateNumber)
	if err != nil {
		result.UnknownPlates = append(result.UnknownPlates, af.PlateNumber)
		return nil
	}

	violationDate, err := time.Parse(time.RFC3339, af.ViolationDate)
	if err != nil {
		// Some authorities send date-only stamps.
		violationDate, err = time.Parse("2006-01-02", af.ViolationDate)
		if err != nil {
			return fmt.Errorf("bad violation date %q: %w", af.ViolationDate, err)
		}
	}

	fine := &models.TrafficFine{
		ViolationNumber: af.ViolationNumber,
		VehicleID:       vehicle.ID,
		ViolationDate:   violationDate,
		Location:        af.Location,
		ViolationType:   af.ViolationType,
		Amount:          af.Amount,
		Status:          models.FineStatusPending,
	}

	created, err := s.Fines.Upsert(ctx, fine)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}

	// Attach the fine to whoever rented the vehicle on the violation date.
	agreementID, err := s.Fines.FindAgreementForDate(ctx, vehicle.ID, violationDate)
	if err == nil && agreementID > 0 {
		if err := s.Fines.AssignAgreement(ctx, fine.ID, agreementID); err != nil {
			log.Printf("[FineSync] Could not link fine %s to agreement %d: %v", fine.ViolationNumber, agreementID, err)
		}
	}
	return nil
}

// ReportPaid notifies the authority that a fine has been settled on our side.
func (s *FineSyncService) ReportPaid(ctx context.Context, fine *models.TrafficFine) error {
	payload := map[string]interface{}{
		"violation_number": fine.ViolationNumber,
		"paid_at":          time.Now().Format(time.RFC3339),
	}
	_, err := s.client.Post(ctx, s.endpoint(ctx)+"/"+fine.ViolationNumber+"/payments", payload)
	if err != nil {
		return fmt.Errorf("failed to report payment for %s: %w", fine.ViolationNumber, err)
	}
	return nil
}

// interface checks
var (
	_ FineStore     = (*repositories.TrafficFineRepository)(nil)
	_ PlateResolver = (*repositories.VehicleRepository)(nil)
)
