package services

import (
	"context"
	"testing"
	"time"

	"rental-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgreementStore struct {
	active map[int][]*models.Agreement // vehicleID -> active agreements, newest first
}

func (f *fakeAgreementStore) GetActiveByVehicle(_ context.Context, vehicleID int) ([]*models.Agreement, error) {
	return f.active[vehicleID], nil
}

func (f *fakeAgreementStore) CancelOtherActive(_ context.Context, vehicleID, keepID int) (int, error) {
	var kept []*models.Agreement
	cancelled := 0
	for _, a := range f.active[vehicleID] {
		if a.ID == keepID {
			kept = append(kept, a)
			continue
		}
		a.Status = models.AgreementStatusCancelled
		cancelled++
	}
	f.active[vehicleID] = kept
	return cancelled, nil
}

func (f *fakeAgreementStore) VehiclesWithMultipleActive(_ context.Context) ([]int, error) {
	var ids []int
	for id, agreements := range f.active {
		if len(agreements) > 1 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Broadcast(_, message string) {
	f.messages = append(f.messages, message)
}

func activeAgreement(id, vehicleID int, createdAt time.Time) *models.Agreement {
	return &models.Agreement{
		ID:              id,
		AgreementNumber: "AGR-00000" + string(rune('0'+id)),
		VehicleID:       vehicleID,
		Status:          models.AgreementStatusActive,
		CreatedAt:       createdAt,
	}
}

func TestDetectConflictsReportsAllActive(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {
			activeAgreement(3, 7, base.Add(48*time.Hour)),
			activeAgreement(2, 7, base.Add(24*time.Hour)),
			activeAgreement(1, 7, base),
		},
	}}
	svc := NewBookingConflictService(store, nil)

	report, err := svc.DetectConflicts(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.True(t, report.HasConflict())
	assert.Len(t, report.Agreements, 3)
}

func TestDetectConflictsSingleActiveIsNoConflict(t *testing.T) {
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {activeAgreement(1, 7, time.Now())},
	}}
	svc := NewBookingConflictService(store, nil)

	report, err := svc.DetectConflicts(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.False(t, report.HasConflict())
}

func TestDetectConflictsExcludesCallersAgreement(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {
			activeAgreement(2, 7, base.Add(24*time.Hour)),
			activeAgreement(1, 7, base),
		},
	}}
	svc := NewBookingConflictService(store, nil)

	report, err := svc.DetectConflicts(context.Background(), 7, 2)
	require.NoError(t, err)

	// With agreement 2 excluded, agreement 1 alone still means a conflict
	// from the caller's point of view.
	require.Len(t, report.Agreements, 1)
	assert.Equal(t, 1, report.Agreements[0].ID)
	assert.True(t, report.HasConflict())
}

func TestDetectConflictsExcludeOnlyActiveIsNoConflict(t *testing.T) {
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {activeAgreement(1, 7, time.Now())},
	}}
	svc := NewBookingConflictService(store, nil)

	report, err := svc.DetectConflicts(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Empty(t, report.Agreements)
	assert.False(t, report.HasConflict())
}

func TestResolveConflictsKeepsNewestCancelsRest(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	newest := activeAgreement(3, 7, base.Add(48*time.Hour))
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {
			newest,
			activeAgreement(2, 7, base.Add(24*time.Hour)),
			activeAgreement(1, 7, base),
		},
	}}
	notify := &fakeNotifier{}
	svc := NewBookingConflictService(store, notify)

	result, err := svc.ResolveConflicts(context.Background(), 7, 0)
	require.NoError(t, err)

	assert.Equal(t, newest.ID, result.KeptAgreementID)
	assert.Equal(t, 2, result.CancelledCount)

	// Only the newest survives as active
	require.Len(t, store.active[7], 1)
	assert.Equal(t, newest.ID, store.active[7][0].ID)
	assert.Equal(t, models.AgreementStatusActive, store.active[7][0].Status)

	assert.Len(t, notify.messages, 1)
}

func TestResolveConflictsKeepsRequestedAgreement(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	older := activeAgreement(1, 7, base)
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {
			activeAgreement(3, 7, base.Add(48*time.Hour)),
			activeAgreement(2, 7, base.Add(24*time.Hour)),
			older,
		},
	}}
	svc := NewBookingConflictService(store, &fakeNotifier{})

	// The caller names the oldest agreement as the winner.
	result, err := svc.ResolveConflicts(context.Background(), 7, older.ID)
	require.NoError(t, err)

	assert.Equal(t, older.ID, result.KeptAgreementID)
	assert.Equal(t, 2, result.CancelledCount)
	require.Len(t, store.active[7], 1)
	assert.Equal(t, older.ID, store.active[7][0].ID)
}

func TestResolveConflictsKeepIDNotActiveIsError(t *testing.T) {
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {activeAgreement(1, 7, time.Now())},
	}}
	svc := NewBookingConflictService(store, nil)

	_, err := svc.ResolveConflicts(context.Background(), 7, 42)
	assert.Error(t, err)
	// Nothing was cancelled on the failed resolve.
	assert.Len(t, store.active[7], 1)
}

func TestResolveConflictsSingleActiveCancelsNothing(t *testing.T) {
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		7: {activeAgreement(1, 7, time.Now())},
	}}
	notify := &fakeNotifier{}
	svc := NewBookingConflictService(store, notify)

	result, err := svc.ResolveConflicts(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CancelledCount)
	assert.Empty(t, notify.messages)
}

func TestResolveConflictsNoActiveIsError(t *testing.T) {
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{}}
	svc := NewBookingConflictService(store, nil)

	_, err := svc.ResolveConflicts(context.Background(), 99, 0)
	assert.Error(t, err)
}

func TestAuditAllVehiclesResolvesEveryConflict(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeAgreementStore{active: map[int][]*models.Agreement{
		1: {
			activeAgreement(5, 1, base.Add(time.Hour)),
			activeAgreement(4, 1, base),
		},
		2: {activeAgreement(6, 2, base)}, // no conflict
		3: {
			activeAgreement(9, 3, base.Add(2*time.Hour)),
			activeAgreement(8, 3, base.Add(time.Hour)),
			activeAgreement(7, 3, base),
		},
	}}
	svc := NewBookingConflictService(store, nil)

	results, err := svc.AuditAllVehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Len(t, store.active[r.VehicleID], 1, "vehicle %d should keep exactly one active agreement", r.VehicleID)
	}
	// Untouched vehicle keeps its single agreement
	assert.Len(t, store.active[2], 1)
}
