package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentStore struct {
	payments     map[int]*models.Payment
	nextID       int
	receiptSeq   int
	failLateFee  bool
	failForMonth string // reject rent inserts dated in this YYYY-MM month
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[int]*models.Payment)}
}

func (f *fakePaymentStore) GenerateReceiptNumber(_ context.Context) (string, error) {
	f.receiptSeq++
	return fmt.Sprintf("RCP-%06d", f.receiptSeq), nil
}

func (f *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	if f.failLateFee && p.Type == models.PaymentTypeLateFee {
		return errors.New("insert failed")
	}
	if f.failForMonth != "" && p.Type == models.PaymentTypeRent &&
		timeutil.MonthKey(p.PaymentDate) == f.failForMonth {
		return errors.New("insert failed")
	}
	f.nextID++
	p.ID = f.nextID
	clone := *p
	f.payments[p.ID] = &clone
	return nil
}

func (f *fakePaymentStore) Get(_ context.Context, id int) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *p
	return &clone, nil
}

func (f *fakePaymentStore) GetByAgreement(_ context.Context, agreementID int) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range f.payments {
		if p.AgreementID == agreementID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) UpdateProgress(_ context.Context, id int, amountPaid, balance float64, status, notes string) error {
	p, ok := f.payments[id]
	if !ok {
		return errors.New("not found")
	}
	p.AmountPaid = amountPaid
	p.Balance = balance
	p.Status = status
	p.Notes = notes
	return nil
}

func (f *fakePaymentStore) ExistsForMonth(_ context.Context, agreementID int, monthStart time.Time) (bool, error) {
	for _, p := range f.payments {
		if p.AgreementID == agreementID && p.Type == models.PaymentTypeRent &&
			timeutil.MonthKey(p.PaymentDate) == timeutil.MonthKey(monthStart) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePaymentStore) byType(paymentType string) []*models.Payment {
	var out []*models.Payment
	for _, p := range f.payments {
		if p.Type == paymentType {
			out = append(out, p)
		}
	}
	return out
}

type fakeAgreements struct {
	agreements map[int]*models.Agreement
}

func (f *fakeAgreements) Get(_ context.Context, id int) (*models.Agreement, error) {
	a, ok := f.agreements[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetValue(_ context.Context, key, fallback string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return fallback
}

func newPaymentFixture(rent float64) (*PaymentService, *fakePaymentStore) {
	store := newFakePaymentStore()
	agreements := &fakeAgreements{agreements: map[int]*models.Agreement{
		1: {
			ID:              1,
			AgreementNumber: "AGR-000001",
			VehicleID:       7,
			Status:          models.AgreementStatusActive,
			RentAmount:      rent,
		},
	}}
	settings := &fakeSettings{values: map[string]string{}}
	svc := NewPaymentService(store, agreements, settings, nil)
	return svc, store
}

func TestCalculateLateFee(t *testing.T) {
	svc, _ := newPaymentFixture(1000)
	ctx := context.Background()

	tests := []struct {
		day      int
		wantFee  float64
		wantDays int
	}{
		{1, 0, 0},
		{2, 120, 1},
		{15, 1680, 14},
		{26, 3000, 25}, // 25 x 120 = 3000, exactly at the cap
		{30, 3000, 29}, // 29 x 120 = 3480, capped
	}
	for _, tt := range tests {
		date := time.Date(2026, 4, tt.day, 0, 0, 0, 0, time.UTC)
		fee, days := svc.CalculateLateFee(ctx, date)
		assert.Equal(t, tt.wantFee, fee, "day %d", tt.day)
		assert.Equal(t, tt.wantDays, days, "day %d", tt.day)
	}
}

func TestCalculateLateFeeUsesConfiguredRate(t *testing.T) {
	svc, _ := newPaymentFixture(1000)
	svc.Settings = &fakeSettings{values: map[string]string{
		models.SettingDailyLateFeeRate: "200",
	}}

	fee, days := svc.CalculateLateFee(context.Background(), time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 5, days)
	assert.Equal(t, 1000.0, fee)
}

func TestRecordPaymentFullCompletes(t *testing.T) {
	svc, store := newPaymentFixture(1000)

	result, err := svc.RecordPayment(context.Background(), &models.RecordPaymentRequest{
		AgreementID: 1,
		Amount:      1000,
		PaymentDate: "2026-04-01",
	}, 42)
	require.NoError(t, err)
	require.True(t, result.Success)

	p := result.Payment
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Equal(t, 1000.0, p.AmountPaid)
	assert.Equal(t, 0.0, p.Balance)
	assert.Equal(t, 42, p.ProcessedByUserID)
	assert.Len(t, store.payments, 1)
}

func TestRecordPaymentPartialThenCompletion(t *testing.T) {
	svc, _ := newPaymentFixture(1000)
	ctx := context.Background()

	first, err := svc.RecordPayment(ctx, &models.RecordPaymentRequest{
		AgreementID: 1,
		Amount:      400,
		PaymentDate: "2026-04-01",
		IsPartial:   true,
	}, 42)
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, first.Payment.Status)
	assert.Equal(t, 600.0, first.Payment.Balance)

	second, err := svc.RecordPayment(ctx, &models.RecordPaymentRequest{
		AgreementID: 1,
		PaymentID:   first.Payment.ID,
		Amount:      600,
	}, 42)
	require.NoError(t, err)
	require.True(t, second.Success)
	assert.Equal(t, models.PaymentStatusCompleted, second.Payment.Status)
	assert.Equal(t, 1000.0, second.Payment.AmountPaid)
	assert.Equal(t, 0.0, second.Payment.Balance)
}

func TestRecordPaymentShortWithoutPartialFlagRefused(t *testing.T) {
	svc, store := newPaymentFixture(1000)

	result, err := svc.RecordPayment(context.Background(), &models.RecordPaymentRequest{
		AgreementID: 1,
		Amount:      400,
		PaymentDate: "2026-04-01",
	}, 42)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, store.payments)
}

func TestRecordPaymentLateFeeSeparateRecord(t *testing.T) {
	svc, store := newPaymentFixture(1000)

	result, err := svc.RecordPayment(context.Background(), &models.RecordPaymentRequest{
		AgreementID:    1,
		Amount:         1000,
		PaymentDate:    "2026-04-15",
		IncludeLateFee: true,
	}, 42)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.LateFeePayment)

	// Rent and fee are separate records; the rent amount is untouched.
	assert.Equal(t, 1000.0, result.Payment.Amount)
	assert.Equal(t, 1680.0, result.LateFeePayment.Amount)
	assert.Equal(t, 14, result.LateFeePayment.DaysOverdue)
	assert.Equal(t, models.PaymentTypeLateFee, result.LateFeePayment.Type)
	assert.Len(t, store.byType(models.PaymentTypeRent), 1)
	assert.Len(t, store.byType(models.PaymentTypeLateFee), 1)
}

func TestRecordPaymentLateFeeFailureKeepsPrincipal(t *testing.T) {
	svc, store := newPaymentFixture(1000)
	store.failLateFee = true

	result, err := svc.RecordPayment(context.Background(), &models.RecordPaymentRequest{
		AgreementID:    1,
		Amount:         1000,
		PaymentDate:    "2026-04-15",
		IncludeLateFee: true,
	}, 42)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Nil(t, result.LateFeePayment)
	assert.Len(t, store.byType(models.PaymentTypeRent), 1)
	assert.Empty(t, store.byType(models.PaymentTypeLateFee))
}

func TestRecordPaymentOnTheFirstNoFee(t *testing.T) {
	svc, store := newPaymentFixture(1000)

	result, err := svc.RecordPayment(context.Background(), &models.RecordPaymentRequest{
		AgreementID:    1,
		Amount:         1000,
		PaymentDate:    "2026-04-01",
		IncludeLateFee: true,
	}, 42)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Nil(t, result.LateFeePayment)
	assert.Empty(t, store.byType(models.PaymentTypeLateFee))
}

func TestGenerateMissingPaymentsCoversGap(t *testing.T) {
	svc, store := newPaymentFixture(1500)
	svc.now = func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) }

	result, err := svc.GenerateMissingPayments(context.Background(), &models.BackfillPaymentsRequest{
		AgreementID:     1,
		LastPaymentDate: "2025-11-15",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, []string{"2025-12", "2026-01", "2026-02"}, result.MonthsCovered)
	require.Len(t, result.Created, 3)
	for _, p := range result.Created {
		assert.Equal(t, models.PaymentStatusPending, p.Status)
		assert.Equal(t, 1500.0, p.Amount)
		assert.Equal(t, 1500.0, p.Balance)
		assert.Equal(t, 1, p.PaymentDate.Day(), "generated payments are dated the 1st")
	}
	assert.Len(t, store.payments, 3)
}

func TestGenerateMissingPaymentsContinuesPastFailedMonth(t *testing.T) {
	svc, store := newPaymentFixture(1500)
	svc.now = func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) }
	store.failForMonth = "2025-12"

	result, err := svc.GenerateMissingPayments(context.Background(), &models.BackfillPaymentsRequest{
		AgreementID:     1,
		LastPaymentDate: "2025-11-15",
	})
	require.NoError(t, err)

	// December's insert failed but the later months were still covered.
	assert.False(t, result.Success)
	assert.Equal(t, []string{"2025-12"}, result.FailedMonths)
	assert.Equal(t, []string{"2026-01", "2026-02"}, result.MonthsCovered)
	require.Len(t, result.Created, 2)
	assert.Len(t, store.payments, 2)
}

func TestGenerateMissingPaymentsSkipsCoveredMonths(t *testing.T) {
	svc, store := newPaymentFixture(1500)
	svc.now = func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) }

	// January already has a rent record.
	require.NoError(t, store.Create(context.Background(), &models.Payment{
		AgreementID: 1,
		Type:        models.PaymentTypeRent,
		PaymentDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}))

	result, err := svc.GenerateMissingPayments(context.Background(), &models.BackfillPaymentsRequest{
		AgreementID:     1,
		LastPaymentDate: "2025-11-15",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12", "2026-02"}, result.MonthsCovered)
}

func TestGenerateMissingPaymentsNothingToDo(t *testing.T) {
	svc, _ := newPaymentFixture(1500)
	svc.now = func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) }

	result, err := svc.GenerateMissingPayments(context.Background(), &models.BackfillPaymentsRequest{
		AgreementID:     1,
		LastPaymentDate: "2026-02-01",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Created)
}
