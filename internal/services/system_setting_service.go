package services

import (
	"context"
	"errors"
	"strconv"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type SystemSettingService struct {
	Repo *repositories.SystemSettingRepository
}

func NewSystemSettingService(repo *repositories.SystemSettingRepository) *SystemSettingService {
	return &SystemSettingService{Repo: repo}
}

func (s *SystemSettingService) GetSetting(ctx context.Context, key string) (*models.SystemSetting, error) {
	return s.Repo.Get(ctx, key)
}

func (s *SystemSettingService) ListSettings(ctx context.Context) ([]*models.SystemSetting, error) {
	return s.Repo.List(ctx)
}

func (s *SystemSettingService) UpdateSetting(ctx context.Context, key, value string, userID int) error {
	if key == "" {
		return errors.New("setting key is required")
	}

	// Numeric settings must parse before they are stored.
	switch key {
	case models.SettingDailyLateFeeRate:
		if v, err := strconv.ParseFloat(value, 64); err != nil || v < 0 {
			return errors.New("daily_late_fee_rate must be a non-negative number")
		}
	case models.SettingOnlinePaymentEnabled:
		if value != "true" && value != "false" {
			return errors.New("online_payment_enabled must be true or false")
		}
	}

	return s.Repo.Set(ctx, key, value, userID)
}
