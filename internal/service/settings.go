package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

type settingsRepo interface {
	Get(ctx context.Context, merchantID string) ([]byte, error)
	Save(ctx context.Context, merchantID string, blob []byte) error
}

// SettingsService loads and stores the merchant configuration blob. Every
// flow that needs settings loads them through here per invocation; nothing
// caches a process-wide copy.
type SettingsService struct {
	repo       settingsRepo
	merchantID string
}

func NewSettingsService(repo settingsRepo, merchantID string) *SettingsService {
	return &SettingsService{repo: repo, merchantID: merchantID}
}

func (s *SettingsService) Load(ctx context.Context) (*domain.GatewaySettings, error) {
	blob, err := s.repo.Get(ctx, s.merchantID)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	settings, err := domain.SettingsFromJSON(blob)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings *domain.GatewaySettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	blob, err := settings.ToJSON()
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if err := s.repo.Save(ctx, s.merchantID, blob); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// EnsureDefault seeds the settings row on first boot so the admin API always
// has something to return.
func (s *SettingsService) EnsureDefault(ctx context.Context) error {
	_, err := s.repo.Get(ctx, s.merchantID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("EnsureDefault: %w", err)
	}

	blob, err := domain.DefaultSettings(s.merchantID).ToJSON()
	if err != nil {
		return fmt.Errorf("EnsureDefault: %w", err)
	}
	if err := s.repo.Save(ctx, s.merchantID, blob); err != nil {
		return fmt.Errorf("EnsureDefault: %w", err)
	}
	return nil
}
