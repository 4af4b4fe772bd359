package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

// SettingsRepository persists the merchant configuration as an opaque JSON
// blob. Decoding and validation belong to the domain package.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, merchantID string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT settings FROM gateway_settings WHERE merchant_id = $1`,
		merchantID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get: merchant %s: %w", merchantID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return blob, nil
}

func (r *SettingsRepository) Save(ctx context.Context, merchantID string, blob []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO gateway_settings (merchant_id, settings, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (merchant_id) DO UPDATE SET settings = $2, updated_at = now()`,
		merchantID, blob,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
