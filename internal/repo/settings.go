package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amara-oss/backend-duka/internal/delivery"
)

// SettingsStore persists the singleton delivery configuration row.
type SettingsStore struct {
	Pool *pgxpool.Pool
}

// Get loads the current delivery settings. A missing row yields the disabled
// zero configuration rather than an error.
func (s SettingsStore) Get(ctx context.Context) (delivery.Settings, error) {
	var (
		out      delivery.Settings
		areaFees []byte
	)
	err := s.Pool.QueryRow(ctx,
		`SELECT enabled, default_fee, free_threshold, area_fees FROM delivery_settings WHERE id = 1`).
		Scan(&out.Enabled, &out.DefaultFee, &out.FreeDeliveryThreshold, &areaFees)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return delivery.Settings{}, nil
		}
		return delivery.Settings{}, err
	}
	if len(areaFees) > 0 {
		if err := json.Unmarshal(areaFees, &out.AreaFees); err != nil {
			return delivery.Settings{}, fmt.Errorf("decode area fees: %w", err)
		}
	}
	return out, nil
}

// Update upserts the delivery settings row.
func (s SettingsStore) Update(ctx context.Context, in delivery.Settings) error {
	areaFees, err := json.Marshal(in.AreaFees)
	if err != nil {
		return fmt.Errorf("encode area fees: %w", err)
	}
	if in.AreaFees == nil {
		areaFees = []byte("{}")
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO delivery_settings (id, enabled, default_fee, free_threshold, area_fees, updated_at)
		 VALUES (1, $1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE
		 SET enabled = excluded.enabled,
		     default_fee = excluded.default_fee,
		     free_threshold = excluded.free_threshold,
		     area_fees = excluded.area_fees,
		     updated_at = now()`,
		in.Enabled, in.DefaultFee, in.FreeDeliveryThreshold, areaFees)
	return err
}
