package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/shopcost/internal/library"
	"github.com/Simplici0/shopcost/internal/pricing"
	"github.com/Simplici0/shopcost/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	Presets    []library.Preset
	NewProject func() pricing.Project
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, p := range cfg.Presets {
		if err := ensurePreset(ctx, tx, p, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	if cfg.NewProject != nil {
		if err := ensureProject(ctx, tx, cfg.NewProject, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensurePreset(ctx context.Context, tx *sql.Tx, p library.Preset, stats *Stats) error {
	var id int64
	var sortOrder int
	err := tx.QueryRowContext(ctx, `
		SELECT id, sort_order
		FROM library_presets
		WHERE category = ? AND item = ?
		LIMIT 1
	`, string(p.Category), p.Item).Scan(&id, &sortOrder)
	if err == nil {
		if sortOrder == p.SortOrder {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE library_presets SET sort_order = ? WHERE id = ?`, p.SortOrder, id); err != nil {
			return fmt.Errorf("update preset %q order: %w", p.Item, err)
		}
		stats.Updates++
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check preset %q existence: %w", p.Item, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO library_presets (category, item, unit, cost, qty, waste_pct, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(p.Category), p.Item, p.Unit, p.Cost.Float(), p.Qty.Float(), p.WastePct.Float(), p.SortOrder); err != nil {
		return fmt.Errorf("insert preset %q: %w", p.Item, err)
	}
	stats.Inserts++
	return nil
}

func ensureProject(ctx context.Context, tx *sql.Tx, newProject func() pricing.Project, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM projects LIMIT 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check project existence: %w", err)
	}
	if exists {
		return nil
	}

	p := newProject()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode default project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, client, data_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Client, string(raw), now.Format(store.TimeLayout), now.Format(store.TimeLayout)); err != nil {
		return fmt.Errorf("insert default project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, store.ActiveProjectKey, p.ID); err != nil {
		return fmt.Errorf("set active project: %w", err)
	}
	stats.Inserts++
	return nil
}
