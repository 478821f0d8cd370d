// Package store persists projects, the active project pointer and the
// preset library in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Simplici0/shopcost/internal/library"
	"github.com/Simplici0/shopcost/internal/pricing"
)

// ErrNotFound is returned when a project id does not exist.
var ErrNotFound = errors.New("project not found")

// ActiveProjectKey is the settings key holding the active project id.
const ActiveProjectKey = "active_project"

// likeEscaper makes LIKE wildcards in a search query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// TimeLayout is a fixed-width UTC layout so stored timestamps sort as text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed project repository.
type Store struct {
	db  *sql.DB
	now func() time.Time

	// mu serialises writers so a read-modify-write in Update cannot
	// interleave with another write from this process.
	mu sync.Mutex
}

// New returns a Store over an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// List returns all projects, most recently created first.
func (s *Store) List(ctx context.Context) ([]pricing.Project, error) {
	return s.Search(ctx, "")
}

// Search returns the projects whose name or client contains query, in the
// same order as List. An empty query matches everything.
func (s *Store) Search(ctx context.Context, query string) ([]pricing.Project, error) {
	search := "%" + likeEscaper.Replace(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT data_json
		FROM projects
		WHERE (? = '' OR name LIKE ? ESCAPE '\' OR client LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, rowid DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]pricing.Project, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p, err := decodeProject(raw)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Get returns the project with id.
func (s *Store) Get(ctx context.Context, id string) (pricing.Project, error) {
	return getProject(ctx, s.db, id)
}

func getProject(ctx context.Context, q queryer, id string) (pricing.Project, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT data_json FROM projects WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Project{}, fmt.Errorf("get project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return pricing.Project{}, fmt.Errorf("query project: %w", err)
	}
	return decodeProject(raw)
}

// Upsert inserts or replaces p and returns it with its timestamps set.
// createdAt is kept from the stored record when the project already exists.
func (s *Store) Upsert(ctx context.Context, p pricing.Project) (pricing.Project, error) {
	if p.ID == "" {
		return pricing.Project{}, errors.New("upsert project: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pricing.Project{}, fmt.Errorf("begin upsert transaction: %w", err)
	}

	p, err = upsertTx(ctx, tx, p, s.now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return pricing.Project{}, err
	}

	if err := tx.Commit(); err != nil {
		return pricing.Project{}, fmt.Errorf("commit upsert transaction: %w", err)
	}
	return p, nil
}

// Update loads the project with id, applies fn and stores the result in a
// single transaction. An error from fn aborts the update and is returned
// as is.
func (s *Store) Update(ctx context.Context, id string, fn func(pricing.Project) (pricing.Project, error)) (pricing.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pricing.Project{}, fmt.Errorf("begin update transaction: %w", err)
	}

	p, err := getProject(ctx, tx, id)
	if err != nil {
		_ = tx.Rollback()
		return pricing.Project{}, err
	}

	next, err := fn(p)
	if err != nil {
		_ = tx.Rollback()
		return pricing.Project{}, err
	}
	next.ID = p.ID

	next, err = upsertTx(ctx, tx, next, s.now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return pricing.Project{}, err
	}

	if err := tx.Commit(); err != nil {
		return pricing.Project{}, fmt.Errorf("commit update transaction: %w", err)
	}
	return next, nil
}

func upsertTx(ctx context.Context, tx *sql.Tx, p pricing.Project, now time.Time) (pricing.Project, error) {
	var createdAt string
	err := tx.QueryRowContext(ctx, `SELECT created_at FROM projects WHERE id = ?`, p.ID).Scan(&createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	case err != nil:
		return p, fmt.Errorf("query project created_at: %w", err)
	default:
		t, perr := time.Parse(TimeLayout, createdAt)
		if perr != nil {
			return p, fmt.Errorf("parse project created_at: %w", perr)
		}
		p.CreatedAt = t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = now

	raw, err := json.Marshal(p)
	if err != nil {
		return p, fmt.Errorf("encode project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, client, data_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			client = excluded.client,
			data_json = excluded.data_json,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.Client, string(raw), p.CreatedAt.Format(TimeLayout), p.UpdatedAt.Format(TimeLayout)); err != nil {
		return p, fmt.Errorf("upsert project: %w", err)
	}

	return p, nil
}

// Delete removes the project. When it was active, the first remaining
// project becomes active, or the pointer is cleared.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}

	if err := deleteTx(ctx, tx, id); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}

func deleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete project %q: %w", id, ErrNotFound)
	}

	active, err := getSetting(ctx, tx, ActiveProjectKey)
	if err != nil {
		return err
	}
	if active != id {
		return nil
	}

	var next string
	err = tx.QueryRowContext(ctx, `SELECT id FROM projects ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query next active project: %w", err)
	}
	return setSetting(ctx, tx, ActiveProjectKey, next)
}

// ActiveID returns the active project id, or "" when none is set.
func (s *Store) ActiveID(ctx context.Context) (string, error) {
	return getSetting(ctx, s.db, ActiveProjectKey)
}

// SetActiveID points the active project at id.
func (s *Store) SetActiveID(ctx context.Context, id string) error {
	return setSetting(ctx, s.db, ActiveProjectKey, id)
}

// EnsureActive guarantees at least one project exists and returns the
// active one. newProject is only called when the store is empty.
func (s *Store) EnsureActive(ctx context.Context, newProject func() pricing.Project) (pricing.Project, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return pricing.Project{}, err
	}

	if len(projects) == 0 {
		p, err := s.Upsert(ctx, newProject())
		if err != nil {
			return pricing.Project{}, err
		}
		if err := s.SetActiveID(ctx, p.ID); err != nil {
			return pricing.Project{}, err
		}
		return p, nil
	}

	activeID, err := s.ActiveID(ctx)
	if err != nil {
		return pricing.Project{}, err
	}

	active := projects[0]
	for _, p := range projects {
		if p.ID == activeID {
			active = p
			break
		}
	}
	if err := s.SetActiveID(ctx, active.ID); err != nil {
		return pricing.Project{}, err
	}
	return active, nil
}

// ListPresets returns the preset library in display order.
func (s *Store) ListPresets(ctx context.Context) ([]library.Preset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, item, unit, cost, qty, waste_pct, sort_order
		FROM library_presets
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query presets: %w", err)
	}
	defer rows.Close()

	presets := make([]library.Preset, 0)
	for rows.Next() {
		var (
			p                   library.Preset
			category            string
			cost, qty, wastePct float64
		)
		if err := rows.Scan(&p.ID, &category, &p.Item, &p.Unit, &cost, &qty, &wastePct, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		p.Category = pricing.Category(category)
		p.Cost = pricing.Number(cost)
		p.Qty = pricing.Number(qty)
		p.WastePct = pricing.Number(wastePct)
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}

	return presets, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getSetting(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query setting %s: %w", key, err)
	}
	return value, nil
}

func setSetting(ctx context.Context, q queryer, key, value string) error {
	if _, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value); err != nil {
		return fmt.Errorf("update setting %s: %w", key, err)
	}
	return nil
}

func decodeProject(raw string) (pricing.Project, error) {
	var p pricing.Project
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return pricing.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return p, nil
}
