package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/archfetch/fetchcore"
)

// Compile-time interface verification.
var _ fetchcore.ProfileStore = (*ProfileStore)(nil)

// ProfileStore implements fetchcore.ProfileStore using SQLite.
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get returns the profile for domain, or (nil, nil) if absent.
func (s *ProfileStore) Get(ctx context.Context, domain string) (*fetchcore.DomainProfile, error) {
	p, err := s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT domain, engine, render_js, render_delay_ms, use_proxy, preset, hit_count, last_status_code, created_at, updated_at
		FROM domain_profiles
		WHERE domain = ?
	`, domain))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert inserts a profile on absence, or on conflict overwrites the
// config fields, bumps HitCount, and refreshes UpdatedAt.
func (s *ProfileStore) Upsert(ctx context.Context, domain string, input *fetchcore.DomainProfile) (*fetchcore.DomainProfile, error) {
	input.Domain = domain
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_profiles (domain, engine, render_js, render_delay_ms, use_proxy, preset, hit_count, last_status_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			engine = excluded.engine,
			render_js = excluded.render_js,
			render_delay_ms = excluded.render_delay_ms,
			use_proxy = excluded.use_proxy,
			preset = excluded.preset,
			hit_count = domain_profiles.hit_count + 1,
			last_status_code = excluded.last_status_code,
			updated_at = excluded.updated_at
	`, domain, input.Engine, boolToInt(input.RenderJS), input.RenderDelayMs, boolToInt(input.UseProxy),
		input.Preset, input.LastStatusCode, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, domain)
}

// IncrementHit bumps HitCount and UpdatedAt for a cache hit.
func (s *ProfileStore) IncrementHit(ctx context.Context, domain string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE domain_profiles SET hit_count = hit_count + 1, updated_at = ? WHERE domain = ?
	`, time.Now().UTC().Format(time.RFC3339), domain)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fetchcore.Errorf(fetchcore.ENOTFOUND, "domain profile not found")
	}
	return nil
}

// Delete permanently removes a profile.
func (s *ProfileStore) Delete(ctx context.Context, domain string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM domain_profiles WHERE domain = ?", domain)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fetchcore.Errorf(fetchcore.ENOTFOUND, "domain profile not found")
	}
	return nil
}

// All returns every persisted profile, ordered by domain.
func (s *ProfileStore) All(ctx context.Context) ([]*fetchcore.DomainProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, engine, render_js, render_delay_ms, use_proxy, preset, hit_count, last_status_code, created_at, updated_at
		FROM domain_profiles
		ORDER BY domain ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*fetchcore.DomainProfile
	for rows.Next() {
		p, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows so scanOne/scanRow share
// the same field order.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *ProfileStore) scanOne(row rowScanner) (*fetchcore.DomainProfile, error) {
	return scanProfile(row)
}

func (s *ProfileStore) scanRow(row rowScanner) (*fetchcore.DomainProfile, error) {
	return scanProfile(row)
}

func scanProfile(row rowScanner) (*fetchcore.DomainProfile, error) {
	var p fetchcore.DomainProfile
	var renderJS, useProxy int
	var createdAt, updatedAt string

	if err := row.Scan(&p.Domain, &p.Engine, &renderJS, &p.RenderDelayMs, &useProxy,
		&p.Preset, &p.HitCount, &p.LastStatusCode, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.RenderJS = renderJS != 0
	p.UseProxy = useProxy != 0

	var err error
	p.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
