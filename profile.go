package fetchcore

import (
	"context"
	"strings"
	"time"
)

// DomainProfile is the persisted record of the escalation ladder step
// that worked last time for a given domain.
type DomainProfile struct {
	Domain         string    `json:"domain"`
	Engine         string    `json:"engine"`
	RenderJS       bool      `json:"renderJs"`
	RenderDelayMs  int       `json:"renderDelayMs"`
	UseProxy       bool      `json:"useProxy"`
	Preset         string    `json:"preset"`
	HitCount       int       `json:"hitCount"`
	LastStatusCode int       `json:"lastStatusCode"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate returns an error if the profile contains invalid fields.
func (p *DomainProfile) Validate() error {
	if p.Domain == "" {
		return Errorf(EINVALID, "domain profile domain required")
	}
	switch p.Engine {
	case string(EngineFast), string(EngineBrowser), string(EngineStealth), string(EngineUnblock):
	default:
		return Errorf(EINVALID, "domain profile engine must be one of fast|browser|stealth|unblock")
	}
	return nil
}

// IsDefaultWinner reports whether the profile matches the scheduler's
// implicit starting point — a win that therefore never needs writing.
// See DESIGN.md for the proxy-configured vs. proxy-absent refinement
// of this rule.
func (p *DomainProfile) IsDefaultWinner(proxyConfigured bool) bool {
	if p.Engine != string(EngineFast) || p.RenderDelayMs != 0 {
		return false
	}
	if proxyConfigured {
		return p.UseProxy
	}
	return !p.UseProxy
}

// ProfileStore persists the domain -> winning-config mapping described
// in the Domain Profile Store component.
type ProfileStore interface {
	// Get returns the profile for domain, or (nil, nil) if absent.
	Get(ctx context.Context, domain string) (*DomainProfile, error)

	// Upsert inserts a profile on absence, or on conflict overwrites
	// the config fields, bumps HitCount, and refreshes UpdatedAt.
	Upsert(ctx context.Context, domain string, input *DomainProfile) (*DomainProfile, error)

	// IncrementHit bumps HitCount and UpdatedAt for a cache hit.
	IncrementHit(ctx context.Context, domain string) error

	// Delete permanently removes a profile. Returns ENOTFOUND if the
	// profile does not exist.
	Delete(ctx context.Context, domain string) error

	// All returns every persisted profile, ordered by domain.
	All(ctx context.Context) ([]*DomainProfile, error)
}

// DomainProfileUpdate represents partial-update fields for the admin
// CRUD surface, mirroring the teacher's *Update-struct convention.
// Domain identifies the profile to apply the update to (or to create,
// if Engine is also set and no profile exists yet for it).
type DomainProfileUpdate struct {
	Domain        string  `json:"domain"`
	Engine        *string `json:"engine"`
	RenderJS      *bool   `json:"renderJs"`
	RenderDelayMs *int    `json:"renderDelayMs"`
	UseProxy      *bool   `json:"useProxy"`
	Preset        *string `json:"preset"`
}

// Apply merges u's set fields onto base, returning the resulting
// profile. base may be the zero value for a brand-new profile, in
// which case Engine must be set or the result fails Validate.
func (u *DomainProfileUpdate) Apply(base DomainProfile) DomainProfile {
	base.Domain = u.Domain
	if u.Engine != nil {
		base.Engine = *u.Engine
	}
	if u.RenderJS != nil {
		base.RenderJS = *u.RenderJS
	}
	if u.RenderDelayMs != nil {
		base.RenderDelayMs = *u.RenderDelayMs
	}
	if u.UseProxy != nil {
		base.UseProxy = *u.UseProxy
	}
	if u.Preset != nil {
		base.Preset = *u.Preset
	}
	return base
}

// DomainProfileFilter filters the admin listing endpoint.
type DomainProfileFilter struct {
	Domain *string
	Engine *string
	Offset int
	Limit  int
}

// CanonicalDomain lowercases hostname and strips a single leading
// "www." prefix. Callers pass a bare hostname, with any port already
// removed (see ExtractDomain for the URL-aware variant).
func CanonicalDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	return host
}
