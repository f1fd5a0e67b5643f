// Package scheduler implements the escalation scheduler: for a given
// URL it walks the engine ladder fetchcore.Ladder produces, judging
// each attempt with quality.Sufficient, and remembers the first
// non-default winner per domain so future fetches skip straight to it.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/quality"
)

// Registry resolves an EngineKind to a concrete engine. A nil field
// means that engine is unavailable (e.g. Browser/Unblock when no
// browserless endpoint is configured); Ladder omits the corresponding
// steps in that case, so Fetch never dispatches to a nil engine unless
// the caller explicitly requests it.
type Registry struct {
	Fast    fetchcore.Engine
	Browser fetchcore.Engine
	Stealth fetchcore.Engine
	Unblock fetchcore.Engine
}

func (r *Registry) engineFor(kind fetchcore.EngineKind) fetchcore.Engine {
	switch kind {
	case fetchcore.EngineFast:
		return r.Fast
	case fetchcore.EngineBrowser:
		return r.Browser
	case fetchcore.EngineStealth:
		return r.Stealth
	case fetchcore.EngineUnblock:
		return r.Unblock
	default:
		return nil
	}
}

// Scheduler is the escalation scheduler.
type Scheduler struct {
	registry *Registry
	profiles fetchcore.ProfileStore
	configs  *fetchcore.ConfigStore
	logger   *slog.Logger
}

// New creates a Scheduler. logger defaults to slog.Default() if nil.
func New(registry *Registry, profiles fetchcore.ProfileStore, configs *fetchcore.ConfigStore, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{registry: registry, profiles: profiles, configs: configs, logger: logger}
}

// Fetch resolves req.URL to content, escalating through engines as
// needed. A caller-specified req.Engine bypasses the ladder entirely
// and propagates whatever error that single engine returns.
func (s *Scheduler) Fetch(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := s.configs.Load()

	// A base64 response only makes sense from a raw byte fetch; force
	// the fast engine regardless of what the caller or a cached
	// profile would otherwise pick.
	if req.ResponseType == fetchcore.ResponseBase64 {
		return s.runStep(ctx, req, fetchcore.EscalationStep{Engine: fetchcore.EngineFast, Label: "fast:direct"}, cfg)
	}

	if req.Engine != fetchcore.EngineAuto {
		return s.runExplicit(ctx, req)
	}

	domain, err := fetchcore.ExtractDomain(req.URL)
	if err != nil {
		return nil, err
	}

	if profile, perr := s.profiles.Get(ctx, domain); perr == nil && profile != nil {
		result, err := s.runStep(ctx, req, stepFromProfile(profile), cfg)
		if err != nil {
			return nil, err
		}
		_ = s.profiles.IncrementHit(ctx, domain)
		return result, nil
	}

	return s.escalate(ctx, req, domain, cfg)
}

// runExplicit dispatches directly to the caller's chosen engine,
// applying no ladder step defaults beyond what the request already
// carries. Errors from the engine are returned as-is, not retried.
func (s *Scheduler) runExplicit(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error) {
	engine := s.registry.engineFor(req.Engine)
	if engine == nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "engine %q is not configured", req.Engine)
	}
	return engine.Fetch(ctx, req)
}

// escalate walks the ladder, trying each step until one produces
// sufficient content. A step-level error is logged and the ladder
// continues; running out of steps is EEXHAUSTED.
func (s *Scheduler) escalate(ctx context.Context, req *fetchcore.FetchRequest, domain string, cfg fetchcore.Config) (*fetchcore.FetchResult, error) {
	proxyConfigured := cfg.ProxyURL != ""

	for _, step := range fetchcore.Ladder(cfg) {
		result, err := s.runStep(ctx, req, step, cfg)
		if err != nil {
			s.logger.Warn("escalation step failed", "domain", domain, "step", step.Label, "err", err)
			continue
		}
		if !quality.Sufficient(result.Content, result.StatusCode) {
			s.logger.Debug("escalation step insufficient", "domain", domain, "step", step.Label, "status", result.StatusCode)
			continue
		}

		winner := &fetchcore.DomainProfile{
			Engine:        string(step.Engine),
			RenderDelayMs: step.RenderDelayMs,
			UseProxy:      step.UseProxy,
		}
		if !winner.IsDefaultWinner(proxyConfigured) {
			s.persistWinner(ctx, domain, step, result.StatusCode)
		}
		return result, nil
	}

	return nil, fetchcore.Errorf(fetchcore.EEXHAUSTED, "escalation exhausted for %s", req.URL)
}

// runStep applies one ladder step's parameters onto a copy of req and
// dispatches to the corresponding engine.
func (s *Scheduler) runStep(ctx context.Context, req *fetchcore.FetchRequest, step fetchcore.EscalationStep, cfg fetchcore.Config) (*fetchcore.FetchResult, error) {
	engine := s.registry.engineFor(step.Engine)
	if engine == nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "step %q: engine %q is not configured", step.Label, step.Engine)
	}

	stepReq := *req
	stepReq.RenderJS = step.RenderJS
	stepReq.RenderDelayMs = step.RenderDelayMs
	switch {
	case !step.UseProxy:
		stepReq.Proxy = ""
	case stepReq.Proxy == "":
		stepReq.Proxy = cfg.ProxyURL
	}

	result, err := engine.Fetch(ctx, &stepReq)
	if err != nil {
		return nil, err
	}
	result.EngineUsed = step.Label
	return result, nil
}

// persistWinner upserts the domain profile for a non-default ladder
// win so the next fetch for this domain skips straight to it.
func (s *Scheduler) persistWinner(ctx context.Context, domain string, step fetchcore.EscalationStep, statusCode int) {
	profile := &fetchcore.DomainProfile{
		Domain:         domain,
		Engine:         string(step.Engine),
		RenderJS:       step.RenderJS,
		RenderDelayMs:  step.RenderDelayMs,
		UseProxy:       step.UseProxy,
		LastStatusCode: statusCode,
	}
	if _, err := s.profiles.Upsert(ctx, domain, profile); err != nil {
		s.logger.Warn("persisting domain profile failed", "domain", domain, "err", err)
	}
}

// stepFromProfile converts a stored DomainProfile back into the ladder
// step shape runStep expects.
func stepFromProfile(p *fetchcore.DomainProfile) fetchcore.EscalationStep {
	return fetchcore.EscalationStep{
		Engine:        fetchcore.EngineKind(p.Engine),
		RenderJS:      p.RenderJS,
		RenderDelayMs: p.RenderDelayMs,
		UseProxy:      p.UseProxy,
		Label:         p.Engine,
	}
}
