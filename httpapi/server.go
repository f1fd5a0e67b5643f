// Package httpapi exposes the fetch core over HTTP using a plain
// net/http.ServeMux with Go 1.22+ method+pattern routing. Every
// handler returns a JSON envelope carrying success and either data or
// an error code/message; EBADREQUEST is the only fetchcore error code
// mapped to a non-200 HTTP status, per the error handling design.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/formatter"
	"github.com/archfetch/fetchcore/obslog"
)

// Scheduler is the subset of scheduler.Scheduler the API surface
// depends on.
type Scheduler interface {
	Fetch(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error)
}

// Orchestrator is the subset of advanced.Orchestrator the API surface
// depends on. Nil means POST /api/fetch/advanced is unavailable.
type Orchestrator interface {
	Fetch(ctx context.Context, req *fetchcore.AdvancedFetchRequest) (*fetchcore.AdvancedFetchResult, error)
}

// Pool is the subset of a browser pool the status endpoint reports on.
// Nil means no pool is configured (status omits browser pool fields).
type Pool interface {
	Status() fetchcore.PoolStatus
}

// Server wires the fetch core's components behind HTTP handlers.
type Server struct {
	scheduler    Scheduler
	orchestrator Orchestrator
	pool         Pool
	profiles     fetchcore.ProfileStore
	configs      *fetchcore.ConfigStore
	formatter    *formatter.Formatter
	logs         *obslog.Handler
	logger       *slog.Logger

	mux *http.ServeMux
}

// New builds a Server and registers every route. orchestrator, pool,
// and logs may be nil; the corresponding functionality degrades
// gracefully (advanced fetch errors EENGINE, status omits the field).
func New(scheduler Scheduler, orchestrator Orchestrator, pool Pool, profiles fetchcore.ProfileStore, configs *fetchcore.ConfigStore, logs *obslog.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		scheduler:    scheduler,
		orchestrator: orchestrator,
		pool:         pool,
		profiles:     profiles,
		configs:      configs,
		formatter:    formatter.New(),
		logs:         logs,
		logger:       logger,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/fetch", s.handleFetch)
	s.mux.HandleFunc("POST /api/fetch/advanced", s.handleFetchAdvanced)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/config", s.handleGetConfig)
	s.mux.HandleFunc("POST /api/config", s.handleSetConfig)
	s.mux.HandleFunc("GET /api/domain-profiles", s.handleListProfiles)
	s.mux.HandleFunc("GET /api/domain-profiles/{domain}", s.handleGetProfile)
	s.mux.HandleFunc("POST /api/domain-profiles", s.handleUpsertProfile)
	s.mux.HandleFunc("DELETE /api/domain-profiles/{domain}", s.handleDeleteProfile)
}

// envelope is the response shape for every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// writeJSON writes v as the "data" field of a success envelope.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: v})
}

// writeError writes err as a failure envelope. EBADREQUEST maps to
// HTTP 400; every other code stays HTTP 200 with success:false, per
// the error handling design's status mapping table.
func writeError(w http.ResponseWriter, err error) {
	code := fetchcore.ErrorCode(err)
	status := http.StatusOK
	if code == fetchcore.EBADREQUEST {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: fetchcore.ErrorMessage(err), Code: code})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchcore.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fetchcore.Errorf(fetchcore.EBADREQUEST, "invalid request body: %v", err))
		return
	}

	result, err := s.scheduler.Fetch(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.formatter.Apply(result, req.Format); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleFetchAdvanced(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		writeError(w, fetchcore.Errorf(fetchcore.EENGINE, "advanced fetch is not configured"))
		return
	}

	var req fetchcore.AdvancedFetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fetchcore.Errorf(fetchcore.EBADREQUEST, "invalid request body: %v", err))
		return
	}

	result, err := s.orchestrator.Fetch(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.formatter.Apply(&result.FetchResult, req.Format); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

type statusResponse struct {
	Config fetchcore.Config   `json:"config"`
	Pool   *fetchcore.PoolStatus `json:"pool,omitempty"`
	Recent []obslog.Entry     `json:"recent,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Config: s.configs.Load()}
	if s.pool != nil {
		status := s.pool.Status()
		resp.Pool = &status
	}
	if s.logs != nil {
		resp.Recent = s.logs.Recent()
	}
	writeJSON(w, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.configs.Load())
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg fetchcore.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, fetchcore.Errorf(fetchcore.EBADREQUEST, "invalid request body: %v", err))
		return
	}
	s.configs.Store(cfg)
	s.logger.Info("config updated", "browserlessUrl", cfg.BrowserlessURL, "defaultEngine", cfg.DefaultEngine)
	writeJSON(w, cfg)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	all, err := s.profiles.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	filter := parseProfileFilter(r)
	filtered := make([]*fetchcore.DomainProfile, 0, len(all))
	for _, p := range all {
		if filter.Domain != nil && p.Domain != *filter.Domain {
			continue
		}
		if filter.Engine != nil && p.Engine != *filter.Engine {
			continue
		}
		filtered = append(filtered, p)
	}

	start := filter.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := len(filtered)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	writeJSON(w, filtered[start:end])
}

func parseProfileFilter(r *http.Request) fetchcore.DomainProfileFilter {
	q := r.URL.Query()
	var filter fetchcore.DomainProfileFilter
	if v := q.Get("domain"); v != "" {
		filter.Domain = &v
	}
	if v := q.Get("engine"); v != "" {
		filter.Engine = &v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	return filter
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")
	profile, err := s.profiles.Get(r.Context(), domain)
	if err != nil {
		writeError(w, err)
		return
	}
	if profile == nil {
		writeError(w, fetchcore.Errorf(fetchcore.ENOTFOUND, "no profile for domain %q", domain))
		return
	}
	writeJSON(w, profile)
}

// handleUpsertProfile applies a partial update onto whatever profile
// already exists for the given domain (or creates one, if Engine is
// set), so the admin surface doesn't require resending the whole
// profile to tweak one field.
func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var update fetchcore.DomainProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, fetchcore.Errorf(fetchcore.EBADREQUEST, "invalid request body: %v", err))
		return
	}
	if update.Domain == "" {
		writeError(w, fetchcore.Errorf(fetchcore.EBADREQUEST, "domain is required"))
		return
	}

	existing, err := s.profiles.Get(r.Context(), update.Domain)
	if err != nil {
		writeError(w, err)
		return
	}
	var base fetchcore.DomainProfile
	if existing != nil {
		base = *existing
	}
	profile := update.Apply(base)

	if err := profile.Validate(); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.profiles.Upsert(r.Context(), profile.Domain, &profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, saved)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")
	if err := s.profiles.Delete(r.Context(), domain); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"domain": domain})
}
