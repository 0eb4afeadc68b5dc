// Package api is the thin HTTP surface over the adjudication engine: upload
// a file, get decisions and audit records back, inspect or replace the
// configuration. The engine does all the work; handlers only translate.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fund-adjudicator/internal/config"
	"fund-adjudicator/internal/domain"
	"fund-adjudicator/internal/engine"
	"fund-adjudicator/internal/gateway"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adjudicator_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adjudicator_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "endpoint"})

	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adjudicator_decisions_total",
		Help: "Adjudication decisions by outcome",
	}, []string{"outcome"})

	declineReasonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adjudicator_decline_reasons_total",
		Help: "Decline reasons observed",
	}, []string{"reason"})
)

// Handler serves the API over one live adjudicator. Replacing the
// configuration starts a new run with fresh ledgers; the mutex serializes
// uploads against that swap so no request straddles two runs.
type Handler struct {
	mu  sync.Mutex
	cfg config.Configuration
	adj *engine.Adjudicator
}

// NewHandler creates a handler starting a run with the given configuration.
func NewHandler(cfg config.Configuration) *Handler {
	return &Handler{cfg: cfg, adj: engine.New(cfg)}
}

// Router builds the HTTP routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/process", h.ProcessUpload).Methods(http.MethodPost)
	apiV1.HandleFunc("/config", h.GetConfig).Methods(http.MethodGet)
	apiV1.HandleFunc("/config", h.UpdateConfig).Methods(http.MethodPost)
	apiV1.HandleFunc("/config/reset", h.ResetConfig).Methods(http.MethodPost)
	apiV1.HandleFunc("/statistics", h.Statistics).Methods(http.MethodGet)
	return r
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "fund-adjudicator"}, "GET", "/health")
}

// processResponse is the body returned for an upload: the decision stream,
// the audit stream, and the run statistics after processing.
type processResponse struct {
	Success    bool                 `json:"success"`
	Decisions  []domain.Decision    `json:"decisions"`
	Audit      []domain.AuditRecord `json:"audit"`
	Summary    engine.Summary       `json:"summary"`
	Statistics map[string]any       `json:"statistics"`
}

// ProcessUpload adjudicates an uploaded JSONL or CSV file against the
// current run and responds with decisions, audit records, and statistics.
func (h *Handler) ProcessUpload(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/process"))
	defer timer.ObserveDuration()

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing file upload", "POST", "/process")
		return
	}
	defer file.Close()

	decisions := &decisionBuffer{records: []domain.Decision{}}
	audits := &auditBuffer{records: []domain.AuditRecord{}}

	h.mu.Lock()
	summary, err := h.adj.Run(r.Context(), gateway.NewReaderSource(file), decisions, audits)
	stats := h.adj.Statistics()
	h.mu.Unlock()

	for _, a := range audits.records {
		observeDecision(a)
	}

	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "POST", "/process")
		return
	}

	h.respondJSON(w, http.StatusOK, processResponse{
		Success:    true,
		Decisions:  decisions.records,
		Audit:      audits.records,
		Summary:    summary,
		Statistics: stats,
	}, "POST", "/process")
}

// GetConfig returns the configuration of the current run.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	snapshot := h.cfg.Snapshot()
	h.mu.Unlock()
	h.respondJSON(w, http.StatusOK, snapshot, "GET", "/config")
}

// UpdateConfig replaces the configuration and starts a new run with fresh
// ledgers. Historical audit output stays interpretable because every verdict
// embeds the limits that were in effect.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "unreadable request body", "POST", "/config")
		return
	}

	cfg, err := config.ParseJSON(body)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error(), "POST", "/config")
		return
	}

	h.mu.Lock()
	h.cfg = cfg
	h.adj = engine.New(cfg)
	h.mu.Unlock()

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"config":  cfg.Snapshot(),
	}, "POST", "/config")
}

// ResetConfig restores the default configuration, also starting a new run.
func (h *Handler) ResetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := config.Default()

	h.mu.Lock()
	h.cfg = cfg
	h.adj = engine.New(cfg)
	h.mu.Unlock()

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"config":  cfg.Snapshot(),
	}, "POST", "/config/reset")
}

// Statistics reports the current run's totals and configuration.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	stats := h.adj.Statistics()
	h.mu.Unlock()
	h.respondJSON(w, http.StatusOK, stats, "GET", "/statistics")
}

func observeDecision(a domain.AuditRecord) {
	if a.Accepted {
		decisionsTotal.WithLabelValues("accepted").Inc()
		return
	}
	decisionsTotal.WithLabelValues("declined").Inc()
	for _, reason := range a.FailedReasons() {
		declineReasonsTotal.WithLabelValues(reason).Inc()
	}
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}

// In-memory sinks backing the synchronous API response.
type decisionBuffer struct {
	records []domain.Decision
}

func (b *decisionBuffer) WriteDecision(d domain.Decision) error {
	b.records = append(b.records, d)
	return nil
}

type auditBuffer struct {
	records []domain.AuditRecord
}

func (b *auditBuffer) WriteAudit(a domain.AuditRecord) error {
	b.records = append(b.records, a)
	return nil
}
