// Package httpapi exposes the detection service over HTTP.
package httpapi

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"scamguard/internal/config"
	"scamguard/internal/scam"
	"scamguard/internal/store"
)

// Analyzer is the hybrid detection entry point.
type Analyzer interface {
	Analyze(ctx context.Context, text string) *scam.Analysis
}

// Storage is the subset of the store the API needs.
type Storage interface {
	InsertMessage(ctx context.Context, msg store.Message) (string, error)
	InsertAnalysis(ctx context.Context, messageID string, a scam.Analysis) (string, error)
	GetAnalysis(ctx context.Context, analysisID string) (store.AnalysisRecord, error)
	GetAnalysisByMessage(ctx context.Context, messageID string) (store.AnalysisRecord, error)
	CountByScamType(ctx context.Context) (map[scam.Type]int, error)
}

// Jobs is the queue surface for async analysis.
type Jobs interface {
	PushAnalysisJob(ctx context.Context, messageID string) error
	Depth(ctx context.Context) (int64, error)
}

type Handler struct {
	Config   config.Config
	Store    Storage
	Queue    Jobs
	Detector Analyzer
}

func NewHandler(cfg config.Config, st Storage, q Jobs, det Analyzer) *Handler {
	return &Handler{Config: cfg, Store: st, Queue: q, Detector: det}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/analyze", h.handleAnalyze)
	mux.HandleFunc("/v1/analyze/async", h.handleAnalyzeAsync)
	mux.HandleFunc("/v1/analyses/", h.handleGetAnalysis)
	mux.HandleFunc("/v1/messages/", h.handleMessageAnalysis)
	mux.HandleFunc("/v1/stats", h.handleStats)
}

type analyzeRequest struct {
	Source string `json:"source"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	req, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	msgID, err := h.Store.InsertMessage(ctx, store.Message{Source: req.Source, Sender: req.Sender, Text: req.Text})
	if err != nil {
		http.Error(w, "store message: "+err.Error(), http.StatusInternalServerError)
		return
	}

	analysis := h.Detector.Analyze(ctx, req.Text)
	if analysis == nil {
		http.Error(w, "no verdict", http.StatusBadGateway)
		return
	}
	analysisID, err := h.Store.InsertAnalysis(ctx, msgID, *analysis)
	if err != nil {
		http.Error(w, "store analysis: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message_id":  msgID,
		"analysis_id": analysisID,
		"analysis":    analysis,
	})
}

func (h *Handler) handleAnalyzeAsync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if h.Queue == nil {
		http.Error(w, "queue not configured", http.StatusServiceUnavailable)
		return
	}
	req, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	msgID, err := h.Store.InsertMessage(ctx, store.Message{Source: req.Source, Sender: req.Sender, Text: req.Text})
	if err != nil {
		http.Error(w, "store message: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.Queue.PushAnalysisJob(ctx, msgID); err != nil {
		http.Error(w, "enqueue: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"message_id": msgID})
}

func (h *Handler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/analyses/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "missing analysis id", http.StatusBadRequest)
		return
	}
	rec, err := h.Store.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeAnalysisRecord(w, rec)
}

func (h *Handler) handleMessageAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/messages/")
	msgID, tail, found := strings.Cut(rest, "/")
	if !found || tail != "analysis" || msgID == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	rec, err := h.Store.GetAnalysisByMessage(r.Context(), msgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeAnalysisRecord(w, rec)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	ctx := r.Context()
	counts, err := h.Store.CountByScamType(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var depth int64
	if h.Queue != nil {
		depth, _ = h.Queue.Depth(ctx)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"by_scam_type": counts,
		"queue_depth":  depth,
	})
}

func (h *Handler) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, bool) {
	var req analyzeRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	if valid, errs := validateAnalyzeRequest(body); !valid {
		http.Error(w, "invalid request: "+strings.Join(errs, "; "), http.StatusBadRequest)
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "decode body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// authorized applies the configured API key. Dev mode without a key leaves
// the API open, matching local-first operation.
func (h *Handler) authorized(r *http.Request) bool {
	key := h.Config.Security.APIKey
	if key == "" {
		return true
	}
	presented := r.Header.Get("X-API-Key")
	if presented == "" {
		auth := r.Header.Get("Authorization")
		presented = strings.TrimPrefix(auth, "Bearer ")
	}
	if presented == "" {
		return false
	}
	want := sha256.Sum256([]byte(key))
	got := sha256.Sum256([]byte(presented))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

func writeAnalysisRecord(w http.ResponseWriter, rec store.AnalysisRecord) {
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis_id": rec.ID,
		"message_id":  rec.MessageID,
		"analysis":    rec.Analysis,
		"created_at":  rec.CreatedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
