// Package api exposes scans over HTTP: start, watch, cancel, and fetch
// results, with finished scans persisted across restarts.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"linkscan/internal/config"
	"linkscan/internal/crawler"
	"linkscan/internal/scanstore"
)

// Options wires a Server together.
type Options struct {
	// Logger receives request and scan lifecycle events; nil discards.
	Logger *slog.Logger
	// Store persists finished scans. Required.
	Store *scanstore.Store
	// DownloadDir receives standalone per-scan report files; empty disables.
	DownloadDir string
	// ScanDefaults fill request fields the caller omitted.
	ScanDefaults config.ScanConfig
	// MaxConcurrentScans gates how many scans may run at once.
	MaxConcurrentScans int
	// Runner overrides the engine entry point; nil means the real one.
	Runner Runner
	// BaseContext parents every scan context, so shutting the server down
	// cancels in-flight scans. nil means context.Background.
	BaseContext context.Context
}

// detailUnknownScan is the wire detail for unknown scan IDs, matching
// what clients of the original service expect.
const detailUnknownScan = "Scan ID not found"

// Server routes scan requests to the session manager.
type Server struct {
	logger  *slog.Logger
	store   *scanstore.Store
	manager *manager
	router  *mux.Router
}

// NewServer builds the HTTP surface.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	baseCtx := opts.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	s := &Server{
		logger: logger,
		store:  opts.Store,
		manager: newManager(baseCtx, logger, opts.Store, opts.DownloadDir,
			opts.ScanDefaults, opts.MaxConcurrentScans, opts.Runner),
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/scan", s.handleStartScan).Methods(http.MethodPost)
	s.router.HandleFunc("/scan/{id}/cancel", s.handleCancelScan).Methods(http.MethodPost)
	s.router.HandleFunc("/status/{id}", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/results/{id}", s.handleResults).Methods(http.MethodGet)
	s.router.HandleFunc("/scans", s.handleListScans).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Use(s.logRequests)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := crawler.ValidateSeed(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.manager.start(req)
	if errors.Is(err, ErrTooManyScans) {
		writeError(w, http.StatusTooManyRequests, ErrTooManyScans.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, StartResponse{
		Message: "scan started",
		ScanID:  sess.id,
		Status:  statusRunning,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if sess, ok := s.manager.get(id); ok {
		writeJSON(w, http.StatusOK, statusFromSession(sess))
		return
	}

	record, err := s.loadStored(id)
	if errors.Is(err, scanstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, detailUnknownScan)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusFromRecord(record))
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if sess, ok := s.manager.get(id); ok {
		if status, _, _ := sess.snapshot(); status == statusRunning {
			writeError(w, http.StatusConflict, ErrScanRunning.Error())
			return
		}
	}

	record, err := s.loadStored(id)
	if errors.Is(err, scanstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, detailUnknownScan)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record.Status == statusFailed {
		writeError(w, http.StatusConflict, record.Error)
		return
	}
	writeJSON(w, http.StatusOK, record.Report)
}

func (s *Server) handleCancelScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sess, ok := s.manager.get(id)
	if !ok {
		if _, err := s.loadStored(id); err == nil {
			writeJSON(w, http.StatusOK, messageResponse{
				Message: "scan already finished",
				ScanID:  id,
			})
			return
		}
		writeError(w, http.StatusNotFound, detailUnknownScan)
		return
	}

	status, _, _ := sess.snapshot()
	if status != statusRunning {
		writeJSON(w, http.StatusOK, messageResponse{
			Message: "scan already finished",
			ScanID:  id,
			Status:  status,
		})
		return
	}

	sess.cancel()
	writeJSON(w, http.StatusAccepted, messageResponse{
		Message: "cancellation requested",
		ScanID:  id,
		Status:  statusRunning,
	})
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	type scanListEntry struct {
		ScanID string `json:"scan_id"`
		URL    string `json:"url"`
		Status string `json:"status"`
	}

	entries := make(map[string]scanListEntry)
	for _, id := range s.store.IDs() {
		record, err := s.loadStored(id)
		if err != nil {
			continue
		}
		entries[id] = scanListEntry{ScanID: id, URL: record.URL, Status: record.Status}
	}
	s.manager.mu.Lock()
	for id, sess := range s.manager.sessions {
		status, _, _ := sess.snapshot()
		entries[id] = scanListEntry{ScanID: id, URL: sess.url, Status: status}
	}
	s.manager.mu.Unlock()

	list := make([]scanListEntry, 0, len(entries))
	for _, entry := range entries {
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ScanID < list[j].ScanID })

	writeJSON(w, http.StatusOK, map[string]any{"scans": list})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loadStored(id string) (StoredScan, error) {
	payload, err := s.store.Get(id)
	if err != nil {
		return StoredScan{}, err
	}
	var record StoredScan
	if err := json.Unmarshal(payload, &record); err != nil {
		return StoredScan{}, err
	}
	return record, nil
}

func statusFromSession(sess *session) StatusResponse {
	status, visited, result := sess.snapshot()
	resp := StatusResponse{
		ScanID:         sess.id,
		Status:         status,
		URL:            sess.url,
		PagesVisited:   visited,
		MaxURLs:        sess.cfg.MaxURLs,
		MaxDepth:       sess.cfg.MaxDepth,
		Delay:          sess.cfg.Delay.Seconds(),
		SameDomainOnly: !sess.cfg.AllowExternal,
	}
	if result != nil {
		resp.URLsProcessed = result.Stats.URLsProcessed
		resp.WorkingLinks = result.Stats.WorkingCount
		resp.BrokenLinks = result.Stats.BrokenCount
		resp.ErrorLinks = result.Stats.ErrorCount
		resp.PagesVisited = result.Stats.VisitedPages
	}
	return resp
}

func statusFromRecord(record StoredScan) StatusResponse {
	info := record.Report.ScanInfo
	stats := record.Report.Statistics
	return StatusResponse{
		ScanID:         record.ScanID,
		Status:         record.Status,
		URL:            record.URL,
		URLsProcessed:  stats.TotalURLsProcessed,
		WorkingLinks:   stats.WorkingLinksCount,
		BrokenLinks:    stats.BrokenLinksCount,
		ErrorLinks:     stats.ErrorLinksCount,
		PagesVisited:   stats.VisitedPagesCount,
		MaxURLs:        info.MaxURLs,
		MaxDepth:       info.MaxDepth,
		Delay:          info.Delay,
		SameDomainOnly: info.SameDomainOnly,
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
