package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"linkscan/internal/config"
	"linkscan/internal/crawler"
	"linkscan/internal/scanstore"
)

func sampleResult() *crawler.Result {
	now := time.Now().UTC()
	return &crawler.Result{
		Scan: crawler.ScanInfo{
			StartURL:       "https://example.com",
			Origin:         "example.com",
			MaxURLs:        100,
			MaxDepth:       2,
			SameOriginOnly: true,
		},
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		Duration:   time.Second,
		Stats:      crawler.Stats{URLsProcessed: 1, WorkingCount: 1, VisitedPages: 1},
		Working: []crawler.LinkRecord{{
			URL:        "https://example.com",
			Outcome:    crawler.OutcomeWorking,
			StatusCode: 200,
			FinalURL:   "https://example.com",
			CheckedAt:  now,
		}},
	}
}

// blockingRunner stands in for the engine: it parks until released or
// cancelled, then hands back a canned result.
type blockingRunner struct {
	release chan struct{}
	result  *crawler.Result
}

func (r *blockingRunner) run(ctx context.Context, _ crawler.Config) (*crawler.Result, error) {
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	return r.result, nil
}

func newTestServer(t *testing.T, runner Runner, maxScans int) *Server {
	t.Helper()
	store, err := scanstore.Open("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return NewServer(Options{
		Store:              store,
		ScanDefaults:       config.Default().Scan,
		MaxConcurrentScans: maxScans,
		Runner:             runner,
	})
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func startScan(t *testing.T, srv *Server) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/scan", ScanRequest{URL: "https://example.com"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST /scan status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var resp StartResponse
	decodeBody(t, rec, &resp)
	if resp.ScanID == "" {
		t.Fatal("scan id missing from start response")
	}
	if resp.Status != "running" {
		t.Fatalf("start status = %q, want running", resp.Status)
	}
	return resp.ScanID
}

func waitForStatus(t *testing.T, srv *Server, id, want string) StatusResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var status StatusResponse
	for time.Now().Before(deadline) {
		rec := do(t, srv, http.MethodGet, "/status/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /status status = %d: %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &status)
		if status.Status == want {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("scan %s never reached status %q, last %q", id, want, status.Status)
	return status
}

func TestScanLifecycle(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{release: make(chan struct{}), result: sampleResult()}
	srv := newTestServer(t, runner.run, 2)

	id := startScan(t, srv)

	status := waitForStatus(t, srv, id, "running")
	if !status.SameDomainOnly {
		t.Fatalf("expected default same-domain mode, got %+v", status)
	}

	// Results are not available while the scan runs.
	if rec := do(t, srv, http.MethodGet, "/results/"+id, nil); rec.Code != http.StatusConflict {
		t.Fatalf("GET /results while running = %d, want 409", rec.Code)
	}

	close(runner.release)
	final := waitForStatus(t, srv, id, "completed")
	if final.URLsProcessed != 1 || final.WorkingLinks != 1 {
		t.Fatalf("unexpected final counters: %+v", final)
	}

	rec := do(t, srv, http.MethodGet, "/results/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /results = %d: %s", rec.Code, rec.Body.String())
	}
	var doc struct {
		Statistics struct {
			TotalURLsProcessed int `json:"total_urls_processed"`
		} `json:"statistics"`
	}
	decodeBody(t, rec, &doc)
	if doc.Statistics.TotalURLsProcessed != 1 {
		t.Fatalf("report statistics missing: %s", rec.Body.String())
	}
}

func TestScanCancellation(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{release: make(chan struct{}), result: sampleResult()}
	srv := newTestServer(t, runner.run, 2)

	id := startScan(t, srv)
	waitForStatus(t, srv, id, "running")

	rec := do(t, srv, http.MethodPost, "/scan/"+id+"/cancel", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST cancel = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	waitForStatus(t, srv, id, "cancelled")

	// Cancelling again is a no-op once the scan settled.
	rec = do(t, srv, http.MethodPost, "/scan/"+id+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat cancel = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestScanRequestValidation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, 1)

	rec := do(t, srv, http.MethodPost, "/scan", ScanRequest{URL: "not-a-url"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid URL = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader([]byte("{broken")))
	recorder := httptest.NewRecorder()
	srv.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d, want 400", recorder.Code)
	}
}

func TestUnknownScanID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, 1)

	for _, path := range []string{"/status/nope", "/results/nope"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s = %d, want 404", path, rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Detail != "Scan ID not found" {
			t.Fatalf("detail = %q, want Scan ID not found", resp.Detail)
		}
	}
	if rec := do(t, srv, http.MethodPost, "/scan/nope/cancel", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("cancel unknown = %d, want 404", rec.Code)
	}
}

func TestConcurrentScanGate(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{release: make(chan struct{}), result: sampleResult()}
	srv := newTestServer(t, runner.run, 1)

	startScan(t, srv)

	rec := do(t, srv, http.MethodPost, "/scan", ScanRequest{URL: "https://example.com/two"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second scan = %d, want 429", rec.Code)
	}

	close(runner.release)
}

func TestCompletedScansSurviveRestart(t *testing.T) {
	t.Parallel()

	storePath := filepath.Join(t.TempDir(), "scan_db.json")
	store, err := scanstore.Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	runner := &blockingRunner{release: make(chan struct{}), result: sampleResult()}
	close(runner.release)
	srv := NewServer(Options{
		Store:              store,
		ScanDefaults:       config.Default().Scan,
		MaxConcurrentScans: 1,
		Runner:             runner.run,
	})
	id := startScan(t, srv)
	waitForStatus(t, srv, id, "completed")

	reopened, err := scanstore.Open(storePath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	restarted := NewServer(Options{
		Store:              reopened,
		ScanDefaults:       config.Default().Scan,
		MaxConcurrentScans: 1,
	})

	rec := do(t, restarted, http.MethodGet, "/status/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status after restart = %d: %s", rec.Code, rec.Body.String())
	}
	var status StatusResponse
	decodeBody(t, rec, &status)
	if status.Status != "completed" {
		t.Fatalf("status after restart = %q, want completed", status.Status)
	}

	if rec := do(t, restarted, http.MethodGet, "/results/"+id, nil); rec.Code != http.StatusOK {
		t.Fatalf("results after restart = %d: %s", rec.Code, rec.Body.String())
	}
}
