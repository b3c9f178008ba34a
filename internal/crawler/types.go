package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// defaultUserAgent mimics a desktop browser so servers answer the way they
// would for a real visitor.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const (
	defaultMaxURLs = 100
	defaultWorkers = 8
	defaultTimeout = 10 * time.Second
)

// Fetcher retrieves a page body for link extraction. The body is returned
// regardless of the response status; only transport-level failures error.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// Prober checks whether a URL answers, without downloading its body.
// Redirects are followed; finalURL is the URL that produced the status.
type Prober interface {
	Probe(ctx context.Context, target string) (status int, finalURL string, err error)
}

// RobotsGate decides whether a URL may be requested at all.
type RobotsGate interface {
	Allowed(ctx context.Context, target *url.URL) bool
}

// Config defines inputs for a scan.
type Config struct {
	// StartURL is the seed. It must carry a scheme and a host.
	StartURL string
	// MaxURLs caps how many URLs are probed. Zero or negative means the
	// default of 100; the budget is always enforced.
	MaxURLs int
	// MaxDepth bounds expansion: the seed is depth 0, pages reached from it
	// depth 1, and so on. Links on a page at MaxDepth are still probed but
	// not expanded. Negative means unlimited.
	MaxDepth int
	// Delay is the politeness pause between probes. The limiter is shared
	// across workers, so it bounds the aggregate request rate. Zero disables
	// throttling.
	Delay time.Duration
	// AllowExternal also probes and expands links whose authority differs
	// from the seed's. Comparison is exact: a subdomain counts as external.
	AllowExternal bool
	// Workers sets the number of concurrent page workers. One worker
	// reproduces strictly sequential behavior.
	Workers int
	// Timeout applies to each fetch and probe request.
	Timeout time.Duration
	// UserAgent overrides the default browser-like header value.
	UserAgent string
	// RespectRobots enables the robots.txt gate. Off by default.
	RespectRobots bool

	// Client is used to build the default fetcher and prober when they are
	// nil. Tests inject fake transports through it.
	Client *http.Client
	// Fetcher and Prober override the HTTP collaborators entirely.
	Fetcher Fetcher
	Prober  Prober
	// Robots overrides the gate built when RespectRobots is set.
	Robots RobotsGate

	// Logger receives structured scan events; nil discards them.
	Logger *slog.Logger
	// Progress, when set, is invoked with every page URL as it is expanded.
	Progress func(string)
}

// Outcome classifies a probed URL.
type Outcome string

const (
	// OutcomeWorking marks a URL that answered with a status below 400.
	OutcomeWorking Outcome = "working"
	// OutcomeBroken marks a URL that answered with a status of 400 or above.
	OutcomeBroken Outcome = "broken"
	// OutcomeError marks a URL whose request failed before any status
	// arrived (DNS, timeout, TLS, refused connection).
	OutcomeError Outcome = "error"
)

// Phase identifies the operation that produced an error record.
type Phase string

const (
	// PhaseCheck tags probe failures.
	PhaseCheck Phase = "check"
	// PhaseExtraction tags page-fetch failures during link extraction.
	PhaseExtraction Phase = "extraction"
)

// LinkRecord is the outcome of one URL. Working and broken records carry the
// status and post-redirect URL; error records carry the failure and phase.
type LinkRecord struct {
	URL        string
	Outcome    Outcome
	StatusCode int
	FinalURL   string
	Error      string
	Phase      Phase
	CheckedAt  time.Time
}

// ScanInfo echoes the configuration a scan ran with.
type ScanInfo struct {
	StartURL       string
	Origin         string
	MaxURLs        int
	MaxDepth       int
	Delay          time.Duration
	SameOriginOnly bool
	Workers        int
}

// Stats aggregates scan counters.
type Stats struct {
	URLsProcessed   int
	WorkingCount    int
	BrokenCount     int
	ErrorCount      int
	VisitedPages    int
	SkippedByRobots int
}

// Result is the complete outcome of a scan. It is plain data: renderers and
// the API serialize it, the engine never does.
type Result struct {
	Scan       ScanInfo
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Stats      Stats
	Working    []LinkRecord
	Broken     []LinkRecord
	Erroring   []LinkRecord
}
