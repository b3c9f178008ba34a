package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"linkscan/internal/config"
	"linkscan/internal/crawler"
	"linkscan/internal/report"
	"linkscan/internal/scanstore"
)

// Runner starts a scan. It exists so tests can substitute the engine.
type Runner func(ctx context.Context, cfg crawler.Config) (*crawler.Result, error)

var (
	// ErrTooManyScans means the concurrent scan gate is saturated.
	ErrTooManyScans = errors.New("too many concurrent scans")
	// ErrUnknownScan means no session or stored scan matches the ID.
	ErrUnknownScan = errors.New("scan ID not found")
	// ErrScanRunning means results were requested before the scan finished.
	ErrScanRunning = errors.New("scan still running")
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusCancelled = "cancelled"
	statusFailed    = "failed"
)

// session tracks one in-flight or finished scan.
type session struct {
	id        string
	url       string
	cfg       crawler.Config
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time

	mu      sync.Mutex
	status  string
	visited int
	result  *crawler.Result
	failure error
}

func (s *session) snapshot() (status string, visited int, result *crawler.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.visited, s.result
}

// manager owns the session table and the concurrency gate, and moves
// finished scans into the store.
type manager struct {
	logger      *slog.Logger
	store       *scanstore.Store
	downloadDir string
	defaults    config.ScanConfig
	maxRunning  int
	runner      Runner
	baseCtx     context.Context

	mu       sync.Mutex
	sessions map[string]*session
	running  int
}

func newManager(baseCtx context.Context, logger *slog.Logger, store *scanstore.Store, downloadDir string, defaults config.ScanConfig, maxRunning int, runner Runner) *manager {
	if runner == nil {
		runner = crawler.Crawl
	}
	if maxRunning <= 0 {
		maxRunning = 1
	}
	return &manager{
		logger:      logger,
		store:       store,
		downloadDir: downloadDir,
		defaults:    defaults,
		maxRunning:  maxRunning,
		runner:      runner,
		baseCtx:     baseCtx,
		sessions:    make(map[string]*session),
	}
}

// start validates req, applies defaults, and launches the scan.
func (m *manager) start(req ScanRequest) (*session, error) {
	cfg := m.buildConfig(req)

	m.mu.Lock()
	if m.running >= m.maxRunning {
		m.mu.Unlock()
		return nil, ErrTooManyScans
	}
	m.running++
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(m.baseCtx)
	sess := &session{
		id:        scanstore.NewID(),
		url:       req.URL,
		cfg:       cfg,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
		status:    statusRunning,
	}
	sess.cfg.Progress = func(string) {
		sess.mu.Lock()
		sess.visited++
		sess.mu.Unlock()
	}

	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	go m.run(ctx, sess)
	return sess, nil
}

func (m *manager) run(ctx context.Context, sess *session) {
	defer func() {
		m.mu.Lock()
		m.running--
		m.mu.Unlock()
		close(sess.done)
	}()

	res, err := m.runner(ctx, sess.cfg)

	status := statusCompleted
	switch {
	case err != nil:
		status = statusFailed
	case errors.Is(ctx.Err(), context.Canceled):
		status = statusCancelled
	}

	record := StoredScan{ScanID: sess.id, URL: sess.url, Status: status}
	if err != nil {
		record.Error = err.Error()
		m.logger.Error("scan failed", "scan_id", sess.id, "url", sess.url, "error", err)
	}
	if res != nil {
		record.Report = report.Build(res)
		if m.downloadDir != "" {
			path, dlErr := scanstore.WriteDownload(m.downloadDir, sess.url, record.Report, res.FinishedAt)
			if dlErr != nil {
				m.logger.Error("download write failed", "scan_id", sess.id, "error", dlErr)
			} else {
				record.ResultFile = path
			}
		}
	}
	if storeErr := m.store.Put(sess.id, record); storeErr != nil {
		m.logger.Error("scan persist failed", "scan_id", sess.id, "error", storeErr)
	}

	// Persist before flipping the status so a client that sees the scan as
	// settled can always fetch its results.
	sess.mu.Lock()
	sess.status = status
	sess.result = res
	sess.failure = err
	sess.mu.Unlock()

	m.logger.Info("scan settled", "scan_id", sess.id, "url", sess.url, "status", status)
}

// buildConfig maps a request onto the engine config, with server defaults
// for every omitted field.
func (m *manager) buildConfig(req ScanRequest) crawler.Config {
	cfg := crawler.Config{
		StartURL:      req.URL,
		MaxURLs:       m.defaults.MaxURLs,
		MaxDepth:      m.defaults.MaxDepth,
		Delay:         m.defaults.Delay.Duration,
		AllowExternal: !m.defaults.SameDomainOnly,
		Workers:       m.defaults.Workers,
		Timeout:       m.defaults.Timeout.Duration,
		UserAgent:     m.defaults.UserAgent,
		RespectRobots: m.defaults.RespectRobots,
		Logger:        m.logger,
	}
	if req.MaxURLs != nil {
		cfg.MaxURLs = *req.MaxURLs
	}
	if req.MaxDepth != nil {
		cfg.MaxDepth = *req.MaxDepth
	}
	if req.Delay != nil {
		cfg.Delay = time.Duration(*req.Delay * float64(time.Second))
	}
	if req.SameDomainOnly != nil {
		cfg.AllowExternal = !*req.SameDomainOnly
	}
	return cfg
}

func (m *manager) get(id string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}
