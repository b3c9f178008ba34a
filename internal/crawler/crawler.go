package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/time/rate"

	"linkscan/internal/fetcher"
	"linkscan/internal/robots"
)

// scan holds the state of one traversal. The URL sets and counters live
// behind mu, the outcome lists behind reportMu; workers never touch either
// without the lock.
type scan struct {
	fetch    Fetcher
	probe    Prober
	robots   RobotsGate
	logger   *slog.Logger
	progress func(string)

	origin        string
	allowExternal bool
	maxURLs       int
	maxDepth      int
	info          ScanInfo

	limiter *rate.Limiter

	jobs chan pageJob
	wg   sync.WaitGroup

	mu            sync.Mutex
	visited       mapset.Set[string]
	checked       mapset.Set[string]
	processed     int
	skippedRobots int

	reportMu sync.Mutex
	working  []LinkRecord
	broken   []LinkRecord
	erroring []LinkRecord
}

// Crawl runs a scan described by cfg and returns its result. The error
// return covers setup problems only; once the traversal starts, failures
// turn into outcome records. Cancelling ctx stops new requests and yields
// whatever accumulated, still as a well-formed Result.
func Crawl(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	seed, err := parseSeed(cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}

	client := cfg.Client
	if client == nil {
		client = fetcher.NewHTTPClient(cfg.Timeout)
	}

	pageClient := fetcher.New(fetcher.Options{
		Client:    client,
		UserAgent: cfg.UserAgent,
	})
	fetch := cfg.Fetcher
	if fetch == nil {
		fetch = pageClient
	}
	probe := cfg.Prober
	if probe == nil {
		probe = pageClient
	}

	gate := cfg.Robots
	if gate == nil && cfg.RespectRobots {
		gate = robots.NewAgent(client, cfg.UserAgent)
	}

	s := &scan{
		fetch:         fetch,
		probe:         probe,
		robots:        gate,
		logger:        cfg.Logger,
		progress:      cfg.Progress,
		origin:        seed.Host,
		allowExternal: cfg.AllowExternal,
		maxURLs:       cfg.MaxURLs,
		maxDepth:      cfg.MaxDepth,
		limiter:       newThrottle(cfg.Delay),
		jobs:          make(chan pageJob, cfg.Workers*2),
		visited:       mapset.NewThreadUnsafeSet[string](),
		checked:       mapset.NewThreadUnsafeSet[string](),
	}
	s.info = ScanInfo{
		StartURL:       seed.String(),
		Origin:         s.origin,
		MaxURLs:        cfg.MaxURLs,
		MaxDepth:       cfg.MaxDepth,
		Delay:          cfg.Delay,
		SameOriginOnly: !cfg.AllowExternal,
		Workers:        cfg.Workers,
	}

	s.logger.Info("scan starting",
		"url", s.info.StartURL,
		"origin", s.origin,
		"max_urls", cfg.MaxURLs,
		"max_depth", cfg.MaxDepth,
		"workers", cfg.Workers,
	)

	for i := 0; i < cfg.Workers; i++ {
		go s.worker(ctx)
	}

	started := time.Now()
	s.enqueuePage(ctx, seed.String(), 0)
	s.wg.Wait()
	close(s.jobs)
	finished := time.Now()

	res := s.snapshot(started, finished)
	s.logger.Info("scan finished",
		"processed", res.Stats.URLsProcessed,
		"working", res.Stats.WorkingCount,
		"broken", res.Stats.BrokenCount,
		"errors", res.Stats.ErrorCount,
		"duration", res.Duration,
	)
	return res, nil
}

// withDefaults fills unset fields. MaxDepth keeps its zero value: depth 0
// means "seed only" and callers that want the conventional default of 2 set
// it at their edge, the way the CLI and the API do.
func (cfg Config) withDefaults() Config {
	if cfg.MaxURLs <= 0 {
		cfg.MaxURLs = defaultMaxURLs
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}

func (s *scan) emitProgress(u string) {
	if s.progress == nil {
		return
	}
	s.progress(u)
}
