// Package report renders scan results: a JSON document, CSV rows, and a
// human-readable summary. All serialization shapes live here; the engine
// only produces plain data.
package report

import (
	"math"
	"time"

	"linkscan/internal/crawler"
)

// Document is the canonical JSON shape of a finished scan.
type Document struct {
	ScanInfo   ScanInfo   `json:"scan_info"`
	Statistics Statistics `json:"statistics"`
	Results    Results    `json:"results"`
}

// ScanInfo echoes the scan configuration and timing.
type ScanInfo struct {
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationSeconds float64 `json:"duration_seconds"`
	StartDomain     string  `json:"start_domain"`
	MaxURLs         int     `json:"max_urls"`
	MaxDepth        int     `json:"max_depth"`
	Delay           float64 `json:"delay"`
	SameDomainOnly  bool    `json:"same_domain_only"`
}

// Statistics carries the scan counters.
type Statistics struct {
	TotalURLsProcessed int `json:"total_urls_processed"`
	WorkingLinksCount  int `json:"working_links_count"`
	BrokenLinksCount   int `json:"broken_links_count"`
	ErrorLinksCount    int `json:"error_links_count"`
	VisitedPagesCount  int `json:"visited_pages_count"`
}

// Results groups the three outcome lists.
type Results struct {
	WorkingLinks []LinkEntry  `json:"working_links"`
	BrokenLinks  []LinkEntry  `json:"broken_links"`
	ErrorLinks   []ErrorEntry `json:"error_links"`
}

// LinkEntry describes a URL that answered, working or broken.
type LinkEntry struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	FinalURL   string `json:"final_url"`
	Timestamp  string `json:"timestamp"`
}

// ErrorEntry describes a URL whose request failed outright.
type ErrorEntry struct {
	URL       string `json:"url"`
	Error     string `json:"error"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// Build converts a scan result into its report document.
func Build(res *crawler.Result) Document {
	doc := Document{
		ScanInfo: ScanInfo{
			StartTime:       res.StartedAt.UTC().Format(time.RFC3339),
			EndTime:         res.FinishedAt.UTC().Format(time.RFC3339),
			DurationSeconds: math.Round(res.Duration.Seconds()*100) / 100,
			StartDomain:     res.Scan.Origin,
			MaxURLs:         res.Scan.MaxURLs,
			MaxDepth:        res.Scan.MaxDepth,
			Delay:           res.Scan.Delay.Seconds(),
			SameDomainOnly:  res.Scan.SameOriginOnly,
		},
		Statistics: Statistics{
			TotalURLsProcessed: res.Stats.URLsProcessed,
			WorkingLinksCount:  res.Stats.WorkingCount,
			BrokenLinksCount:   res.Stats.BrokenCount,
			ErrorLinksCount:    res.Stats.ErrorCount,
			VisitedPagesCount:  res.Stats.VisitedPages,
		},
		Results: Results{
			WorkingLinks: linkEntries(res.Working),
			BrokenLinks:  linkEntries(res.Broken),
			ErrorLinks:   errorEntries(res.Erroring),
		},
	}
	return doc
}

func linkEntries(records []crawler.LinkRecord) []LinkEntry {
	entries := make([]LinkEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, LinkEntry{
			URL:        rec.URL,
			StatusCode: rec.StatusCode,
			FinalURL:   rec.FinalURL,
			Timestamp:  rec.CheckedAt.UTC().Format(time.RFC3339),
		})
	}
	return entries
}

func errorEntries(records []crawler.LinkRecord) []ErrorEntry {
	entries := make([]ErrorEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, ErrorEntry{
			URL:       rec.URL,
			Error:     rec.Error,
			Type:      string(rec.Phase),
			Timestamp: rec.CheckedAt.UTC().Format(time.RFC3339),
		})
	}
	return entries
}
