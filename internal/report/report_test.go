package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"linkscan/internal/crawler"
)

func sampleResult() *crawler.Result {
	started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	checked := started.Add(2 * time.Second)
	finished := started.Add(12340 * time.Millisecond)
	return &crawler.Result{
		Scan: crawler.ScanInfo{
			StartURL:       "https://example.com",
			Origin:         "example.com",
			MaxURLs:        100,
			MaxDepth:       2,
			Delay:          time.Second,
			SameOriginOnly: true,
			Workers:        1,
		},
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
		Stats: crawler.Stats{
			URLsProcessed: 3,
			WorkingCount:  1,
			BrokenCount:   1,
			ErrorCount:    1,
			VisitedPages:  1,
		},
		Working: []crawler.LinkRecord{{
			URL:        "https://example.com",
			Outcome:    crawler.OutcomeWorking,
			StatusCode: 200,
			FinalURL:   "https://example.com",
			CheckedAt:  checked,
		}},
		Broken: []crawler.LinkRecord{{
			URL:        "https://example.com/broken",
			Outcome:    crawler.OutcomeBroken,
			StatusCode: 404,
			FinalURL:   "https://example.com/broken",
			CheckedAt:  checked,
		}},
		Erroring: []crawler.LinkRecord{{
			URL:       "https://example.com/dead",
			Outcome:   crawler.OutcomeError,
			Error:     "connection refused",
			Phase:     crawler.PhaseCheck,
			CheckedAt: checked,
		}},
	}
}

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	got := Build(sampleResult())
	want := Document{
		ScanInfo: ScanInfo{
			StartTime:       "2025-03-10T12:00:00Z",
			EndTime:         "2025-03-10T12:00:12Z",
			DurationSeconds: 12.34,
			StartDomain:     "example.com",
			MaxURLs:         100,
			MaxDepth:        2,
			Delay:           1,
			SameDomainOnly:  true,
		},
		Statistics: Statistics{
			TotalURLsProcessed: 3,
			WorkingLinksCount:  1,
			BrokenLinksCount:   1,
			ErrorLinksCount:    1,
			VisitedPagesCount:  1,
		},
		Results: Results{
			WorkingLinks: []LinkEntry{{
				URL:        "https://example.com",
				StatusCode: 200,
				FinalURL:   "https://example.com",
				Timestamp:  "2025-03-10T12:00:02Z",
			}},
			BrokenLinks: []LinkEntry{{
				URL:        "https://example.com/broken",
				StatusCode: 404,
				FinalURL:   "https://example.com/broken",
				Timestamp:  "2025-03-10T12:00:02Z",
			}},
			ErrorLinks: []ErrorEntry{{
				URL:       "https://example.com/dead",
				Error:     "connection refused",
				Type:      "check",
				Timestamp: "2025-03-10T12:00:02Z",
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSONShape(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "scan.json")
	if err := WriteJSON(sampleResult(), path); err != nil {
		t.Fatalf("write JSON: %v", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	for _, key := range []string{"scan_info", "statistics", "results"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("report missing top-level key %q", key)
		}
	}

	var results struct {
		Working []json.RawMessage `json:"working_links"`
		Broken  []json.RawMessage `json:"broken_links"`
		Errors  []json.RawMessage `json:"error_links"`
	}
	if err := json.Unmarshal(doc["results"], &results); err != nil {
		t.Fatalf("parse results: %v", err)
	}
	if len(results.Working) != 1 || len(results.Broken) != 1 || len(results.Errors) != 1 {
		t.Fatalf("unexpected result counts: %d/%d/%d",
			len(results.Working), len(results.Broken), len(results.Errors))
	}
}

func TestWriteCSVShape(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scan.csv")
	if err := WriteCSV(sampleResult(), path); err != nil {
		t.Fatalf("write CSV: %v", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if got, want := strings.TrimSpace(lines[0]), "url,status,status_code,final_url,error,type,timestamp"; got != want {
		t.Fatalf("csv header = %q, want %q", got, want)
	}
	if !strings.HasPrefix(lines[1], "https://example.com,working,200,") {
		t.Fatalf("unexpected working row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "https://example.com/broken,broken,404,") {
		t.Fatalf("unexpected broken row: %q", lines[2])
	}
	if !strings.Contains(lines[3], ",error,") || !strings.Contains(lines[3], "connection refused") {
		t.Fatalf("unexpected error row: %q", lines[3])
	}
}

func TestSummaryListsProblems(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Summary(&buf, sampleResult())
	out := buf.String()

	if !strings.Contains(out, "Working: 1, broken: 1, errors: 1") {
		t.Fatalf("summary missing counts: %q", out)
	}
	if !strings.Contains(out, "https://example.com/broken") {
		t.Fatalf("summary missing broken link: %q", out)
	}
	if !strings.Contains(out, "https://example.com/dead") {
		t.Fatalf("summary missing failed request: %q", out)
	}
	if !strings.Contains(out, "connection refused") {
		t.Fatalf("summary missing error message: %q", out)
	}
}
