package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"linkscan/internal/crawler"
)

// csvRow is one flattened record. Cells that do not apply to a row's
// outcome stay empty, so the column set is shared by all three kinds.
type csvRow struct {
	URL        string `csv:"url"`
	Status     string `csv:"status"`
	StatusCode string `csv:"status_code"`
	FinalURL   string `csv:"final_url"`
	Error      string `csv:"error"`
	Type       string `csv:"type"`
	Timestamp  string `csv:"timestamp"`
}

// WriteCSV renders res as CSV at path: working rows first, then broken,
// then errors.
func WriteCSV(res *crawler.Result, path string) error {
	rows := make([]csvRow, 0, len(res.Working)+len(res.Broken)+len(res.Erroring))
	for _, rec := range res.Working {
		rows = append(rows, statusRow(rec, "working"))
	}
	for _, rec := range res.Broken {
		rows = append(rows, statusRow(rec, "broken"))
	}
	for _, rec := range res.Erroring {
		rows = append(rows, csvRow{
			URL:       rec.URL,
			Status:    "error",
			Error:     rec.Error,
			Type:      string(rec.Phase),
			Timestamp: rec.CheckedAt.UTC().Format(time.RFC3339),
		})
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv report: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

func statusRow(rec crawler.LinkRecord, status string) csvRow {
	return csvRow{
		URL:        rec.URL,
		Status:     status,
		StatusCode: strconv.Itoa(rec.StatusCode),
		FinalURL:   rec.FinalURL,
		Timestamp:  rec.CheckedAt.UTC().Format(time.RFC3339),
	}
}
