package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"linkscan/internal/crawler"
)

// WriteJSON renders res as an indented JSON document at path, creating
// parent directories as needed.
func WriteJSON(res *crawler.Result, path string) error {
	doc := Build(res)
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
