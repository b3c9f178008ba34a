package api

import (
	"linkscan/internal/report"
)

// ScanRequest is the POST /scan body. Pointer fields distinguish "absent"
// from zero so omitted settings fall back to the server defaults.
type ScanRequest struct {
	URL            string   `json:"url"`
	MaxURLs        *int     `json:"max_urls"`
	MaxDepth       *int     `json:"max_depth"`
	Delay          *float64 `json:"delay"`
	SameDomainOnly *bool    `json:"same_domain_only"`
}

// StartResponse acknowledges an accepted scan.
type StartResponse struct {
	Message string `json:"message"`
	ScanID  string `json:"scan_id"`
	Status  string `json:"status"`
}

// StatusResponse reports where a scan stands. Counter fields are zero while
// the scan is still running.
type StatusResponse struct {
	ScanID         string  `json:"scan_id"`
	Status         string  `json:"status"`
	URL            string  `json:"url"`
	URLsProcessed  int     `json:"urls_processed"`
	WorkingLinks   int     `json:"working_links"`
	BrokenLinks    int     `json:"broken_links"`
	ErrorLinks     int     `json:"error_links"`
	PagesVisited   int     `json:"pages_visited"`
	MaxURLs        int     `json:"max_urls"`
	MaxDepth       int     `json:"max_depth"`
	Delay          float64 `json:"delay"`
	SameDomainOnly bool    `json:"same_domain_only"`
}

// StoredScan is the database record for one finished scan.
type StoredScan struct {
	ScanID     string          `json:"scan_id"`
	URL        string          `json:"url"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	ResultFile string          `json:"result_file,omitempty"`
	Report     report.Document `json:"report"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
	ScanID  string `json:"scan_id"`
	Status  string `json:"status"`
}
