package crawler

import (
	"errors"
	"net/url"
	"strings"
)

var (
	errSeedRequired = errors.New("start URL is required")
	errSeedInvalid  = errors.New("start URL must include a scheme and a host")
)

// validURL reports whether u names something that can be requested: it must
// carry both a scheme and an authority. Scheme-relative references
// ("//example.com/x") and bare paths fail; any scheme with a host passes,
// so ftp URLs are accepted here and left to the prober to reject.
func validURL(u *url.URL) bool {
	return u != nil && u.Scheme != "" && u.Host != ""
}

// ValidateSeed reports whether raw would be accepted as a start URL,
// so callers can reject bad input before launching a scan.
func ValidateSeed(raw string) error {
	_, err := parseSeed(raw)
	return err
}

// parseSeed validates a start URL.
func parseSeed(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errSeedRequired
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	if !validURL(parsed) {
		return nil, errSeedInvalid
	}
	return parsed, nil
}
