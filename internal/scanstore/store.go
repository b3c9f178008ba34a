// Package scanstore persists finished scans for the API: one JSON database
// file keyed by scan ID, plus standalone per-scan download files.
package scanstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a scan ID is not in the store.
var ErrNotFound = errors.New("scan not found")

// Store is a file-backed map of scan ID to stored document. Every Put
// rewrites the whole database, which keeps the on-disk shape trivial; scan
// volumes are small enough that this is never the bottleneck.
type Store struct {
	path string

	mu sync.RWMutex
	db database
}

type database struct {
	Scans map[string]json.RawMessage `json:"scans"`
}

// Open loads the database at path, or starts an empty one when the file
// does not exist yet. An empty path yields a memory-only store.
func Open(path string) (*Store, error) {
	store := &Store{
		path: path,
		db:   database{Scans: make(map[string]json.RawMessage)},
	}
	if path == "" {
		return store, nil
	}
	payload, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scan database: %w", err)
	}
	if len(payload) == 0 {
		return store, nil
	}
	if err := json.Unmarshal(payload, &store.db); err != nil {
		return nil, fmt.Errorf("parse scan database: %w", err)
	}
	if store.db.Scans == nil {
		store.db.Scans = make(map[string]json.RawMessage)
	}
	return store, nil
}

// NewID mints a scan identifier.
func NewID() string {
	return uuid.NewString()
}

// Put stores doc under id and persists the database.
func (s *Store) Put(id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal scan %s: %w", id, err)
	}
	s.mu.Lock()
	s.db.Scans[id] = payload
	s.mu.Unlock()
	return s.persist()
}

// Get returns the stored document for id.
func (s *Store) Get(id string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.db.Scans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return payload, nil
}

// IDs lists the stored scan IDs in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.db.Scans))
	for id := range s.db.Scans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	payload, err := json.MarshalIndent(s.db, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal scan database: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write scan database: %w", err)
	}
	return nil
}

var unsafeRunes = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SafeFileName derives a download file name from a scanned URL: scheme
// stripped, every other non-alphanumeric rune mapped to underscore, and the
// scan date appended.
func SafeFileName(rawURL string, scannedAt time.Time) string {
	name := rawURL
	for _, prefix := range []string{"https://", "http://"} {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			name = name[len(prefix):]
			break
		}
	}
	name = unsafeRunes.ReplaceAllString(name, "_")
	return fmt.Sprintf("%s_%s.json", name, scannedAt.Format("20060102"))
}

// WriteDownload writes doc as a standalone report file under dir and
// returns the path written.
func WriteDownload(dir, rawURL string, doc any, scannedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal download: %w", err)
	}
	path := filepath.Join(dir, SafeFileName(rawURL, scannedAt))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}
	return path, nil
}
