package crawler

import "time"

// recordOutcome appends rec to the list matching its outcome. Records are
// never reclassified or merged: a page whose probe succeeded but whose body
// could not be fetched legitimately appears once as working and once as an
// extraction error.
func (s *scan) recordOutcome(rec LinkRecord) {
	s.reportMu.Lock()
	switch rec.Outcome {
	case OutcomeWorking:
		s.working = append(s.working, rec)
	case OutcomeBroken:
		s.broken = append(s.broken, rec)
	case OutcomeError:
		s.erroring = append(s.erroring, rec)
	}
	s.reportMu.Unlock()
}

// recordExtractionError notes that a page body could not be obtained. These
// records never consume probe budget.
func (s *scan) recordExtractionError(pageURL string, err error) {
	s.logger.Warn("extraction failed", "url", pageURL, "error", err)
	s.recordOutcome(LinkRecord{
		URL:       pageURL,
		Outcome:   OutcomeError,
		Error:     err.Error(),
		Phase:     PhaseExtraction,
		CheckedAt: time.Now().UTC(),
	})
}

// snapshot freezes the scan into a Result. Called after all workers have
// drained; the locks are held anyway so a cancelled scan snapshots safely.
func (s *scan) snapshot(started, finished time.Time) *Result {
	s.mu.Lock()
	stats := Stats{
		URLsProcessed:   s.processed,
		VisitedPages:    s.visited.Cardinality(),
		SkippedByRobots: s.skippedRobots,
	}
	s.mu.Unlock()

	s.reportMu.Lock()
	defer s.reportMu.Unlock()
	stats.WorkingCount = len(s.working)
	stats.BrokenCount = len(s.broken)
	stats.ErrorCount = len(s.erroring)

	return &Result{
		Scan:       s.info,
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
		Stats:      stats,
		Working:    s.working,
		Broken:     s.broken,
		Erroring:   s.erroring,
	}
}
