package crawler

import (
	"context"
	"net/url"
	"time"
)

// checkState tells callers why a check did or did not run, so traversal
// loops can break the moment the budget runs out.
type checkState int

const (
	checkPerformed checkState = iota
	checkDuplicate
	checkBudgetSpent
	checkRobotsDenied
	checkCancelled
)

// checkURL probes target once per scan. Duplicates are no-ops, the budget
// gate is atomic, and the probe outcome lands in exactly one of the three
// outcome lists:
//
//	status < 400            -> working
//	status >= 400           -> broken
//	transport-level failure -> error (phase "check")
//
// Cancellation mid-check rolls the reservation back instead of recording a
// synthetic failure, so partial results stay consistent.
func (s *scan) checkURL(ctx context.Context, target string) checkState {
	if s.robots != nil {
		if parsed, err := url.Parse(target); err == nil && !s.robots.Allowed(ctx, parsed) {
			s.logger.Debug("robots denied", "url", target)
			return s.markRobotsDenied(target)
		}
	}

	if st := s.reserveCheck(target); st != checkPerformed {
		return st
	}

	if err := s.throttle(ctx); err != nil {
		s.unreserve(target)
		return checkCancelled
	}

	status, finalURL, err := s.probe.Probe(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			s.unreserve(target)
			return checkCancelled
		}
		s.logger.Warn("check failed", "url", target, "error", err)
		s.recordOutcome(LinkRecord{
			URL:       target,
			Outcome:   OutcomeError,
			Error:     err.Error(),
			Phase:     PhaseCheck,
			CheckedAt: time.Now().UTC(),
		})
		return checkPerformed
	}

	rec := LinkRecord{
		URL:        target,
		StatusCode: status,
		FinalURL:   finalURL,
		CheckedAt:  time.Now().UTC(),
	}
	if status >= 400 {
		rec.Outcome = OutcomeBroken
	} else {
		rec.Outcome = OutcomeWorking
	}
	s.logger.Debug("checked", "url", target, "status", status, "outcome", rec.Outcome)
	s.recordOutcome(rec)
	return checkPerformed
}
