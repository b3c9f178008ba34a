package crawler

// budgetExhausted reports whether the probe budget has been used up.
// Exhaustion is normal termination, never an error.
func (s *scan) budgetExhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed >= s.maxURLs
}

// claimVisit marks target as expanded. It refuses when the budget is spent
// or the page was claimed before, so every page is expanded at most once
// even when several workers pull the same URL from the queue.
func (s *scan) claimVisit(target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processed >= s.maxURLs {
		return false
	}
	if s.visited.Contains(target) {
		return false
	}
	s.visited.Add(target)
	return true
}

// reserveCheck is the atomic check-and-increment guarding the probe budget:
// a URL enters the checked set and consumes budget in one critical section,
// so two workers can never both pass the limit gate and processed never
// exceeds maxURLs.
func (s *scan) reserveCheck(target string) checkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked.Contains(target) {
		return checkDuplicate
	}
	if s.processed >= s.maxURLs {
		return checkBudgetSpent
	}
	s.checked.Add(target)
	s.processed++
	return checkPerformed
}

// unreserve rolls a reservation back when cancellation stopped the probe
// before any outcome existed, keeping processed equal to the records kept.
func (s *scan) unreserve(target string) {
	s.mu.Lock()
	s.checked.Remove(target)
	s.processed--
	s.mu.Unlock()
}

// markRobotsDenied retires a URL the robots gate refused. It occupies the
// checked set without consuming budget and lands in no outcome list. A URL
// the gate denied stays denied when it comes around again as a page job,
// so it is never expanded either.
func (s *scan) markRobotsDenied(target string) checkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checked.Contains(target) {
		s.checked.Add(target)
		s.skippedRobots++
	}
	return checkRobotsDenied
}
