package crawler

import "context"

// pageJob is one frontier entry: a URL to expand and the depth it sits at.
type pageJob struct {
	url   string
	depth int
}

// enqueuePage adds a page to the frontier. Depth and budget are pre-filtered
// here to keep the queue small; the authoritative gates run again when the
// job is processed. Sends never block the calling worker: when the buffer is
// full the send moves to its own goroutine, which keeps workers that enqueue
// children of their own jobs from deadlocking on a saturated channel.
func (s *scan) enqueuePage(ctx context.Context, target string, depth int) {
	if ctx.Err() != nil {
		return
	}
	if s.maxDepth >= 0 && depth > s.maxDepth {
		return
	}
	if s.budgetExhausted() {
		return
	}
	job := pageJob{url: target, depth: depth}
	s.wg.Add(1)
	if !s.trySend(job) {
		go s.waitSend(job)
	}
}

func (s *scan) trySend(job pageJob) bool {
	select {
	case s.jobs <- job:
		return true
	default:
		return false
	}
}

// waitSend blocks until the job fits. The channel only closes after the
// WaitGroup settles, which cannot happen while this job's Add is pending,
// so the recover path is a guard rather than an expected branch.
func (s *scan) waitSend(job pageJob) {
	defer func() {
		if recover() != nil {
			s.wg.Done()
		}
	}()
	s.jobs <- job
}
