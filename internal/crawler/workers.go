package crawler

import "context"

// worker consumes frontier jobs until the channel closes. Cancellation does
// not stop consumption: handlers short-circuit on a dead context, so queued
// jobs drain quickly and every WaitGroup Add is matched by a Done. Exiting
// on ctx.Done here instead would strand queued jobs and hang the scan.
func (s *scan) worker(ctx context.Context) {
	for job := range s.jobs {
		func() {
			defer s.wg.Done()
			s.processPage(ctx, job)
		}()
	}
}
