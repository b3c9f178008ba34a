package crawler

import (
	"context"
	"net/url"
)

// processPage expands one page of the crawl graph:
//
//  1. claim the page (cycle guard + budget gate in one step)
//  2. probe the page URL itself
//  3. fetch the body and extract links
//  4. probe every link at this depth
//  5. queue every link for expansion one level deeper
//
// Every stage bails out as soon as the budget is spent, so a page with
// thousands of links exits cleanly mid-loop. Failures never abort the scan:
// they become records and the traversal moves on.
func (s *scan) processPage(ctx context.Context, job pageJob) {
	if ctx.Err() != nil {
		return
	}
	if s.maxDepth >= 0 && job.depth > s.maxDepth {
		return
	}
	if !s.claimVisit(job.url) {
		return
	}
	s.emitProgress(job.url)

	switch s.checkURL(ctx, job.url) {
	case checkBudgetSpent, checkRobotsDenied, checkCancelled:
		return
	}
	if s.budgetExhausted() {
		return
	}

	base, err := url.Parse(job.url)
	if err != nil {
		return
	}
	body, err := s.fetch.Fetch(ctx, job.url)
	if err != nil {
		if ctx.Err() == nil {
			s.recordExtractionError(job.url, err)
		}
		return
	}
	links := s.extractLinks(base, body)
	s.logger.Debug("expanded", "url", job.url, "depth", job.depth, "links", len(links))

	for _, link := range links {
		if s.budgetExhausted() || ctx.Err() != nil {
			return
		}
		s.checkURL(ctx, link)
	}

	if s.maxDepth >= 0 && job.depth >= s.maxDepth {
		return
	}
	for _, link := range links {
		if s.budgetExhausted() || ctx.Err() != nil {
			return
		}
		s.enqueuePage(ctx, link, job.depth+1)
	}
}
