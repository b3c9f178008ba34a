package report

import (
	"fmt"
	"io"

	"github.com/rodaine/table"

	"linkscan/internal/crawler"
)

// Summary writes a human-readable digest of res to w: the headline counts,
// then one table per problem class. Healthy links are only counted, not
// listed.
func Summary(w io.Writer, res *crawler.Result) {
	fmt.Fprintf(w, "Scanned %s in %.2fs\n", res.Scan.StartURL, res.Duration.Seconds())
	fmt.Fprintf(w, "URLs processed: %d, pages visited: %d\n",
		res.Stats.URLsProcessed, res.Stats.VisitedPages)
	fmt.Fprintf(w, "Working: %d, broken: %d, errors: %d\n",
		res.Stats.WorkingCount, res.Stats.BrokenCount, res.Stats.ErrorCount)
	if res.Stats.SkippedByRobots > 0 {
		fmt.Fprintf(w, "Skipped by robots.txt: %d\n", res.Stats.SkippedByRobots)
	}

	if len(res.Broken) > 0 {
		fmt.Fprintf(w, "\nBroken links:\n")
		tbl := table.New("URL", "Status", "Final URL").WithWriter(w)
		for _, rec := range res.Broken {
			final := rec.FinalURL
			if final == rec.URL {
				final = ""
			}
			tbl.AddRow(rec.URL, rec.StatusCode, final)
		}
		tbl.Print()
	}

	if len(res.Erroring) > 0 {
		fmt.Fprintf(w, "\nFailed requests:\n")
		tbl := table.New("URL", "Phase", "Error").WithWriter(w)
		for _, rec := range res.Erroring {
			tbl.AddRow(rec.URL, rec.Phase, rec.Error)
		}
		tbl.Print()
	}
}
