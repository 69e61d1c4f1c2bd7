package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	if c.Timeout > 0 {
		deps.Runner.Timeout = c.Timeout
	}
	if deps.Crawler != nil {
		deps.Crawler.Progress = func(event crawl.ProgressEvent) {
			switch event.Type {
			case crawl.ProgressStarted:
				fmt.Fprintf(deps.Stdout, "Found %d projects\n", event.Total)
			case crawl.ProgressCompleted:
				fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed, event.Total, event.Project)
			}
		}
	}

	summary, err := deps.Runner.Run(deps.Ctx, rfqtrack.CrawlOptions{DryRun: c.DryRun})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}

	if summary.DryRun {
		printBatches(deps.Stdout, summary.Batches)
	}
	printSummary(deps.Stdout, summary)
	return nil
}

func printBatches(w io.Writer, batches []*rfqtrack.Batch) {
	for _, b := range batches {
		fmt.Fprintf(w, "%s  %s\n", b.Project.Number, b.Project.Path)
		for _, s := range b.Submissions {
			fmt.Fprintf(w, "  %-24s %-8s %-20s %3d files  %s\n",
				crawl.TruncatePath(s.PartnerName, 24),
				s.Direction,
				s.FolderName,
				len(s.Files),
				s.ContentHash,
			)
		}
	}
}

func printSummary(w io.Writer, s *rfqtrack.CrawlSummary) {
	if s.DryRun {
		fmt.Fprintln(w, "Dry run: nothing was written")
		fmt.Fprintf(w, "Scanned %d projects, %d partners, found %d submissions in %s\n",
			s.ProjectsScanned, s.PartnersScanned, s.SubmissionsFound, s.Duration().Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "Scanned %d projects, %d partners, found %d submissions (%d new, %d unchanged) in %s\n",
			s.ProjectsScanned, s.PartnersScanned, s.SubmissionsFound,
			s.SubmissionsNew, s.SubmissionsUnchanged, s.Duration().Round(time.Millisecond))
	}
	if s.Interrupted {
		fmt.Fprintln(w, "Crawl was interrupted; unfinished projects were not recorded")
	}
	if len(s.Errors) > 0 {
		fmt.Fprintf(w, "%d problems:\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s %s: %s\n", e.Op, e.Path, e.Message)
		}
	}
}
