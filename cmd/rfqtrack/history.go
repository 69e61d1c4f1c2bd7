package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	history, err := deps.Queries.FindSubmissionHistory(deps.Ctx, c.Project, c.Partner)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}
	stats, err := deps.Queries.PartnerStats(deps.Ctx, c.Project, c.Partner)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s / %s\n", c.Project, c.Partner)
	printHistories(deps.Stdout, "Sent", history.Sent)
	printHistories(deps.Stdout, "Received", history.Received)
	fmt.Fprintf(deps.Stdout, "Total: %d files, %s\n", stats.Total.FileCount, crawl.FormatBytes(stats.Total.TotalSize))
	return nil
}

func printHistories(w io.Writer, label string, histories []*rfqtrack.VersionHistory) {
	fmt.Fprintf(w, "%s:\n", label)
	if len(histories) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, h := range histories {
		fmt.Fprintf(w, "  %s", h.FolderName)
		if len(h.Versions) > 1 {
			fmt.Fprintf(w, " (%d versions)", len(h.Versions))
		}
		fmt.Fprintln(w)
		for _, v := range h.Versions {
			fmt.Fprintf(w, "    %s  %3d files  %s\n", v.Date.Local().Format(time.DateTime), len(v.Files), v.ContentHash)
		}
	}
}
