package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	typ := rfqtrack.ParsePartnerType(c.Type)

	stats, err := deps.Queries.ProjectStats(deps.Ctx, c.Project, typ)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}
	activity, err := deps.Queries.PartnerActivity(deps.Ctx, c.Project, typ)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Project %s, %s partners: %d (contacted %d, responded %d)\n",
		stats.ProjectNumber, stats.PartnerType, stats.Partners, stats.Contacted, stats.Responded)
	fmt.Fprintf(deps.Stdout, "Files: %d (%d on disk), %s\n",
		stats.Total.FileCount, stats.Total.ExistingCount, crawl.FormatBytes(stats.Total.TotalSize))

	if len(activity) == 0 {
		return nil
	}
	fmt.Fprintln(deps.Stdout)
	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTNER\tSENT\tRECEIVED")
	for _, a := range activity {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", a.PartnerName, a.SentCount, a.ReceivedCount)
	}
	return tw.Flush()
}
