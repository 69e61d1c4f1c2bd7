package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fwojciec/rfqtrack"
)

// Run executes the projects command.
func (c *ProjectsCmd) Run(deps *Dependencies) error {
	filter := rfqtrack.ProjectFilter{
		PartnerNames: c.Partner,
		SortBy:       rfqtrack.ProjectSort(c.Sort),
		Desc:         c.Desc,
	}
	if search := strings.TrimSpace(c.Search); search != "" {
		filter.NumberContains = &search
	}

	projects, err := deps.Queries.FindProjects(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}

	if len(projects) == 0 {
		fmt.Fprintln(deps.Stdout, "No projects found. Use 'rfqtrack crawl' to scan the projects share.")
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Number, p.LastScanned.Local().Format(time.DateTime), p.Path)
	}
	return tw.Flush()
}

// Run executes the partners command.
func (c *PartnersCmd) Run(deps *Dependencies) error {
	var typ *rfqtrack.PartnerType
	if c.Type != "" {
		t := rfqtrack.ParsePartnerType(c.Type)
		typ = &t
	}

	partners, err := deps.Queries.FindPartners(deps.Ctx, c.Project, typ)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}

	if len(partners) == 0 {
		fmt.Fprintf(deps.Stdout, "No partners found for project %s.\n", c.Project)
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range partners {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Type, p.Path)
	}
	return tw.Flush()
}
