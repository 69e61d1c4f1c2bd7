package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
	rfqhttp "github.com/fwojciec/rfqtrack/http"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *Config
	Logger *slog.Logger

	Projects rfqtrack.ProjectService
	Queries  rfqtrack.QueryService
	Crawler  *crawl.Crawler
	Runner   *crawl.Runner
	Gatherer prometheus.Gatherer

	// Serve blocks serving HTTP until ctx is done. Replaced in tests.
	Serve func(ctx context.Context, s *rfqhttp.Server) error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"Path to the TOML config file (default ~/.rfqtrack/config.toml)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Crawl    CrawlCmd    `cmd:"" help:"Scan the projects share and record submissions"`
	Projects ProjectsCmd `cmd:"" help:"List tracked projects"`
	Partners PartnersCmd `cmd:"" help:"List the partners of a project"`
	History  HistoryCmd  `cmd:"" help:"Show a partner's submission history"`
	Stats    StatsCmd    `cmd:"" help:"Show per-partner activity and totals for a project"`
	Serve    ServeCmd    `cmd:"" help:"Serve the dashboard API"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	DryRun  bool          `short:"n" help:"Scan without writing to the database"`
	Timeout time.Duration `help:"Abort the crawl after this long (0 uses the configured timeout)"`
}

// ProjectsCmd is the "projects" subcommand.
type ProjectsCmd struct {
	Search  string   `short:"s" help:"Only projects whose number contains this text"`
	Partner []string `short:"p" help:"Only projects with this partner (repeatable)"`
	Sort    string   `default:"number" enum:"number,last_scanned" help:"Sort key (number, last_scanned)"`
	Desc    bool     `help:"Sort in descending order"`
}

// PartnersCmd is the "partners" subcommand.
type PartnersCmd struct {
	Project string `arg:"" help:"Project number"`
	Type    string `short:"t" help:"Only partners of this type (supplier, contractor)"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Project string `arg:"" help:"Project number"`
	Partner string `arg:"" help:"Partner name"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Project string `arg:"" help:"Project number"`
	Type    string `short:"t" enum:"supplier,contractor" default:"supplier" help:"Partner type (supplier, contractor)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides the configured one)"`
}
