package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
	"github.com/fwojciec/rfqtrack/fs"
	rfqhttp "github.com/fwojciec/rfqtrack/http"
	"github.com/fwojciec/rfqtrack/lru"
	rfqprom "github.com/fwojciec/rfqtrack/prometheus"
	"github.com/fwojciec/rfqtrack/query"
	rfqslog "github.com/fwojciec/rfqtrack/slog"
	"github.com/fwojciec/rfqtrack/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config overrides loading the configuration from disk. Set before
	// calling Run().
	Config *Config

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Registry collects the program's metrics.
	Registry *prometheus.Registry

	// Serve overrides how the serve command listens. Used in tests.
	Serve func(ctx context.Context, s *rfqhttp.Server) error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("rfqtrack"),
		kong.Description("Track RFQ submissions exchanged with suppliers and contractors."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'rfqtrack --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	cfg := m.Config
	if cfg == nil {
		path := cli.Config
		if path == "" {
			path = DefaultConfigPath()
		}
		if cfg, err = LoadConfig(path); err != nil {
			return err
		}
	}
	command := kongCtx.Selected().Name
	if command == "crawl" || command == "serve" {
		err = cfg.ValidateCrawl()
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		if cfg.Crawl.RootPath == "" {
			fmt.Fprintln(stderr, "Hint: Set RFQ_ROOT_PATH or root_path in the [crawl] section of the config file")
		}
		return err
	}
	deps.Config = cfg

	dbPath := cfg.DBPath()
	if dbPath != ":memory:" {
		_ = os.MkdirAll(filepath.Dir(dbPath), 0755)
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set RFQ_STORE_DSN to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	projects := sqlite.NewProjectService(m.DB)
	partners := sqlite.NewPartnerService(m.DB)
	submissions := sqlite.NewSubmissionService(m.DB)
	deps.Projects = projects

	m.Registry = prometheus.NewRegistry()
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Gatherer = m.Registry

	cache := lru.NewQueryService(&query.Service{
		Projects:    projects,
		Partners:    partners,
		Submissions: submissions,
		Sizer:       fs.Sizer{},
	}, cfg.HTTP.CacheSize, cfg.HTTP.CacheTTL)
	deps.Queries = rfqslog.NewLoggingQueryService(cache, logger)

	filter := cfg.Filter()
	deps.Crawler = &crawl.Crawler{
		Root:           cfg.Crawl.RootPath,
		Filter:         filter,
		ProjectPattern: regexp.MustCompile(cfg.Crawl.ProjectPattern),
		Concurrency:    cfg.Crawl.Concurrency,
		Extractor: &fs.Extractor{
			Filter:  filter,
			Limiter: crawl.NewIOLimiter(cfg.Crawl.IORate),
		},
		Persister: &crawl.Persister{
			Projects:    projects,
			Partners:    partners,
			Submissions: submissions,
		},
		Logger: logger,
	}

	var crawler rfqtrack.CrawlService = rfqslog.NewLoggingCrawlService(deps.Crawler, logger)
	crawler = rfqprom.NewCrawlService(crawler, m.Registry)

	deps.Runner = &crawl.Runner{
		Crawler:  crawler,
		Projects: projects,
		Timeout:  cfg.Crawl.Timeout,
		OnFinish: func(*rfqtrack.CrawlSummary, error) { cache.Purge() },
		Logger:   logger,
	}

	deps.Serve = m.Serve
	if deps.Serve == nil {
		deps.Serve = func(ctx context.Context, s *rfqhttp.Server) error {
			return s.ListenAndServe(ctx)
		}
	}

	return kongCtx.Run(deps)
}
