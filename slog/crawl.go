// Package slog provides log/slog decorators for rfqtrack services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/rfqtrack"
)

// Ensure LoggingCrawlService implements rfqtrack.CrawlService.
var _ rfqtrack.CrawlService = (*LoggingCrawlService)(nil)

// LoggingCrawlService wraps a CrawlService with logging.
type LoggingCrawlService struct {
	next   rfqtrack.CrawlService
	logger *slog.Logger
}

// NewLoggingCrawlService creates a new LoggingCrawlService.
func NewLoggingCrawlService(next rfqtrack.CrawlService, logger *slog.Logger) *LoggingCrawlService {
	return &LoggingCrawlService{next: next, logger: logger}
}

// Crawl delegates to the wrapped service and logs the summary. Problems
// collected during the crawl are logged individually at warn level.
func (s *LoggingCrawlService) Crawl(ctx context.Context, opts rfqtrack.CrawlOptions) (summary *rfqtrack.CrawlSummary, err error) {
	defer func(begin time.Time) {
		if summary == nil {
			s.logger.Error("crawl", "dry_run", opts.DryRun, "duration", time.Since(begin), "err", err)
			return
		}
		for _, e := range summary.Errors {
			s.logger.Warn("crawl problem", "op", e.Op, "path", e.Path, "err", e.Message)
		}
		s.logger.Info("crawl",
			"dry_run", opts.DryRun,
			"projects", summary.ProjectsScanned,
			"partners", summary.PartnersScanned,
			"found", summary.SubmissionsFound,
			"new", summary.SubmissionsNew,
			"unchanged", summary.SubmissionsUnchanged,
			"errors", len(summary.Errors),
			"interrupted", summary.Interrupted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Crawl(ctx, opts)
}
