// Package prometheus exposes crawl metrics through the Prometheus client.
package prometheus

import (
	"context"
	"strconv"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "rfqtrack"

// Ensure CrawlService implements rfqtrack.CrawlService.
var _ rfqtrack.CrawlService = (*CrawlService)(nil)

// CrawlService wraps a CrawlService and records crawl metrics.
type CrawlService struct {
	next rfqtrack.CrawlService

	crawlsTotal      *prometheus.CounterVec
	crawlDuration    *prometheus.HistogramVec
	submissionsTotal *prometheus.CounterVec
	problemsTotal    *prometheus.CounterVec
	inProgress       prometheus.Gauge
	lastSuccess      prometheus.Gauge
}

// NewCrawlService creates a CrawlService and registers its collectors with
// reg. It panics if registration fails.
func NewCrawlService(next rfqtrack.CrawlService, reg prometheus.Registerer) *CrawlService {
	s := &CrawlService{
		next: next,
		crawlsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "crawls_total",
				Help:      "Crawls run, by result.",
			},
			[]string{"result", "dry_run"},
		),
		crawlDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "crawl_duration_seconds",
				Help:      "Duration of crawls.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"dry_run"},
		),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "submissions_total",
				Help:      "Submission versions reconciled, by outcome.",
			},
			[]string{"outcome"},
		),
		problemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "crawl_problems_total",
				Help:      "Paths skipped during crawls, by operation.",
			},
			[]string{"op"},
		),
		inProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "crawl_in_progress",
			Help:      "Number of crawls currently running.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_crawl_success_timestamp_seconds",
			Help:      "Unix time the last complete crawl finished.",
		}),
	}

	reg.MustRegister(
		s.crawlsTotal,
		s.crawlDuration,
		s.submissionsTotal,
		s.problemsTotal,
		s.inProgress,
		s.lastSuccess,
	)
	return s
}

// Crawl delegates to the wrapped service and records the outcome.
func (s *CrawlService) Crawl(ctx context.Context, opts rfqtrack.CrawlOptions) (*rfqtrack.CrawlSummary, error) {
	s.inProgress.Inc()
	defer s.inProgress.Dec()

	dryRun := strconv.FormatBool(opts.DryRun)
	begin := time.Now()
	summary, err := s.next.Crawl(ctx, opts)
	s.crawlDuration.WithLabelValues(dryRun).Observe(time.Since(begin).Seconds())

	switch {
	case err != nil:
		s.crawlsTotal.WithLabelValues("failed", dryRun).Inc()
		return summary, err
	case summary.Interrupted:
		s.crawlsTotal.WithLabelValues("interrupted", dryRun).Inc()
	default:
		s.crawlsTotal.WithLabelValues("ok", dryRun).Inc()
		if !opts.DryRun {
			s.lastSuccess.SetToCurrentTime()
		}
	}

	s.submissionsTotal.WithLabelValues("new").Add(float64(summary.SubmissionsNew))
	s.submissionsTotal.WithLabelValues("unchanged").Add(float64(summary.SubmissionsUnchanged))
	for _, e := range summary.Errors {
		s.problemsTotal.WithLabelValues(e.Op).Inc()
	}
	return summary, nil
}
