package mock

import (
	"context"

	"github.com/fwojciec/rfqtrack"
)

var (
	_ rfqtrack.CrawlService        = (*CrawlService)(nil)
	_ rfqtrack.ContentHasher       = (*ContentHasher)(nil)
	_ rfqtrack.SubmissionExtractor = (*SubmissionExtractor)(nil)
)

// CrawlService is a mock implementation of rfqtrack.CrawlService.
type CrawlService struct {
	CrawlFn func(ctx context.Context, opts rfqtrack.CrawlOptions) (*rfqtrack.CrawlSummary, error)
}

func (s *CrawlService) Crawl(ctx context.Context, opts rfqtrack.CrawlOptions) (*rfqtrack.CrawlSummary, error) {
	return s.CrawlFn(ctx, opts)
}

// ContentHasher is a mock implementation of rfqtrack.ContentHasher.
type ContentHasher struct {
	HashFilesFn func(dir string, files []string) (string, []rfqtrack.CrawlError)
}

func (h *ContentHasher) HashFiles(dir string, files []string) (string, []rfqtrack.CrawlError) {
	return h.HashFilesFn(dir, files)
}

// SubmissionExtractor is a mock implementation of rfqtrack.SubmissionExtractor.
type SubmissionExtractor struct {
	ExtractSubmissionsFn func(ctx context.Context, dir string, loc rfqtrack.Location) ([]*rfqtrack.Submission, []rfqtrack.CrawlError, error)
}

func (e *SubmissionExtractor) ExtractSubmissions(ctx context.Context, dir string, loc rfqtrack.Location) ([]*rfqtrack.Submission, []rfqtrack.CrawlError, error) {
	return e.ExtractSubmissionsFn(ctx, dir, loc)
}
