package rfqtrack

import (
	"context"
	"time"
)

// CrawlOptions configures a single crawl run.
type CrawlOptions struct {
	// DryRun performs the full traversal and classification but never
	// writes to storage.
	DryRun bool
}

// CrawlService runs crawls of the configured root.
type CrawlService interface {
	// Crawl scans the root and reconciles the result with storage.
	// Only configuration errors are returned; per-path problems are
	// collected in the summary.
	Crawl(ctx context.Context, opts CrawlOptions) (*CrawlSummary, error)
}

// CrawlError describes a recoverable problem met during a crawl.
type CrawlError struct {
	Path    string `json:"path"`
	Op      string `json:"op"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e CrawlError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Message
}

// NewCrawlError returns a CrawlError for the failed operation op on path.
func NewCrawlError(op, path string, err error) CrawlError {
	return CrawlError{Path: path, Op: op, Message: err.Error()}
}

// CrawlSummary is the structured outcome of a crawl.
type CrawlSummary struct {
	DryRun     bool      `json:"dryRun"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	ProjectsScanned      int `json:"projectsScanned"`
	PartnersScanned      int `json:"partnersScanned"`
	SubmissionsFound     int `json:"submissionsFound"`
	SubmissionsNew       int `json:"submissionsNew"`
	SubmissionsUnchanged int `json:"submissionsUnchanged"`

	Errors []CrawlError `json:"errors"`

	// Interrupted is set when the crawl stopped early on cancellation or
	// timeout. Everything persisted before that point remains valid.
	Interrupted bool `json:"interrupted"`

	// Batches holds the scanned records of a dry run.
	Batches []*Batch `json:"batches,omitempty"`
}

// Duration returns how long the crawl took.
func (s *CrawlSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Batch holds everything scanned for one project.
type Batch struct {
	Project     *Project      `json:"project"`
	Partners    []*Partner    `json:"partners"`
	Submissions []*Submission `json:"submissions"`
	Errors      []CrawlError  `json:"errors,omitempty"`
}

// ContentHasher fingerprints the contents of a folder.
type ContentHasher interface {
	// HashFiles returns a digest of files, which are absolute paths below dir.
	// The digest covers each file's path relative to dir and its bytes, and
	// does not depend on the order of files. Unreadable files are left out of
	// the digest and reported as problems.
	HashFiles(dir string, files []string) (hash string, problems []CrawlError)
}

// SubmissionExtractor enumerates the event folders of a direction folder.
type SubmissionExtractor interface {
	// ExtractSubmissions returns one submission per immediate child folder of
	// dir, which is the Sent or Received folder described by loc. A missing
	// dir yields no submissions and no problems. Event folders that cannot be
	// read are reported as problems and yield no submission. A non-nil error
	// means extraction stopped before every event folder was visited.
	ExtractSubmissions(ctx context.Context, dir string, loc Location) ([]*Submission, []CrawlError, error)
}
