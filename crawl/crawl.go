// Package crawl walks the project share, turns RFQ folders into partners and
// submission versions, and reconciles them with storage.
package crawl

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fwojciec/rfqtrack"
	"golang.org/x/sync/errgroup"
)

// DefaultProjectPattern matches the all-digit project folder names.
const DefaultProjectPattern = `^[0-9]+$`

// DefaultConcurrency is the number of projects scanned at once.
const DefaultConcurrency = 4

// DefaultMaxDepth is how many levels below a project folder partner folders
// are searched for. The current layout puts partners three levels down.
const DefaultMaxDepth = 3

// Ensure Crawler implements rfqtrack.CrawlService at compile time.
var _ rfqtrack.CrawlService = (*Crawler)(nil)

// Crawler scans the project share.
type Crawler struct {
	Root           string
	Filter         rfqtrack.Filter
	ProjectPattern *regexp.Regexp
	MaxDepth       int
	Concurrency    int

	Extractor rfqtrack.SubmissionExtractor
	Persister *Persister

	Logger   *slog.Logger
	Progress ProgressFunc

	// Now returns the crawl start time. Defaults to time.Now.
	Now func() time.Time
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Project   string
	Errors    int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress. It is called
// from a single goroutine.
type ProgressFunc func(event ProgressEvent)

// scanResult holds the outcome of scanning one project.
type scanResult struct {
	batch    *rfqtrack.Batch
	complete bool
}

// Crawl scans every project below Root. Configuration problems are returned
// as EINVALID errors before anything is read; problems with individual paths
// are collected in the summary.
func (c *Crawler) Crawl(ctx context.Context, opts rfqtrack.CrawlOptions) (*rfqtrack.CrawlSummary, error) {
	root, err := c.checkConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := c.logger()

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	summary := &rfqtrack.CrawlSummary{
		DryRun:    opts.DryRun,
		StartedAt: now().UTC(),
		Errors:    []rfqtrack.CrawlError{},
	}

	projects, problems := c.listProjects(root)
	summary.Errors = append(summary.Errors, problems...)

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan scanResult, concurrency)

	var completed atomic.Int64
	total := len(projects)
	c.progress(ProgressEvent{Type: ProgressStarted, Total: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, project := range projects {
			if gctx.Err() != nil {
				break
			}
			project := project
			g.Go(func() error {
				batch, complete := c.scanProject(gctx, root, project, summary.StartedAt)
				resultCh <- scanResult{batch: batch, complete: complete}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	for result := range resultCh {
		batch := result.batch
		summary.Errors = append(summary.Errors, batch.Errors...)
		if !result.complete {
			summary.Interrupted = true
			continue
		}

		summary.ProjectsScanned++
		summary.PartnersScanned += len(batch.Partners)
		summary.SubmissionsFound += len(batch.Submissions)

		if opts.DryRun {
			summary.Batches = append(summary.Batches, batch)
		} else {
			// Scanned batches are stored even when the crawl is being
			// cancelled, so work already done is not lost.
			res := c.Persister.Persist(context.WithoutCancel(ctx), batch, summary.StartedAt)
			summary.SubmissionsNew += res.New
			summary.SubmissionsUnchanged += res.Unchanged
			summary.Errors = append(summary.Errors, res.Errors...)
		}

		c.progress(ProgressEvent{
			Type:      ProgressCompleted,
			Completed: int(completed.Add(1)),
			Total:     total,
			Project:   batch.Project.Number,
			Errors:    len(batch.Errors),
		})
	}

	if ctx.Err() != nil && int(completed.Load()) < total {
		summary.Interrupted = true
	}
	if summary.Interrupted {
		logger.Warn("crawl interrupted", "completed", completed.Load(), "total", total, "err", ctx.Err())
	}

	sort.Slice(summary.Batches, func(i, j int) bool {
		return summary.Batches[i].Project.Number < summary.Batches[j].Project.Number
	})
	sort.SliceStable(summary.Errors, func(i, j int) bool {
		return summary.Errors[i].Path < summary.Errors[j].Path
	})

	summary.FinishedAt = now().UTC()
	c.progress(ProgressEvent{Type: ProgressFinished, Completed: int(completed.Load()), Total: total})

	return summary, nil
}

func (c *Crawler) checkConfig(opts rfqtrack.CrawlOptions) (string, error) {
	if c.Root == "" {
		return "", rfqtrack.Errorf(rfqtrack.EINVALID, "root path required")
	}
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return "", rfqtrack.Errorf(rfqtrack.EINVALID, "invalid root path %q: %v", c.Root, err)
	}
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return "", rfqtrack.Errorf(rfqtrack.EINVALID, "root path %q does not exist", root)
	}
	if err != nil {
		return "", rfqtrack.Errorf(rfqtrack.EINVALID, "root path %q: %v", root, err)
	}
	if !info.IsDir() {
		return "", rfqtrack.Errorf(rfqtrack.EINVALID, "root path %q is not a directory", root)
	}
	if c.Extractor == nil {
		return "", rfqtrack.Errorf(rfqtrack.EINVALID, "submission extractor required")
	}
	if !opts.DryRun && c.Persister == nil {
		return "", rfqtrack.Errorf(rfqtrack.EINVALID, "persister required unless dry run")
	}
	return root, nil
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (c *Crawler) progress(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}

// listProjects returns the project folders directly below root, by name.
func (c *Crawler) listProjects(root string) ([]*rfqtrack.Project, []rfqtrack.CrawlError) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, []rfqtrack.CrawlError{rfqtrack.NewCrawlError("read", root, err)}
	}

	pattern := c.ProjectPattern
	if pattern == nil {
		pattern = regexp.MustCompile(DefaultProjectPattern)
	}

	var projects []*rfqtrack.Project
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || c.Filter.SkipFolder(name) {
			continue
		}
		if !pattern.MatchString(name) {
			c.logger().Debug("skipping non-project folder", "name", name)
			continue
		}
		projects = append(projects, &rfqtrack.Project{
			Number: name,
			Path:   filepath.Join(root, name),
		})
	}
	return projects, nil
}

// scanProject collects the partners and submissions of one project. It
// reports false when ctx ended before the project was fully scanned.
func (c *Crawler) scanProject(ctx context.Context, root string, project *rfqtrack.Project, scannedAt time.Time) (*rfqtrack.Batch, bool) {
	project.LastScanned = scannedAt
	batch := &rfqtrack.Batch{
		Project:     project,
		Partners:    []*rfqtrack.Partner{},
		Submissions: []*rfqtrack.Submission{},
	}

	maxDepth := c.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	complete := true
	err := walkProject(ctx, project.Path, maxDepth, c.Filter, func(path string) bool {
		loc, ok := rfqtrack.ClassifyPath(root, path)
		if !ok || !loc.IsPartner() {
			return false
		}
		if !c.scanPartner(ctx, root, path, loc, batch) {
			complete = false
		}
		return true
	}, func(ce rfqtrack.CrawlError) {
		batch.Errors = append(batch.Errors, ce)
	})
	if err != nil {
		return batch, false
	}
	return batch, complete && ctx.Err() == nil
}

// scanPartner records the partner folder at path and the submissions of its
// direction folders. It reports false when a direction folder was only
// partly extracted.
func (c *Crawler) scanPartner(ctx context.Context, root, path string, loc rfqtrack.Location, batch *rfqtrack.Batch) bool {
	batch.Partners = append(batch.Partners, &rfqtrack.Partner{
		ProjectNumber: loc.ProjectNumber,
		Name:          loc.PartnerName,
		Type:          loc.PartnerType,
		Path:          path,
		LastScanned:   batch.Project.LastScanned,
	})

	entries, err := os.ReadDir(path)
	if err != nil {
		batch.Errors = append(batch.Errors, rfqtrack.NewCrawlError("read", path, err))
		return true
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return false
		}
		if !entry.IsDir() || c.Filter.SkipFolder(entry.Name()) {
			continue
		}
		child := filepath.Join(path, entry.Name())
		childLoc, ok := rfqtrack.ClassifyPath(root, child)
		if !ok || !childLoc.IsDirection() {
			c.logger().Debug("skipping unclassified folder", "path", child)
			continue
		}

		subs, problems, err := c.Extractor.ExtractSubmissions(ctx, child, childLoc)
		batch.Submissions = append(batch.Submissions, subs...)
		batch.Errors = append(batch.Errors, problems...)
		if err != nil {
			c.logger().Debug("extraction stopped early", "path", child, "err", err)
			return false
		}
	}
	return true
}
