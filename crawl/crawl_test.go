package crawl_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
	"github.com/fwojciec/rfqtrack/fs"
	"github.com/fwojciec/rfqtrack/mock"
	"github.com/fwojciec/rfqtrack/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	firstScan  = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	secondScan = firstScan.Add(24 * time.Hour)
)

var testFilter = rfqtrack.Filter{
	FolderTags: []string{"Template", "archive"},
	FileTags:   []string{".db"},
}

// writeTree creates files below dir from a map of slash paths to contents.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

type store struct {
	projects    *sqlite.ProjectService
	partners    *sqlite.PartnerService
	submissions *sqlite.SubmissionService
}

func setupStore(t *testing.T) store {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return store{
		projects:    sqlite.NewProjectService(db),
		partners:    sqlite.NewPartnerService(db),
		submissions: sqlite.NewSubmissionService(db),
	}
}

func newCrawler(root string, s store, now time.Time) *crawl.Crawler {
	return &crawl.Crawler{
		Root:      root,
		Filter:    testFilter,
		Extractor: &fs.Extractor{Filter: testFilter},
		Persister: &crawl.Persister{
			Projects:    s.projects,
			Partners:    s.partners,
			Submissions: s.submissions,
		},
		Now: func() time.Time { return now },
	}
}

func runCrawl(t *testing.T, root string, s store, now time.Time) *rfqtrack.CrawlSummary {
	t.Helper()
	summary, err := newCrawler(root, s, now).Crawl(context.Background(), rfqtrack.CrawlOptions{})
	require.NoError(t, err)
	return summary
}

func findSubmissions(t *testing.T, s store, partner string) []*rfqtrack.Submission {
	t.Helper()
	subs, err := s.submissions.FindSubmissions(context.Background(), rfqtrack.SubmissionFilter{PartnerName: &partner})
	require.NoError(t, err)
	return subs
}

// Story: a supplier folder appears, is re-scanned unchanged, then changes.

func TestCrawler_NewPartnerAppears(t *testing.T) {
	t.Parallel()

	// Given a project with one supplier and one received event folder
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Received/2025-01-10-Quote/quote.pdf": "quote",
	})
	s := setupStore(t)

	// When I crawl
	summary := runCrawl(t, root, s, firstScan)

	// Then the project, partner and submission are stored
	assert.Equal(t, 1, summary.ProjectsScanned)
	assert.Equal(t, 1, summary.PartnersScanned)
	assert.Equal(t, 1, summary.SubmissionsFound)
	assert.Equal(t, 1, summary.SubmissionsNew)
	assert.Empty(t, summary.Errors)
	assert.False(t, summary.Interrupted)
	assert.True(t, firstScan.Equal(summary.StartedAt))

	project, err := s.projects.FindProjectByNumber(context.Background(), "24038")
	require.NoError(t, err)
	assert.True(t, firstScan.Equal(project.LastScanned))

	subs := findSubmissions(t, s, "LEWA")
	require.Len(t, subs, 1)
	assert.Equal(t, rfqtrack.DirectionReceived, subs[0].Direction)
	assert.Equal(t, rfqtrack.PartnerSupplier, subs[0].PartnerType)
	assert.Equal(t, "2025-01-10-Quote", subs[0].FolderName)
	assert.Equal(t, []string{
		filepath.Join(root, "24038", "1-RFQ", "Supplier RFQ Quotes", "LEWA", "Received", "2025-01-10-Quote", "quote.pdf"),
	}, subs[0].Files)
	assert.True(t, firstScan.Equal(subs[0].FirstSeen))
	assert.True(t, firstScan.Equal(subs[0].LastChecked))
}

func TestCrawler_UnchangedRescan(t *testing.T) {
	t.Parallel()

	// Given a crawled tree
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/10.01.2025/rfq.pdf": "rfq",
	})
	s := setupStore(t)
	runCrawl(t, root, s, firstScan)

	// When I crawl again without changes
	summary := runCrawl(t, root, s, secondScan)

	// Then no version is added and last checked moves forward
	assert.Equal(t, 0, summary.SubmissionsNew)
	assert.Equal(t, 1, summary.SubmissionsUnchanged)

	subs := findSubmissions(t, s, "LEWA")
	require.Len(t, subs, 1)
	assert.True(t, firstScan.Equal(subs[0].FirstSeen))
	assert.True(t, secondScan.Equal(subs[0].LastChecked))
}

func TestCrawler_VersionBump(t *testing.T) {
	t.Parallel()

	// Given a crawled tree
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/10.01.2025/rfq.pdf": "rfq",
	})
	s := setupStore(t)
	runCrawl(t, root, s, firstScan)

	// When a file is added to the event folder and I crawl again
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/10.01.2025/addendum.pdf": "more",
	})
	summary := runCrawl(t, root, s, secondScan)

	// Then a second version exists and the newest comes first
	assert.Equal(t, 1, summary.SubmissionsNew)

	subs := findSubmissions(t, s, "LEWA")
	require.Len(t, subs, 2)
	history := rfqtrack.GroupVersions(subs)
	require.Len(t, history, 1)
	require.Len(t, history[0].Versions, 2)
	assert.Len(t, history[0].Latest().Files, 2)
	assert.True(t, secondScan.Equal(history[0].Latest().FirstSeen))
	assert.NotEqual(t, history[0].Versions[0].ContentHash, history[0].Versions[1].ContentHash)
}

func TestCrawler_ChangeDetection(t *testing.T) {
	t.Parallel()

	// Given a crawled event folder with two files
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/10.01.2025/rfq.pdf":   "rfq",
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/10.01.2025/specs.pdf": "specs",
	})
	s := setupStore(t)
	runCrawl(t, root, s, firstScan)
	before := findSubmissions(t, s, "LEWA")
	require.Len(t, before, 1)
	original := *before[0]

	// When one file's content changes but every name stays the same
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/10.01.2025/rfq.pdf": "rfq revised",
	})
	summary := runCrawl(t, root, s, secondScan)

	// Then exactly one version is added and the old one is left alone
	assert.Equal(t, 1, summary.SubmissionsNew)
	assert.Equal(t, 0, summary.SubmissionsUnchanged)

	subs := findSubmissions(t, s, "LEWA")
	require.Len(t, subs, 2)
	var old, latest *rfqtrack.Submission
	for _, sub := range subs {
		if sub.ID == original.ID {
			old = sub
		} else {
			latest = sub
		}
	}
	require.NotNil(t, old)
	require.NotNil(t, latest)

	assert.Equal(t, original.ContentHash, old.ContentHash)
	assert.Equal(t, original.Files, old.Files)
	assert.True(t, original.Date.Equal(old.Date))
	assert.True(t, firstScan.Equal(old.FirstSeen))
	assert.True(t, firstScan.Equal(old.LastChecked))

	assert.NotEqual(t, original.ContentHash, latest.ContentHash)
	assert.Equal(t, original.Files, latest.Files)
	assert.True(t, secondScan.Equal(latest.FirstSeen))
	assert.True(t, secondScan.Equal(latest.LastChecked))
}

func TestCrawler_Idempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/a/x.pdf":     "x",
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Received/b/y.pdf": "y",
		"12345/RFQ/SupplierA/Sent/c/z.pdf":                      "z",
	})
	s := setupStore(t)

	runCrawl(t, root, s, firstScan)
	runCrawl(t, root, s, secondScan)
	summary := runCrawl(t, root, s, secondScan.Add(time.Hour))

	assert.Equal(t, 0, summary.SubmissionsNew)
	assert.Equal(t, 3, summary.SubmissionsUnchanged)
	all, err := s.submissions.FindSubmissions(context.Background(), rfqtrack.SubmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCrawler_LayoutCompatibility(t *testing.T) {
	t.Parallel()

	// Given one project in each layout
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"12345/RFQ/SupplierA/Sent/2024-01-20/rfq.pdf":                     "a",
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Recieved/Quote 1/quote.pdf": "b",
		"24038/1-RFQ/Contractor RFQ Quotes/Bravo Build/SENT/tender/t.pdf": "c",
	})
	s := setupStore(t)

	// When I crawl
	summary := runCrawl(t, root, s, firstScan)

	// Then all partners and submissions are found with the right types
	assert.Equal(t, 2, summary.ProjectsScanned)
	assert.Equal(t, 3, summary.PartnersScanned)
	assert.Equal(t, 3, summary.SubmissionsNew)

	partners, err := s.partners.FindPartners(context.Background(), rfqtrack.PartnerFilter{})
	require.NoError(t, err)
	types := make(map[string]rfqtrack.PartnerType)
	for _, p := range partners {
		types[p.Name] = p.Type
	}
	assert.Equal(t, map[string]rfqtrack.PartnerType{
		"Bravo Build": rfqtrack.PartnerContractor,
		"LEWA":        rfqtrack.PartnerSupplier,
		"SupplierA":   rfqtrack.PartnerSupplier,
	}, types)

	received := findSubmissions(t, s, "LEWA")
	require.Len(t, received, 1)
	assert.Equal(t, rfqtrack.DirectionReceived, received[0].Direction)

	tender := findSubmissions(t, s, "Bravo Build")
	require.Len(t, tender, 1)
	assert.Equal(t, rfqtrack.PartnerContractor, tender[0].PartnerType)
	assert.Equal(t, rfqtrack.DirectionSent, tender[0].Direction)
}

func TestCrawler_FilterCorrectness(t *testing.T) {
	t.Parallel()

	// Given templates, archives, junk files and non-project folders
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/RFQ Template/Sent/x/t.doc": "template",
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/Template/t.doc":  "template",
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/a/rfq.pdf":       "rfq",
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/a/Thumbs.db":     "junk",
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Notes/n.txt":          "notes",
		"Archive 2019/1-RFQ/Supplier RFQ Quotes/Old/Sent/x/o.pdf":   "old",
		"Admin/RFQ/Office/Sent/x/o.pdf":                             "admin",
		"99999 archive/RFQ/Someone/Sent/x/o.pdf":                    "old",
	})
	s := setupStore(t)

	// When I crawl
	summary := runCrawl(t, root, s, firstScan)

	// Then only the real partner and event folder are recorded
	assert.Equal(t, 1, summary.ProjectsScanned)
	assert.Equal(t, 1, summary.PartnersScanned)
	assert.Equal(t, 1, summary.SubmissionsFound)

	names, err := s.partners.FindPartnerNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"LEWA"}, names)

	subs := findSubmissions(t, s, "LEWA")
	require.Len(t, subs, 1)
	assert.Equal(t, "a", subs[0].FolderName)
	assert.Equal(t, []string{filepath.Join(root, "24038", "1-RFQ", "Supplier RFQ Quotes", "LEWA", "Sent", "a", "rfq.pdf")}, subs[0].Files)
}

func TestCrawler_DryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/1-RFQ/Supplier RFQ Quotes/LEWA/Sent/a/rfq.pdf": "rfq",
		"12345/RFQ/SupplierA/Received/b/q.pdf":                "q",
	})
	s := setupStore(t)

	summary, err := newCrawler(root, s, firstScan).Crawl(context.Background(), rfqtrack.CrawlOptions{DryRun: true})

	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 2, summary.SubmissionsFound)
	assert.Equal(t, 0, summary.SubmissionsNew)
	require.Len(t, summary.Batches, 2)
	assert.Equal(t, "12345", summary.Batches[0].Project.Number)
	assert.Equal(t, "24038", summary.Batches[1].Project.Number)

	n, err := s.projects.CountProjects(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "dry run must not write")
}

func TestCrawler_DryRunWithoutPersister(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"24038/RFQ/LEWA/Sent/a/rfq.pdf": "rfq"})
	c := &crawl.Crawler{Root: root, Extractor: &fs.Extractor{}}

	summary, err := c.Crawl(context.Background(), rfqtrack.CrawlOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SubmissionsFound)
}

func TestCrawler_ConfigErrors(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name    string
		crawler *crawl.Crawler
		opts    rfqtrack.CrawlOptions
	}{
		{"missing root", &crawl.Crawler{Root: filepath.Join(t.TempDir(), "nope"), Extractor: &fs.Extractor{}}, rfqtrack.CrawlOptions{DryRun: true}},
		{"empty root", &crawl.Crawler{Extractor: &fs.Extractor{}}, rfqtrack.CrawlOptions{DryRun: true}},
		{"root is a file", &crawl.Crawler{Root: file, Extractor: &fs.Extractor{}}, rfqtrack.CrawlOptions{DryRun: true}},
		{"no extractor", &crawl.Crawler{Root: t.TempDir()}, rfqtrack.CrawlOptions{DryRun: true}},
		{"no persister", &crawl.Crawler{Root: t.TempDir(), Extractor: &fs.Extractor{}}, rfqtrack.CrawlOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.crawler.Crawl(context.Background(), tt.opts)

			require.Error(t, err)
			assert.Equal(t, rfqtrack.EINVALID, rfqtrack.ErrorCode(err))
		})
	}
}

func TestCrawler_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"24038/RFQ/LEWA/Sent/a/rfq.pdf": "rfq"})
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newCrawler(root, s, firstScan).Crawl(ctx, rfqtrack.CrawlOptions{})

	require.NoError(t, err)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, 0, summary.SubmissionsNew)
}

func TestCrawler_RecordErrorsDoNotAbort(t *testing.T) {
	t.Parallel()

	// Given storage that rejects one partner
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/RFQ/Broken/Sent/a/x.pdf": "x",
		"24038/RFQ/Good/Sent/b/y.pdf":   "y",
	})
	var reconciled []string
	c := &crawl.Crawler{
		Root:      root,
		Extractor: &fs.Extractor{},
		Persister: &crawl.Persister{
			Projects: &mock.ProjectService{
				UpsertProjectFn: func(context.Context, *rfqtrack.Project) error { return nil },
			},
			Partners: &mock.PartnerService{
				UpsertPartnerFn: func(_ context.Context, p *rfqtrack.Partner) error {
					if p.Name == "Broken" {
						return errors.New("disk full")
					}
					return nil
				},
			},
			Submissions: &mock.SubmissionService{
				ReconcileSubmissionFn: func(_ context.Context, sub *rfqtrack.Submission, _ time.Time) (rfqtrack.Reconcile, error) {
					reconciled = append(reconciled, sub.PartnerName)
					return rfqtrack.ReconcileInserted, nil
				},
			},
		},
	}

	// When I crawl
	summary, err := c.Crawl(context.Background(), rfqtrack.CrawlOptions{})

	// Then the failure is reported and the rest is stored
	require.NoError(t, err)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "persist partner", summary.Errors[0].Op)
	assert.Equal(t, []string{"Good"}, reconciled)
	assert.Equal(t, 1, summary.SubmissionsNew)
}

func TestCrawler_ReportsProgress(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"1/RFQ/A/Sent/a/x.pdf": "x",
		"2/RFQ/B/Sent/b/y.pdf": "y",
	})
	var events []crawl.ProgressEvent
	c := &crawl.Crawler{
		Root:        root,
		Extractor:   &fs.Extractor{},
		Concurrency: 2,
		Progress:    func(e crawl.ProgressEvent) { events = append(events, e) },
	}

	_, err := c.Crawl(context.Background(), rfqtrack.CrawlOptions{DryRun: true})

	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, crawl.ProgressStarted, events[0].Type)
	assert.Equal(t, 2, events[0].Total)
	assert.Equal(t, crawl.ProgressCompleted, events[1].Type)
	assert.Equal(t, crawl.ProgressCompleted, events[2].Type)
	assert.Equal(t, crawl.ProgressFinished, events[3].Type)
	assert.Equal(t, 2, events[3].Completed)
}

func TestCrawler_UnreadableEventFolder(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	// Given an event folder that cannot be read next to one that can
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/RFQ/LEWA/Sent/a/rfq.pdf": "rfq",
		"24038/RFQ/LEWA/Sent/b/rfq.pdf": "rfq",
	})
	locked := filepath.Join(root, "24038", "RFQ", "LEWA", "Sent", "a")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	s := setupStore(t)

	// When I crawl
	summary := runCrawl(t, root, s, firstScan)

	// Then the locked folder is reported and no version is stored for it
	assert.False(t, summary.Interrupted)
	assert.Equal(t, 1, summary.SubmissionsNew)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "list", summary.Errors[0].Op)
	assert.Equal(t, locked, summary.Errors[0].Path)

	subs := findSubmissions(t, s, "LEWA")
	require.Len(t, subs, 1)
	assert.Equal(t, "b", subs[0].FolderName)

	// And once readable it gets a single first version
	require.NoError(t, os.Chmod(locked, 0o755))
	summary = runCrawl(t, root, s, secondScan)

	assert.Empty(t, summary.Errors)
	assert.Equal(t, 1, summary.SubmissionsNew)
	history := rfqtrack.GroupVersions(findSubmissions(t, s, "LEWA"))
	require.Len(t, history, 2)
	for _, h := range history {
		assert.Len(t, h.Versions, 1, h.FolderName)
	}
}

func TestCrawler_LimiterFailureInterrupts(t *testing.T) {
	t.Parallel()

	// Given a limiter that gives up before its context does
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"24038/RFQ/LEWA/Sent/a/rfq.pdf": "rfq",
		"24038/RFQ/LEWA/Sent/b/rfq.pdf": "rfq",
	})
	s := setupStore(t)
	c := newCrawler(root, s, firstScan)
	c.Extractor = &fs.Extractor{
		Filter:  testFilter,
		Limiter: refusingLimiter{},
	}

	// When I crawl
	summary, err := c.Crawl(context.Background(), rfqtrack.CrawlOptions{})

	// Then the partial project is counted as interrupted and not stored
	require.NoError(t, err)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, 0, summary.ProjectsScanned)
	assert.Equal(t, 0, summary.SubmissionsNew)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "wait", summary.Errors[0].Op)
	assert.Equal(t, filepath.Join(root, "24038", "RFQ", "LEWA", "Sent"), summary.Errors[0].Path)

	n, err := s.projects.CountProjects(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type refusingLimiter struct{}

func (refusingLimiter) Wait(context.Context) error {
	return errors.New("rate: Wait(n=1) would exceed context deadline")
}

func TestCrawler_LeavesProblemLoggingToDecorator(t *testing.T) {
	t.Parallel()

	// Given an extractor that reports one problem
	root := t.TempDir()
	writeTree(t, root, map[string]string{"24038/RFQ/LEWA/Sent/a/rfq.pdf": "rfq"})
	var buf bytes.Buffer
	c := &crawl.Crawler{
		Root: root,
		Extractor: &mock.SubmissionExtractor{
			ExtractSubmissionsFn: func(_ context.Context, dir string, _ rfqtrack.Location) ([]*rfqtrack.Submission, []rfqtrack.CrawlError, error) {
				return nil, []rfqtrack.CrawlError{{Op: "list", Path: filepath.Join(dir, "a"), Message: "permission denied"}}, nil
			},
		},
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	}

	// When I crawl
	summary, err := c.Crawl(context.Background(), rfqtrack.CrawlOptions{DryRun: true})

	// Then the problem is in the summary but the crawler does not warn about it
	require.NoError(t, err)
	require.Len(t, summary.Errors, 1)
	assert.False(t, summary.Interrupted)
	assert.NotContains(t, buf.String(), "permission denied")
}
