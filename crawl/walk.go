package crawl

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fwojciec/rfqtrack"
)

// walkProject visits the folders below dir down to maxDepth levels, skipping
// folders excluded by filter. When visit returns true the folder's subtree is
// not descended into. Unreadable folders are passed to report and skipped.
// The walk stops with ctx's error once ctx is done.
func walkProject(
	ctx context.Context,
	dir string,
	maxDepth int,
	filter rfqtrack.Filter,
	visit func(path string) bool,
	report func(rfqtrack.CrawlError),
) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			report(rfqtrack.NewCrawlError("read", path, err))
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if filter.SkipFolder(d.Name()) {
			return filepath.SkipDir
		}
		if visit(path) {
			return filepath.SkipDir
		}
		if depth(dir, path) >= maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
}

// depth returns how many levels path lies below dir.
func depth(dir, path string) int {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
