// Package fs reads submission folders from the file system: it lists and
// fingerprints their files, extracts submission records and sizes files.
// It never writes to the tree it reads.
package fs

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/rfqtrack"
)

// Ensure Hasher implements rfqtrack.ContentHasher at compile time.
var _ rfqtrack.ContentHasher = (*Hasher)(nil)

// Hasher computes xxhash64 content fingerprints.
type Hasher struct{}

// HashFiles returns the 16 character hex digest of files below dir. Files are
// sorted by their slash-separated path relative to dir; each contributes its
// relative path and the xxhash64 of its bytes. Modification times play no part.
func (Hasher) HashFiles(dir string, files []string) (string, []rfqtrack.CrawlError) {
	type entry struct {
		rel string
		abs string
	}
	entries := make([]entry, 0, len(files))
	for _, abs := range files {
		rel, err := filepath.Rel(dir, abs)
		if err != nil {
			rel = abs
		}
		entries = append(entries, entry{rel: filepath.ToSlash(rel), abs: abs})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	var problems []rfqtrack.CrawlError
	digest := xxhash.New()
	for _, e := range entries {
		sum, err := hashFile(e.abs)
		if err != nil {
			problems = append(problems, rfqtrack.NewCrawlError("hash", e.abs, err))
			continue
		}
		fmt.Fprintf(digest, "%s\x00%016x\n", e.rel, sum)
	}
	return fmt.Sprintf("%016x", digest.Sum64()), problems
}

// HashFolder lists the files below dir that pass filter and hashes them.
// It returns an error if dir itself cannot be read.
func (h Hasher) HashFolder(dir string, filter rfqtrack.Filter) (string, []rfqtrack.CrawlError, error) {
	files, problems, err := ListFiles(dir, filter)
	if err != nil {
		return "", problems, err
	}
	hash, hashProblems := h.HashFiles(dir, files)
	return hash, append(problems, hashProblems...), nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

// ListFiles returns the absolute paths of regular files below dir, skipping
// folders and files excluded by filter. Paths are ordered by their
// slash-separated path relative to dir. Subfolders that cannot be read are
// reported as problems and skipped; an error is returned only when dir itself
// cannot be read.
func ListFiles(dir string, filter rfqtrack.Filter) ([]string, []rfqtrack.CrawlError, error) {
	type entry struct {
		rel string
		abs string
	}
	var entries []entry
	var problems []rfqtrack.CrawlError

	err := filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			problems = append(problems, rfqtrack.NewCrawlError("list", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && filter.SkipFolder(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || filter.SkipFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		entries = append(entries, entry{rel: filepath.ToSlash(rel), abs: path})
		return nil
	})
	if err != nil {
		return nil, problems, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	files := make([]string, len(entries))
	for i, e := range entries {
		files[i] = e.abs
	}
	return files, problems, nil
}
