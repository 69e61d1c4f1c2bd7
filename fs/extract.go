package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/rfqtrack"
)

// Ensure Extractor implements rfqtrack.SubmissionExtractor at compile time.
var _ rfqtrack.SubmissionExtractor = (*Extractor)(nil)

// Limiter paces access to the file system. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Extractor turns the event folders of a Sent or Received folder into
// submissions.
type Extractor struct {
	Filter rfqtrack.Filter

	// Hasher fingerprints each event folder. Defaults to Hasher.
	Hasher rfqtrack.ContentHasher

	// Limiter, if set, is waited on before each event folder is read.
	Limiter Limiter
}

// ExtractSubmissions returns one submission per child folder of dir. Files
// directly inside dir are ignored. Event folders that cannot be read are
// reported and skipped. It returns an error when ctx is done or the limiter
// refuses to wait; a limiter failure is also reported as a "wait" problem.
func (e *Extractor) ExtractSubmissions(ctx context.Context, dir string, loc rfqtrack.Location) ([]*rfqtrack.Submission, []rfqtrack.CrawlError, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, []rfqtrack.CrawlError{rfqtrack.NewCrawlError("read", dir, err)}, nil
	}

	hasher := e.Hasher
	if hasher == nil {
		hasher = Hasher{}
	}

	var subs []*rfqtrack.Submission
	var problems []rfqtrack.CrawlError
	for _, entry := range entries {
		if !entry.IsDir() || e.Filter.SkipFolder(entry.Name()) {
			continue
		}
		if e.Limiter != nil {
			if err := e.Limiter.Wait(ctx); err != nil {
				if ctx.Err() == nil {
					problems = append(problems, rfqtrack.NewCrawlError("wait", dir, err))
				}
				return subs, problems, err
			}
		}
		if err := ctx.Err(); err != nil {
			return subs, problems, err
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			problems = append(problems, rfqtrack.NewCrawlError("stat", path, err))
			continue
		}

		files, listProblems, err := ListFiles(path, e.Filter)
		problems = append(problems, listProblems...)
		if err != nil {
			problems = append(problems, rfqtrack.NewCrawlError("list", path, err))
			continue
		}
		hash, hashProblems := hasher.HashFiles(path, files)
		problems = append(problems, hashProblems...)

		if files == nil {
			files = []string{}
		}
		subs = append(subs, &rfqtrack.Submission{
			ProjectNumber: loc.ProjectNumber,
			PartnerName:   loc.PartnerName,
			PartnerType:   loc.PartnerType,
			Direction:     loc.Direction,
			FolderName:    entry.Name(),
			FolderPath:    path,
			Date:          birthTime(path, info),
			Files:         files,
			ContentHash:   hash,
		})
	}
	return subs, problems, nil
}
