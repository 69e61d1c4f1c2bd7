package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/rfqtrack"
)

// Persister reconciles scanned batches with storage.
type Persister struct {
	Projects    rfqtrack.ProjectService
	Partners    rfqtrack.PartnerService
	Submissions rfqtrack.SubmissionService
}

// PersistResult counts the outcome of persisting one batch.
type PersistResult struct {
	New       int
	Unchanged int
	Errors    []rfqtrack.CrawlError
}

// Persist upserts the batch's project and partners and reconciles its
// submissions, stamping everything with scannedAt. A failed record is
// reported and the rest of the batch is still persisted.
func (p *Persister) Persist(ctx context.Context, batch *rfqtrack.Batch, scannedAt time.Time) PersistResult {
	var res PersistResult

	project := batch.Project
	project.LastScanned = scannedAt
	if err := p.Projects.UpsertProject(ctx, project); err != nil {
		// Partners and submissions reference the project row.
		res.Errors = append(res.Errors, rfqtrack.NewCrawlError("persist project", project.Path, err))
		return res
	}

	failed := make(map[string]bool)
	for _, partner := range batch.Partners {
		partner.LastScanned = scannedAt
		if err := p.Partners.UpsertPartner(ctx, partner); err != nil {
			failed[partner.Name] = true
			res.Errors = append(res.Errors, rfqtrack.NewCrawlError("persist partner", partner.Path, err))
		}
	}

	for _, sub := range batch.Submissions {
		if failed[sub.PartnerName] {
			continue
		}
		outcome, err := p.Submissions.ReconcileSubmission(ctx, sub, scannedAt)
		if err != nil {
			res.Errors = append(res.Errors, rfqtrack.NewCrawlError("persist submission", sub.FolderPath, err))
			continue
		}
		switch outcome {
		case rfqtrack.ReconcileInserted:
			res.New++
		case rfqtrack.ReconcileUnchanged:
			res.Unchanged++
		}
	}

	return res
}
