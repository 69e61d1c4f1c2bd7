package mock

import (
	"context"
	"time"

	"github.com/fwojciec/rfqtrack"
)

var _ rfqtrack.SubmissionService = (*SubmissionService)(nil)

// SubmissionService is a mock implementation of rfqtrack.SubmissionService.
type SubmissionService struct {
	ReconcileSubmissionFn func(ctx context.Context, sub *rfqtrack.Submission, checkedAt time.Time) (rfqtrack.Reconcile, error)
	FindSubmissionsFn     func(ctx context.Context, filter rfqtrack.SubmissionFilter) ([]*rfqtrack.Submission, error)
}

func (s *SubmissionService) ReconcileSubmission(ctx context.Context, sub *rfqtrack.Submission, checkedAt time.Time) (rfqtrack.Reconcile, error) {
	return s.ReconcileSubmissionFn(ctx, sub, checkedAt)
}

func (s *SubmissionService) FindSubmissions(ctx context.Context, filter rfqtrack.SubmissionFilter) ([]*rfqtrack.Submission, error) {
	return s.FindSubmissionsFn(ctx, filter)
}
