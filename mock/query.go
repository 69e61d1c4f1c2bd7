package mock

import (
	"context"

	"github.com/fwojciec/rfqtrack"
)

var (
	_ rfqtrack.QueryService = (*QueryService)(nil)
	_ rfqtrack.FileSizer    = (*FileSizer)(nil)
)

// QueryService is a mock implementation of rfqtrack.QueryService.
type QueryService struct {
	FindProjectsFn          func(ctx context.Context, filter rfqtrack.ProjectFilter) ([]*rfqtrack.Project, error)
	FindPartnersFn          func(ctx context.Context, projectNumber string, typ *rfqtrack.PartnerType) ([]*rfqtrack.Partner, error)
	PartnerNamesFn          func(ctx context.Context) ([]string, error)
	FindSubmissionHistoryFn func(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.SubmissionHistory, error)
	SubmissionStatsFn       func(ctx context.Context, id string) (*rfqtrack.FolderStats, error)
	PartnerStatsFn          func(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.PartnerStats, error)
	ProjectStatsFn          func(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) (*rfqtrack.ProjectStats, error)
	PartnerActivityFn       func(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) ([]*rfqtrack.PartnerActivity, error)
}

func (s *QueryService) FindProjects(ctx context.Context, filter rfqtrack.ProjectFilter) ([]*rfqtrack.Project, error) {
	return s.FindProjectsFn(ctx, filter)
}

func (s *QueryService) FindPartners(ctx context.Context, projectNumber string, typ *rfqtrack.PartnerType) ([]*rfqtrack.Partner, error) {
	return s.FindPartnersFn(ctx, projectNumber, typ)
}

func (s *QueryService) PartnerNames(ctx context.Context) ([]string, error) {
	return s.PartnerNamesFn(ctx)
}

func (s *QueryService) FindSubmissionHistory(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.SubmissionHistory, error) {
	return s.FindSubmissionHistoryFn(ctx, projectNumber, partnerName)
}

func (s *QueryService) SubmissionStats(ctx context.Context, id string) (*rfqtrack.FolderStats, error) {
	return s.SubmissionStatsFn(ctx, id)
}

func (s *QueryService) PartnerStats(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.PartnerStats, error) {
	return s.PartnerStatsFn(ctx, projectNumber, partnerName)
}

func (s *QueryService) ProjectStats(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) (*rfqtrack.ProjectStats, error) {
	return s.ProjectStatsFn(ctx, projectNumber, typ)
}

func (s *QueryService) PartnerActivity(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) ([]*rfqtrack.PartnerActivity, error) {
	return s.PartnerActivityFn(ctx, projectNumber, typ)
}

// FileSizer is a mock implementation of rfqtrack.FileSizer.
type FileSizer struct {
	FileSizeFn func(path string) (int64, bool)
}

func (s *FileSizer) FileSize(path string) (int64, bool) {
	return s.FileSizeFn(path)
}
