package mock

import (
	"context"

	"github.com/fwojciec/rfqtrack"
)

var _ rfqtrack.ProjectService = (*ProjectService)(nil)

// ProjectService is a mock implementation of rfqtrack.ProjectService.
type ProjectService struct {
	UpsertProjectFn       func(ctx context.Context, project *rfqtrack.Project) error
	FindProjectByNumberFn func(ctx context.Context, number string) (*rfqtrack.Project, error)
	FindProjectsFn        func(ctx context.Context, filter rfqtrack.ProjectFilter) ([]*rfqtrack.Project, error)
	CountProjectsFn       func(ctx context.Context) (int, error)
	DeleteProjectFn       func(ctx context.Context, number string) error
}

func (s *ProjectService) UpsertProject(ctx context.Context, project *rfqtrack.Project) error {
	return s.UpsertProjectFn(ctx, project)
}

func (s *ProjectService) FindProjectByNumber(ctx context.Context, number string) (*rfqtrack.Project, error) {
	return s.FindProjectByNumberFn(ctx, number)
}

func (s *ProjectService) FindProjects(ctx context.Context, filter rfqtrack.ProjectFilter) ([]*rfqtrack.Project, error) {
	return s.FindProjectsFn(ctx, filter)
}

func (s *ProjectService) CountProjects(ctx context.Context) (int, error) {
	return s.CountProjectsFn(ctx)
}

func (s *ProjectService) DeleteProject(ctx context.Context, number string) error {
	return s.DeleteProjectFn(ctx, number)
}
