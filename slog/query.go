package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/rfqtrack"
)

// Ensure LoggingQueryService implements rfqtrack.QueryService.
var _ rfqtrack.QueryService = (*LoggingQueryService)(nil)

// LoggingQueryService wraps a QueryService with debug logging.
type LoggingQueryService struct {
	next   rfqtrack.QueryService
	logger *slog.Logger
}

// NewLoggingQueryService creates a new LoggingQueryService.
func NewLoggingQueryService(next rfqtrack.QueryService, logger *slog.Logger) *LoggingQueryService {
	return &LoggingQueryService{next: next, logger: logger}
}

func (s *LoggingQueryService) log(ctx context.Context, op string, begin time.Time, err error, args ...any) {
	args = append(args, "duration", time.Since(begin), "err", err)
	level := slog.LevelDebug
	if err != nil && rfqtrack.ErrorCode(err) == rfqtrack.EINTERNAL {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, op, args...)
}

func (s *LoggingQueryService) FindProjects(ctx context.Context, filter rfqtrack.ProjectFilter) (projects []*rfqtrack.Project, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "find projects", begin, err, "sort", filter.SortBy, "desc", filter.Desc, "count", len(projects))
	}(time.Now())
	return s.next.FindProjects(ctx, filter)
}

func (s *LoggingQueryService) FindPartners(ctx context.Context, projectNumber string, typ *rfqtrack.PartnerType) (partners []*rfqtrack.Partner, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "find partners", begin, err, "project", projectNumber, "count", len(partners))
	}(time.Now())
	return s.next.FindPartners(ctx, projectNumber, typ)
}

func (s *LoggingQueryService) PartnerNames(ctx context.Context) (names []string, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "partner names", begin, err, "count", len(names))
	}(time.Now())
	return s.next.PartnerNames(ctx)
}

func (s *LoggingQueryService) FindSubmissionHistory(ctx context.Context, projectNumber, partnerName string) (history *rfqtrack.SubmissionHistory, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "submission history", begin, err, "project", projectNumber, "partner", partnerName)
	}(time.Now())
	return s.next.FindSubmissionHistory(ctx, projectNumber, partnerName)
}

func (s *LoggingQueryService) SubmissionStats(ctx context.Context, id string) (stats *rfqtrack.FolderStats, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "submission stats", begin, err, "id", id)
	}(time.Now())
	return s.next.SubmissionStats(ctx, id)
}

func (s *LoggingQueryService) PartnerStats(ctx context.Context, projectNumber, partnerName string) (stats *rfqtrack.PartnerStats, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "partner stats", begin, err, "project", projectNumber, "partner", partnerName)
	}(time.Now())
	return s.next.PartnerStats(ctx, projectNumber, partnerName)
}

func (s *LoggingQueryService) ProjectStats(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) (stats *rfqtrack.ProjectStats, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "project stats", begin, err, "project", projectNumber, "type", typ)
	}(time.Now())
	return s.next.ProjectStats(ctx, projectNumber, typ)
}

func (s *LoggingQueryService) PartnerActivity(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) (activity []*rfqtrack.PartnerActivity, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "partner activity", begin, err, "project", projectNumber, "type", typ, "count", len(activity))
	}(time.Now())
	return s.next.PartnerActivity(ctx, projectNumber, typ)
}
