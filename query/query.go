// Package query implements the read side used by the dashboard: project and
// partner listings, version histories and file statistics.
package query

import (
	"context"

	"github.com/fwojciec/rfqtrack"
)

// Ensure Service implements rfqtrack.QueryService at compile time.
var _ rfqtrack.QueryService = (*Service)(nil)

// Service answers dashboard queries from storage. File sizes are read
// through Sizer at query time.
type Service struct {
	Projects    rfqtrack.ProjectService
	Partners    rfqtrack.PartnerService
	Submissions rfqtrack.SubmissionService
	Sizer       rfqtrack.FileSizer
}

// FindProjects returns projects matching the filter.
func (s *Service) FindProjects(ctx context.Context, filter rfqtrack.ProjectFilter) ([]*rfqtrack.Project, error) {
	switch filter.SortBy {
	case "", rfqtrack.SortByNumber, rfqtrack.SortByLastScanned:
	default:
		return nil, rfqtrack.Errorf(rfqtrack.EINVALID, "invalid sort key %q", filter.SortBy)
	}
	if filter.ScannedFrom != nil && filter.ScannedTo != nil && filter.ScannedFrom.After(*filter.ScannedTo) {
		return nil, rfqtrack.Errorf(rfqtrack.EINVALID, "scan range start is after its end")
	}
	projects, err := s.Projects.FindProjects(ctx, filter)
	if err != nil {
		return nil, err
	}
	return nonNil(projects), nil
}

// FindPartners returns a project's partners sorted by name.
func (s *Service) FindPartners(ctx context.Context, projectNumber string, typ *rfqtrack.PartnerType) ([]*rfqtrack.Partner, error) {
	partners, err := s.Partners.FindPartners(ctx, rfqtrack.PartnerFilter{
		ProjectNumber: &projectNumber,
		Type:          typ,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(partners), nil
}

// PartnerNames returns the distinct partner names across all projects.
func (s *Service) PartnerNames(ctx context.Context) ([]string, error) {
	names, err := s.Partners.FindPartnerNames(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(names), nil
}

// FindSubmissionHistory returns a partner's version histories per direction.
// A partner without submissions yields empty histories.
func (s *Service) FindSubmissionHistory(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.SubmissionHistory, error) {
	subs, err := s.partnerSubmissions(ctx, projectNumber, partnerName)
	if err != nil {
		return nil, err
	}

	var sent, received []*rfqtrack.Submission
	for _, sub := range subs {
		switch sub.Direction {
		case rfqtrack.DirectionSent:
			sent = append(sent, sub)
		case rfqtrack.DirectionReceived:
			received = append(received, sub)
		}
	}

	return &rfqtrack.SubmissionHistory{
		ProjectNumber: projectNumber,
		PartnerName:   partnerName,
		Sent:          nonNil(rfqtrack.GroupVersions(sent)),
		Received:      nonNil(rfqtrack.GroupVersions(received)),
	}, nil
}

// SubmissionStats computes file statistics for one submission version.
func (s *Service) SubmissionStats(ctx context.Context, id string) (*rfqtrack.FolderStats, error) {
	subs, err := s.Submissions.FindSubmissions(ctx, rfqtrack.SubmissionFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, rfqtrack.Errorf(rfqtrack.ENOTFOUND, "submission not found")
	}
	stats := rfqtrack.ComputeFolderStats(subs[0].Files, s.Sizer)
	return &stats, nil
}

// PartnerStats totals a partner's submissions per direction. Every stored
// version counts.
func (s *Service) PartnerStats(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.PartnerStats, error) {
	subs, err := s.partnerSubmissions(ctx, projectNumber, partnerName)
	if err != nil {
		return nil, err
	}

	stats := &rfqtrack.PartnerStats{
		ProjectNumber: projectNumber,
		PartnerName:   partnerName,
	}
	for _, sub := range subs {
		folder := rfqtrack.ComputeFolderStats(sub.Files, s.Sizer)
		switch sub.Direction {
		case rfqtrack.DirectionSent:
			stats.SentSubmissions++
			stats.Sent.Add(folder)
		case rfqtrack.DirectionReceived:
			stats.ReceivedSubmissions++
			stats.Received.Add(folder)
		}
		stats.Total.Add(folder)
	}
	return stats, nil
}

// ProjectStats totals the submissions of a project's partners of one type.
func (s *Service) ProjectStats(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) (*rfqtrack.ProjectStats, error) {
	partners, subs, err := s.projectSubmissions(ctx, projectNumber, typ)
	if err != nil {
		return nil, err
	}

	stats := &rfqtrack.ProjectStats{
		ProjectNumber: projectNumber,
		PartnerType:   typ,
		Partners:      len(partners),
	}
	contacted := make(map[string]bool)
	responded := make(map[string]bool)
	for _, sub := range subs {
		switch sub.Direction {
		case rfqtrack.DirectionSent:
			contacted[sub.PartnerName] = true
		case rfqtrack.DirectionReceived:
			responded[sub.PartnerName] = true
		}
		stats.Total.Add(rfqtrack.ComputeFolderStats(sub.Files, s.Sizer))
	}
	stats.Contacted = len(contacted)
	stats.Responded = len(responded)
	return stats, nil
}

// PartnerActivity counts sent and received versions for each partner of one
// type, including partners without submissions.
func (s *Service) PartnerActivity(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) ([]*rfqtrack.PartnerActivity, error) {
	partners, subs, err := s.projectSubmissions(ctx, projectNumber, typ)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*rfqtrack.PartnerActivity, len(partners))
	activity := make([]*rfqtrack.PartnerActivity, 0, len(partners))
	for _, p := range partners {
		a := &rfqtrack.PartnerActivity{PartnerName: p.Name}
		byName[p.Name] = a
		activity = append(activity, a)
	}
	for _, sub := range subs {
		a := byName[sub.PartnerName]
		switch sub.Direction {
		case rfqtrack.DirectionSent:
			a.SentCount++
		case rfqtrack.DirectionReceived:
			a.ReceivedCount++
		}
	}
	return activity, nil
}

func (s *Service) partnerSubmissions(ctx context.Context, projectNumber, partnerName string) ([]*rfqtrack.Submission, error) {
	return s.Submissions.FindSubmissions(ctx, rfqtrack.SubmissionFilter{
		ProjectNumber: &projectNumber,
		PartnerName:   &partnerName,
	})
}

// projectSubmissions returns the partners of one type in a project with
// their submissions. Partner membership comes from the partner records, so
// a partner whose type changed is counted under its current type.
func (s *Service) projectSubmissions(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) ([]*rfqtrack.Partner, []*rfqtrack.Submission, error) {
	partners, err := s.FindPartners(ctx, projectNumber, &typ)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]bool, len(partners))
	for _, p := range partners {
		names[p.Name] = true
	}

	all, err := s.Submissions.FindSubmissions(ctx, rfqtrack.SubmissionFilter{ProjectNumber: &projectNumber})
	if err != nil {
		return nil, nil, err
	}
	var subs []*rfqtrack.Submission
	for _, sub := range all {
		if names[sub.PartnerName] {
			subs = append(subs, sub)
		}
	}
	return partners, subs, nil
}

// nonNil turns a nil slice into an empty one so results encode as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
