package rfqtrack

import "context"

// QueryService is the read-side API used by the dashboard.
type QueryService interface {
	// FindProjects returns projects matching the filter.
	FindProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)

	// FindPartners returns a project's partners sorted by name, optionally
	// restricted to one partner type.
	FindPartners(ctx context.Context, projectNumber string, typ *PartnerType) ([]*Partner, error)

	// PartnerNames returns the distinct partner names across all projects.
	PartnerNames(ctx context.Context) ([]string, error)

	// FindSubmissionHistory returns a partner's submissions split by
	// direction and grouped into version histories.
	FindSubmissionHistory(ctx context.Context, projectNumber, partnerName string) (*SubmissionHistory, error)

	// SubmissionStats computes file count and size for one submission version.
	// Returns ENOTFOUND if the submission does not exist.
	SubmissionStats(ctx context.Context, id string) (*FolderStats, error)

	// PartnerStats totals file counts and sizes over a partner's submissions.
	PartnerStats(ctx context.Context, projectNumber, partnerName string) (*PartnerStats, error)

	// ProjectStats totals a project's partners of one type.
	ProjectStats(ctx context.Context, projectNumber string, typ PartnerType) (*ProjectStats, error)

	// PartnerActivity returns sent and received submission counts for each
	// partner of one type, sorted by partner name.
	PartnerActivity(ctx context.Context, projectNumber string, typ PartnerType) ([]*PartnerActivity, error)
}

// FileSizer reports the size of a file on disk.
type FileSizer interface {
	// FileSize returns the size of the file and false when it no longer
	// exists or cannot be read.
	FileSize(path string) (int64, bool)
}

// FolderStats summarises the files of one submission or a set of them.
type FolderStats struct {
	// FileCount counts every recorded file, present on disk or not.
	FileCount int `json:"fileCount"`
	// ExistingCount counts the files still present on disk.
	ExistingCount int `json:"existingCount"`
	// TotalSize sums the sizes of existing files only.
	TotalSize int64 `json:"totalSize"`
}

// Add accumulates o into s.
func (s *FolderStats) Add(o FolderStats) {
	s.FileCount += o.FileCount
	s.ExistingCount += o.ExistingCount
	s.TotalSize += o.TotalSize
}

// ComputeFolderStats computes statistics for a list of files. Missing files
// count towards FileCount but not towards TotalSize.
func ComputeFolderStats(files []string, sizer FileSizer) FolderStats {
	stats := FolderStats{FileCount: len(files)}
	for _, path := range files {
		size, ok := sizer.FileSize(path)
		if !ok {
			continue
		}
		stats.ExistingCount++
		stats.TotalSize += size
	}
	return stats
}

// PartnerStats totals a partner's submissions.
type PartnerStats struct {
	ProjectNumber       string      `json:"projectNumber"`
	PartnerName         string      `json:"partnerName"`
	SentSubmissions     int         `json:"sentSubmissions"`
	ReceivedSubmissions int         `json:"receivedSubmissions"`
	Sent                FolderStats `json:"sent"`
	Received            FolderStats `json:"received"`
	Total               FolderStats `json:"total"`
}

// ProjectStats totals a project's partners of one type.
type ProjectStats struct {
	ProjectNumber string      `json:"projectNumber"`
	PartnerType   PartnerType `json:"partnerType"`
	Partners      int         `json:"partners"`
	// Contacted counts distinct partners with at least one sent submission.
	Contacted int `json:"contacted"`
	// Responded counts distinct partners with at least one received submission.
	Responded int         `json:"responded"`
	Total     FolderStats `json:"total"`
}

// PartnerActivity counts a partner's submission versions per direction.
type PartnerActivity struct {
	PartnerName   string `json:"partnerName"`
	SentCount     int    `json:"sentCount"`
	ReceivedCount int    `json:"receivedCount"`
}
