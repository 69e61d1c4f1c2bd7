package rfqtrack

import (
	"context"
	"time"
)

// Project represents a top-level project folder under the crawl root.
type Project struct {
	Number      string    `json:"projectNumber"`
	Path        string    `json:"projectPath"`
	LastScanned time.Time `json:"lastScanned"`
}

// Validate returns an error if the project contains invalid fields.
func (p *Project) Validate() error {
	if p.Number == "" {
		return Errorf(EINVALID, "project number required")
	}
	if p.Path == "" {
		return Errorf(EINVALID, "project path required")
	}
	return nil
}

// ProjectService represents a service for managing projects.
type ProjectService interface {
	// UpsertProject creates the project or overwrites the path and
	// last-scanned time of the existing project with the same number.
	UpsertProject(ctx context.Context, project *Project) error

	// FindProjectByNumber retrieves a project by its number.
	// Returns ENOTFOUND if project does not exist.
	FindProjectByNumber(ctx context.Context, number string) (*Project, error)

	// FindProjects retrieves projects matching the filter.
	FindProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)

	// CountProjects returns the number of stored projects.
	CountProjects(ctx context.Context) (int, error)

	// DeleteProject permanently removes a project with its partners and
	// submissions. The crawler never calls it; stale projects are removed by hand.
	// Returns ENOTFOUND if project does not exist.
	DeleteProject(ctx context.Context, number string) error
}

// ProjectSort represents the sort key for project queries.
type ProjectSort string

// ProjectSort constants for ProjectFilter.
const (
	SortByNumber      ProjectSort = "number"
	SortByLastScanned ProjectSort = "last_scanned"
)

// ProjectFilter represents a filter for FindProjects.
type ProjectFilter struct {
	// NumberContains matches projects whose number contains the substring,
	// ignoring case.
	NumberContains *string `json:"numberContains"`

	// PartnerNames matches projects that have at least one of the partners.
	PartnerNames []string `json:"partnerNames"`

	ScannedFrom *time.Time `json:"scannedFrom"`
	ScannedTo   *time.Time `json:"scannedTo"`

	SortBy ProjectSort `json:"sortBy"`
	Desc   bool        `json:"desc"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
