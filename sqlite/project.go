package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/rfqtrack"
)

// Compile-time interface verification.
var _ rfqtrack.ProjectService = (*ProjectService)(nil)

// ProjectService implements rfqtrack.ProjectService using SQLite.
type ProjectService struct {
	db *DB
}

// NewProjectService creates a new ProjectService.
func NewProjectService(db *DB) *ProjectService {
	return &ProjectService{db: db}
}

// UpsertProject creates or updates a project keyed by its number.
func (s *ProjectService) UpsertProject(ctx context.Context, project *rfqtrack.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (project_number, project_path, last_scanned)
		VALUES (?, ?, ?)
		ON CONFLICT(project_number) DO UPDATE SET
			project_path = excluded.project_path,
			last_scanned = excluded.last_scanned
	`, project.Number, project.Path, formatTime(project.LastScanned))

	return err
}

// FindProjectByNumber retrieves a project by its number.
func (s *ProjectService) FindProjectByNumber(ctx context.Context, number string) (*rfqtrack.Project, error) {
	var project rfqtrack.Project
	var lastScanned string

	err := s.db.QueryRowContext(ctx, `
		SELECT project_number, project_path, last_scanned
		FROM projects
		WHERE project_number = ?
	`, number).Scan(&project.Number, &project.Path, &lastScanned)

	if err == sql.ErrNoRows {
		return nil, rfqtrack.Errorf(rfqtrack.ENOTFOUND, "project not found")
	}
	if err != nil {
		return nil, err
	}

	if project.LastScanned, err = parseRFC3339(lastScanned, "last_scanned"); err != nil {
		return nil, err
	}
	return &project, nil
}

// FindProjects retrieves projects matching the filter.
func (s *ProjectService) FindProjects(ctx context.Context, filter rfqtrack.ProjectFilter) ([]*rfqtrack.Project, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT project_number, project_path, last_scanned FROM projects WHERE 1=1")

	if filter.NumberContains != nil && *filter.NumberContains != "" {
		query.WriteString(` AND project_number LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(*filter.NumberContains)+"%")
	}
	if len(filter.PartnerNames) > 0 {
		query.WriteString(" AND EXISTS (SELECT 1 FROM partners p WHERE p.project_number = projects.project_number AND p.partner_name IN (")
		query.WriteString(placeholders(len(filter.PartnerNames)))
		query.WriteString("))")
		for _, name := range filter.PartnerNames {
			args = append(args, name)
		}
	}
	if filter.ScannedFrom != nil {
		query.WriteString(" AND last_scanned >= ?")
		args = append(args, formatTime(*filter.ScannedFrom))
	}
	if filter.ScannedTo != nil {
		query.WriteString(" AND last_scanned <= ?")
		args = append(args, formatTime(*filter.ScannedTo))
	}

	order := "ASC"
	if filter.Desc {
		order = "DESC"
	}
	switch filter.SortBy {
	case rfqtrack.SortByLastScanned:
		query.WriteString(" ORDER BY last_scanned " + order + ", project_number ASC")
	case rfqtrack.SortByNumber, "":
		query.WriteString(" ORDER BY project_number " + order)
	default:
		return nil, rfqtrack.Errorf(rfqtrack.EINVALID, "invalid sort key %q", filter.SortBy)
	}

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*rfqtrack.Project
	for rows.Next() {
		var project rfqtrack.Project
		var lastScanned string

		if err := rows.Scan(&project.Number, &project.Path, &lastScanned); err != nil {
			return nil, err
		}
		if project.LastScanned, err = parseRFC3339(lastScanned, "last_scanned"); err != nil {
			return nil, err
		}

		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// CountProjects returns the number of stored projects.
func (s *ProjectService) CountProjects(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&n)
	return n, err
}

// DeleteProject permanently removes a project with its partners and submissions.
func (s *ProjectService) DeleteProject(ctx context.Context, number string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE project_number = ?", number)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return rfqtrack.Errorf(rfqtrack.ENOTFOUND, "project not found")
	}

	return nil
}
