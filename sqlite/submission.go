package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ rfqtrack.SubmissionService = (*SubmissionService)(nil)

// SubmissionService implements rfqtrack.SubmissionService using SQLite.
type SubmissionService struct {
	db *DB
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(db *DB) *SubmissionService {
	return &SubmissionService{db: db}
}

// ReconcileSubmission inserts sub as a new version, or refreshes the
// last_checked time of the stored version with the same content hash.
// On return sub carries the stored ID and timestamps.
func (s *SubmissionService) ReconcileSubmission(ctx context.Context, sub *rfqtrack.Submission, checkedAt time.Time) (rfqtrack.Reconcile, error) {
	if err := sub.Validate(); err != nil {
		return 0, err
	}
	if sub.PartnerType == "" {
		sub.PartnerType = rfqtrack.PartnerSupplier
	}

	files := sub.Files
	if files == nil {
		files = []string{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return 0, fmt.Errorf("failed to encode files: %w", err)
	}

	id := uuid.New().String()
	checked := formatTime(checkedAt)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (
			id, project_number, partner_name, partner_type, direction, folder_name,
			folder_path, date, files, content_hash, first_seen, last_checked
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_number, partner_name, folder_name, content_hash) DO NOTHING
	`, id, sub.ProjectNumber, sub.PartnerName, string(sub.PartnerType), string(sub.Direction), sub.FolderName,
		sub.FolderPath, formatTime(sub.Date), string(filesJSON), sub.ContentHash, checked, checked)
	if err != nil {
		return 0, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		sub.ID = id
		sub.FirstSeen = checkedAt
		sub.LastChecked = checkedAt
		return rfqtrack.ReconcileInserted, nil
	}

	var firstSeen string
	err = s.db.QueryRowContext(ctx, `
		UPDATE submissions
		SET last_checked = ?
		WHERE project_number = ? AND partner_name = ? AND folder_name = ? AND content_hash = ?
		RETURNING id, first_seen
	`, checked, sub.ProjectNumber, sub.PartnerName, sub.FolderName, sub.ContentHash).Scan(&sub.ID, &firstSeen)
	if err == sql.ErrNoRows {
		return 0, rfqtrack.Errorf(rfqtrack.ECONFLICT, "submission %s/%s/%s changed during reconcile",
			sub.ProjectNumber, sub.PartnerName, sub.FolderName)
	}
	if err != nil {
		return 0, err
	}
	if sub.FirstSeen, err = parseRFC3339(firstSeen, "first_seen"); err != nil {
		return 0, err
	}
	sub.LastChecked = checkedAt

	return rfqtrack.ReconcileUnchanged, nil
}

// FindSubmissions retrieves submissions matching the filter, ordered by date
// and first-seen time, newest first. The partner type comes from the partner
// record, so a reclassified partner's older versions follow it.
func (s *SubmissionService) FindSubmissions(ctx context.Context, filter rfqtrack.SubmissionFilter) ([]*rfqtrack.Submission, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT s.id, s.project_number, s.partner_name, COALESCE(NULLIF(p.partner_type, ''), s.partner_type),
		s.direction, s.folder_name, s.folder_path, s.date, s.files, s.content_hash, s.first_seen, s.last_checked
		FROM submissions s
		LEFT JOIN partners p ON p.project_number = s.project_number AND p.partner_name = s.partner_name
		WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND s.id = ?")
		args = append(args, *filter.ID)
	}
	if filter.ProjectNumber != nil {
		query.WriteString(" AND s.project_number = ?")
		args = append(args, *filter.ProjectNumber)
	}
	if filter.PartnerName != nil {
		query.WriteString(" AND s.partner_name = ?")
		args = append(args, *filter.PartnerName)
	}
	if filter.PartnerType != nil {
		query.WriteString(" AND COALESCE(NULLIF(p.partner_type, ''), s.partner_type) = ?")
		args = append(args, string(*filter.PartnerType))
	}
	if filter.Direction != nil {
		query.WriteString(" AND s.direction = ?")
		args = append(args, string(*filter.Direction))
	}
	if filter.FolderName != nil {
		query.WriteString(" AND s.folder_name = ?")
		args = append(args, *filter.FolderName)
	}

	query.WriteString(" ORDER BY s.date DESC, s.first_seen DESC, s.folder_name ASC")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*rfqtrack.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

func scanSubmission(rows *sql.Rows) (*rfqtrack.Submission, error) {
	var sub rfqtrack.Submission
	var typ, direction, date, files, firstSeen, lastChecked string

	if err := rows.Scan(&sub.ID, &sub.ProjectNumber, &sub.PartnerName, &typ, &direction, &sub.FolderName,
		&sub.FolderPath, &date, &files, &sub.ContentHash, &firstSeen, &lastChecked); err != nil {
		return nil, err
	}

	sub.PartnerType = rfqtrack.ParsePartnerType(typ)
	sub.Direction = rfqtrack.Direction(direction)

	if err := json.Unmarshal([]byte(files), &sub.Files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}

	var err error
	if sub.Date, err = parseRFC3339(date, "date"); err != nil {
		return nil, err
	}
	if sub.FirstSeen, err = parseRFC3339(firstSeen, "first_seen"); err != nil {
		return nil, err
	}
	if sub.LastChecked, err = parseRFC3339(lastChecked, "last_checked"); err != nil {
		return nil, err
	}
	return &sub, nil
}
