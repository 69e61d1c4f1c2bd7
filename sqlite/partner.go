package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/rfqtrack"
)

// Compile-time interface verification.
var _ rfqtrack.PartnerService = (*PartnerService)(nil)

// PartnerService implements rfqtrack.PartnerService using SQLite.
type PartnerService struct {
	db *DB
}

// NewPartnerService creates a new PartnerService.
func NewPartnerService(db *DB) *PartnerService {
	return &PartnerService{db: db}
}

// UpsertPartner creates or updates a partner keyed by project number and name.
func (s *PartnerService) UpsertPartner(ctx context.Context, partner *rfqtrack.Partner) error {
	if err := partner.Validate(); err != nil {
		return err
	}
	if partner.Type == "" {
		partner.Type = rfqtrack.PartnerSupplier
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO partners (project_number, partner_name, partner_type, partner_path, last_scanned)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_number, partner_name) DO UPDATE SET
			partner_type = excluded.partner_type,
			partner_path = excluded.partner_path,
			last_scanned = excluded.last_scanned
	`, partner.ProjectNumber, partner.Name, string(partner.Type), partner.Path, formatTime(partner.LastScanned))

	return err
}

// FindPartners retrieves partners matching the filter, sorted by name.
func (s *PartnerService) FindPartners(ctx context.Context, filter rfqtrack.PartnerFilter) ([]*rfqtrack.Partner, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT project_number, partner_name, partner_type, partner_path, last_scanned FROM partners WHERE 1=1")

	if filter.ProjectNumber != nil {
		query.WriteString(" AND project_number = ?")
		args = append(args, *filter.ProjectNumber)
	}
	if filter.Name != nil {
		query.WriteString(" AND partner_name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY partner_name, project_number")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []*rfqtrack.Partner
	for rows.Next() {
		var partner rfqtrack.Partner
		var typ, lastScanned string

		if err := rows.Scan(&partner.ProjectNumber, &partner.Name, &typ, &partner.Path, &lastScanned); err != nil {
			return nil, err
		}
		partner.Type = rfqtrack.ParsePartnerType(typ)
		if partner.LastScanned, err = parseRFC3339(lastScanned, "last_scanned"); err != nil {
			return nil, err
		}

		// Type is compared after parsing so rows stored without a type
		// match the Supplier filter.
		if filter.Type != nil && partner.Type != *filter.Type {
			continue
		}
		partners = append(partners, &partner)
	}

	return partners, rows.Err()
}

// FindPartnerNames returns the distinct partner names across all projects.
func (s *PartnerService) FindPartnerNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT partner_name FROM partners ORDER BY partner_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
