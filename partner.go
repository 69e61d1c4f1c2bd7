package rfqtrack

import (
	"context"
	"strings"
	"time"
)

// PartnerType distinguishes suppliers from contractors.
type PartnerType string

// PartnerType constants.
const (
	PartnerSupplier   PartnerType = "Supplier"
	PartnerContractor PartnerType = "Contractor"
)

// ParsePartnerType converts a stored or user supplied value into a PartnerType.
// Empty and unknown values map to PartnerSupplier, which is what layouts
// without the supplier/contractor split imply.
func ParsePartnerType(s string) PartnerType {
	if strings.EqualFold(strings.TrimSpace(s), string(PartnerContractor)) {
		return PartnerContractor
	}
	return PartnerSupplier
}

// Partner represents a supplier or contractor folder within a project.
type Partner struct {
	ProjectNumber string      `json:"projectNumber"`
	Name          string      `json:"partnerName"`
	Type          PartnerType `json:"partnerType"`
	Path          string      `json:"partnerPath"`
	LastScanned   time.Time   `json:"lastScanned"`
}

// Validate returns an error if the partner contains invalid fields.
func (p *Partner) Validate() error {
	if p.ProjectNumber == "" {
		return Errorf(EINVALID, "partner project number required")
	}
	if p.Name == "" {
		return Errorf(EINVALID, "partner name required")
	}
	return nil
}

// PartnerService represents a service for managing partners.
type PartnerService interface {
	// UpsertPartner creates the partner or overwrites the path and type of the
	// existing partner with the same project number and name. An empty type is
	// stored as PartnerSupplier.
	UpsertPartner(ctx context.Context, partner *Partner) error

	// FindPartners retrieves partners matching the filter, sorted by name.
	FindPartners(ctx context.Context, filter PartnerFilter) ([]*Partner, error)

	// FindPartnerNames returns the distinct partner names across all projects,
	// sorted alphabetically.
	FindPartnerNames(ctx context.Context) ([]string, error)
}

// PartnerFilter represents a filter for FindPartners.
type PartnerFilter struct {
	ProjectNumber *string      `json:"projectNumber"`
	Name          *string      `json:"partnerName"`
	Type          *PartnerType `json:"partnerType"`
}
