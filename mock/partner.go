package mock

import (
	"context"

	"github.com/fwojciec/rfqtrack"
)

var _ rfqtrack.PartnerService = (*PartnerService)(nil)

// PartnerService is a mock implementation of rfqtrack.PartnerService.
type PartnerService struct {
	UpsertPartnerFn    func(ctx context.Context, partner *rfqtrack.Partner) error
	FindPartnersFn     func(ctx context.Context, filter rfqtrack.PartnerFilter) ([]*rfqtrack.Partner, error)
	FindPartnerNamesFn func(ctx context.Context) ([]string, error)
}

func (s *PartnerService) UpsertPartner(ctx context.Context, partner *rfqtrack.Partner) error {
	return s.UpsertPartnerFn(ctx, partner)
}

func (s *PartnerService) FindPartners(ctx context.Context, filter rfqtrack.PartnerFilter) ([]*rfqtrack.Partner, error) {
	return s.FindPartnersFn(ctx, filter)
}

func (s *PartnerService) FindPartnerNames(ctx context.Context) ([]string, error) {
	return s.FindPartnerNamesFn(ctx)
}
