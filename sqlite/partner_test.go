package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerService_UpsertPartner(t *testing.T) {
	t.Parallel()

	t.Run("overwrites path and type of existing partner", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedPartner(t, db, "24038", "LEWA", rfqtrack.PartnerSupplier)
		svc := sqlite.NewPartnerService(db)
		ctx := context.Background()

		err := svc.UpsertPartner(ctx, &rfqtrack.Partner{
			ProjectNumber: "24038",
			Name:          "LEWA",
			Type:          rfqtrack.PartnerContractor,
			Path:          "/moved",
			LastScanned:   scanTime,
		})
		require.NoError(t, err)

		project := "24038"
		got, err := svc.FindPartners(ctx, rfqtrack.PartnerFilter{ProjectNumber: &project})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rfqtrack.PartnerContractor, got[0].Type)
		assert.Equal(t, "/moved", got[0].Path)
	})

	t.Run("stores empty type as supplier", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedPartner(t, db, "24038", "LEWA", rfqtrack.PartnerSupplier)
		svc := sqlite.NewPartnerService(db)
		partner := &rfqtrack.Partner{ProjectNumber: "24038", Name: "Other", LastScanned: scanTime}

		require.NoError(t, svc.UpsertPartner(context.Background(), partner))

		assert.Equal(t, rfqtrack.PartnerSupplier, partner.Type)
	})

	t.Run("returns error for invalid partner", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		err := sqlite.NewPartnerService(db).UpsertPartner(context.Background(), &rfqtrack.Partner{ProjectNumber: "24038"})
		assert.Equal(t, rfqtrack.EINVALID, rfqtrack.ErrorCode(err))
	})
}

func TestPartnerService_FindPartners(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	seedPartner(t, db, "24038", "Zeta", rfqtrack.PartnerSupplier)
	seedPartner(t, db, "24038", "Alpha", rfqtrack.PartnerContractor)
	seedPartner(t, db, "24038", "Mid", rfqtrack.PartnerSupplier)
	seedPartner(t, db, "12345", "Alpha", rfqtrack.PartnerSupplier)

	// A row written without a type reads back as a supplier.
	_, err := db.ExecContext(context.Background(),
		"UPDATE partners SET partner_type = '' WHERE project_number = '24038' AND partner_name = 'Mid'")
	require.NoError(t, err)

	svc := sqlite.NewPartnerService(db)
	project := "24038"

	t.Run("sorts alphabetically", func(t *testing.T) {
		t.Parallel()

		got, err := svc.FindPartners(context.Background(), rfqtrack.PartnerFilter{ProjectNumber: &project})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Alpha", got[0].Name)
		assert.Equal(t, "Mid", got[1].Name)
		assert.Equal(t, rfqtrack.PartnerSupplier, got[1].Type)
		assert.Equal(t, "Zeta", got[2].Name)
	})

	t.Run("filters by type treating empty as supplier", func(t *testing.T) {
		t.Parallel()

		typ := rfqtrack.PartnerSupplier
		got, err := svc.FindPartners(context.Background(), rfqtrack.PartnerFilter{ProjectNumber: &project, Type: &typ})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Mid", got[0].Name)
		assert.Equal(t, "Zeta", got[1].Name)
	})

	t.Run("lists distinct names", func(t *testing.T) {
		t.Parallel()

		got, err := svc.FindPartnerNames(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, got)
	})
}
