package rfqtrack_test

import (
	"path/filepath"
	"testing"

	"github.com/fwojciec/rfqtrack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoot = filepath.FromSlash("/shares/projects")

func rootPath(rel string) string {
	return filepath.Join(testRoot, filepath.FromSlash(rel))
}

func TestClassifyPath(t *testing.T) {
	t.Parallel()

	t.Run("classifies current layout supplier partner", func(t *testing.T) {
		t.Parallel()

		loc, ok := rfqtrack.ClassifyPath(testRoot, rootPath("24038/1-RFQ/Supplier RFQ Quotes/LEWA"))

		require.True(t, ok)
		assert.Equal(t, rfqtrack.LayoutCurrent, loc.Layout)
		assert.Equal(t, "24038", loc.ProjectNumber)
		assert.Equal(t, "LEWA", loc.PartnerName)
		assert.Equal(t, rfqtrack.PartnerSupplier, loc.PartnerType)
		assert.True(t, loc.IsPartner())
	})

	t.Run("tags partners under contractor marker as contractors", func(t *testing.T) {
		t.Parallel()

		loc, ok := rfqtrack.ClassifyPath(testRoot, rootPath("24038/1-RFQ/Contractor RFQ Quotes/Bravo Build"))

		require.True(t, ok)
		assert.Equal(t, rfqtrack.PartnerContractor, loc.PartnerType)
		assert.Equal(t, "Bravo Build", loc.PartnerName)
	})

	t.Run("classifies legacy layout as supplier", func(t *testing.T) {
		t.Parallel()

		loc, ok := rfqtrack.ClassifyPath(testRoot, rootPath("12345/RFQ/SupplierA/Sent/2024-01-20"))

		require.True(t, ok)
		assert.Equal(t, rfqtrack.LayoutLegacy, loc.Layout)
		assert.Equal(t, "12345", loc.ProjectNumber)
		assert.Equal(t, "SupplierA", loc.PartnerName)
		assert.Equal(t, rfqtrack.PartnerSupplier, loc.PartnerType)
		assert.Equal(t, rfqtrack.DirectionSent, loc.Direction)
		assert.Equal(t, "2024-01-20", loc.FolderName)
	})

	t.Run("matches markers and direction ignoring case", func(t *testing.T) {
		t.Parallel()

		loc, ok := rfqtrack.ClassifyPath(testRoot, rootPath("24038/1-rfq/supplier rfq quotes/LEWA/RECEIVED"))

		require.True(t, ok)
		assert.Equal(t, rfqtrack.LayoutCurrent, loc.Layout)
		assert.Equal(t, rfqtrack.DirectionReceived, loc.Direction)
		assert.True(t, loc.IsDirection())
	})

	t.Run("accepts recieved misspelling", func(t *testing.T) {
		t.Parallel()

		loc, ok := rfqtrack.ClassifyPath(testRoot, rootPath("24038/1-RFQ/Supplier RFQ Quotes/LEWA/Recieved/10.01.2025"))

		require.True(t, ok)
		assert.Equal(t, rfqtrack.DirectionReceived, loc.Direction)
		assert.Equal(t, "10.01.2025", loc.FolderName)
	})

	t.Run("rejects unknown folder after partner", func(t *testing.T) {
		t.Parallel()

		_, ok := rfqtrack.ClassifyPath(testRoot, rootPath("24038/1-RFQ/Supplier RFQ Quotes/LEWA/Notes"))

		assert.False(t, ok)
	})

	t.Run("rejects paths above partner level", func(t *testing.T) {
		t.Parallel()

		for _, rel := range []string{
			"24038",
			"24038/1-RFQ",
			"24038/1-RFQ/Supplier RFQ Quotes",
			"12345/RFQ",
		} {
			_, ok := rfqtrack.ClassifyPath(testRoot, rootPath(rel))
			assert.False(t, ok, rel)
		}
	})

	t.Run("rejects unknown quotes marker in current layout", func(t *testing.T) {
		t.Parallel()

		_, ok := rfqtrack.ClassifyPath(testRoot, rootPath("24038/1-RFQ/Customer RFQ/LEWA"))

		assert.False(t, ok)
	})

	t.Run("rejects paths outside the root", func(t *testing.T) {
		t.Parallel()

		_, ok := rfqtrack.ClassifyPath(testRoot, filepath.FromSlash("/elsewhere/24038/RFQ/LEWA"))
		assert.False(t, ok)

		_, ok = rfqtrack.ClassifyPath(testRoot, testRoot)
		assert.False(t, ok)
	})

	t.Run("classifies both layouts side by side", func(t *testing.T) {
		t.Parallel()

		legacy, ok := rfqtrack.ClassifyPath(testRoot, rootPath("12345/RFQ/SupplierA"))
		require.True(t, ok)
		current, ok := rfqtrack.ClassifyPath(testRoot, rootPath("24038/1-RFQ/Supplier RFQ Quotes/LEWA"))
		require.True(t, ok)

		assert.Equal(t, rfqtrack.LayoutLegacy, legacy.Layout)
		assert.Equal(t, rfqtrack.LayoutCurrent, current.Layout)
	})
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want rfqtrack.Direction
		ok   bool
	}{
		{"Sent", rfqtrack.DirectionSent, true},
		{"sent", rfqtrack.DirectionSent, true},
		{"Received", rfqtrack.DirectionReceived, true},
		{"Recieved", rfqtrack.DirectionReceived, true},
		{"RECIEVED", rfqtrack.DirectionReceived, true},
		{"Drafts", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := rfqtrack.ParseDirection(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePartnerType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rfqtrack.PartnerContractor, rfqtrack.ParsePartnerType("Contractor"))
	assert.Equal(t, rfqtrack.PartnerContractor, rfqtrack.ParsePartnerType("contractor"))
	assert.Equal(t, rfqtrack.PartnerSupplier, rfqtrack.ParsePartnerType("Supplier"))
	assert.Equal(t, rfqtrack.PartnerSupplier, rfqtrack.ParsePartnerType(""))
	assert.Equal(t, rfqtrack.PartnerSupplier, rfqtrack.ParsePartnerType("Vendor"))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	f := rfqtrack.Filter{
		FolderTags: []string{"Template", "archive"},
		FileTags:   []string{".db", "zip"},
	}

	t.Run("skips folders containing a tag ignoring case", func(t *testing.T) {
		t.Parallel()

		assert.True(t, f.SkipFolder("RFQ Template"))
		assert.True(t, f.SkipFolder("templates"))
		assert.True(t, f.SkipFolder("Old Archive 2019"))
		assert.False(t, f.SkipFolder("LEWA"))
	})

	t.Run("skips files by extension ignoring case", func(t *testing.T) {
		t.Parallel()

		assert.True(t, f.SkipFile("Thumbs.db"))
		assert.True(t, f.SkipFile("THUMBS.DB"))
		assert.True(t, f.SkipFile("package.zip"))
		assert.False(t, f.SkipFile("quote.pdf"))
		assert.False(t, f.SkipFile("dbnotes.txt"))
	})

	t.Run("zero filter skips nothing", func(t *testing.T) {
		t.Parallel()

		var zero rfqtrack.Filter
		assert.False(t, zero.SkipFolder("Template"))
		assert.False(t, zero.SkipFile("Thumbs.db"))
	})
}
