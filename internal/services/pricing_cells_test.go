// internal/services/pricing_cells_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchHeaderEnglish(t *testing.T) {
	columns := MatchHeader([]string{"Wilaya", "Region", "Housing", "Commercial", "Price per sqm"})

	assert.Equal(t, 0, columns[FieldWilaya])
	assert.Equal(t, 1, columns[FieldRegion])
	assert.Equal(t, 2, columns[FieldHousing])
	assert.Equal(t, 3, columns[FieldCommercial])
	assert.Equal(t, 4, columns[FieldLegacyPrice])
}

func TestMatchHeaderArabic(t *testing.T) {
	columns := MatchHeader([]string{"الولاية", "المنطقة", "سكني", "تجاري", "صناعي", "زراعي"})

	assert.Equal(t, 0, columns[FieldWilaya])
	assert.Equal(t, 1, columns[FieldRegion])
	assert.Equal(t, 2, columns[FieldHousing])
	assert.Equal(t, 3, columns[FieldCommercial])
	assert.Equal(t, 4, columns[FieldIndustrial])
	assert.Equal(t, 5, columns[FieldAgricultural])
}

func TestMatchHeaderDefiniteArticle(t *testing.T) {
	// "سعر المتر" and "السعر" must land on the same field whether or not the
	// definite article is present.
	withArticle := MatchHeader([]string{"السعر"})
	without := MatchHeader([]string{"سعر"})

	_, ok := withArticle[FieldLegacyPrice]
	assert.True(t, ok)
	_, ok = without[FieldLegacyPrice]
	assert.True(t, ok)
}

func TestMatchHeaderIgnoresUnknownColumns(t *testing.T) {
	columns := MatchHeader([]string{"Notes", "wilaya", "stuff", "region"})

	assert.Equal(t, 1, columns[FieldWilaya])
	assert.Equal(t, 3, columns[FieldRegion])
	assert.Len(t, columns, 2)
}

func TestMatchHeaderFirstColumnWins(t *testing.T) {
	columns := MatchHeader([]string{"region", "district"})

	assert.Equal(t, 0, columns[FieldRegion])
}

func TestParsePriceCell(t *testing.T) {
	cases := []struct {
		name string
		cell string
		want *float64
	}{
		{"plain integer", "85", floatPtr(85)},
		{"decimal", "85.5", floatPtr(85.5)},
		{"surrounding space", "  120  ", floatPtr(120)},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"ascii dash", "-", nil},
		{"en dash", "–", nil},
		{"em dash", "—", nil},
		{"double dash", "--", nil},
		{"arabic indic digits", "٩٥", floatPtr(95)},
		{"extended arabic indic digits", "۸۰", floatPtr(80)},
		{"arabic decimal separator", "٧٥٫٥", floatPtr(75.5)},
		{"arabic thousands separator", "١٬٢٠٠", floatPtr(1200)},
		{"ascii thousands separator", "1,200", floatPtr(1200)},
		{"range averages endpoints", "70-105", floatPtr(87.5)},
		{"arabic range", "٧٠-١٠٥", floatPtr(87.5)},
		{"range with units", "70 - 105 ر.ع", floatPtr(87.5)},
		{"trailing unit", "85 OMR", floatPtr(85)},
		{"no digits", "غير متوفر", nil},
		{"garbage", "n/a", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParsePriceCell(tc.cell)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 0.0001)
		})
	}
}
