// internal/services/pricing_cells.go
package services

import (
	"strconv"
	"strings"
)

// PriceField is a canonical spreadsheet column.
type PriceField string

const (
	FieldWilaya       PriceField = "wilaya"
	FieldRegion       PriceField = "region"
	FieldHousing      PriceField = "housing"
	FieldCommercial   PriceField = "commercial"
	FieldIndustrial   PriceField = "industrial"
	FieldAgricultural PriceField = "agricultural"
	FieldLegacyPrice  PriceField = "price_per_sqm"
)

// headerSynonyms maps each canonical field to the Arabic and English labels
// seen in administrator uploads. New synonyms are data additions, not code
// changes.
var headerSynonyms = map[PriceField][]string{
	FieldWilaya:       {"wilaya", "governorate", "province", "الولاية", "ولاية", "المحافظة", "محافظة"},
	FieldRegion:       {"region", "district", "area", "المنطقة", "منطقة", "الولاية الفرعية"},
	FieldHousing:      {"housing", "residential", "سكني", "سكنية", "سكن"},
	FieldCommercial:   {"commercial", "تجاري", "تجارية"},
	FieldIndustrial:   {"industrial", "صناعي", "صناعية"},
	FieldAgricultural: {"agricultural", "زراعي", "زراعية"},
	FieldLegacyPrice:  {"price", "price per sqm", "price_per_sqm", "السعر", "سعر المتر", "سعر المتر المربع"},
}

// MatchHeader maps canonical fields to column indexes. The first matching
// column wins; unmatched fields are simply absent.
func MatchHeader(header []string) map[PriceField]int {
	matched := make(map[PriceField]int)
	for idx, label := range header {
		normalized := normalizeLabel(label)
		if normalized == "" {
			continue
		}
		for field, synonyms := range headerSynonyms {
			if _, done := matched[field]; done {
				continue
			}
			for _, syn := range synonyms {
				if normalized == normalizeLabel(syn) {
					matched[field] = idx
					break
				}
			}
		}
	}
	return matched
}

func normalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.Join(strings.Fields(s), " ")
	// The Arabic definite article makes "سعر" and "السعر" the same label.
	s = strings.TrimPrefix(s, "ال")
	return s
}

// ParsePriceCell extracts a numeric price from one uploaded spreadsheet cell.
// Arabic-Indic and Extended Arabic-Indic digits are normalized to ASCII, the
// Arabic decimal separator becomes '.', and thousands separators are dropped.
// Dash-only cells mean "no value". A range cell such as "70-105" resolves to
// the average of its endpoints. Anything else unparseable is "no value", so a
// partially malformed spreadsheet still imports.
func ParsePriceCell(cell string) *float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	if isDashOnly(s) {
		return nil
	}

	normalized := normalizeDigits(s)
	tokens := numericTokens(normalized)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) == 1 {
		v := tokens[0]
		return &v
	}
	avg := (tokens[0] + tokens[1]) / 2
	return &avg
}

func isDashOnly(s string) bool {
	for _, r := range s {
		switch r {
		case '-', '–', '—':
		default:
			return false
		}
	}
	return true
}

func normalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '٠' && r <= '٩': // Arabic-Indic digits U+0660..U+0669
			b.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹': // Extended Arabic-Indic digits U+06F0..U+06F9
			b.WriteRune('0' + (r - '۰'))
		case r == '٫': // Arabic decimal separator
			b.WriteRune('.')
		case r == '٬' || r == ',': // thousands separators
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// numericTokens scans maximal runs of digits and decimal points and parses
// each as a float, skipping runs that don't parse.
func numericTokens(s string) []float64 {
	var tokens []float64
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		if v, err := strconv.ParseFloat(current.String(), 64); err == nil {
			tokens = append(tokens, v)
		}
		current.Reset()
	}
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
