// internal/models/pricing.go
package models

import (
	"github.com/google/uuid"
)

// LandPrice is the public per-sqm price table keyed by (wilaya, region). The
// four use-specific columns postdate the single legacy price; old spreadsheet
// imports only fill the legacy field, so readers must fall back to it.
type LandPrice struct {
	BaseModel
	Wilaya            string   `json:"wilaya" gorm:"size:100;not null;uniqueIndex:idx_public_geo"`
	Region            string   `json:"region" gorm:"size:100;not null;uniqueIndex:idx_public_geo"`
	PriceHousing      *float64 `json:"price_housing,omitempty"`
	PriceCommercial   *float64 `json:"price_commercial,omitempty"`
	PriceIndustrial   *float64 `json:"price_industrial,omitempty"`
	PriceAgricultural *float64 `json:"price_agricultural,omitempty"`
	LegacyPricePerSqm *float64 `json:"price_per_sqm,omitempty"`
}

// CompanyLandPrice scopes a price row to one company; it is consulted before
// the public table.
type CompanyLandPrice struct {
	BaseModel
	CompanyID         uuid.UUID `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_company_geo"`
	Wilaya            string    `json:"wilaya" gorm:"size:100;not null;uniqueIndex:idx_company_geo"`
	Region            string    `json:"region" gorm:"size:100;not null;uniqueIndex:idx_company_geo"`
	PriceHousing      *float64  `json:"price_housing,omitempty"`
	PriceCommercial   *float64  `json:"price_commercial,omitempty"`
	PriceIndustrial   *float64  `json:"price_industrial,omitempty"`
	PriceAgricultural *float64  `json:"price_agricultural,omitempty"`
	LegacyPricePerSqm *float64  `json:"price_per_sqm,omitempty"`
}

// CategoryPrice returns the use-specific column for a category.
func categoryPrice(cat UseCategory, housing, commercial, industrial, agricultural *float64) *float64 {
	switch cat {
	case UseCategoryHousing:
		return housing
	case UseCategoryCommercial:
		return commercial
	case UseCategoryIndustrial:
		return industrial
	case UseCategoryAgricultural:
		return agricultural
	}
	return nil
}

func (p *LandPrice) CategoryPrice(cat UseCategory) *float64 {
	return categoryPrice(cat, p.PriceHousing, p.PriceCommercial, p.PriceIndustrial, p.PriceAgricultural)
}

func (p *CompanyLandPrice) CategoryPrice(cat UseCategory) *float64 {
	return categoryPrice(cat, p.PriceHousing, p.PriceCommercial, p.PriceIndustrial, p.PriceAgricultural)
}

// FirstPrice returns the first non-nil of the category columns in priority
// order (housing, commercial, industrial, agricultural), then the legacy field.
func firstPrice(housing, commercial, industrial, agricultural, legacy *float64) *float64 {
	for _, p := range []*float64{housing, commercial, industrial, agricultural, legacy} {
		if p != nil {
			return p
		}
	}
	return nil
}

func (p *LandPrice) FirstPrice() *float64 {
	return firstPrice(p.PriceHousing, p.PriceCommercial, p.PriceIndustrial, p.PriceAgricultural, p.LegacyPricePerSqm)
}

func (p *CompanyLandPrice) FirstPrice() *float64 {
	return firstPrice(p.PriceHousing, p.PriceCommercial, p.PriceIndustrial, p.PriceAgricultural, p.LegacyPricePerSqm)
}
