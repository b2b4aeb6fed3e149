// internal/services/pricing_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
)

type PricingService struct {
	db *gorm.DB
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{db: db}
}

// ResolvePrice resolves a per-sqm price for (wilaya, region, category). The
// company source wins outright: any usable company price, even the legacy
// field, beats the public table:
//
//  1. company row, category-specific column, then its legacy price
//  2. public row, category-specific column, then its legacy price
//  3. with no category: first non-nil category column (housing, commercial,
//     industrial, agricultural) then legacy, company source first
//
// A nil result means "no price available", which callers must keep distinct
// from a price of 0.
func (s *PricingService) ResolvePrice(wilaya, region string, category *models.UseCategory, companyID *uuid.UUID) (*float64, error) {
	var companyRow *models.CompanyLandPrice
	if companyID != nil {
		var row models.CompanyLandPrice
		err := s.db.Where("company_id = ? AND wilaya = ? AND region = ?", *companyID, wilaya, region).First(&row).Error
		if err == nil {
			companyRow = &row
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var publicRow *models.LandPrice
	{
		var row models.LandPrice
		err := s.db.Where("wilaya = ? AND region = ?", wilaya, region).First(&row).Error
		if err == nil {
			publicRow = &row
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if category != nil {
		if companyRow != nil {
			if p := companyRow.CategoryPrice(*category); p != nil {
				return p, nil
			}
			if companyRow.LegacyPricePerSqm != nil {
				return companyRow.LegacyPricePerSqm, nil
			}
		}
		if publicRow != nil {
			if p := publicRow.CategoryPrice(*category); p != nil {
				return p, nil
			}
			if publicRow.LegacyPricePerSqm != nil {
				return publicRow.LegacyPricePerSqm, nil
			}
		}
		return nil, nil
	}

	if companyRow != nil {
		if p := companyRow.FirstPrice(); p != nil {
			return p, nil
		}
	}
	if publicRow != nil {
		if p := publicRow.FirstPrice(); p != nil {
			return p, nil
		}
	}
	return nil, nil
}

// PriceRow is one parsed spreadsheet row ready for upsert.
type PriceRow struct {
	Wilaya            string
	Region            string
	PriceHousing      *float64
	PriceCommercial   *float64
	PriceIndustrial   *float64
	PriceAgricultural *float64
	LegacyPricePerSqm *float64
}

type ImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportRows maps a variable-order header row via the synonym table and
// upserts each data row into the public or company-scoped price table. Rows
// missing wilaya or region are skipped, not fatal: partial spreadsheets are
// expected.
func (s *PricingService) ImportRows(header []string, rows [][]string, companyID *uuid.UUID) (*ImportSummary, error) {
	columns := MatchHeader(header)
	if _, ok := columns[FieldWilaya]; !ok {
		return nil, Validationf("header has no recognizable wilaya column")
	}
	if _, ok := columns[FieldRegion]; !ok {
		return nil, Validationf("header has no recognizable region column")
	}

	summary := &ImportSummary{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, raw := range rows {
			row := parsePriceRow(raw, columns)
			if row.Wilaya == "" || row.Region == "" {
				summary.Skipped++
				continue
			}
			if err := s.upsertRow(tx, row, companyID); err != nil {
				return err
			}
			summary.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func parsePriceRow(raw []string, columns map[PriceField]int) PriceRow {
	cell := func(field PriceField) string {
		idx, ok := columns[field]
		if !ok || idx >= len(raw) {
			return ""
		}
		return raw[idx]
	}

	return PriceRow{
		Wilaya:            strings.TrimSpace(cell(FieldWilaya)),
		Region:            strings.TrimSpace(cell(FieldRegion)),
		PriceHousing:      ParsePriceCell(cell(FieldHousing)),
		PriceCommercial:   ParsePriceCell(cell(FieldCommercial)),
		PriceIndustrial:   ParsePriceCell(cell(FieldIndustrial)),
		PriceAgricultural: ParsePriceCell(cell(FieldAgricultural)),
		LegacyPricePerSqm: ParsePriceCell(cell(FieldLegacyPrice)),
	}
}

func (s *PricingService) upsertRow(tx *gorm.DB, row PriceRow, companyID *uuid.UUID) error {
	if companyID != nil {
		var existing models.CompanyLandPrice
		err := tx.Where("company_id = ? AND wilaya = ? AND region = ?", *companyID, row.Wilaya, row.Region).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.CompanyLandPrice{
				CompanyID:         *companyID,
				Wilaya:            row.Wilaya,
				Region:            row.Region,
				PriceHousing:      row.PriceHousing,
				PriceCommercial:   row.PriceCommercial,
				PriceIndustrial:   row.PriceIndustrial,
				PriceAgricultural: row.PriceAgricultural,
				LegacyPricePerSqm: row.LegacyPricePerSqm,
			}).Error
		}
		if err != nil {
			return err
		}
		existing.PriceHousing = row.PriceHousing
		existing.PriceCommercial = row.PriceCommercial
		existing.PriceIndustrial = row.PriceIndustrial
		existing.PriceAgricultural = row.PriceAgricultural
		existing.LegacyPricePerSqm = row.LegacyPricePerSqm
		return tx.Save(&existing).Error
	}

	var existing models.LandPrice
	err := tx.Where("wilaya = ? AND region = ?", row.Wilaya, row.Region).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.LandPrice{
			Wilaya:            row.Wilaya,
			Region:            row.Region,
			PriceHousing:      row.PriceHousing,
			PriceCommercial:   row.PriceCommercial,
			PriceIndustrial:   row.PriceIndustrial,
			PriceAgricultural: row.PriceAgricultural,
			LegacyPricePerSqm: row.LegacyPricePerSqm,
		}).Error
	}
	if err != nil {
		return err
	}
	existing.PriceHousing = row.PriceHousing
	existing.PriceCommercial = row.PriceCommercial
	existing.PriceIndustrial = row.PriceIndustrial
	existing.PriceAgricultural = row.PriceAgricultural
	existing.LegacyPricePerSqm = row.LegacyPricePerSqm
	return tx.Save(&existing).Error
}

// CompanyProfileForUser resolves the profile behind a company login. Price
// tables are keyed by profile, not by user.
func (s *PricingService) CompanyProfileForUser(userID uuid.UUID) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("company profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

// ListPublic returns the public price table for a wilaya (all when empty).
func (s *PricingService) ListPublic(wilaya string) ([]models.LandPrice, error) {
	query := s.db.Order("wilaya, region")
	if wilaya != "" {
		query = query.Where("wilaya = ?", wilaya)
	}
	var rows []models.LandPrice
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
