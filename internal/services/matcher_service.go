// internal/services/matcher_service.go
package services

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
)

type MatcherService struct {
	db      *gorm.DB
	pricing *PricingService
}

func NewMatcherService(db *gorm.DB, pricing *PricingService) *MatcherService {
	return &MatcherService{db: db, pricing: pricing}
}

// EffectiveLimit resolves the credit ceiling that actually applies to a
// company under one bank: the approval-specific override when present,
// otherwise the company's profile-wide limit. nil means no stated limit,
// which excludes the company from matching — capacity is never promised
// without a stated ceiling.
func EffectiveLimit(override, profileLimit *float64) *float64 {
	if override != nil {
		return override
	}
	return profileLimit
}

type CompanyMatch struct {
	Company        models.CompanyProfile `json:"company"`
	EffectiveLimit float64               `json:"effective_limit"`
}

// CertifiedCompanies lists companies approved by the bank whose effective
// limit covers the required amount, highest limit first. The boundary is
// inclusive: a limit exactly equal to the amount qualifies.
func (s *MatcherService) CertifiedCompanies(bankSlug string, amount float64) ([]CompanyMatch, error) {
	approvals, err := s.approvalsFor(bankSlug)
	if err != nil {
		return nil, err
	}

	matches := make([]CompanyMatch, 0, len(approvals))
	for _, approval := range approvals {
		limit := EffectiveLimit(approval.CreditLimitOverride, approval.Company.CreditLimit)
		if limit == nil {
			continue
		}
		if *limit >= amount {
			matches = append(matches, CompanyMatch{Company: approval.Company, EffectiveLimit: *limit})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].EffectiveLimit > matches[j].EffectiveLimit
	})
	return matches, nil
}

type OfferQuery struct {
	Wilaya           string               `json:"wilaya" validate:"required"`
	Region           string               `json:"region" validate:"required"`
	Kind             models.ValuationType `json:"kind" validate:"required"`
	Category         *models.UseCategory  `json:"category,omitempty"`
	LandArea         float64              `json:"land_area" validate:"gte=0"`
	BuildingArea     float64              `json:"building_area" validate:"gte=0"`
	BuildingAgeYears int                  `json:"building_age_years" validate:"gte=0"`
}

type CompanyOffer struct {
	Company        models.CompanyProfile `json:"company"`
	EffectiveLimit float64               `json:"effective_limit"`
	Estimate       *Estimate             `json:"estimate,omitempty"`
}

// CertifiedOffers estimates the property value per approved company (using
// that company's own price table before the public one) and drops companies
// whose effective limit cannot cover the estimate. Inclusion is boundary
// symmetric with CertifiedCompanies: estimate == limit qualifies. Companies
// whose estimate cannot be resolved stay listed but sort last.
func (s *MatcherService) CertifiedOffers(bankSlug string, query OfferQuery, cfg EstimatorConfig) ([]CompanyOffer, error) {
	approvals, err := s.approvalsFor(bankSlug)
	if err != nil {
		return nil, err
	}

	offers := make([]CompanyOffer, 0, len(approvals))
	for _, approval := range approvals {
		limit := EffectiveLimit(approval.CreditLimitOverride, approval.Company.CreditLimit)
		if limit == nil {
			continue
		}

		companyID := approval.Company.ID
		price, err := s.pricing.ResolvePrice(query.Wilaya, query.Region, query.Category, &companyID)
		if err != nil {
			return nil, err
		}

		offer := CompanyOffer{Company: approval.Company, EffectiveLimit: *limit}
		if price != nil {
			estimate := EstimateValue(EstimateInput{
				Kind:             query.Kind,
				LandArea:         query.LandArea,
				BuildingArea:     query.BuildingArea,
				BuildingAgeYears: query.BuildingAgeYears,
				LandPricePerSqm:  price,
			}, cfg)
			if estimate.EstimatedValue > *limit {
				continue
			}
			offer.Estimate = &estimate
		}
		offers = append(offers, offer)
	}

	sort.SliceStable(offers, func(i, j int) bool {
		switch {
		case offers[i].Estimate == nil:
			return false
		case offers[j].Estimate == nil:
			return true
		default:
			return offers[i].Estimate.EstimatedValue > offers[j].Estimate.EstimatedValue
		}
	})
	return offers, nil
}

func (s *MatcherService) approvalsFor(bankSlug string) ([]models.CompanyApprovedBank, error) {
	var bank models.BankProfile
	if err := s.db.Where("slug = ?", bankSlug).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bank %q not found", bankSlug)
		}
		return nil, err
	}

	var approvals []models.CompanyApprovedBank
	if err := s.db.Preload("Company").Where("bank_id = ?", bank.ID).Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}
