// internal/services/matcher_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
)

func TestEffectiveLimit(t *testing.T) {
	assert.Nil(t, EffectiveLimit(nil, nil))

	limit := EffectiveLimit(nil, floatPtr(100000))
	require.NotNil(t, limit)
	assert.Equal(t, 100000.0, *limit)

	// The per-approval override wins even when it is lower.
	limit = EffectiveLimit(floatPtr(50000), floatPtr(100000))
	require.NotNil(t, limit)
	assert.Equal(t, 50000.0, *limit)
}

type matcherFixture struct {
	db      *gorm.DB
	svc     *MatcherService
	pricing *PricingService
	bank    *models.BankProfile
}

func newMatcherFixture(t *testing.T) *matcherFixture {
	t.Helper()
	db := newTestDB(t)
	pricing := NewPricingService(db)

	bankUser := createUser(t, db, "matcher-bank", models.RoleBank)
	bank := &models.BankProfile{UserID: bankUser.ID, Slug: "matcher-bank"}
	require.NoError(t, db.Create(bank).Error)

	return &matcherFixture{
		db:      db,
		svc:     NewMatcherService(db, pricing),
		pricing: pricing,
		bank:    bank,
	}
}

func (f *matcherFixture) approveCompany(t *testing.T, name string, profileLimit, override *float64) *models.CompanyProfile {
	t.Helper()
	user := createUser(t, f.db, name, models.RoleCompany)
	profile := &models.CompanyProfile{UserID: user.ID, Slug: name, CreditLimit: profileLimit}
	require.NoError(t, f.db.Create(profile).Error)
	require.NoError(t, f.db.Create(&models.CompanyApprovedBank{
		CompanyID:           profile.ID,
		BankID:              f.bank.ID,
		CreditLimitOverride: override,
	}).Error)
	return profile
}

func TestCertifiedCompaniesFiltersAndSorts(t *testing.T) {
	f := newMatcherFixture(t)
	f.approveCompany(t, "small-co", floatPtr(40000), nil)
	f.approveCompany(t, "big-co", floatPtr(200000), nil)
	f.approveCompany(t, "mid-co", floatPtr(100000), nil)
	f.approveCompany(t, "no-limit-co", nil, nil)

	matches, err := f.svc.CertifiedCompanies("matcher-bank", 90000)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "big-co", matches[0].Company.Slug)
	assert.Equal(t, "mid-co", matches[1].Company.Slug)
}

func TestCertifiedCompaniesBoundaryInclusive(t *testing.T) {
	f := newMatcherFixture(t)
	f.approveCompany(t, "exact-co", floatPtr(75000), nil)

	matches, err := f.svc.CertifiedCompanies("matcher-bank", 75000)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "exact-co", matches[0].Company.Slug)

	matches, err = f.svc.CertifiedCompanies("matcher-bank", 75000.01)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCertifiedCompaniesOverridePrecedence(t *testing.T) {
	f := newMatcherFixture(t)
	f.approveCompany(t, "capped-co", floatPtr(200000), floatPtr(60000))

	matches, err := f.svc.CertifiedCompanies("matcher-bank", 100000)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = f.svc.CertifiedCompanies("matcher-bank", 60000)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 60000.0, matches[0].EffectiveLimit)
}

func TestCertifiedCompaniesUnknownBank(t *testing.T) {
	f := newMatcherFixture(t)

	_, err := f.svc.CertifiedCompanies("nope", 1000)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestCertifiedOffersUsesCompanyPrices(t *testing.T) {
	f := newMatcherFixture(t)
	cheap := f.approveCompany(t, "cheap-co", floatPtr(1000000), nil)
	dear := f.approveCompany(t, "dear-co", floatPtr(1000000), nil)

	require.NoError(t, f.db.Create(&models.LandPrice{
		Wilaya: "مسقط", Region: "بوشر", PriceHousing: floatPtr(80),
	}).Error)
	require.NoError(t, f.db.Create(&models.CompanyLandPrice{
		CompanyID: cheap.ID, Wilaya: "مسقط", Region: "بوشر", PriceHousing: floatPtr(60),
	}).Error)
	require.NoError(t, f.db.Create(&models.CompanyLandPrice{
		CompanyID: dear.ID, Wilaya: "مسقط", Region: "بوشر", PriceHousing: floatPtr(95),
	}).Error)

	cat := models.UseCategoryHousing
	offers, err := f.svc.CertifiedOffers("matcher-bank", OfferQuery{
		Wilaya:   "مسقط",
		Region:   "بوشر",
		Kind:     models.ValuationTypeLand,
		Category: &cat,
		LandArea: 600,
	}, DefaultEstimatorConfig())
	require.NoError(t, err)
	require.Len(t, offers, 2)

	// Highest estimate first; each company priced with its own table.
	assert.Equal(t, "dear-co", offers[0].Company.Slug)
	require.NotNil(t, offers[0].Estimate)
	assert.Equal(t, 600*95.0, offers[0].Estimate.EstimatedValue)
	assert.Equal(t, "cheap-co", offers[1].Company.Slug)
	require.NotNil(t, offers[1].Estimate)
	assert.Equal(t, 600*60.0, offers[1].Estimate.EstimatedValue)
}

func TestCertifiedOffersBoundaryInclusive(t *testing.T) {
	f := newMatcherFixture(t)
	// Estimate will be exactly 600 * 80 = 48000.
	f.approveCompany(t, "exact-offer-co", floatPtr(48000), nil)
	f.approveCompany(t, "short-offer-co", floatPtr(47999), nil)

	require.NoError(t, f.db.Create(&models.LandPrice{
		Wilaya: "مسقط", Region: "بوشر", PriceHousing: floatPtr(80),
	}).Error)

	cat := models.UseCategoryHousing
	offers, err := f.svc.CertifiedOffers("matcher-bank", OfferQuery{
		Wilaya:   "مسقط",
		Region:   "بوشر",
		Kind:     models.ValuationTypeLand,
		Category: &cat,
		LandArea: 600,
	}, DefaultEstimatorConfig())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "exact-offer-co", offers[0].Company.Slug)
}

func TestCertifiedOffersUnresolvedEstimateSortsLast(t *testing.T) {
	f := newMatcherFixture(t)
	priced := f.approveCompany(t, "priced-co", floatPtr(1000000), nil)
	f.approveCompany(t, "unpriced-co", floatPtr(1000000), nil)

	// Only priced-co has a row for this region; unpriced-co stays listed with
	// no estimate.
	require.NoError(t, f.db.Create(&models.CompanyLandPrice{
		CompanyID: priced.ID, Wilaya: "مسقط", Region: "قريات", PriceHousing: floatPtr(30),
	}).Error)

	cat := models.UseCategoryHousing
	offers, err := f.svc.CertifiedOffers("matcher-bank", OfferQuery{
		Wilaya:   "مسقط",
		Region:   "قريات",
		Kind:     models.ValuationTypeLand,
		Category: &cat,
		LandArea: 100,
	}, DefaultEstimatorConfig())
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "priced-co", offers[0].Company.Slug)
	assert.Equal(t, "unpriced-co", offers[1].Company.Slug)
	assert.Nil(t, offers[1].Estimate)
}
