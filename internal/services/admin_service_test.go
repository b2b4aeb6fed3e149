// internal/services/admin_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/utils"
)

func newAdminFixture(t *testing.T) (*AdminService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewAdminService(db), db
}

func TestCreateBankProvisionsLoginAndProfile(t *testing.T) {
	svc, db := newAdminFixture(t)

	profile, err := svc.CreateBank(&UpsertBankRequest{
		Name:                "Bank Muscat",
		Email:               "admin@bankmuscat.example.com",
		Password:            "password123",
		Slug:                "bank-muscat",
		InterestRatePercent: 5.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "bank-muscat", profile.Slug)
	assert.Equal(t, 5.5, profile.InterestRatePercent)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", profile.UserID).Error)
	assert.Equal(t, models.RoleBank, user.Role)
	assert.NoError(t, user.CheckPassword("password123"))
}

func TestCreateBankRequiresPassword(t *testing.T) {
	svc, _ := newAdminFixture(t)

	_, err := svc.CreateBank(&UpsertBankRequest{
		Name:  "No Password Bank",
		Email: "np@example.com",
		Slug:  "np-bank",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestCreateCompanyWithCreditLimit(t *testing.T) {
	svc, db := newAdminFixture(t)

	profile, err := svc.CreateCompany(&UpsertCompanyRequest{
		Name:        "Desert Valuations",
		Email:       "dv@example.com",
		Password:    "password123",
		Slug:        "desert-valuations",
		CreditLimit: floatPtr(250000),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.CreditLimit)
	assert.Equal(t, 250000.0, *profile.CreditLimit)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", profile.UserID).Error)
	assert.Equal(t, models.RoleCompany, user.Role)
}

func TestApproveCompanyForBankUpsert(t *testing.T) {
	svc, db := newAdminFixture(t)

	_, err := svc.CreateBank(&UpsertBankRequest{
		Name: "Bank A", Email: "a@example.com", Password: "password123", Slug: "bank-a",
	})
	require.NoError(t, err)
	_, err = svc.CreateCompany(&UpsertCompanyRequest{
		Name: "Co A", Email: "co@example.com", Password: "password123", Slug: "co-a",
	})
	require.NoError(t, err)

	approval, err := svc.ApproveCompanyForBank(&ApproveCompanyRequest{
		CompanySlug: "co-a",
		BankSlug:    "bank-a",
	})
	require.NoError(t, err)
	assert.Nil(t, approval.CreditLimitOverride)

	// Re-approving updates the override in place instead of duplicating.
	approval, err = svc.ApproveCompanyForBank(&ApproveCompanyRequest{
		CompanySlug:         "co-a",
		BankSlug:            "bank-a",
		CreditLimitOverride: floatPtr(80000),
	})
	require.NoError(t, err)
	require.NotNil(t, approval.CreditLimitOverride)
	assert.Equal(t, 80000.0, *approval.CreditLimitOverride)

	var count int64
	require.NoError(t, db.Model(&models.CompanyApprovedBank{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApproveCompanyUnknownSlugs(t *testing.T) {
	svc, _ := newAdminFixture(t)

	_, err := svc.ApproveCompanyForBank(&ApproveCompanyRequest{
		CompanySlug: "ghost-co",
		BankSlug:    "ghost-bank",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestRevokeApproval(t *testing.T) {
	svc, db := newAdminFixture(t)

	_, err := svc.CreateBank(&UpsertBankRequest{
		Name: "Bank B", Email: "b@example.com", Password: "password123", Slug: "bank-b",
	})
	require.NoError(t, err)
	_, err = svc.CreateCompany(&UpsertCompanyRequest{
		Name: "Co B", Email: "cob@example.com", Password: "password123", Slug: "co-b",
	})
	require.NoError(t, err)
	_, err = svc.ApproveCompanyForBank(&ApproveCompanyRequest{
		CompanySlug: "co-b", BankSlug: "bank-b",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeApproval("co-b", "bank-b"))

	var count int64
	require.NoError(t, db.Model(&models.CompanyApprovedBank{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpsertLoanPolicy(t *testing.T) {
	svc, db := newAdminFixture(t)

	_, err := svc.CreateBank(&UpsertBankRequest{
		Name: "Bank C", Email: "c@example.com", Password: "password123", Slug: "bank-c",
	})
	require.NoError(t, err)

	policy, err := svc.UpsertLoanPolicy(&UpsertLoanPolicyRequest{
		BankSlug:          "bank-c",
		LoanType:          "housing",
		MaxRatio:          0.4,
		DefaultYears:      20,
		DefaultAnnualRate: 6.0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanTypeHousing, policy.LoanType)

	// Updating the same (bank, loan type) pair keeps a single row.
	policy, err = svc.UpsertLoanPolicy(&UpsertLoanPolicyRequest{
		BankSlug:          "bank-c",
		LoanType:          "housing",
		MaxRatio:          0.35,
		DefaultYears:      25,
		DefaultAnnualRate: 5.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.35, policy.MaxRatio)

	var count int64
	require.NoError(t, db.Model(&models.LoanPolicy{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = svc.UpsertLoanPolicy(&UpsertLoanPolicyRequest{
		BankSlug: "bank-c", LoanType: "boat", MaxRatio: 0.4,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.UpsertLoanPolicy(&UpsertLoanPolicyRequest{
		BankSlug: "bank-c", LoanType: "housing", MaxRatio: 0.4,
		MinMonths: 60, MaxMonths: 12,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestDashboardStats(t *testing.T) {
	svc, db := newAdminFixture(t)

	client := createUser(t, db, "stats-client", models.RoleClient)
	company := createUser(t, db, "stats-company", models.RoleCompany)
	createUser(t, db, "stats-bank", models.RoleBank)

	require.NoError(t, db.Create(&models.ValuationRequest{
		Title:         "طلب",
		ValuationType: models.ValuationTypeLand,
		Status:        models.RequestStatusPending,
		ClientID:      client.ID,
		CompanyID:     &company.ID,
	}).Error)
	require.NoError(t, db.Create(&models.LandPrice{
		Wilaya: "مسقط", Region: "بوشر", PriceHousing: floatPtr(80),
	}).Error)

	stats, err := svc.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalClients)
	assert.Equal(t, int64(1), stats.TotalCompanies)
	assert.Equal(t, int64(1), stats.TotalBanks)
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.PendingRequests)
	assert.Equal(t, int64(0), stats.CompletedRequests)
	assert.Equal(t, int64(1), stats.LandPriceRows)
}

func TestListUsersFilters(t *testing.T) {
	svc, db := newAdminFixture(t)

	createUser(t, db, "list-client", models.RoleClient)
	createUser(t, db, "list-company", models.RoleCompany)

	result, err := svc.ListUsers(UserFilter{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 10},
		Role:             "client",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	result, err = svc.ListUsers(UserFilter{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 10, Search: "list-comp"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	_, err = svc.ListUsers(UserFilter{Role: "martian"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}
