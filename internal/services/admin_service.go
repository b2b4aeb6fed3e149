// internal/services/admin_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/utils"
)

// AdminService covers the back-office surface: bank and company management,
// approval wiring, loan policies and the dashboard aggregate.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalClients      int64 `json:"total_clients"`
	TotalCompanies    int64 `json:"total_companies"`
	TotalBanks        int64 `json:"total_banks"`
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	ApprovedRequests  int64 `json:"approved_requests"`
	RejectedRequests  int64 `json:"rejected_requests"`
	OpenConversations int64 `json:"open_conversations"`
	LandPriceRows     int64 `json:"land_price_rows"`
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.db.Model(&models.User{})},
		{&stats.TotalClients, s.db.Model(&models.User{}).Where("role = ?", models.RoleClient)},
		{&stats.TotalCompanies, s.db.Model(&models.User{}).Where("role = ?", models.RoleCompany)},
		{&stats.TotalBanks, s.db.Model(&models.User{}).Where("role = ?", models.RoleBank)},
		{&stats.TotalRequests, s.db.Model(&models.ValuationRequest{})},
		{&stats.PendingRequests, s.db.Model(&models.ValuationRequest{}).Where("status = ?", models.RequestStatusPending)},
		{&stats.CompletedRequests, s.db.Model(&models.ValuationRequest{}).Where("status = ?", models.RequestStatusCompleted)},
		{&stats.ApprovedRequests, s.db.Model(&models.ValuationRequest{}).Where("status = ?", models.RequestStatusApproved)},
		{&stats.RejectedRequests, s.db.Model(&models.ValuationRequest{}).Where("status = ?", models.RequestStatusRejected)},
		{&stats.OpenConversations, s.db.Model(&models.Conversation{}).Where("status = ?", models.ConversationStatusOpen)},
		{&stats.LandPriceRows, s.db.Model(&models.LandPrice{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

type UserFilter struct {
	utils.PaginationParams
	Role string
}

func (s *AdminService) ListUsers(filter UserFilter) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.User{})
	if filter.Role != "" {
		role, err := models.ParseRole(filter.Role)
		if err != nil {
			return nil, Validationf("invalid role filter %q", filter.Role)
		}
		query = query.Where("role = ?", role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Order("created_at DESC"), filter.PaginationParams).Find(&users).Error; err != nil {
		return nil, err
	}
	result := utils.CreatePaginationResult(users, total, filter.PaginationParams)
	return &result, nil
}

type UpsertBankRequest struct {
	Name                string   `json:"name" validate:"required,max=100"`
	Email               string   `json:"email" validate:"required,email"`
	Password            string   `json:"password" validate:"omitempty,min=8"`
	Slug                string   `json:"slug" validate:"required,max=100"`
	InterestRatePercent float64  `json:"interest_rate_percent" validate:"gte=0"`
	ContactInfo         JSONBMap `json:"contact_info,omitempty"`
}

// JSONBMap is the request-side alias for arbitrary contact blobs.
type JSONBMap = map[string]interface{}

// CreateBank provisions the bank login and its profile in one transaction.
func (s *AdminService) CreateBank(req *UpsertBankRequest) (*models.BankProfile, error) {
	if req.Password == "" {
		return nil, Validationf("password is required for a new bank")
	}

	var profile *models.BankProfile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Name:  req.Name,
			Email: req.Email,
			Role:  models.RoleBank,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile = &models.BankProfile{
			UserID:              user.ID,
			Slug:                req.Slug,
			InterestRatePercent: req.InterestRatePercent,
			ContactInfo:         models.JSONB(req.ContactInfo),
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *AdminService) ListBanks() ([]models.BankProfile, error) {
	var banks []models.BankProfile
	if err := s.db.Preload("User").Order("slug").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

type UpsertCompanyRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"omitempty,min=8"`
	Slug        string   `json:"slug" validate:"required,max=100"`
	CreditLimit *float64 `json:"credit_limit,omitempty" validate:"omitempty,gte=0"`
	ContactInfo JSONBMap `json:"contact_info,omitempty"`
}

func (s *AdminService) CreateCompany(req *UpsertCompanyRequest) (*models.CompanyProfile, error) {
	if req.Password == "" {
		return nil, Validationf("password is required for a new company")
	}

	var profile *models.CompanyProfile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Name:  req.Name,
			Email: req.Email,
			Role:  models.RoleCompany,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile = &models.CompanyProfile{
			UserID:      user.ID,
			Slug:        req.Slug,
			CreditLimit: req.CreditLimit,
			ContactInfo: models.JSONB(req.ContactInfo),
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *AdminService) ListCompanies() ([]models.CompanyProfile, error) {
	var companies []models.CompanyProfile
	if err := s.db.Preload("User").Order("slug").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

type ApproveCompanyRequest struct {
	CompanySlug         string   `json:"company_slug" validate:"required"`
	BankSlug            string   `json:"bank_slug" validate:"required"`
	CreditLimitOverride *float64 `json:"credit_limit_override,omitempty" validate:"omitempty,gte=0"`
}

// ApproveCompanyForBank records (or updates) the bank's approval of a
// company, with an optional per-relationship credit limit override.
func (s *AdminService) ApproveCompanyForBank(req *ApproveCompanyRequest) (*models.CompanyApprovedBank, error) {
	var company models.CompanyProfile
	if err := s.db.Where("slug = ?", req.CompanySlug).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("company %q not found", req.CompanySlug)
		}
		return nil, err
	}
	var bank models.BankProfile
	if err := s.db.Where("slug = ?", req.BankSlug).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bank %q not found", req.BankSlug)
		}
		return nil, err
	}

	var approval models.CompanyApprovedBank
	err := s.db.Where("company_id = ? AND bank_id = ?", company.ID, bank.ID).First(&approval).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		approval = models.CompanyApprovedBank{
			CompanyID:           company.ID,
			BankID:              bank.ID,
			CreditLimitOverride: req.CreditLimitOverride,
		}
		if err := s.db.Create(&approval).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		approval.CreditLimitOverride = req.CreditLimitOverride
		if err := s.db.Save(&approval).Error; err != nil {
			return nil, err
		}
	}
	return &approval, nil
}

func (s *AdminService) RevokeApproval(companySlug, bankSlug string) error {
	var company models.CompanyProfile
	if err := s.db.Where("slug = ?", companySlug).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("company %q not found", companySlug)
		}
		return err
	}
	var bank models.BankProfile
	if err := s.db.Where("slug = ?", bankSlug).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("bank %q not found", bankSlug)
		}
		return err
	}
	return s.db.Where("company_id = ? AND bank_id = ?", company.ID, bank.ID).
		Delete(&models.CompanyApprovedBank{}).Error
}

type UpsertLoanPolicyRequest struct {
	BankSlug          string  `json:"bank_slug" validate:"required"`
	LoanType          string  `json:"loan_type" validate:"required"`
	MaxRatio          float64 `json:"max_ratio" validate:"required,gt=0,lte=1"`
	DefaultYears      int     `json:"default_years" validate:"gte=0"`
	DefaultAnnualRate float64 `json:"default_annual_rate" validate:"gte=0"`
	MinMonths         int     `json:"min_months" validate:"gte=0"`
	MaxMonths         int     `json:"max_months" validate:"gte=0"`
}

func (s *AdminService) UpsertLoanPolicy(req *UpsertLoanPolicyRequest) (*models.LoanPolicy, error) {
	loanType, err := models.ParseLoanType(req.LoanType)
	if err != nil {
		return nil, Validationf("invalid loan type %q", req.LoanType)
	}
	var bank models.BankProfile
	if err := s.db.Where("slug = ?", req.BankSlug).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bank %q not found", req.BankSlug)
		}
		return nil, err
	}
	if req.MaxMonths > 0 && req.MinMonths > req.MaxMonths {
		return nil, Validationf("min_months cannot exceed max_months")
	}

	var policy models.LoanPolicy
	err = s.db.Where("bank_id = ? AND loan_type = ?", bank.ID, loanType).First(&policy).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		policy = models.LoanPolicy{BankID: bank.ID, LoanType: loanType}
	case err != nil:
		return nil, err
	}
	policy.MaxRatio = req.MaxRatio
	policy.DefaultYears = req.DefaultYears
	policy.DefaultAnnualRate = req.DefaultAnnualRate
	policy.MinMonths = req.MinMonths
	policy.MaxMonths = req.MaxMonths
	if err := s.db.Save(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}
