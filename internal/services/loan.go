// internal/services/loan.go
package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
)

// MaxLoan computes the maximum principal a borrower can take given the
// monthly payment ceiling derived from income and maxRatio (annuity formula).
// Returns (maxPrincipal, maxMonthlyPayment).
func MaxLoan(income, annualRatePercent float64, years int, maxRatio float64) (float64, float64) {
	r := annualRatePercent / 100.0 / 12.0
	n := years * 12
	maxPayment := income * maxRatio

	if n <= 0 {
		return 0, maxPayment
	}

	if r == 0 {
		return maxPayment * float64(n), maxPayment
	}

	factor := math.Pow(1+r, float64(n))
	denominator := r * factor
	if denominator == 0 {
		return 0, maxPayment
	}
	return maxPayment * ((factor - 1) / denominator), maxPayment
}

// MonthlyPayment is the inverse annuity: principal and term to the fixed
// monthly installment. Returns (monthly, totalInterest, totalCost).
func MonthlyPayment(principal, annualRatePercent float64, months int) (float64, float64, float64) {
	if principal <= 0 || months <= 0 {
		return 0, 0, 0
	}
	if annualRatePercent == 0 {
		monthly := principal / float64(months)
		return monthly, 0, principal
	}
	r := annualRatePercent / 100.0 / 12.0
	factor := math.Pow(1+r, float64(months))
	if factor == 1 {
		return 0, 0, 0
	}
	monthly := principal * r * factor / (factor - 1)
	totalCost := monthly * float64(months)
	return monthly, totalCost - principal, totalCost
}

type LoanService struct {
	db *gorm.DB
}

func NewLoanService(db *gorm.DB) *LoanService {
	return &LoanService{db: db}
}

type ComputeMaxLoanRequest struct {
	BankSlug   string   `json:"bank_slug" validate:"required"`
	LoanType   string   `json:"loan_type" validate:"required"`
	Income     float64  `json:"income" validate:"gte=0"`
	Years      *int     `json:"years,omitempty"`
	AnnualRate *float64 `json:"annual_rate,omitempty"`
}

type MaxLoanResult struct {
	MaxPrincipal      float64            `json:"max_principal"`
	MaxMonthlyPayment float64            `json:"max_monthly_payment"`
	Used              MaxLoanInputsUsed  `json:"used"`
	Policy            *models.LoanPolicy `json:"policy,omitempty"`
}

type MaxLoanInputsUsed struct {
	Income     float64 `json:"income"`
	AnnualRate float64 `json:"annual_rate"`
	Years      int     `json:"years"`
	MaxRatio   float64 `json:"max_ratio"`
}

// ComputeMaxLoan resolves the bank's loan policy for the requested loan type,
// fills unspecified years/rate from the policy defaults, and applies MaxLoan.
func (s *LoanService) ComputeMaxLoan(req *ComputeMaxLoanRequest) (*MaxLoanResult, error) {
	loanType, err := models.ParseLoanType(req.LoanType)
	if err != nil {
		return nil, Validationf("invalid loan type %q", req.LoanType)
	}
	if req.Income < 0 {
		return nil, Validationf("income cannot be negative")
	}

	policy, err := s.policyFor(req.BankSlug, loanType)
	if err != nil {
		return nil, err
	}

	years := policy.DefaultYears
	if req.Years != nil {
		years = *req.Years
	}
	if years < 0 {
		return nil, Validationf("loan term cannot be negative")
	}

	rate := policy.DefaultAnnualRate
	if req.AnnualRate != nil {
		rate = *req.AnnualRate
	}
	if rate < 0 {
		return nil, Validationf("interest rate cannot be negative")
	}

	principal, maxPayment := MaxLoan(req.Income, rate, years, policy.MaxRatio)
	return &MaxLoanResult{
		MaxPrincipal:      principal,
		MaxMonthlyPayment: maxPayment,
		Used: MaxLoanInputsUsed{
			Income:     req.Income,
			AnnualRate: rate,
			Years:      years,
			MaxRatio:   policy.MaxRatio,
		},
		Policy: policy,
	}, nil
}

func (s *LoanService) policyFor(bankSlug string, loanType models.LoanType) (*models.LoanPolicy, error) {
	var bank models.BankProfile
	if err := s.db.Where("slug = ?", bankSlug).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bank %q not found", bankSlug)
		}
		return nil, err
	}

	var policy models.LoanPolicy
	if err := s.db.Where("bank_id = ? AND loan_type = ?", bank.ID, loanType).First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("no %s loan policy for bank %q", loanType, bankSlug)
		}
		return nil, err
	}
	return &policy, nil
}

// ListPolicies returns all loan policies of a bank, optionally filtered by type.
func (s *LoanService) ListPolicies(bankSlug string, loanType string) ([]models.LoanPolicy, error) {
	var bank models.BankProfile
	if err := s.db.Where("slug = ?", bankSlug).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bank %q not found", bankSlug)
		}
		return nil, err
	}

	query := s.db.Where("bank_id = ?", bank.ID)
	if loanType != "" {
		lt, err := models.ParseLoanType(loanType)
		if err != nil {
			return nil, Validationf("invalid loan type %q", loanType)
		}
		query = query.Where("loan_type = ?", lt)
	}

	var policies []models.LoanPolicy
	if err := query.Order("loan_type").Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}
