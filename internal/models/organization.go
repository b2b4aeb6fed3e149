// internal/models/organization.go
package models

import (
	"github.com/google/uuid"
)

type CompanyProfile struct {
	BaseModel
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	LogoPath    string    `json:"logo_path,omitempty" gorm:"size:500"`
	ContactInfo JSONB     `json:"contact_info,omitempty" gorm:"type:jsonb"`
	// Profile-wide credit ceiling. A bank approval row may override it; a
	// company with neither is excluded from matching entirely.
	CreditLimit *float64 `json:"credit_limit,omitempty"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type BankProfile struct {
	BaseModel
	UserID              uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Slug                string    `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	LogoPath            string    `json:"logo_path,omitempty" gorm:"size:500"`
	ContactInfo         JSONB     `json:"contact_info,omitempty" gorm:"type:jsonb"`
	InterestRatePercent float64   `json:"interest_rate_percent"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// CompanyApprovedBank records a bank's explicit approval of a valuation company.
type CompanyApprovedBank struct {
	BaseModel
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_company_bank"`
	BankID    uuid.UUID `json:"bank_id" gorm:"type:uuid;not null;uniqueIndex:idx_company_bank"`
	// Per-relationship ceiling; takes precedence over the company profile limit.
	CreditLimitOverride *float64 `json:"credit_limit_override,omitempty"`

	Company CompanyProfile `json:"company,omitempty" gorm:"foreignKey:CompanyID;references:ID"`
	Bank    BankProfile    `json:"bank,omitempty" gorm:"foreignKey:BankID;references:ID"`
}

// LoanPolicy carries a bank's affordability defaults per loan type.
type LoanPolicy struct {
	BaseModel
	BankID            uuid.UUID `json:"bank_id" gorm:"type:uuid;not null;uniqueIndex:idx_bank_loan_type"`
	LoanType          LoanType  `json:"loan_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_bank_loan_type"`
	MaxRatio          float64   `json:"max_ratio" gorm:"not null"`
	DefaultYears      int       `json:"default_years"`
	DefaultAnnualRate float64   `json:"default_annual_rate"`
	MinMonths         int       `json:"min_months"`
	MaxMonths         int       `json:"max_months"`

	Bank BankProfile `json:"bank,omitempty" gorm:"foreignKey:BankID;references:ID"`
}
