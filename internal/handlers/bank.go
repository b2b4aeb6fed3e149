// internal/handlers/bank.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taqyim/valuation-backend/internal/i18n"
	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

// BankHandler serves the public bank directory, the matcher and the loan
// calculators.
type BankHandler struct {
	adminService   *services.AdminService
	matcherService *services.MatcherService
	loanService    *services.LoanService
	estimatorCfg   services.EstimatorConfig
}

func NewBankHandler(adminService *services.AdminService, matcherService *services.MatcherService, loanService *services.LoanService, estimatorCfg services.EstimatorConfig) *BankHandler {
	return &BankHandler{
		adminService:   adminService,
		matcherService: matcherService,
		loanService:    loanService,
		estimatorCfg:   estimatorCfg,
	}
}

// GET /banks
func (h *BankHandler) List(c *gin.Context) {
	banks, err := h.adminService.ListBanks()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"banks": banks})
}

// GET /banks/:slug/companies?amount=
func (h *BankHandler) CertifiedCompanies(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount < 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "amount"), nil)
		return
	}

	matches, err := h.matcherService.CertifiedCompanies(c.Param("slug"), amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"companies": matches})
}

// POST /banks/:slug/offers
func (h *BankHandler) CertifiedOffers(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var query services.OfferQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&query)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}
	if _, err := models.ParseValuationType(string(query.Kind)); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "kind"), nil)
		return
	}

	offers, err := h.matcherService.CertifiedOffers(c.Param("slug"), query, h.estimatorCfg)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"offers": offers})
}

// GET /banks/:slug/loan-policies
func (h *BankHandler) ListLoanPolicies(c *gin.Context) {
	policies, err := h.loanService.ListPolicies(c.Param("slug"), c.Query("loan_type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"policies": policies})
}

// POST /banks/:slug/max-loan
func (h *BankHandler) MaxLoan(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ComputeMaxLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	req.BankSlug = c.Param("slug")
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.loanService.ComputeMaxLoan(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"result": result})
}

// POST /banks/loan-payment — inverse annuity, no policy lookup needed.
func (h *BankHandler) LoanPayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req struct {
		Principal  float64 `json:"principal" validate:"required,gt=0"`
		AnnualRate float64 `json:"annual_rate" validate:"gte=0"`
		Months     int     `json:"months" validate:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	monthly, totalInterest, totalCost := services.MonthlyPayment(req.Principal, req.AnnualRate, req.Months)
	utils.SuccessResponse(c, gin.H{
		"monthly_payment": monthly,
		"total_interest":  totalInterest,
		"total_cost":      totalCost,
	})
}
