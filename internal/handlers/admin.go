// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/taqyim/valuation-backend/internal/i18n"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	pricingService *services.PricingService
}

func NewAdminHandler(adminService *services.AdminService, pricingService *services.PricingService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		pricingService: pricingService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	result, err := h.adminService.ListUsers(services.UserFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Role:             c.Query("role"),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// POST /admin/banks
func (h *AdminHandler) CreateBank(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpsertBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	bank, err := h.adminService.CreateBank(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
		"bank":    bank,
	})
}

// GET /admin/banks
func (h *AdminHandler) ListBanks(c *gin.Context) {
	banks, err := h.adminService.ListBanks()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"banks": banks})
}

// POST /admin/companies
func (h *AdminHandler) CreateCompany(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpsertCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	company, err := h.adminService.CreateCompany(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
		"company": company,
	})
}

// GET /admin/companies
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	companies, err := h.adminService.ListCompanies()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"companies": companies})
}

// POST /admin/approvals
func (h *AdminHandler) ApproveCompany(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ApproveCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	approval, err := h.adminService.ApproveCompanyForBank(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyApprovalRecorded),
		"approval": approval,
	})
}

// DELETE /admin/approvals
func (h *AdminHandler) RevokeApproval(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	companySlug := c.Query("company_slug")
	bankSlug := c.Query("bank_slug")
	if companySlug == "" || bankSlug == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "company_slug and bank_slug"), nil)
		return
	}

	if err := h.adminService.RevokeApproval(companySlug, bankSlug); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyAdminActionSuccess)})
}

// POST /admin/loan-policies
func (h *AdminHandler) UpsertLoanPolicy(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpsertLoanPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	policy, err := h.adminService.UpsertLoanPolicy(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
		"policy":  policy,
	})
}

// POST /admin/land-prices/import loads the public price table.
func (h *AdminHandler) ImportLandPrices(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req struct {
		Header []string   `json:"header" validate:"required,min=2"`
		Rows   [][]string `json:"rows" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	summary, err := h.pricingService.ImportRows(req.Header, req.Rows, nil)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPricingImported),
		"summary": summary,
	})
}

// GET /admin/land-prices
func (h *AdminHandler) ListLandPrices(c *gin.Context) {
	rows, err := h.pricingService.ListPublic(c.Query("wilaya"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"land_prices": rows})
}
