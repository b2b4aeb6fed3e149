// internal/handlers/company.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/taqyim/valuation-backend/internal/i18n"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

// CompanyHandler serves the valuation company's side of the lifecycle plus
// its private price table.
type CompanyHandler struct {
	valuationService *services.ValuationService
	pricingService   *services.PricingService
	storageService   *services.StorageService
}

func NewCompanyHandler(valuationService *services.ValuationService, pricingService *services.PricingService, storageService *services.StorageService) *CompanyHandler {
	return &CompanyHandler{
		valuationService: valuationService,
		pricingService:   pricingService,
		storageService:   storageService,
	}
}

// PUT /company/valuations/:id/reject
func (h *CompanyHandler) Reject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.valuationService.Reject(userID, requestID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationRejected),
		"request": request,
	})
}

// PUT /company/valuations/:id/revision
func (h *CompanyHandler) RequestRevision(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.valuationService.RequestRevision(userID, requestID, req.Notes)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationRevision),
		"request": request,
	})
}

// PUT /company/valuations/:id/value
func (h *CompanyHandler) SubmitValue(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Value float64 `json:"value" validate:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	request, err := h.valuationService.SubmitValue(userID, requestID, req.Value)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationCompleted),
		"request": request,
	})
}

// PUT /company/appointments/:id/respond
func (h *CompanyHandler) RespondAppointment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	appointment, err := h.valuationService.RespondAppointment(userID, appointmentID, req.Accept)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyAppointmentResponded),
		"appointment": appointment,
	})
}

// PUT /company/appointments/:id/finalize
func (h *CompanyHandler) FinalizeAppointment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.valuationService.FinalizeAppointment(userID, appointmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyAppointmentFinalized),
		"appointment": appointment,
	})
}

// POST /company/valuations/:id/report uploads the final valuation report.
func (h *CompanyHandler) UploadReport(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.Store(file, header, h.storageService.GetDefaultUploadOptions("reports"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	document, err := h.valuationService.AttachDocument(userID, role, requestID, "final_report", result.Reference, header.Filename)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyDocumentUploaded),
		"document": document,
		"url":      result.URL,
	})
}

type importPricesRequest struct {
	Header []string   `json:"header" validate:"required,min=2"`
	Rows   [][]string `json:"rows" validate:"required"`
}

// POST /company/land-prices/import uploads the company's own price table,
// which shadows the public one during matching and estimation.
func (h *CompanyHandler) ImportPrices(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req importPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	profile, err := h.pricingService.CompanyProfileForUser(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	summary, err := h.pricingService.ImportRows(req.Header, req.Rows, &profile.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPricingImported),
		"summary": summary,
	})
}
