// internal/handlers/valuation.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taqyim/valuation-backend/internal/i18n"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

// ValuationHandler serves the client-facing side of the request lifecycle.
type ValuationHandler struct {
	valuationService *services.ValuationService
	storageService   *services.StorageService
}

func NewValuationHandler(valuationService *services.ValuationService, storageService *services.StorageService) *ValuationHandler {
	return &ValuationHandler{
		valuationService: valuationService,
		storageService:   storageService,
	}
}

// POST /valuations
func (h *ValuationHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	request, err := h.valuationService.Submit(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationCreated),
		"request": request,
	})
}

// GET /valuations
func (h *ValuationHandler) List(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	requests, total, err := h.valuationService.List(userID, role, services.ListFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(requests, total, params))
}

// GET /valuations/:id
func (h *ValuationHandler) Get(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	request, err := h.valuationService.GetRequest(userID, role, requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"request": request})
}

// PUT /valuations/:id
func (h *ValuationHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	request, err := h.valuationService.Update(userID, requestID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationUpdated),
		"request": request,
	})
}

// PUT /valuations/:id/accept
func (h *ValuationHandler) Accept(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	request, err := h.valuationService.Accept(userID, requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationApproved),
		"request": request,
	})
}

// PUT /valuations/:id/decline
func (h *ValuationHandler) Decline(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	request, err := h.valuationService.Decline(userID, requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationDeclined),
		"request": request,
	})
}

// PUT /valuations/:id/transfer
func (h *ValuationHandler) Transfer(c *gin.Context) {
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
		CompanyID uuid.UUID `json:"company_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.valuationService.Transfer(userID, requestID, req.CompanyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValuationTransferred),
		"request": request,
	})
}

// POST /valuations/:id/appointments
func (h *ValuationHandler) ProposeAppointment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ProposeAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	appointment, err := h.valuationService.ProposeAppointment(userID, role, requestID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyAppointmentProposed),
		"appointment": appointment,
	})
}

// POST /valuations/:id/documents
func (h *ValuationHandler) AttachDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	docType := c.PostForm("document_type")
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.Store(file, header, h.storageService.GetDefaultUploadOptions("documents"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	document, err := h.valuationService.AttachDocument(userID, role, requestID, docType, result.Reference, header.Filename)
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
