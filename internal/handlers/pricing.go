// internal/handlers/pricing.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/taqyim/valuation-backend/internal/i18n"
	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

// PricingHandler exposes the public price table and the value estimator.
type PricingHandler struct {
	pricingService *services.PricingService
	estimatorCfg   services.EstimatorConfig
}

func NewPricingHandler(pricingService *services.PricingService, estimatorCfg services.EstimatorConfig) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		estimatorCfg:   estimatorCfg,
	}
}

// GET /land-prices?wilaya=
func (h *PricingHandler) List(c *gin.Context) {
	rows, err := h.pricingService.ListPublic(c.Query("wilaya"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"land_prices": rows})
}

type estimateRequest struct {
	Wilaya           string  `json:"wilaya" validate:"required"`
	Region           string  `json:"region" validate:"required"`
	Kind             string  `json:"kind" validate:"required"`
	Category         string  `json:"category,omitempty"`
	LandArea         float64 `json:"land_area" validate:"gte=0"`
	BuildingArea     float64 `json:"building_area" validate:"gte=0"`
	BuildingAgeYears int     `json:"building_age_years" validate:"gte=0"`
}

// POST /estimate runs the estimator against the public price table.
func (h *PricingHandler) Estimate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	kind, err := models.ParseValuationType(req.Kind)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "kind"), nil)
		return
	}

	var category *models.UseCategory
	if req.Category != "" {
		parsed, err := models.ParseUseCategory(req.Category)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "category"), nil)
			return
		}
		category = &parsed
	}

	price, err := h.pricingService.ResolvePrice(req.Wilaya, req.Region, category, nil)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	estimate := services.EstimateValue(services.EstimateInput{
		Kind:             kind,
		LandArea:         req.LandArea,
		BuildingArea:     req.BuildingArea,
		BuildingAgeYears: req.BuildingAgeYears,
		LandPricePerSqm:  price,
	}, h.estimatorCfg)

	resp := gin.H{"estimate": estimate}
	if price == nil {
		resp["warning"] = i18n.T(lang, i18n.KeyPricingNoPrice)
	}
	utils.SuccessResponse(c, resp)
}
