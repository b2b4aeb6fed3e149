// internal/services/estimator.go
package services

import (
	"github.com/taqyim/valuation-backend/internal/models"
)

// EstimatorConfig carries the tunable constants of the value formula.
type EstimatorConfig struct {
	BuildingCostPerSqm float64
	LocationFactor     float64
}

func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		BuildingCostPerSqm: 220,
		LocationFactor:     1.0,
	}
}

type EstimateInput struct {
	Kind             models.ValuationType
	LandArea         float64
	BuildingArea     float64
	BuildingAgeYears int
	// Resolved per-sqm land price; nil means no price table row matched, in
	// which case the land contributes nothing to the estimate.
	LandPricePerSqm *float64
}

type Estimate struct {
	LandValue      float64 `json:"land_value"`
	BuildingValue  float64 `json:"building_value"`
	Depreciation   float64 `json:"depreciation"`
	EstimatedValue float64 `json:"estimated_value"`
	EstimatedFee   float64 `json:"estimated_fee"`
}

// EstimateValue combines land and building value with age depreciation and
// the location adjustment factor, then prices the valuation fee by tier.
func EstimateValue(in EstimateInput, cfg EstimatorConfig) Estimate {
	var landValue float64
	if in.LandPricePerSqm != nil {
		landValue = in.LandArea * *in.LandPricePerSqm
	}

	// Buildings never depreciate below 40% of replacement cost.
	depreciation := 1 - float64(in.BuildingAgeYears)*0.02
	if depreciation < 0.40 {
		depreciation = 0.40
	}

	var buildingValue float64
	if in.Kind != models.ValuationTypeLand {
		buildingValue = in.BuildingArea * cfg.BuildingCostPerSqm * depreciation
	}

	value := (landValue + buildingValue) * cfg.LocationFactor

	return Estimate{
		LandValue:      landValue,
		BuildingValue:  buildingValue,
		Depreciation:   depreciation,
		EstimatedValue: value,
		EstimatedFee:   estimateFee(value, in.Kind),
	}
}

func estimateFee(estimatedValue float64, kind models.ValuationType) float64 {
	var fee float64
	switch {
	case estimatedValue <= 50000:
		fee = 80
	case estimatedValue <= 100000:
		fee = 120
	case estimatedValue <= 200000:
		fee = 160
	default:
		fee = 200
	}

	switch kind {
	case models.ValuationTypeLand:
		fee -= 20
	case models.ValuationTypeHouse:
		fee += 20
	}

	if fee < 40 {
		fee = 40
	}
	return fee
}
