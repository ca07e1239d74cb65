package service

import (
	"math"

	"courier/internal/domain"
)

// Pricing constants. The distance charge is a fixed stand-in; route-based
// distance belongs to an external collaborator.
const (
	weightFreeKg      = 1.0
	weightRatePerKg   = 1.0
	distanceCharge    = 5.0
	priceRoundingUnit = 100 // cents
)

var basePrices = map[domain.PackageSize]float64{
	domain.PackageSizeSmall:      10.0,
	domain.PackageSizeMedium:     15.0,
	domain.PackageSizeLarge:      20.0,
	domain.PackageSizeExtraLarge: 30.0,
}

var typeMultipliers = map[domain.DeliveryType]float64{
	domain.DeliveryTypeEconomy:  0.8,
	domain.DeliveryTypeStandard: 1.0,
	domain.DeliveryTypeExpress:  1.5,
}

// PriceBreakdown itemizes a price quote.
type PriceBreakdown struct {
	BasePrice      float64
	WeightCharge   float64
	DistanceCharge float64
	TypeMultiplier float64
	Total          float64
}

// EstimatePrice computes a price quote for the given package attributes.
// It is deterministic and side-effect free: the same function serves the
// public quote endpoint and fixes the price at delivery creation.
func EstimatePrice(size domain.PackageSize, weight float64, deliveryType domain.DeliveryType) (PriceBreakdown, error) {
	if !domain.ValidPackageSize(size) {
		return PriceBreakdown{}, ErrInvalidPackageSize
	}
	if !domain.ValidDeliveryType(deliveryType) {
		return PriceBreakdown{}, ErrInvalidDeliveryType
	}
	if weight < 0 {
		return PriceBreakdown{}, ErrInvalidWeight
	}

	base := basePrices[size]
	weightCharge := math.Max(0, weight-weightFreeKg) * weightRatePerKg
	multiplier := typeMultipliers[deliveryType]

	return PriceBreakdown{
		BasePrice:      base,
		WeightCharge:   weightCharge,
		DistanceCharge: distanceCharge,
		TypeMultiplier: multiplier,
		Total:          roundToCents((base + weightCharge + distanceCharge) * multiplier),
	}, nil
}

func roundToCents(v float64) float64 {
	return math.Round(v*priceRoundingUnit) / priceRoundingUnit
}
