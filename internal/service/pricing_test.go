package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/domain"
)

func TestEstimatePrice_StandardMediumPackage(t *testing.T) {
	breakdown, err := EstimatePrice(domain.PackageSizeMedium, 3, domain.DeliveryTypeStandard)
	require.NoError(t, err)

	// (15 base + 2 weight + 5 distance) * 1.0
	assert.Equal(t, 15.0, breakdown.BasePrice)
	assert.Equal(t, 2.0, breakdown.WeightCharge)
	assert.Equal(t, 5.0, breakdown.DistanceCharge)
	assert.Equal(t, 1.0, breakdown.TypeMultiplier)
	assert.Equal(t, 22.0, breakdown.Total)
}

func TestEstimatePrice_IsDeterministic(t *testing.T) {
	first, err := EstimatePrice(domain.PackageSizeLarge, 7.3, domain.DeliveryTypeExpress)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := EstimatePrice(domain.PackageSizeLarge, 7.3, domain.DeliveryTypeExpress)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEstimatePrice_TypeMultipliers(t *testing.T) {
	cases := []struct {
		deliveryType domain.DeliveryType
		want         float64
	}{
		// 10 base + 0 weight + 5 distance = 15 before multiplier
		{domain.DeliveryTypeEconomy, 12.0},
		{domain.DeliveryTypeStandard, 15.0},
		{domain.DeliveryTypeExpress, 22.5},
	}

	for _, tc := range cases {
		breakdown, err := EstimatePrice(domain.PackageSizeSmall, 1, tc.deliveryType)
		require.NoError(t, err)
		assert.Equal(t, tc.want, breakdown.Total, "type %s", tc.deliveryType)
	}
}

func TestEstimatePrice_FirstKilogramIsFree(t *testing.T) {
	light, err := EstimatePrice(domain.PackageSizeSmall, 0.4, domain.DeliveryTypeStandard)
	require.NoError(t, err)
	exactlyOne, err := EstimatePrice(domain.PackageSizeSmall, 1, domain.DeliveryTypeStandard)
	require.NoError(t, err)

	assert.Zero(t, light.WeightCharge)
	assert.Zero(t, exactlyOne.WeightCharge)

	heavy, err := EstimatePrice(domain.PackageSizeSmall, 4.5, domain.DeliveryTypeStandard)
	require.NoError(t, err)
	assert.Equal(t, 3.5, heavy.WeightCharge)
}

func TestEstimatePrice_WeightIsMonotonic(t *testing.T) {
	prev := -1.0
	for _, weight := range []float64{0, 0.5, 1, 2, 5, 10, 25} {
		breakdown, err := EstimatePrice(domain.PackageSizeMedium, weight, domain.DeliveryTypeStandard)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, breakdown.Total, prev, "weight %.1f", weight)
		prev = breakdown.Total
	}
}

func TestEstimatePrice_SizeOrdering(t *testing.T) {
	sizes := []domain.PackageSize{
		domain.PackageSizeSmall,
		domain.PackageSizeMedium,
		domain.PackageSizeLarge,
		domain.PackageSizeExtraLarge,
	}

	prev := -1.0
	for _, size := range sizes {
		breakdown, err := EstimatePrice(size, 2, domain.DeliveryTypeStandard)
		require.NoError(t, err)
		assert.Greater(t, breakdown.Total, prev, "size %s", size)
		prev = breakdown.Total
	}
}

func TestEstimatePrice_RoundsToCents(t *testing.T) {
	// (10 + 1.234 + 5) * 0.8 = 12.9872
	breakdown, err := EstimatePrice(domain.PackageSizeSmall, 2.234, domain.DeliveryTypeEconomy)
	require.NoError(t, err)
	assert.Equal(t, 12.99, breakdown.Total)
}

func TestEstimatePrice_RejectsInvalidInput(t *testing.T) {
	_, err := EstimatePrice("gigantic", 1, domain.DeliveryTypeStandard)
	assert.ErrorIs(t, err, ErrInvalidPackageSize)

	_, err = EstimatePrice(domain.PackageSizeSmall, 1, "teleport")
	assert.ErrorIs(t, err, ErrInvalidDeliveryType)

	_, err = EstimatePrice(domain.PackageSizeSmall, -0.1, domain.DeliveryTypeStandard)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}
