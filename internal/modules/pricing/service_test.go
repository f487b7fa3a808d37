package pricing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carebridge/internal/types"
)

type stubDistance struct {
	km  float64
	err error
}

func (s stubDistance) DistanceKm(context.Context, types.Point, types.Point) (float64, error) {
	return s.km, s.err
}

func TestService_QuoteNursing(t *testing.T) {
	s := NewService(nil, "")
	ctx := context.Background()

	t.Run("catalog item in tier-1 city", func(t *testing.T) {
		q, err := s.QuoteNursing(ctx, FlatQuoteRequest{ServiceCode: "nurse-12h", City: "Hyderabad"})
		require.NoError(t, err)
		assert.Equal(t, int64(1440), q.FinalPrice)
		assert.Equal(t, Tier1, q.CityTier)
		assert.Equal(t, "nurse-12h", q.ServiceCode)
		assert.Equal(t, types.DefaultCurrency, q.Currency)
	})

	t.Run("explicit base price", func(t *testing.T) {
		q, err := s.QuoteNursing(ctx, FlatQuoteRequest{BasePrice: 1000, AddOns: AddOns{IsNightDuty: true, IsEmergency: true}})
		require.NoError(t, err)
		assert.Equal(t, int64(1380), q.FinalPrice)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := s.QuoteNursing(ctx, FlatQuoteRequest{ServiceCode: "neuro-rehab"})
		assert.ErrorIs(t, err, ErrUnknownService)
	})

	t.Run("missing price", func(t *testing.T) {
		_, err := s.QuoteNursing(ctx, FlatQuoteRequest{City: "Vizag"})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("negative consumables", func(t *testing.T) {
		_, err := s.QuoteNursing(ctx, FlatQuoteRequest{BasePrice: 500, AddOns: AddOns{ConsumablesCost: -1}})
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestService_QuotePhysiotherapy(t *testing.T) {
	s := NewService(nil, "INR")
	q, err := s.QuotePhysiotherapy(context.Background(), FlatQuoteRequest{
		ServiceCode: "neuro-rehab",
		City:        "Guntur",
		AddOns:      AddOns{IsSundayHoliday: true},
	})
	require.NoError(t, err)
	// 1000 * 1.1 = 1100, +110 Sunday
	assert.Equal(t, int64(1210), q.FinalPrice)
	assert.Equal(t, []string{"Sunday/Holiday (+10%)"}, q.AddOnsApplied)
}

func TestService_QuoteAmbulance(t *testing.T) {
	ctx := context.Background()
	pickup := &types.Point{Lat: 0, Lng: 0}
	drop := &types.Point{Lat: 0, Lng: 0.1}
	dist := func(v float64) *float64 { return &v }

	t.Run("explicit distance", func(t *testing.T) {
		s := NewService(nil, "")
		q, err := s.QuoteAmbulance(ctx, AmbulanceQuoteRequest{AmbulanceType: "patient-transport", DistanceKm: dist(12), City: "Vizag"})
		require.NoError(t, err)
		assert.Equal(t, int64(768), q.FinalPrice)
		assert.Equal(t, DistanceSourceRequest, q.DistanceSource)
	})

	t.Run("great-circle fallback without provider", func(t *testing.T) {
		s := NewService(nil, "")
		q, err := s.QuoteAmbulance(ctx, AmbulanceQuoteRequest{AmbulanceType: "patient-transport", Pickup: pickup, Drop: drop})
		require.NoError(t, err)
		assert.Equal(t, DistanceSourceHaversine, q.DistanceSource)
		assert.Equal(t, 11.1, q.DistanceKm)
	})

	t.Run("road distance from provider", func(t *testing.T) {
		s := NewService(stubDistance{km: 15}, "")
		q, err := s.QuoteAmbulance(ctx, AmbulanceQuoteRequest{AmbulanceType: "bls", Pickup: pickup, Drop: drop})
		require.NoError(t, err)
		assert.Equal(t, DistanceSourceRoad, q.DistanceSource)
		// 800 + 10km * 25
		assert.Equal(t, int64(1050), q.FinalPrice)
	})

	t.Run("provider error falls back", func(t *testing.T) {
		s := NewService(stubDistance{err: errors.New("quota exceeded")}, "")
		q, err := s.QuoteAmbulance(ctx, AmbulanceQuoteRequest{AmbulanceType: "bls", Pickup: pickup, Drop: drop})
		require.NoError(t, err)
		assert.Equal(t, DistanceSourceHaversine, q.DistanceSource)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		s := NewService(nil, "")
		cases := []AmbulanceQuoteRequest{
			{AmbulanceType: "bls", DistanceKm: dist(-1)},
			{AmbulanceType: "bls", DistanceKm: dist(math.NaN())},
			{AmbulanceType: "bls"},
			{AmbulanceType: "bls", Pickup: &types.Point{Lat: 95}, Drop: drop},
		}
		for _, req := range cases {
			_, err := s.QuoteAmbulance(ctx, req)
			assert.ErrorIs(t, err, ErrBadRequest)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		s := NewService(nil, "")
		_, err := s.QuoteAmbulance(ctx, AmbulanceQuoteRequest{AmbulanceType: "helicopter", DistanceKm: dist(3)})
		assert.ErrorIs(t, err, ErrUnknownService)
	})
}

func TestCatalogsAreCopies(t *testing.T) {
	items := NursingCatalog()
	require.NotEmpty(t, items)
	items[0].Price = 1
	assert.NotEqual(t, int64(1), NursingCatalog()[0].Price)
	assert.NotEmpty(t, PhysiotherapyCatalog())
	assert.NotEmpty(t, AmbulanceCatalog())
}
