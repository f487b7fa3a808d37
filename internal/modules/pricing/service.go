// README: Pricing service resolves catalog items and distances, then delegates to the quote engine.
package pricing

import (
	"context"
	"errors"
	"math"

	"carebridge/internal/modules/location"
	"carebridge/internal/observability"
	"carebridge/internal/types"
)

var (
	ErrUnknownService = errors.New("unknown service code")
	ErrBadRequest     = errors.New("bad request")
)

// DistanceSource returns the travel distance between two points in kilometres.
type DistanceSource interface {
	DistanceKm(ctx context.Context, from, to types.Point) (float64, error)
}

type Service struct {
	distance DistanceSource
	currency string
}

// NewService builds a pricing service. distance may be nil, in which case
// ambulance distances come from the great-circle formula.
func NewService(distance DistanceSource, currency string) *Service {
	if currency == "" {
		currency = types.DefaultCurrency
	}
	return &Service{distance: distance, currency: currency}
}

// FlatQuoteRequest prices either a catalog item (ServiceCode) or an explicit
// BasePrice. ServiceCode wins when both are set.
type FlatQuoteRequest struct {
	ServiceCode string
	BasePrice   float64
	City        string
	Address     string
	AddOns      AddOns
}

type AmbulanceQuoteRequest struct {
	AmbulanceType string
	DistanceKm    *float64
	Pickup        *types.Point
	Drop          *types.Point
	City          string
	Address       string
	AddOns        AddOns
}

const (
	DistanceSourceRequest   = "request"
	DistanceSourceRoad      = "road"
	DistanceSourceHaversine = "haversine"
)

func (s *Service) QuoteNursing(ctx context.Context, req FlatQuoteRequest) (Quote, error) {
	return s.quoteFlat(ctx, "nursing", nursingCatalog, req)
}

func (s *Service) QuotePhysiotherapy(ctx context.Context, req FlatQuoteRequest) (Quote, error) {
	return s.quoteFlat(ctx, "physiotherapy", physiotherapyCatalog, req)
}

func (s *Service) quoteFlat(_ context.Context, kind string, catalog []CatalogItem, req FlatQuoteRequest) (Quote, error) {
	if err := validateAddOns(req.AddOns); err != nil {
		return Quote{}, err
	}
	base := req.BasePrice
	var item CatalogItem
	if req.ServiceCode != "" {
		var ok bool
		item, ok = findItem(catalog, req.ServiceCode)
		if !ok {
			return Quote{}, ErrUnknownService
		}
		base = float64(item.Price)
	}
	if !finitePositive(base) {
		return Quote{}, ErrBadRequest
	}

	q := CalculateFinalQuote(base, req.City, req.Address, req.AddOns)
	q.ServiceCode = item.Code
	q.ServiceName = item.Name
	q.Currency = s.currency
	observability.QuotesTotal.WithLabelValues(kind, string(q.CityTier)).Inc()
	return q, nil
}

func (s *Service) QuoteAmbulance(ctx context.Context, req AmbulanceQuoteRequest) (AmbulanceQuote, error) {
	item, ok := findAmbulance(req.AmbulanceType)
	if !ok {
		return AmbulanceQuote{}, ErrUnknownService
	}
	if err := validateAddOns(req.AddOns); err != nil {
		return AmbulanceQuote{}, err
	}
	distance, source, err := s.resolveDistance(ctx, req)
	if err != nil {
		return AmbulanceQuote{}, err
	}

	q := CalculateAmbulanceFare(item.Rate(), distance, req.City, req.Address, req.AddOns)
	q.AmbulanceType = item.Code
	q.Currency = s.currency
	q.DistanceSource = source
	observability.QuotesTotal.WithLabelValues("ambulance", string(q.CityTier)).Inc()
	return q, nil
}

// resolveDistance prefers an explicit distance, then the routing provider, then
// the great-circle distance between pickup and drop.
func (s *Service) resolveDistance(ctx context.Context, req AmbulanceQuoteRequest) (float64, string, error) {
	if req.DistanceKm != nil {
		d := *req.DistanceKm
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return 0, "", ErrBadRequest
		}
		return d, DistanceSourceRequest, nil
	}
	if req.Pickup == nil || req.Drop == nil {
		return 0, "", ErrBadRequest
	}
	if !location.ValidPoint(*req.Pickup) || !location.ValidPoint(*req.Drop) {
		return 0, "", ErrBadRequest
	}
	if s.distance != nil {
		if d, err := s.distance.DistanceKm(ctx, *req.Pickup, *req.Drop); err == nil {
			return d, DistanceSourceRoad, nil
		}
		observability.DistanceFallbacksTotal.Inc()
	}
	return location.DistanceKm(*req.Pickup, *req.Drop), DistanceSourceHaversine, nil
}

func validateAddOns(a AddOns) error {
	for _, v := range []float64{a.NightDutyPercentage, a.EmergencyPercentage, a.ConsumablesCost} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrBadRequest
		}
	}
	return nil
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
