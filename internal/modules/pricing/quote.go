// README: Quote engine composing geography tiers and add-on surcharges.
package pricing

// Breakdown exposes every intermediate amount of a flat-rate quote.
type Breakdown struct {
	BasePrice             float64 `json:"basePrice"`
	AfterCityAdjustment   int64   `json:"afterCityAdjustment"`
	NightDutyCharge       int64   `json:"nightDutyCharge"`
	SundayHolidayCharge   int64   `json:"sundayHolidayCharge"`
	ExtendedSessionCharge int64   `json:"extendedSessionCharge"`
	EmergencyCharge       int64   `json:"emergencyCharge"`
	ConsumablesCost       int64   `json:"consumablesCost"`
}

// Quote is the result of pricing a nursing or physiotherapy booking. It is
// never persisted.
type Quote struct {
	ServiceCode    string    `json:"serviceCode,omitempty"`
	ServiceName    string    `json:"serviceName,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	FinalPrice     int64     `json:"finalPrice"`
	CityTier       Tier      `json:"cityTier"`
	CityAdjustment int       `json:"cityAdjustment"`
	AddOnsApplied  []string  `json:"addOnsApplied"`
	Breakdown      Breakdown `json:"breakdown"`
}

// CalculateFinalQuote prices a flat-rate service: geography multiplier first,
// then the add-on surcharges on the adjusted amount.
func CalculateFinalQuote(basePrice float64, city, address string, addOns AddOns) Quote {
	tier := Classify(city, address)
	b := Breakdown{BasePrice: basePrice}
	b.AfterCityAdjustment = roundHalfUp(basePrice * tier.Multiplier())

	final, labels := compound(b.AfterCityAdjustment, flatRateSteps(addOns, &b))
	if addOns.ConsumablesCost > 0 {
		b.ConsumablesCost = roundHalfUp(addOns.ConsumablesCost)
		labels = append(labels, consumablesLabel)
	}

	return Quote{
		FinalPrice:     final,
		CityTier:       tier,
		CityAdjustment: tier.AdjustmentPct(),
		AddOnsApplied:  labels,
		Breakdown:      b,
	}
}

// AmbulanceRate is the distance tariff of one ambulance type.
type AmbulanceRate struct {
	MinimumFare float64 `json:"minimumFare"`
	MinimumKm   float64 `json:"minimumKm"`
	PerKmCharge float64 `json:"perKmCharge"`
}

type AmbulanceBreakdown struct {
	BaseFare            float64 `json:"baseFare"`
	KmCoveredInMinimum  float64 `json:"kmCoveredInMinimum"`
	ExtraKm             float64 `json:"extraKm"`
	ExtraKmCharge       int64   `json:"extraKmCharge"`
	Subtotal            int64   `json:"subtotal"`
	AfterCityAdjustment int64   `json:"afterCityAdjustment"`
	NightDutyCharge     int64   `json:"nightDutyCharge"`
	EmergencyCharge     int64   `json:"emergencyCharge"`
}

type AmbulanceQuote struct {
	AmbulanceType  string             `json:"ambulanceType,omitempty"`
	Currency       string             `json:"currency,omitempty"`
	DistanceKm     float64            `json:"distanceKm"`
	DistanceSource string             `json:"distanceSource,omitempty"`
	FinalPrice     int64              `json:"finalPrice"`
	CityTier       Tier               `json:"cityTier"`
	CityAdjustment int                `json:"cityAdjustment"`
	AddOnsApplied  []string           `json:"addOnsApplied"`
	Breakdown      AmbulanceBreakdown `json:"breakdown"`
}

// CalculateAmbulanceFare prices a distance-based ambulance trip. Only the
// night-duty and emergency add-ons apply; the other flags are ignored.
func CalculateAmbulanceFare(rate AmbulanceRate, distanceKm float64, city, address string, addOns AddOns) AmbulanceQuote {
	extraKm := distanceKm - rate.MinimumKm
	if extraKm < 0 {
		extraKm = 0
	}

	b := AmbulanceBreakdown{
		BaseFare:           rate.MinimumFare,
		KmCoveredInMinimum: rate.MinimumKm,
		ExtraKm:            extraKm,
		ExtraKmCharge:      roundHalfUp(extraKm * rate.PerKmCharge),
	}
	b.Subtotal = roundHalfUp(rate.MinimumFare) + b.ExtraKmCharge

	tier := Classify(city, address)
	b.AfterCityAdjustment = roundHalfUp(float64(b.Subtotal) * tier.Multiplier())

	var steps []surcharge
	if addOns.IsNightDuty {
		steps = append(steps, surcharge{label: nightDutyLabel(addOns.nightDutyPct()), pct: addOns.nightDutyPct(), amount: &b.NightDutyCharge})
	}
	if addOns.IsEmergency {
		steps = append(steps, surcharge{label: emergencyLabel(addOns.emergencyPct()), pct: addOns.emergencyPct(), amount: &b.EmergencyCharge})
	}
	final, labels := compound(b.AfterCityAdjustment, steps)

	return AmbulanceQuote{
		DistanceKm:     distanceKm,
		FinalPrice:     final,
		CityTier:       tier,
		CityAdjustment: tier.AdjustmentPct(),
		AddOnsApplied:  labels,
		Breakdown:      b,
	}
}
