package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/moveops/internal/apperr"
	"github.com/Simplici0/moveops/internal/money"
	"github.com/Simplici0/moveops/internal/ratecard"
	"github.com/Simplici0/moveops/internal/store"
)

var (
	// VATRate is applied to the whole pre-VAT subtotal.
	VATRate = decimal.RequireFromString("0.20")
	// DepositRate is the share of the total collected at booking.
	DepositRate = decimal.RequireFromString("0.20")
)

// Breakdown is the itemised, frozen result of pricing a request.
type Breakdown struct {
	BasePrice        float64 `json:"basePrice"`
	DistancePrice    float64 `json:"distancePrice"`
	VehicleSurcharge float64 `json:"vehicleSurcharge"`
	StairsSurcharge  float64 `json:"stairsSurcharge"`
	CongestionZone   float64 `json:"congestionZone"`
	ExtrasPrice      float64 `json:"extrasPrice"`
	Subtotal         float64 `json:"subtotal"`
	VAT              float64 `json:"vat"`
	Deposit          float64 `json:"deposit"`
	Total            float64 `json:"total"`

	RecommendedVehicle string  `json:"recommendedVehicle"`
	Distance           float64 `json:"distance"`
	EstimatedDuration  string  `json:"estimatedDuration"`

	ServiceType          string  `json:"serviceType"`
	VolumeM3             float64 `json:"volumeM3"`
	AdjustedVolumeM3     float64 `json:"adjustedVolumeM3"`
	CrewSize             int     `json:"crewSize"`
	RecommendedCrew      int     `json:"recommendedCrew"`
	MinimumChargeApplied bool    `json:"minimumChargeApplied"`
}

// Calculate prices req against the given store snapshot. It is a pure function.
//
// A nil breakdown with a nil error means the request is not complete enough to
// quote yet. The only error is a *apperr.ConfigurationError for a rate card that
// cannot price anything.
func Calculate(req Request, stores store.Snapshot) (*Breakdown, error) {
	if !req.Ready() {
		return nil, nil
	}

	card, serviceType, ok := stores.RateCards.Resolve(req.ServiceType)
	if !ok {
		return nil, apperr.Configuration("no rate card for service %q and no default %q", req.ServiceType, stores.RateCards.DefaultServiceType)
	}
	if err := card.CheckCoverage(); err != nil {
		return nil, err
	}

	load := aggregate(req.Items, stores.Items)
	tier := selectTier(req, card, load.adjusted)

	base := money.Dec(tier.BaseFee)
	if card.IncludeVolumePrice {
		base = base.Add(load.adjusted.Mul(money.Dec(tier.PricePerCubicMeter)))
	}
	base = money.RoundDec(base)
	distance := money.RoundDec(money.Dec(req.DistanceMiles).Mul(money.Dec(tier.PricePerMile)))

	minimumApplied := false
	if minimum := money.RoundDec(money.Dec(tier.MinimumCharge)); base.Add(distance).LessThan(minimum) {
		base = minimum.Sub(distance)
		minimumApplied = true
	}

	crew := ratecard.ClampCrew(req.CrewSize)
	vehicle := money.RoundDec(money.Dec(tier.CrewPrice(crew)))
	stairs := money.RoundDec(stairsSurcharge(tier, req.Pickup, req.Dropoff))
	congestion := money.RoundDec(congestionCharge(tier, req.Pickup, req.Dropoff))
	extrasPrice := money.RoundDec(money.Dec(stores.Extras.FlatTotal(req.Extras)).Add(pricedExtrasTotal(req.PricedExtras)))

	subtotal := decimal.Sum(base, distance, vehicle, stairs, congestion, extrasPrice)
	vat := money.RoundDec(subtotal.Mul(VATRate))
	total := subtotal.Add(vat)
	deposit := money.RoundDec(total.Mul(DepositRate))

	recommendedCrew := crew
	if load.needsTwoCrew && recommendedCrew < 2 {
		recommendedCrew = 2
	}

	return &Breakdown{
		BasePrice:        base.InexactFloat64(),
		DistancePrice:    distance.InexactFloat64(),
		VehicleSurcharge: vehicle.InexactFloat64(),
		StairsSurcharge:  stairs.InexactFloat64(),
		CongestionZone:   congestion.InexactFloat64(),
		ExtrasPrice:      extrasPrice.InexactFloat64(),
		Subtotal:         subtotal.InexactFloat64(),
		VAT:              vat.InexactFloat64(),
		Deposit:          deposit.InexactFloat64(),
		Total:            total.InexactFloat64(),

		RecommendedVehicle: tier.ID,
		Distance:           req.DistanceMiles,
		EstimatedDuration:  EstimateDuration(req.DistanceMiles, req.DurationMinutes),

		ServiceType:          serviceType,
		VolumeM3:             load.volume.Round(2).InexactFloat64(),
		AdjustedVolumeM3:     load.adjusted.Round(2).InexactFloat64(),
		CrewSize:             crew,
		RecommendedCrew:      recommendedCrew,
		MinimumChargeApplied: minimumApplied,
	}, nil
}

func selectTier(req Request, card ratecard.RateCard, adjusted decimal.Decimal) ratecard.VehicleTier {
	if !req.autoVehicle() {
		if tier, ok := card.Tier(req.SelectedVehicle); ok {
			return tier
		}
	}
	tier, _ := card.Select(adjusted.InexactFloat64())
	return tier
}

// stairsSurcharge applies per location; a lift does not cancel it.
func stairsSurcharge(tier ratecard.VehicleTier, locations ...Location) decimal.Decimal {
	sum := decimal.Zero
	for _, loc := range locations {
		if !loc.HasStairs || loc.StairFlights <= 0 {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(int64(loc.StairFlights)).Mul(money.Dec(tier.StairsPricePerFlight)))
	}
	return sum
}

// congestionCharge adds the tier's charge once per restricted location.
func congestionCharge(tier ratecard.VehicleTier, locations ...Location) decimal.Decimal {
	sum := decimal.Zero
	for _, loc := range locations {
		if loc.restricted() {
			sum = sum.Add(money.Dec(tier.CongestionCharge))
		}
	}
	return sum
}

func pricedExtrasTotal(lines []PricedExtra) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		if math.IsNaN(line.Amount) || math.IsInf(line.Amount, 0) || line.Amount <= 0 {
			continue
		}
		sum = sum.Add(money.Dec(line.Amount))
	}
	return sum
}
