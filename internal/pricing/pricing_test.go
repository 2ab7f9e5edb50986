package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/Simplici0/moveops/internal/apperr"
	"github.com/Simplici0/moveops/internal/store"
	"github.com/Simplici0/moveops/internal/testhelpers"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func baseRequest() Request {
	return Request{
		Pickup:          Location{Address: "12 Mill Lane, Leeds"},
		Dropoff:         Location{Address: "4 Canal Street, Leeds"},
		Items:           []SelectedItem{{ItemID: "double-mattress", Quantity: 1}},
		SelectedVehicle: AutoVehicle,
		CrewSize:        1,
		DistanceMiles:   15,
	}
}

func mustCalculate(t *testing.T, req Request) *Breakdown {
	t.Helper()
	b, err := Calculate(req, testhelpers.Snapshot())
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if b == nil {
		t.Fatalf("Calculate returned no quote for a complete request")
	}
	return b
}

func TestCalculate_SingleItemAutoVehicle(t *testing.T) {
	b := mustCalculate(t, baseRequest())

	if b.RecommendedVehicle != "small" {
		t.Fatalf("recommendedVehicle = %q, want small", b.RecommendedVehicle)
	}
	nearlyEqual(t, "volumeM3", b.VolumeM3, 0.61)
	nearlyEqual(t, "adjustedVolumeM3", b.AdjustedVolumeM3, 0.67)

	// 40 + 15*1.5 = 62.5 sits under the 65 minimum; the shortfall lands in basePrice.
	nearlyEqual(t, "basePrice", b.BasePrice, 42.5)
	nearlyEqual(t, "distancePrice", b.DistancePrice, 22.5)
	if !b.MinimumChargeApplied {
		t.Fatalf("expected minimum charge to apply")
	}
	nearlyEqual(t, "vehicleSurcharge", b.VehicleSurcharge, 25)
	nearlyEqual(t, "subtotal", b.Subtotal, 90)
	nearlyEqual(t, "vat", b.VAT, 18)
	nearlyEqual(t, "total", b.Total, 108)
	nearlyEqual(t, "deposit", b.Deposit, 21.6)
	nearlyEqual(t, "distance", b.Distance, 15)
	if b.EstimatedDuration != "30 min" {
		t.Fatalf("estimatedDuration = %q, want 30 min", b.EstimatedDuration)
	}
	if b.ServiceType != "house_move" {
		t.Fatalf("serviceType = %q, want house_move", b.ServiceType)
	}
}

func TestCalculate_ExplicitVehicleOverridesVolume(t *testing.T) {
	req := baseRequest()
	req.SelectedVehicle = "luton"

	b := mustCalculate(t, req)

	if b.RecommendedVehicle != "luton" {
		t.Fatalf("recommendedVehicle = %q, want luton", b.RecommendedVehicle)
	}
	nearlyEqual(t, "distancePrice", b.DistancePrice, 33)
	nearlyEqual(t, "basePrice", b.BasePrice, 97)
	nearlyEqual(t, "vehicleSurcharge", b.VehicleSurcharge, 35)
	nearlyEqual(t, "total", b.Total, 198)
	nearlyEqual(t, "deposit", b.Deposit, 39.6)
}

func TestCalculate_ExplicitVehicleIgnoresCase(t *testing.T) {
	req := baseRequest()
	req.SelectedVehicle = " LUTON "

	b := mustCalculate(t, req)
	if b.RecommendedVehicle != "luton" {
		t.Fatalf("recommendedVehicle = %q, want luton", b.RecommendedVehicle)
	}
}

func TestCalculate_ExplicitVehicleUndersizedIsHonoured(t *testing.T) {
	req := baseRequest()
	req.Items = []SelectedItem{{ItemID: "sofa-3", Quantity: 10}}
	req.SelectedVehicle = "small"

	b := mustCalculate(t, req)
	if b.RecommendedVehicle != "small" {
		t.Fatalf("recommendedVehicle = %q, want small", b.RecommendedVehicle)
	}
}

func TestCalculate_UnknownExplicitVehicleFallsBackToAuto(t *testing.T) {
	req := baseRequest()
	req.SelectedVehicle = "hovercraft"

	b := mustCalculate(t, req)
	if b.RecommendedVehicle != "small" {
		t.Fatalf("recommendedVehicle = %q, want small", b.RecommendedVehicle)
	}
}

func TestCalculate_StairsAtPickupOnly(t *testing.T) {
	req := baseRequest()
	req.Pickup.Floor = 2
	req.Pickup.HasStairs = true
	req.Pickup.StairFlights = 2

	b := mustCalculate(t, req)

	nearlyEqual(t, "stairsSurcharge", b.StairsSurcharge, 20)
	nearlyEqual(t, "subtotal", b.Subtotal, 110)
	nearlyEqual(t, "vat", b.VAT, 22)
	nearlyEqual(t, "total", b.Total, 132)
	nearlyEqual(t, "deposit", b.Deposit, 26.4)
}

func TestCalculate_LiftDoesNotCancelStairs(t *testing.T) {
	req := baseRequest()
	req.Pickup.HasStairs = true
	req.Pickup.HasLift = true
	req.Pickup.StairFlights = 2
	req.Dropoff.HasStairs = true
	req.Dropoff.StairFlights = 1

	b := mustCalculate(t, req)
	nearlyEqual(t, "stairsSurcharge", b.StairsSurcharge, 30)
}

func TestCalculate_StairFlightsWithoutStairsFlagIgnored(t *testing.T) {
	req := baseRequest()
	req.Pickup.StairFlights = 4

	b := mustCalculate(t, req)
	nearlyEqual(t, "stairsSurcharge", b.StairsSurcharge, 0)
}

func TestCalculate_CongestionOncePerRestrictedLocation(t *testing.T) {
	req := baseRequest()
	req.Pickup.CongestionZone = true
	req.Dropoff.CongestionZone = true
	req.Dropoff.ULEZ = true

	b := mustCalculate(t, req)
	nearlyEqual(t, "congestionZone", b.CongestionZone, 30)
}

func TestCalculate_Extras(t *testing.T) {
	req := baseRequest()
	req.Extras = []string{"assembly", "packing", "piano", "hot-tub"}
	req.PricedExtras = []PricedExtra{
		{ID: "piano", Name: "Piano handling (2 floors)", Amount: 50},
		{ID: "refund", Amount: -10},
		{ID: "broken", Amount: math.NaN()},
	}

	b := mustCalculate(t, req)
	nearlyEqual(t, "extrasPrice", b.ExtrasPrice, 165)
}

func TestCalculate_VolumePricedServiceAndTwoCrewRecommendation(t *testing.T) {
	req := baseRequest()
	req.ServiceType = "storage_move"
	req.DistanceMiles = 10
	req.Items = []SelectedItem{
		{ItemID: "sofa-3", Quantity: 2},
		{ItemID: "wardrobe-double", Quantity: 1},
		{ItemID: "unknown-item", Quantity: 4},
		{ItemID: "box-m", Quantity: 0},
	}

	b := mustCalculate(t, req)

	if b.RecommendedVehicle != "medium" {
		t.Fatalf("recommendedVehicle = %q, want medium", b.RecommendedVehicle)
	}
	nearlyEqual(t, "volumeM3", b.VolumeM3, 5.2)
	nearlyEqual(t, "adjustedVolumeM3", b.AdjustedVolumeM3, 5.72)
	// 60 + 5.7222 m3 * 8 = 105.7776
	nearlyEqual(t, "basePrice", b.BasePrice, 105.78)
	nearlyEqual(t, "distancePrice", b.DistancePrice, 18)
	nearlyEqual(t, "vehicleSurcharge", b.VehicleSurcharge, 30)
	nearlyEqual(t, "vat", b.VAT, 30.76)
	nearlyEqual(t, "total", b.Total, 184.54)
	nearlyEqual(t, "deposit", b.Deposit, 36.91)
	if b.MinimumChargeApplied {
		t.Fatalf("minimum charge should not apply")
	}
	if b.CrewSize != 1 || b.RecommendedCrew != 2 {
		t.Fatalf("crew = %d recommended = %d, want 1 and 2", b.CrewSize, b.RecommendedCrew)
	}
}

func TestCalculate_UnknownServiceTypeUsesDefault(t *testing.T) {
	req := baseRequest()
	req.ServiceType = "piano_move"

	b := mustCalculate(t, req)
	if b.ServiceType != "house_move" {
		t.Fatalf("serviceType = %q, want house_move", b.ServiceType)
	}
}

func TestCalculate_EmptyItemsZeroDistance(t *testing.T) {
	req := baseRequest()
	req.Items = nil
	req.DistanceMiles = 0
	req.CrewSize = 0

	b := mustCalculate(t, req)

	if b.RecommendedVehicle != "small" {
		t.Fatalf("recommendedVehicle = %q, want small", b.RecommendedVehicle)
	}
	nearlyEqual(t, "distancePrice", b.DistancePrice, 0)
	nearlyEqual(t, "basePrice", b.BasePrice, 65)
	nearlyEqual(t, "vehicleSurcharge", b.VehicleSurcharge, 25)
	nearlyEqual(t, "total", b.Total, 108)
	if b.CrewSize != 1 {
		t.Fatalf("crewSize = %d, want default 1", b.CrewSize)
	}
	if b.EstimatedDuration != "0 min" {
		t.Fatalf("estimatedDuration = %q, want 0 min", b.EstimatedDuration)
	}
}

func TestCalculate_CrewSizeClamped(t *testing.T) {
	req := baseRequest()
	req.CrewSize = 7

	b := mustCalculate(t, req)
	nearlyEqual(t, "vehicleSurcharge", b.VehicleSurcharge, 75)
	if b.CrewSize != 3 {
		t.Fatalf("crewSize = %d, want 3", b.CrewSize)
	}
}

func TestCalculate_IncompleteRequestHasNoQuote(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"missing pickup address", func(r *Request) { r.Pickup.Address = "" }},
		{"blank dropoff address", func(r *Request) { r.Dropoff.Address = "   " }},
		{"negative distance", func(r *Request) { r.DistanceMiles = -1 }},
		{"NaN distance", func(r *Request) { r.DistanceMiles = math.NaN() }},
		{"infinite distance", func(r *Request) { r.DistanceMiles = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)

			b, err := Calculate(req, testhelpers.Snapshot())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b != nil {
				t.Fatalf("expected no quote, got %+v", b)
			}
		})
	}
}

func TestCalculate_MalformedRateCardIsConfigurationError(t *testing.T) {
	noTiers := testhelpers.Snapshot()
	card := noTiers.RateCards.Cards["house_move"]
	card.Tiers = nil
	noTiers.RateCards.Cards["house_move"] = card

	uncovered := testhelpers.Snapshot()
	card = uncovered.RateCards.Cards["house_move"]
	card.Tiers = card.Tiers[1:]
	uncovered.RateCards.Cards["house_move"] = card

	noDefault := testhelpers.Snapshot()
	noDefault.RateCards.DefaultServiceType = "office_move"

	tests := []struct {
		name string
		snap store.Snapshot
	}{
		{"no tiers", noTiers},
		{"volume zero uncovered", uncovered},
		{"no default card", noDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Calculate(baseRequest(), tt.snap)
			if !errors.Is(err, apperr.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if b != nil {
				t.Fatalf("expected no quote, got %+v", b)
			}
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	req := baseRequest()
	req.ServiceType = "storage_move"
	req.Items = append(req.Items, SelectedItem{ItemID: "box-m", Quantity: 33}, SelectedItem{ItemID: "fridge-freezer", Quantity: 1})
	req.Pickup.HasStairs = true
	req.Pickup.StairFlights = 3
	req.Dropoff.ULEZ = true
	req.Extras = []string{"assembly"}
	req.DistanceMiles = 27.35

	snap := testhelpers.Snapshot()
	first, err := Calculate(req, snap)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	firstJSON, _ := json.Marshal(first)

	for i := 0; i < 20; i++ {
		again, err := Calculate(req, snap)
		if err != nil {
			t.Fatalf("Calculate (iteration=%d): %v", i, err)
		}
		againJSON, _ := json.Marshal(again)
		if string(firstJSON) != string(againJSON) {
			t.Fatalf("iteration %d differs:\n%s\n%s", i, firstJSON, againJSON)
		}
	}
}
