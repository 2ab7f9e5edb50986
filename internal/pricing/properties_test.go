package pricing

import (
	"testing"

	"github.com/Simplici0/moveops/internal/money"
	"github.com/Simplici0/moveops/internal/testhelpers"
)

func requestGrid() []Request {
	var out []Request
	services := []string{"house_move", "storage_move"}
	loads := [][]SelectedItem{
		nil,
		{{ItemID: "box-m", Quantity: 3}},
		{{ItemID: "sofa-3", Quantity: 2}, {ItemID: "double-bed", Quantity: 1}},
		{{ItemID: "wardrobe-double", Quantity: 5}, {ItemID: "box-m", Quantity: 40}},
		{{ItemID: "fridge-freezer", Quantity: 30}},
	}
	distances := []float64{0, 0.3, 3.33, 12.5, 47.9, 180}
	vehicles := []string{AutoVehicle, "small", "luton", "large"}

	for _, svc := range services {
		for _, items := range loads {
			for _, d := range distances {
				for _, v := range vehicles {
					req := baseRequest()
					req.ServiceType = svc
					req.Items = items
					req.DistanceMiles = d
					req.SelectedVehicle = v
					req.CrewSize = len(items)%3 + 1
					req.Pickup.HasStairs = d > 10
					req.Pickup.StairFlights = 2
					req.Dropoff.CongestionZone = d > 40
					req.Extras = []string{"assembly"}
					out = append(out, req)
				}
			}
		}
	}
	return out
}

func TestProperty_FloorVATAndDepositInvariants(t *testing.T) {
	snap := testhelpers.Snapshot()

	for i, req := range requestGrid() {
		b, err := Calculate(req, snap)
		if err != nil || b == nil {
			t.Fatalf("request %d: quote=%v err=%v", i, b, err)
		}

		card, _, _ := snap.RateCards.Resolve(req.ServiceType)
		tier, ok := card.Tier(b.RecommendedVehicle)
		if !ok {
			t.Fatalf("request %d: recommended vehicle %q is not a tier", i, b.RecommendedVehicle)
		}
		if b.BasePrice+b.DistancePrice < tier.MinimumCharge-1e-9 {
			t.Fatalf("request %d: base+distance %.2f below minimum %.2f", i, b.BasePrice+b.DistancePrice, tier.MinimumCharge)
		}

		wantVAT := money.Float(money.Dec(b.Subtotal).Mul(VATRate))
		if b.VAT != wantVAT {
			t.Fatalf("request %d: vat = %v, want %v", i, b.VAT, wantVAT)
		}
		wantDeposit := money.Float(money.Dec(b.Total).Mul(DepositRate))
		if b.Deposit != wantDeposit {
			t.Fatalf("request %d: deposit = %v, want %v", i, b.Deposit, wantDeposit)
		}
		nearlyEqual(t, "subtotal", b.Subtotal, b.BasePrice+b.DistancePrice+b.VehicleSurcharge+b.StairsSurcharge+b.CongestionZone+b.ExtrasPrice)
		nearlyEqual(t, "total", b.Total, b.Subtotal+b.VAT)
	}
}

func TestProperty_DistanceMonotonic(t *testing.T) {
	snap := testhelpers.Snapshot()

	for _, service := range []string{"house_move", "storage_move"} {
		req := baseRequest()
		req.ServiceType = service
		req.Items = []SelectedItem{{ItemID: "sofa-3", Quantity: 3}}

		var prev *Breakdown
		for d := 0.0; d <= 250; d += 0.75 {
			req.DistanceMiles = d
			b, err := Calculate(req, snap)
			if err != nil || b == nil {
				t.Fatalf("distance %.2f: quote=%v err=%v", d, b, err)
			}
			if prev != nil {
				if b.DistancePrice < prev.DistancePrice {
					t.Fatalf("distancePrice decreased at %.2f: %.2f < %.2f", d, b.DistancePrice, prev.DistancePrice)
				}
				if b.Total < prev.Total {
					t.Fatalf("total decreased at %.2f: %.2f < %.2f", d, b.Total, prev.Total)
				}
			}
			prev = b
		}
	}
}

func TestProperty_AutoSelectionAlwaysFindsTier(t *testing.T) {
	snap := testhelpers.Snapshot()
	tiers := map[string]bool{}
	for _, tier := range testhelpers.Tiers() {
		tiers[tier.ID] = true
	}

	for qty := 0; qty <= 400; qty += 7 {
		req := baseRequest()
		req.Items = []SelectedItem{{ItemID: "box-m", Quantity: qty}}

		b, err := Calculate(req, snap)
		if err != nil || b == nil {
			t.Fatalf("qty %d: quote=%v err=%v", qty, b, err)
		}
		if !tiers[b.RecommendedVehicle] {
			t.Fatalf("qty %d: unexpected vehicle %q", qty, b.RecommendedVehicle)
		}
	}
}
