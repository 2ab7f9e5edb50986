// Package testhelpers provides pricing configuration fixtures shared by package tests.
package testhelpers

import (
	"github.com/Simplici0/moveops/internal/catalog"
	"github.com/Simplici0/moveops/internal/extras"
	"github.com/Simplici0/moveops/internal/margin"
	"github.com/Simplici0/moveops/internal/ratecard"
	"github.com/Simplici0/moveops/internal/store"
)

// Tiers returns the fixture vehicle tiers: small [0,5), medium [5,10), luton [10,20), large [20,∞).
func Tiers() []ratecard.VehicleTier {
	return []ratecard.VehicleTier{
		{ID: "small", Name: "Small van", MinVolumeM3: 0, MaxVolumeM3: 5, BaseFee: 40, PricePerMile: 1.5, PricePerCubicMeter: 8, MinimumCharge: 65, Crew1Price: 25, Crew2Price: 50, Crew3Price: 75, StairsPricePerFlight: 10, CongestionCharge: 15},
		{ID: "medium", Name: "Medium van", MinVolumeM3: 5, MaxVolumeM3: 10, BaseFee: 60, PricePerMile: 1.8, PricePerCubicMeter: 8, MinimumCharge: 90, Crew1Price: 30, Crew2Price: 60, Crew3Price: 90, StairsPricePerFlight: 12, CongestionCharge: 15},
		{ID: "luton", Name: "Luton van", MinVolumeM3: 10, MaxVolumeM3: 20, BaseFee: 85, PricePerMile: 2.2, PricePerCubicMeter: 7, MinimumCharge: 130, Crew1Price: 35, Crew2Price: 70, Crew3Price: 105, StairsPricePerFlight: 15, CongestionCharge: 18},
		{ID: "large", Name: "7.5t lorry", MinVolumeM3: 20, MaxVolumeM3: 0, BaseFee: 120, PricePerMile: 2.8, PricePerCubicMeter: 6, MinimumCharge: 180, Crew1Price: 40, Crew2Price: 80, Crew3Price: 120, StairsPricePerFlight: 18, CongestionCharge: 25},
	}
}

// Snapshot returns a valid pricing configuration. "house_move" is the default service
// type and excludes volume pricing; "storage_move" includes it.
func Snapshot() store.Snapshot {
	return store.Snapshot{
		Items: catalog.New([]catalog.Item{
			{ID: "double-mattress", Name: "Double mattress", Category: "bedroom", VolumeM3: 0.6, Active: true},
			{ID: "double-bed", Name: "Double bed frame", Category: "bedroom", VolumeM3: 1.2, Active: true},
			{ID: "wardrobe-double", Name: "Double wardrobe", Category: "bedroom", VolumeM3: 1.5, IsHeavy: true, Requires2Crew: true, Active: true},
			{ID: "sofa-3", Name: "Three seater sofa", Category: "living", VolumeM3: 1.8, IsHeavy: true, Requires2Crew: true, Active: true},
			{ID: "box-m", Name: "Medium box", Category: "boxes", VolumeM3: 0.07, Active: true},
			{ID: "fridge-freezer", Name: "Fridge freezer", Category: "kitchen", VolumeM3: 0.9, IsHeavy: true, Active: true},
		}),
		RateCards: ratecard.Set{
			DefaultServiceType: "house_move",
			Cards: map[string]ratecard.RateCard{
				"house_move":   {ServiceType: "house_move", Tiers: Tiers()},
				"storage_move": {ServiceType: "storage_move", IncludeVolumePrice: true, Tiers: Tiers()},
			},
		},
		Extras: extras.New([]extras.Service{
			{ID: "assembly", Name: "Furniture assembly", Price: 35, ChargeType: extras.ChargeFlat},
			{ID: "disassembly", Name: "Furniture disassembly", Price: 30, ChargeType: extras.ChargeFlat},
			{ID: "packing", Name: "Full packing service", Price: 80, ChargeType: extras.ChargeFlat},
			{ID: "piano", Name: "Piano handling", Price: 25, ChargeType: extras.ChargePerFloor},
			{ID: "waiting", Name: "Waiting time", Price: 30, ChargeType: extras.ChargePerHour},
		}),
		Margin: margin.Policy{Mode: margin.ModeHybrid, Percentage: 20, FixedAmount: 15, MinimumAmount: 10},
	}
}
