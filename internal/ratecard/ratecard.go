// Package ratecard holds per-service vehicle tier pricing and the volume brackets used to pick a vehicle.
package ratecard

import (
	"math"
	"sort"
	"strings"

	"github.com/Simplici0/moveops/internal/apperr"
)

const (
	storeName = "rate_card"

	// bracketTolerance absorbs float noise when comparing adjacent tier bounds.
	bracketTolerance = 1e-9
)

// VehicleTier is a priced vehicle class with its volume bracket [MinVolumeM3, MaxVolumeM3).
// MaxVolumeM3 of the last tier is unbounded; zero is the conventional value for it.
type VehicleTier struct {
	ID                   string  `json:"id" yaml:"id"`
	Name                 string  `json:"name" yaml:"name"`
	MinVolumeM3          float64 `json:"minVolumeM3" yaml:"min_volume_m3"`
	MaxVolumeM3          float64 `json:"maxVolumeM3" yaml:"max_volume_m3"`
	BaseFee              float64 `json:"baseFee" yaml:"base_fee"`
	PricePerMile         float64 `json:"pricePerMile" yaml:"price_per_mile"`
	PricePerCubicMeter   float64 `json:"pricePerCubicMeter" yaml:"price_per_cubic_meter"`
	MinimumCharge        float64 `json:"minimumCharge" yaml:"minimum_charge"`
	Crew1Price           float64 `json:"crew1Price" yaml:"crew1_price"`
	Crew2Price           float64 `json:"crew2Price" yaml:"crew2_price"`
	Crew3Price           float64 `json:"crew3Price" yaml:"crew3_price"`
	StairsPricePerFlight float64 `json:"stairsPricePerFlight" yaml:"stairs_price_per_flight"`
	CongestionCharge     float64 `json:"congestionCharge" yaml:"congestion_charge"`
}

// CrewPrice returns the crew surcharge for crewSize, clamped to 1..3.
func (t VehicleTier) CrewPrice(crewSize int) float64 {
	switch ClampCrew(crewSize) {
	case 3:
		return t.Crew3Price
	case 2:
		return t.Crew2Price
	default:
		return t.Crew1Price
	}
}

// ClampCrew forces a crew size into the priced range 1..3.
func ClampCrew(crewSize int) int {
	if crewSize < 1 {
		return 1
	}
	if crewSize > 3 {
		return 3
	}
	return crewSize
}

func (t VehicleTier) contains(volume float64) bool {
	return volume >= t.MinVolumeM3 && volume < t.MaxVolumeM3
}

// RateCard is the ordered tier list for a single service type.
type RateCard struct {
	ServiceType string `json:"serviceType" yaml:"service_type"`
	// IncludeVolumePrice adds adjustedVolume * PricePerCubicMeter into the base price.
	IncludeVolumePrice bool          `json:"includeVolumePrice" yaml:"include_volume_price"`
	Tiers              []VehicleTier `json:"tiers" yaml:"tiers"`
}

// Clone returns a deep copy of the card.
func (c RateCard) Clone() RateCard {
	c.Tiers = append([]VehicleTier(nil), c.Tiers...)
	return c
}

func (c RateCard) sorted() []VehicleTier {
	tiers := append([]VehicleTier(nil), c.Tiers...)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinVolumeM3 < tiers[j].MinVolumeM3 })
	return tiers
}

// Tier looks up a tier by id, ignoring case.
func (c RateCard) Tier(id string) (VehicleTier, bool) {
	id = strings.TrimSpace(id)
	for _, t := range c.Tiers {
		if strings.EqualFold(t.ID, id) {
			return t, true
		}
	}
	return VehicleTier{}, false
}

// Smallest returns the tier with the lowest bracket.
func (c RateCard) Smallest() (VehicleTier, bool) {
	if len(c.Tiers) == 0 {
		return VehicleTier{}, false
	}
	return c.sorted()[0], true
}

// Select returns the smallest tier whose bracket holds volume. Volumes past every
// bracket land on the largest tier; a volume falling into a gap gets the smallest tier.
func (c RateCard) Select(volume float64) (VehicleTier, bool) {
	if len(c.Tiers) == 0 {
		return VehicleTier{}, false
	}
	if math.IsNaN(volume) || volume < 0 {
		volume = 0
	}

	tiers := c.sorted()
	last := tiers[len(tiers)-1]
	for _, t := range tiers[:len(tiers)-1] {
		if t.contains(volume) {
			return t, true
		}
	}
	if volume >= last.MinVolumeM3 {
		return last, true
	}
	return tiers[0], true
}

// CheckCoverage reports a ConfigurationError when the card cannot price any request.
func (c RateCard) CheckCoverage() error {
	if len(c.Tiers) == 0 {
		return apperr.Configuration("service %q has no vehicle tiers", c.ServiceType)
	}
	if first := c.sorted()[0]; first.MinVolumeM3 > bracketTolerance {
		return apperr.Configuration("service %q does not cover volume 0 (first tier %q starts at %.2f)", c.ServiceType, first.ID, first.MinVolumeM3)
	}
	return nil
}

// Validate enforces ordering, contiguity and non-negative prices.
func (c RateCard) Validate() error {
	if len(c.Tiers) == 0 {
		return apperr.Validation(storeName, "tiers", "at least one tier is required for service %q", c.ServiceType)
	}

	seen := make(map[string]struct{}, len(c.Tiers))
	for i, t := range c.Tiers {
		if strings.TrimSpace(t.ID) == "" {
			return apperr.Validation(storeName, "id", "is required (tier %d)", i)
		}
		key := strings.ToLower(t.ID)
		if _, dup := seen[key]; dup {
			return apperr.Validation(storeName, "id", "%q is duplicated", t.ID)
		}
		seen[key] = struct{}{}

		if err := validatePrices(t); err != nil {
			return err
		}

		if i == 0 && math.Abs(t.MinVolumeM3) > bracketTolerance {
			return apperr.Validation(storeName, "minVolumeM3", "of first tier %q must be 0", t.ID)
		}

		if i == len(c.Tiers)-1 {
			if t.MaxVolumeM3 != 0 && t.MaxVolumeM3 <= t.MinVolumeM3 {
				return apperr.Validation(storeName, "maxVolumeM3", "of tier %q must exceed its minimum", t.ID)
			}
			continue
		}

		if t.MaxVolumeM3 <= t.MinVolumeM3 {
			return apperr.Validation(storeName, "maxVolumeM3", "of tier %q must exceed its minimum", t.ID)
		}
		next := c.Tiers[i+1]
		switch diff := next.MinVolumeM3 - t.MaxVolumeM3; {
		case diff > bracketTolerance:
			return apperr.Validation(storeName, "minVolumeM3", "gap between tier %q (max %.2f) and tier %q (min %.2f)", t.ID, t.MaxVolumeM3, next.ID, next.MinVolumeM3)
		case diff < -bracketTolerance:
			return apperr.Validation(storeName, "minVolumeM3", "tier %q (min %.2f) overlaps tier %q (max %.2f)", next.ID, next.MinVolumeM3, t.ID, t.MaxVolumeM3)
		}
	}
	return nil
}

func validatePrices(t VehicleTier) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"minVolumeM3", t.MinVolumeM3},
		{"maxVolumeM3", t.MaxVolumeM3},
		{"baseFee", t.BaseFee},
		{"pricePerMile", t.PricePerMile},
		{"pricePerCubicMeter", t.PricePerCubicMeter},
		{"minimumCharge", t.MinimumCharge},
		{"crew1Price", t.Crew1Price},
		{"crew2Price", t.Crew2Price},
		{"crew3Price", t.Crew3Price},
		{"stairsPricePerFlight", t.StairsPricePerFlight},
		{"congestionCharge", t.CongestionCharge},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return apperr.Validation(storeName, f.name, "of tier %q must be a finite number", t.ID)
		}
		if f.value < 0 {
			return apperr.Validation(storeName, f.name, "of tier %q must be >= 0", t.ID)
		}
	}
	return nil
}
