package ratecard

import (
	"sort"
	"strings"

	"github.com/Simplici0/moveops/internal/apperr"
)

// Set keys rate cards by service type. Unknown service types resolve to DefaultServiceType.
type Set struct {
	DefaultServiceType string              `json:"defaultServiceType" yaml:"default_service_type"`
	Cards              map[string]RateCard `json:"cards" yaml:"cards"`
}

// Resolve returns the card for serviceType, falling back to the default card.
// The returned name is the service type actually used.
func (s Set) Resolve(serviceType string) (RateCard, string, bool) {
	serviceType = strings.TrimSpace(serviceType)
	if card, ok := s.Cards[serviceType]; ok && serviceType != "" {
		return card, serviceType, true
	}
	card, ok := s.Cards[s.DefaultServiceType]
	return card, s.DefaultServiceType, ok
}

// ServiceTypes returns the configured service types in sorted order.
func (s Set) ServiceTypes() []string {
	out := make([]string, 0, len(s.Cards))
	for k := range s.Cards {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (s Set) Clone() Set {
	cards := make(map[string]RateCard, len(s.Cards))
	for k, c := range s.Cards {
		cards[k] = c.Clone()
	}
	return Set{DefaultServiceType: s.DefaultServiceType, Cards: cards}
}

// Validate checks the default key and every card.
func (s Set) Validate() error {
	if _, ok := s.Cards[s.DefaultServiceType]; !ok {
		return apperr.Validation(storeName, "defaultServiceType", "%q has no rate card", s.DefaultServiceType)
	}
	for _, key := range s.ServiceTypes() {
		card := s.Cards[key]
		if card.ServiceType != key {
			return apperr.Validation(storeName, "serviceType", "card %q is stored under key %q", card.ServiceType, key)
		}
		if err := card.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Patch carries a partial tier edit; nil fields are left untouched.
type Patch struct {
	Name                 *string  `json:"name,omitempty"`
	MinVolumeM3          *float64 `json:"minVolumeM3,omitempty"`
	MaxVolumeM3          *float64 `json:"maxVolumeM3,omitempty"`
	BaseFee              *float64 `json:"baseFee,omitempty"`
	PricePerMile         *float64 `json:"pricePerMile,omitempty"`
	PricePerCubicMeter   *float64 `json:"pricePerCubicMeter,omitempty"`
	MinimumCharge        *float64 `json:"minimumCharge,omitempty"`
	Crew1Price           *float64 `json:"crew1Price,omitempty"`
	Crew2Price           *float64 `json:"crew2Price,omitempty"`
	Crew3Price           *float64 `json:"crew3Price,omitempty"`
	StairsPricePerFlight *float64 `json:"stairsPricePerFlight,omitempty"`
	CongestionCharge     *float64 `json:"congestionCharge,omitempty"`
}

func (p Patch) apply(t VehicleTier) VehicleTier {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	setFloat(&t.MinVolumeM3, p.MinVolumeM3)
	setFloat(&t.MaxVolumeM3, p.MaxVolumeM3)
	setFloat(&t.BaseFee, p.BaseFee)
	setFloat(&t.PricePerMile, p.PricePerMile)
	setFloat(&t.PricePerCubicMeter, p.PricePerCubicMeter)
	setFloat(&t.MinimumCharge, p.MinimumCharge)
	setFloat(&t.Crew1Price, p.Crew1Price)
	setFloat(&t.Crew2Price, p.Crew2Price)
	setFloat(&t.Crew3Price, p.Crew3Price)
	setFloat(&t.StairsPricePerFlight, p.StairsPricePerFlight)
	setFloat(&t.CongestionCharge, p.CongestionCharge)
	return t
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// ApplyPatch returns a new Set with the tier edited. The receiver is never modified.
// An empty serviceType targets the default card.
func (s Set) ApplyPatch(serviceType, tierID string, p Patch) (Set, error) {
	serviceType = strings.TrimSpace(serviceType)
	if serviceType == "" {
		serviceType = s.DefaultServiceType
	}
	if _, ok := s.Cards[serviceType]; !ok {
		return Set{}, apperr.Validation(storeName, "serviceType", "%q is not configured", serviceType)
	}

	next := s.Clone()
	card := next.Cards[serviceType]
	idx := -1
	for i, t := range card.Tiers {
		if strings.EqualFold(t.ID, strings.TrimSpace(tierID)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Set{}, apperr.Validation(storeName, "id", "tier %q not found for service %q", tierID, serviceType)
	}

	card.Tiers[idx] = p.apply(card.Tiers[idx])
	if err := card.Validate(); err != nil {
		return Set{}, err
	}
	next.Cards[serviceType] = card
	return next, nil
}
