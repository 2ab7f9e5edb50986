package extras

import (
	"math"
	"sort"
	"strings"

	"github.com/Simplici0/moveops/internal/apperr"
)

const storeName = "extras"

// ChargeType decides how an extra service is priced.
type ChargeType string

const (
	ChargeFlat     ChargeType = "flat"
	ChargePerFloor ChargeType = "per_floor"
	ChargePerItem  ChargeType = "per_item"
	ChargePerHour  ChargeType = "per_hour"
)

// Valid reports whether c is a known charge type.
func (c ChargeType) Valid() bool {
	switch c {
	case ChargeFlat, ChargePerFloor, ChargePerItem, ChargePerHour:
		return true
	}
	return false
}

// Service is an optional add-on such as assembly or packing.
type Service struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Price      float64    `json:"price" yaml:"price"`
	ChargeType ChargeType `json:"chargeType" yaml:"charge_type"`
}

// Catalog maps extra ids to services.
type Catalog map[string]Service

// New builds a catalog from a list of services.
func New(services []Service) Catalog {
	c := make(Catalog, len(services))
	for _, s := range services {
		c[s.ID] = s
	}
	return c
}

// Services returns the catalog sorted by id.
func (c Catalog) Services() []Service {
	out := make([]Service, 0, len(c))
	for _, s := range c {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clone returns an independent copy.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// FlatTotal sums the selected flat-rate extras. Unknown ids and non-flat charge
// types are skipped: those arrive already priced from the caller.
func (c Catalog) FlatTotal(selected []string) float64 {
	seen := make(map[string]struct{}, len(selected))
	total := 0.0
	for _, id := range selected {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		s, ok := c[id]
		if !ok || s.ChargeType != ChargeFlat {
			continue
		}
		total += s.Price
	}
	return total
}

// Validate checks every service.
func (c Catalog) Validate() error {
	for key, s := range c {
		if err := validateService(s); err != nil {
			return err
		}
		if key != s.ID {
			return apperr.Validation(storeName, "id", "%q is stored under key %q", s.ID, key)
		}
	}
	return nil
}

func validateService(s Service) error {
	if strings.TrimSpace(s.ID) == "" {
		return apperr.Validation(storeName, "id", "is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return apperr.Validation(storeName, "name", "is required for extra %q", s.ID)
	}
	if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price < 0 {
		return apperr.Validation(storeName, "price", "of extra %q must be >= 0", s.ID)
	}
	if !s.ChargeType.Valid() {
		return apperr.Validation(storeName, "chargeType", "%q is not one of flat, per_floor, per_item, per_hour", s.ChargeType)
	}
	return nil
}

// Patch carries a partial extra edit.
type Patch struct {
	Name       *string     `json:"name,omitempty"`
	Price      *float64    `json:"price,omitempty"`
	ChargeType *ChargeType `json:"chargeType,omitempty"`
}

// ApplyPatch returns a new catalog with extraID edited.
func (c Catalog) ApplyPatch(extraID string, p Patch) (Catalog, error) {
	s, ok := c[extraID]
	if !ok {
		return nil, apperr.Validation(storeName, "id", "extra %q not found", extraID)
	}
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.ChargeType != nil {
		s.ChargeType = *p.ChargeType
	}
	if err := validateService(s); err != nil {
		return nil, err
	}

	next := c.Clone()
	next[extraID] = s
	return next, nil
}
