package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/Simplici0/moveops/internal/apperr"
)

const storeName = "item_catalog"

// Item is a catalog entry with its packed volume and handling flags.
type Item struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Category      string  `json:"category" yaml:"category"`
	VolumeM3      float64 `json:"volumeM3" yaml:"volume_m3"`
	IsHeavy       bool    `json:"isHeavy" yaml:"is_heavy"`
	Requires2Crew bool    `json:"requires2Crew" yaml:"requires_2_crew"`
	Active        bool    `json:"active" yaml:"active"`
}

// Catalog maps item IDs to items.
type Catalog map[string]Item

// New builds a catalog from a list of items. Later duplicates win.
func New(items []Item) Catalog {
	c := make(Catalog, len(items))
	for _, it := range items {
		c[it.ID] = it
	}
	return c
}

// Lookup returns the item for id. Unknown ids report false instead of failing.
func (c Catalog) Lookup(id string) (Item, bool) {
	it, ok := c[strings.TrimSpace(id)]
	return it, ok
}

// Items returns the catalog sorted by category then name.
func (c Catalog) Items() []Item {
	out := make([]Item, 0, len(c))
	for _, it := range c {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
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

// Validate checks ids and volumes.
func (c Catalog) Validate() error {
	for key, it := range c {
		if strings.TrimSpace(it.ID) == "" {
			return apperr.Validation(storeName, "id", "is required")
		}
		if key != it.ID {
			return apperr.Validation(storeName, "id", "%q is stored under key %q", it.ID, key)
		}
		if math.IsNaN(it.VolumeM3) || math.IsInf(it.VolumeM3, 0) {
			return apperr.Validation(storeName, "volumeM3", "must be a finite number for item %q", it.ID)
		}
		if it.VolumeM3 < 0 {
			return apperr.Validation(storeName, "volumeM3", "must be >= 0 for item %q", it.ID)
		}
	}
	return nil
}
