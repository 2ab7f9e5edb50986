// Package store holds the pricing configuration snapshot read by the quote engine and
// applies admin edits to it atomically.
package store

import (
	"context"

	"github.com/Simplici0/moveops/internal/catalog"
	"github.com/Simplici0/moveops/internal/extras"
	"github.com/Simplici0/moveops/internal/margin"
	"github.com/Simplici0/moveops/internal/ratecard"
)

// Snapshot is a complete, validated view of every pricing store.
// Values handed out by Manager are copies and safe to keep.
type Snapshot struct {
	Items     catalog.Catalog `json:"items"`
	RateCards ratecard.Set    `json:"rateCards"`
	Extras    extras.Catalog  `json:"extras"`
	Margin    margin.Policy   `json:"marginPolicy"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Items:     s.Items.Clone(),
		RateCards: s.RateCards.Clone(),
		Extras:    s.Extras.Clone(),
		Margin:    s.Margin,
	}
}

// Validate checks every store invariant.
func (s Snapshot) Validate() error {
	if err := s.Items.Validate(); err != nil {
		return err
	}
	if err := s.RateCards.Validate(); err != nil {
		return err
	}
	if err := s.Extras.Validate(); err != nil {
		return err
	}
	return s.Margin.Validate()
}

// Persister is the get/set contract for wherever the stores live.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
