// Package seed writes the default pricing configuration on first start.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/moveops/internal/catalog"
	"github.com/Simplici0/moveops/internal/extras"
	"github.com/Simplici0/moveops/internal/margin"
	"github.com/Simplici0/moveops/internal/ratecard"
	"github.com/Simplici0/moveops/internal/store"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type document struct {
	DefaultServiceType string              `yaml:"default_service_type"`
	RateCards          []ratecard.RateCard `yaml:"rate_cards"`
	Extras             []extras.Service    `yaml:"extras"`
	Margin             margin.Policy       `yaml:"margin_policy"`
	Items              []catalog.Item      `yaml:"items"`
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Defaults parses the embedded default configuration and validates it.
func Defaults() (store.Snapshot, error) {
	return Parse(defaultsYAML)
}

// Parse builds a validated snapshot from a YAML pricing document.
func Parse(raw []byte) (store.Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return store.Snapshot{}, fmt.Errorf("decode pricing defaults: %w", err)
	}

	cards := make(map[string]ratecard.RateCard, len(doc.RateCards))
	for _, card := range doc.RateCards {
		cards[card.ServiceType] = card
	}

	snap := store.Snapshot{
		Items:     catalog.New(doc.Items),
		RateCards: ratecard.Set{DefaultServiceType: doc.DefaultServiceType, Cards: cards},
		Extras:    extras.New(doc.Extras),
		Margin:    doc.Margin,
	}
	if err := snap.Validate(); err != nil {
		return store.Snapshot{}, fmt.Errorf("pricing defaults: %w", err)
	}
	return snap, nil
}

// Run saves the defaults when the persister holds no configuration. An already seeded
// persister is left untouched, so Run is safe on every start.
func Run(ctx context.Context, p store.Persister) (Stats, error) {
	_, err := p.Load(ctx)
	if err == nil {
		return Stats{}, nil
	}
	if !errors.Is(err, store.ErrNotSeeded) {
		return Stats{}, fmt.Errorf("check pricing configuration: %w", err)
	}

	snap, err := Defaults()
	if err != nil {
		return Stats{}, err
	}
	if err := p.Save(ctx, snap); err != nil {
		return Stats{}, fmt.Errorf("save pricing defaults: %w", err)
	}

	stats := Stats{Inserts: len(snap.Items) + len(snap.Extras) + 1}
	for _, card := range snap.RateCards.Cards {
		stats.Inserts += 1 + len(card.Tiers)
	}
	return stats, nil
}
