package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/moveops/internal/catalog"
	"github.com/Simplici0/moveops/internal/money"
)

var (
	// PackingMargin is applied to every catalog volume.
	PackingMargin = decimal.RequireFromString("1.02")
	// SafetyMargin inflates the packed total for vehicle selection only.
	SafetyMargin = decimal.RequireFromString("1.10")
)

type load struct {
	volume       decimal.Decimal
	adjusted     decimal.Decimal
	needsTwoCrew bool
}

// aggregate sums packed item volumes. Unknown ids and non-positive quantities are skipped.
func aggregate(items []SelectedItem, c catalog.Catalog) load {
	var l load
	l.volume = decimal.Zero
	for _, sel := range items {
		if sel.Quantity <= 0 {
			continue
		}
		item, ok := c.Lookup(sel.ItemID)
		if !ok {
			continue
		}
		packed := money.Dec(item.VolumeM3).Mul(PackingMargin).Mul(decimal.NewFromInt(int64(sel.Quantity)))
		l.volume = l.volume.Add(packed)
		if item.IsHeavy || item.Requires2Crew {
			l.needsTwoCrew = true
		}
	}
	l.adjusted = l.volume.Mul(SafetyMargin)
	return l
}

// AdjustedVolume returns the packed volume and the safety-margin volume used for vehicle selection.
func AdjustedVolume(items []SelectedItem, c catalog.Catalog) (volume, adjusted float64) {
	l := aggregate(items, c)
	return l.volume.InexactFloat64(), l.adjusted.InexactFloat64()
}
