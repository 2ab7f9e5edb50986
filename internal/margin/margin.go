// Package margin splits a finished customer total into platform margin and operator payout.
package margin

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/moveops/internal/apperr"
	"github.com/Simplici0/moveops/internal/money"
)

const storeName = "margin_policy"

// Mode selects which margin formula is active.
type Mode string

const (
	ModePercentage Mode = "percentage"
	ModeFixed      Mode = "fixed"
	ModeHybrid     Mode = "hybrid"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModePercentage, ModeFixed, ModeHybrid:
		return true
	}
	return false
}

// Policy is the global margin configuration. Fields of inactive modes are kept so
// an admin can switch modes without losing entered values.
type Policy struct {
	Mode                Mode    `json:"mode" yaml:"mode"`
	Percentage          float64 `json:"percentage" yaml:"percentage"`
	FixedAmount         float64 `json:"fixedAmount" yaml:"fixed_amount"`
	MinimumAmount       float64 `json:"minimumAmount" yaml:"minimum_amount"`
	UseOperatorRateCard bool    `json:"useOperatorRateCard" yaml:"use_operator_rate_card"`
}

// Validate checks mode and value ranges.
func (p Policy) Validate() error {
	if !p.Mode.Valid() {
		return apperr.Validation(storeName, "mode", "%q is not one of percentage, fixed, hybrid", p.Mode)
	}
	if !finite(p.Percentage) || p.Percentage < 0 || p.Percentage > 100 {
		return apperr.Validation(storeName, "percentage", "must be between 0 and 100")
	}
	if !finite(p.FixedAmount) || p.FixedAmount < 0 {
		return apperr.Validation(storeName, "fixedAmount", "must be >= 0")
	}
	if !finite(p.MinimumAmount) || p.MinimumAmount < 0 {
		return apperr.Validation(storeName, "minimumAmount", "must be >= 0")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Patch carries a partial policy edit.
type Patch struct {
	Mode                *Mode    `json:"mode,omitempty"`
	Percentage          *float64 `json:"percentage,omitempty"`
	FixedAmount         *float64 `json:"fixedAmount,omitempty"`
	MinimumAmount       *float64 `json:"minimumAmount,omitempty"`
	UseOperatorRateCard *bool    `json:"useOperatorRateCard,omitempty"`
}

// ApplyPatch returns the edited, validated policy.
func (p Policy) ApplyPatch(patch Patch) (Policy, error) {
	if patch.Mode != nil {
		p.Mode = Mode(strings.ToLower(strings.TrimSpace(string(*patch.Mode))))
	}
	if patch.Percentage != nil {
		p.Percentage = *patch.Percentage
	}
	if patch.FixedAmount != nil {
		p.FixedAmount = *patch.FixedAmount
	}
	if patch.MinimumAmount != nil {
		p.MinimumAmount = *patch.MinimumAmount
	}
	if patch.UseOperatorRateCard != nil {
		p.UseOperatorRateCard = *patch.UseOperatorRateCard
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Split is the internal-only division of a customer total.
type Split struct {
	Mode           Mode    `json:"mode"`
	Total          float64 `json:"total"`
	Margin         float64 `json:"margin"`
	OperatorPayout float64 `json:"operatorPayout"`
	// OperatorRateCard means payout comes from the separate operator rate card and
	// no margin was computed.
	OperatorRateCard bool `json:"operatorRateCard"`
}

// Split divides total according to the policy. The operator rate card gate is
// checked before any mode runs. Payout never goes below zero.
func (p Policy) Split(total float64) (Split, error) {
	if p.UseOperatorRateCard {
		return Split{Mode: p.Mode, Total: money.Round(total), OperatorRateCard: true}, nil
	}

	t := money.Dec(total)
	pct := t.Mul(money.Dec(p.Percentage)).Div(decimal.NewFromInt(100))
	fixed := money.Dec(p.FixedAmount)

	var m decimal.Decimal
	switch p.Mode {
	case ModePercentage:
		m = pct
	case ModeFixed:
		m = fixed
	case ModeHybrid:
		m = decimal.Max(pct, fixed, money.Dec(p.MinimumAmount))
	default:
		return Split{}, apperr.Configuration("margin policy mode %q is undefined", p.Mode)
	}
	m = money.RoundDec(m)

	payout := money.RoundDec(t).Sub(m)
	if payout.IsNegative() {
		payout = decimal.Zero
	}

	return Split{
		Mode:           p.Mode,
		Total:          money.Float(t),
		Margin:         m.InexactFloat64(),
		OperatorPayout: payout.InexactFloat64(),
	}, nil
}
