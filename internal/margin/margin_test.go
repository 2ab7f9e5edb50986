package margin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/moveops/internal/apperr"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		policy     Policy
		total      float64
		wantMargin float64
		wantPayout float64
	}{
		{"percentage", Policy{Mode: ModePercentage, Percentage: 25, FixedAmount: 999}, 200, 50, 150},
		{"fixed ignores percentage", Policy{Mode: ModeFixed, Percentage: 90, FixedAmount: 40}, 200, 40, 160},
		{"fixed above total clamps payout", Policy{Mode: ModeFixed, FixedAmount: 200}, 150, 200, 0},
		{"hybrid percentage wins", Policy{Mode: ModeHybrid, Percentage: 20, FixedAmount: 15, MinimumAmount: 10}, 150, 30, 120},
		{"hybrid fixed wins", Policy{Mode: ModeHybrid, Percentage: 5, FixedAmount: 15, MinimumAmount: 10}, 150, 15, 135},
		{"hybrid minimum wins", Policy{Mode: ModeHybrid, Percentage: 5, FixedAmount: 5, MinimumAmount: 12}, 150, 12, 138},
		{"zero total", Policy{Mode: ModeHybrid, Percentage: 20, MinimumAmount: 10}, 0, 10, 0},
		{"rounded to pence", Policy{Mode: ModePercentage, Percentage: 12.5}, 99.99, 12.5, 87.49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.Split(tt.total)
			require.NoError(t, err)
			require.Equal(t, tt.wantMargin, got.Margin)
			require.Equal(t, tt.wantPayout, got.OperatorPayout)
			require.False(t, got.OperatorRateCard)
		})
	}
}

func TestSplitPayoutNeverNegative(t *testing.T) {
	t.Parallel()

	policies := []Policy{
		{Mode: ModePercentage, Percentage: 100},
		{Mode: ModeFixed, FixedAmount: 1e6},
		{Mode: ModeHybrid, Percentage: 100, FixedAmount: 500, MinimumAmount: 700},
	}
	for _, p := range policies {
		for total := 0.0; total <= 1000; total += 37.13 {
			got, err := p.Split(total)
			require.NoError(t, err)
			require.GreaterOrEqual(t, got.OperatorPayout, 0.0, "policy %+v total %.2f", p, total)
		}
	}
}

func TestSplitOperatorRateCardShortCircuits(t *testing.T) {
	t.Parallel()

	p := Policy{Mode: Mode("bogus"), UseOperatorRateCard: true}
	got, err := p.Split(150)
	require.NoError(t, err)
	require.True(t, got.OperatorRateCard)
	require.Zero(t, got.Margin)
	require.Zero(t, got.OperatorPayout)
}

func TestSplitUndefinedMode(t *testing.T) {
	t.Parallel()

	_, err := Policy{Mode: "tiered"}.Split(100)
	require.ErrorIs(t, err, apperr.ErrConfiguration)
}

func TestApplyPatchKeepsInactiveFields(t *testing.T) {
	t.Parallel()

	p := Policy{Mode: ModeHybrid, Percentage: 20, FixedAmount: 15, MinimumAmount: 10}
	mode := Mode("Percentage")

	next, err := p.ApplyPatch(Patch{Mode: &mode})
	require.NoError(t, err)
	require.Equal(t, ModePercentage, next.Mode)
	require.Equal(t, 15.0, next.FixedAmount)
	require.Equal(t, 10.0, next.MinimumAmount)

	split, err := next.Split(100)
	require.NoError(t, err)
	require.Equal(t, 20.0, split.Margin)
}

func TestApplyPatchValidation(t *testing.T) {
	t.Parallel()

	over := 101.0
	negative := -1.0
	bad := Mode("tiered")

	tests := []struct {
		name  string
		patch Patch
		field string
	}{
		{"percentage above 100", Patch{Percentage: &over}, "percentage"},
		{"percentage below 0", Patch{Percentage: &negative}, "percentage"},
		{"negative fixed", Patch{FixedAmount: &negative}, "fixedAmount"},
		{"negative minimum", Patch{MinimumAmount: &negative}, "minimumAmount"},
		{"unknown mode", Patch{Mode: &bad}, "mode"},
	}

	base := Policy{Mode: ModePercentage, Percentage: 20}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := base.ApplyPatch(tt.patch)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.field, verr.Field)
		})
	}
}
