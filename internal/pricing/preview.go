package pricing

import (
	"github.com/Simplici0/moveops/internal/margin"
	"github.com/Simplici0/moveops/internal/store"
)

// Preview is the admin calculator view: the customer quote plus the internal margin split.
// The split is never shown to the customer.
type Preview struct {
	Quote *Breakdown    `json:"quote"`
	Split *margin.Split `json:"split"`
}

// PreviewQuote prices req and splits its total with the snapshot's margin policy.
func PreviewQuote(req Request, stores store.Snapshot) (Preview, error) {
	quote, err := Calculate(req, stores)
	if err != nil || quote == nil {
		return Preview{}, err
	}

	split, err := stores.Margin.Split(quote.Total)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Quote: quote, Split: &split}, nil
}
