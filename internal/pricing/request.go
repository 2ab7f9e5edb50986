package pricing

import (
	"math"
	"strings"
)

// AutoVehicle asks the engine to pick the tier from the adjusted volume.
const AutoVehicle = "auto"

// CarryDistance buckets how far the crew walks between door and vehicle.
type CarryDistance string

const (
	CarryShort  CarryDistance = "0-10m"
	CarryMedium CarryDistance = "10-30m"
	CarryLong   CarryDistance = "30m+"
)

// Location describes access conditions at one end of the move.
type Location struct {
	Address        string        `json:"address"`
	Postcode       string        `json:"postcode,omitempty"`
	Floor          int           `json:"floor"`
	HasLift        bool          `json:"hasLift"`
	HasStairs      bool          `json:"hasStairs"`
	StairFlights   int           `json:"stairFlights"`
	CarryDistance  CarryDistance `json:"carryDistance,omitempty"`
	CongestionZone bool          `json:"congestionZone"`
	ULEZ           bool          `json:"ulez"`
	PermitRequired bool          `json:"permitRequired"`
}

func (l Location) restricted() bool {
	return l.CongestionZone || l.ULEZ
}

// SelectedItem is a catalog item and how many of it are moving.
type SelectedItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// PricedExtra is a non-flat extra already priced by the caller (per floor, per item, per hour).
type PricedExtra struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	Amount float64 `json:"amount"`
}

// Request is a move request, fully or partially filled in by the booking wizard.
type Request struct {
	ServiceType     string         `json:"serviceType,omitempty"`
	Pickup          Location       `json:"pickup"`
	Dropoff         Location       `json:"dropoff"`
	MoveDate        string         `json:"moveDate,omitempty"`
	Items           []SelectedItem `json:"items"`
	SelectedVehicle string         `json:"selectedVehicle,omitempty"`
	CrewSize        int            `json:"crewSize,omitempty"`
	Extras          []string       `json:"extras,omitempty"`
	PricedExtras    []PricedExtra  `json:"pricedExtras,omitempty"`
	// DistanceMiles is resolved upstream by the routing collaborator.
	DistanceMiles float64 `json:"distance"`
	// DurationMinutes, when positive, overrides the distance-derived estimate.
	DurationMinutes float64 `json:"durationMinutes,omitempty"`
}

// Ready reports whether the request has the minimum fields needed for a quote.
func (r Request) Ready() bool {
	if strings.TrimSpace(r.Pickup.Address) == "" || strings.TrimSpace(r.Dropoff.Address) == "" {
		return false
	}
	if math.IsNaN(r.DistanceMiles) || math.IsInf(r.DistanceMiles, 0) || r.DistanceMiles < 0 {
		return false
	}
	return true
}

func (r Request) autoVehicle() bool {
	v := strings.TrimSpace(r.SelectedVehicle)
	return v == "" || strings.EqualFold(v, AutoVehicle)
}
