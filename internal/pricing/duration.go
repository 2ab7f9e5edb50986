package pricing

import (
	"fmt"
	"math"
)

// AverageSpeedMPH converts distance into a travel estimate when no upstream duration exists.
const AverageSpeedMPH = 30.0

// MaxDurationMinutes caps estimates; anything longer is reported as this value.
const MaxDurationMinutes = 7 * 24 * 60

// EstimateDuration formats a travel time. A positive durationMinutes from the routing
// collaborator wins; otherwise distance is driven at AverageSpeedMPH, rounded up to 5 minutes.
func EstimateDuration(distanceMiles, durationMinutes float64) string {
	raw := 0.0
	switch {
	case durationMinutes > 0 && !math.IsInf(durationMinutes, 0):
		raw = math.Round(durationMinutes)
	case distanceMiles > 0 && !math.IsInf(distanceMiles, 0):
		raw = math.Ceil(distanceMiles/AverageSpeedMPH*60/5) * 5
	}
	return formatMinutes(int(math.Min(raw, MaxDurationMinutes)))
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
