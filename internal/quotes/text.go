package quotes

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BritishEnglish)

func pounds(v float64) number.Formatter {
	return number.Decimal(v, number.Scale(2))
}

// RenderText formats a frozen quote as a plain-text summary for the customer.
// The margin split is internal and never rendered.
func RenderText(rec Record) string {
	b := rec.Breakdown
	var sb strings.Builder

	line := func(format string, args ...any) {
		sb.WriteString(printer.Sprintf(format, args...))
		sb.WriteByte('\n')
	}
	amount := func(label string, v float64) {
		line("%-20s £%v", label, pounds(v))
	}

	line("Quote %s", rec.ID)
	if rec.Reference != "" {
		line("Reference: %s", rec.Reference)
	}
	line("Created: %s", rec.CreatedAt.UTC().Format("2 Jan 2006 15:04 MST"))
	line("From: %s", rec.Request.Pickup.Address)
	line("To: %s", rec.Request.Dropoff.Address)
	if rec.Request.MoveDate != "" {
		line("Move date: %s", rec.Request.MoveDate)
	}
	line("Service: %s", b.ServiceType)
	line("Vehicle: %s, crew of %d", b.RecommendedVehicle, b.CrewSize)
	if b.RecommendedCrew > b.CrewSize {
		line("We recommend a crew of %d for this load.", b.RecommendedCrew)
	}
	line("Distance: %v miles (about %s)", number.Decimal(b.Distance, number.Scale(1)), b.EstimatedDuration)
	line("Volume: %v m³", number.Decimal(b.VolumeM3, number.Scale(2)))
	sb.WriteByte('\n')

	amount("Base price", b.BasePrice)
	amount("Distance", b.DistancePrice)
	amount("Crew", b.VehicleSurcharge)
	if b.StairsSurcharge > 0 {
		amount("Stairs", b.StairsSurcharge)
	}
	if b.CongestionZone > 0 {
		amount("Congestion / ULEZ", b.CongestionZone)
	}
	if b.ExtrasPrice > 0 {
		amount("Extras", b.ExtrasPrice)
	}
	amount("Subtotal", b.Subtotal)
	amount("VAT (20%)", b.VAT)
	amount("Total", b.Total)
	amount("Deposit due", b.Deposit)
	if b.MinimumChargeApplied {
		sb.WriteString("\nThe minimum charge for this vehicle applies.\n")
	}
	if rec.Notes != "" {
		sb.WriteString("\nNotes: " + rec.Notes + "\n")
	}

	return sb.String()
}
