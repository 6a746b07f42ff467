package orchestration

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/catapulthq/catapult/internal/domain/itinerary"
)

// Payload field sub-grammar. Extraction is best-effort and tolerant: a field
// that does not match is simply absent from the patch and the corresponding
// state stays at its prior value. Extraction never fails the session.
var (
	datesRe = regexp.MustCompile(`Available dates:\s*(\S+)\s+to\s+([^,]+),`)
	destRe  = regexp.MustCompile(`Destination:\s*([^.,\n<]+)`)
	flightRe = regexp.MustCompile(
		`Best flight:\s*([^,]+),\s*Dep:\s*([^,]+),\s*Arr:\s*([^,]+),\s*\$([0-9]+(?:\.[0-9]+)?)`)
	hotelRe = regexp.MustCompile(
		`Best hotel:\s*([^,]+),\s*\$([0-9]+(?:\.[0-9]+)?)/night(?:,\s*(.*?))?,\s*Destination:`)
)

// MissingAddress is stored when a hotel line carries no address segment.
const MissingAddress = "Address not available"

// ExtractFields pulls the structured trip fields out of a handoff payload.
func ExtractFields(payload string) itinerary.Patch {
	var p itinerary.Patch

	if m := datesRe.FindStringSubmatch(payload); m != nil {
		d := itinerary.Dates{
			Start: strings.TrimSpace(m[1]),
			End:   strings.TrimSpace(m[2]),
		}
		p.Dates = &d
	}

	if m := destRe.FindStringSubmatch(payload); m != nil {
		dest := strings.TrimSpace(m[1])
		if dest != "" {
			p.Destination = &dest
		}
	}

	if m := flightRe.FindStringSubmatch(payload); m != nil {
		airline, number := splitFlightDesignator(strings.TrimSpace(m[1]))
		price, err := strconv.ParseFloat(m[4], 64)
		if err == nil && airline != "" {
			p.Flight = &itinerary.Flight{
				Airline:      airline,
				FlightNumber: number,
				Departure:    strings.TrimSpace(m[2]),
				Arrival:      strings.TrimSpace(m[3]),
				Price:        price,
				Currency:     "USD",
			}
		}
	}

	if m := hotelRe.FindStringSubmatch(payload); m != nil {
		price, err := strconv.ParseFloat(m[2], 64)
		if err == nil {
			address := strings.TrimSpace(m[3])
			if address == "" {
				address = MissingAddress
			}
			p.Hotel = &itinerary.Hotel{
				Name:    strings.TrimSpace(m[1]),
				Price:   price,
				Address: address,
			}
		}
	}

	return p
}

// splitFlightDesignator splits "United Airlines 515" into airline and flight
// number on the last whitespace token. A single-token designator is treated
// as an airline with no number.
func splitFlightDesignator(s string) (airline, number string) {
	idx := strings.LastIndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
}
