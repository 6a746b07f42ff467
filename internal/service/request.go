package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/catapulthq/catapult/internal/domain/itinerary"
)

// SurveyRequest is the structured trip survey submitted by clients.
type SurveyRequest struct {
	Destination string   `json:"destination"`
	Origin      string   `json:"origin"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Budget      float64  `json:"budget,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// BuildRequest renders a survey into the natural-language request string the
// planning agents consume.
func BuildRequest(s SurveyRequest) string {
	req := fmt.Sprintf("Plan a trip to %s from %s, starting on %s and ending on %s",
		s.Destination, s.Origin, s.StartDate, s.EndDate)
	if s.Budget > 0 {
		req += fmt.Sprintf(", with a budget of $%.0f", s.Budget)
	}
	if len(s.Interests) > 0 {
		req += fmt.Sprintf(". I'm interested in %s", strings.Join(s.Interests, ", "))
	}
	return req
}

// TripRequest is the structured reading of a free-text trip request.
type TripRequest struct {
	Destination string
	Origin      string
	Dates       itinerary.Dates
}

var (
	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`to\s+([A-Za-z\s]+?)(?:,|\s+from|\s+on|\s+starting|$)`),
		regexp.MustCompile(`in\s+([A-Za-z\s]+?)(?:,|\s+from|\s+on|\s+starting|$)`),
		regexp.MustCompile(`visit\s+([A-Za-z\s]+?)(?:,|\s+from|\s+on|\s+starting|$)`),
	}
	originPatterns = []*regexp.Regexp{
		regexp.MustCompile(`from\s+([A-Za-z\s]+?)(?:,|\s+starting|\s+on|\s+to|$)`),
		regexp.MustCompile(`leaving\s+([A-Za-z\s]+?)(?:,|\s+to|\s+on|$)`),
	}
	rangeISORe   = regexp.MustCompile(`starting\s+on\s+(\d{4}-\d{2}-\d{2})\s+and\s+ending\s+on\s+(\d{4}-\d{2}-\d{2})`)
	rangePlainRe = regexp.MustCompile(`from\s+(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)
	rangeUSRe    = regexp.MustCompile(`from\s+(\d{2}/\d{2}/\d{4})\s+to\s+(\d{2}/\d{2}/\d{4})`)
	forDaysRe    = regexp.MustCompile(`starting\s+(?:on\s+)?(\d{4}-\d{2}-\d{2})\s+for\s+(\d+)\s+days`)
)

// ParseRequest extracts destination, origin, and dates from a free-text trip
// request. Extraction is best-effort; fields that cannot be read fall back
// to defaults so the direct pipeline always produces a plan.
func ParseRequest(request string) TripRequest {
	tr := TripRequest{
		Destination: "Chicago",
		Origin:      "New York",
		Dates:       itinerary.Dates{Start: "2025-06-15", End: "2025-06-18"},
	}

	for _, re := range destinationPatterns {
		if m := re.FindStringSubmatch(request); m != nil {
			tr.Destination = cleanPlace(m[1])
			break
		}
	}
	for _, re := range originPatterns {
		if m := re.FindStringSubmatch(request); m != nil {
			tr.Origin = cleanPlace(m[1])
			break
		}
	}

	switch {
	case rangeISORe.MatchString(request):
		m := rangeISORe.FindStringSubmatch(request)
		tr.Dates = itinerary.Dates{Start: m[1], End: m[2]}
	case rangePlainRe.MatchString(request):
		m := rangePlainRe.FindStringSubmatch(request)
		tr.Dates = itinerary.Dates{Start: m[1], End: m[2]}
	case rangeUSRe.MatchString(request):
		m := rangeUSRe.FindStringSubmatch(request)
		if start, err := time.Parse("01/02/2006", m[1]); err == nil {
			if end, err := time.Parse("01/02/2006", m[2]); err == nil {
				tr.Dates = itinerary.Dates{
					Start: start.Format("2006-01-02"),
					End:   end.Format("2006-01-02"),
				}
			}
		}
	case forDaysRe.MatchString(request):
		m := forDaysRe.FindStringSubmatch(request)
		if start, err := time.Parse("2006-01-02", m[1]); err == nil {
			days := 0
			_, _ = fmt.Sscanf(m[2], "%d", &days)
			tr.Dates = itinerary.Dates{
				Start: m[1],
				End:   start.AddDate(0, 0, days).Format("2006-01-02"),
			}
		}
	}

	return tr
}

// cleanPlace strips clause keywords that leak into a greedy place match.
func cleanPlace(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"visit ", "see ", "go to "} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, keyword := range []string{" from", " starting", " beginning", " leaving", " departing", " for", " visit"} {
		if idx := strings.Index(s, keyword); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimRight(strings.TrimSpace(s), ".,")
}
