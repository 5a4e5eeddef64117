// Package booking resolves an activity to an actionable booking link.
// Resolution is pure and deterministic: given the same activity and trip
// dates it always returns the same URL.
package booking

import (
	"net/url"
	"strings"

	"github.com/FACorreiaa/voyager/internal/app/models"
)

// minPlausibleURLLength filters out stub links the generator sometimes
// emits ("http://x", bare domains). Anything shorter is treated as unusable.
const minPlausibleURLLength = 15

// fallbackTemplate synthesizes a search deep link for one category.
type fallbackTemplate func(a models.Activity, startDate, endDate string) string

// fallbacks maps the high-booking-intent categories to their search
// templates. Categories absent from this table never get a synthesized link.
var fallbacks = map[models.ActivityType]fallbackTemplate{
	models.ActivityFlight: func(a models.Activity, startDate, _ string) string {
		return "https://www.skyscanner.com/transport/flights/search?q=" +
			url.QueryEscape(a.Title) + "&departure_date=" + startDate
	},
	models.ActivityHotel: func(a models.Activity, startDate, endDate string) string {
		query := a.Title
		if a.Location != "" {
			query += " " + a.Location
		}
		return "https://www.booking.com/searchresults.html?ss=" +
			url.QueryEscape(query) + "&checkin=" + startDate + "&checkout=" + endDate
	},
	models.ActivityTransport: func(a models.Activity, startDate, _ string) string {
		return "https://www.thetrainline.com/search/" +
			url.QueryEscape(a.Location) + "?departureDate=" + startDate
	},
}

// Resolve returns a booking link for the activity, or ok=false when no
// actionable link exists. A pre-supplied URL wins when it looks like a real
// deep link; otherwise high-intent categories fall back to a dated search
// on a trusted aggregator.
func Resolve(a models.Activity, startDate, endDate string) (string, bool) {
	if plausible(a.BookingURL) {
		return a.BookingURL, true
	}
	if tmpl, ok := fallbacks[a.Type]; ok {
		return tmpl(a, startDate, endDate), true
	}
	return "", false
}

// plausible reports whether a generator-supplied URL is worth surfacing.
// Generic search-engine results pages are rejected: they read like booking
// links in the UI but land the user nowhere useful.
func plausible(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "google.com/search") {
		return false
	}
	return len(trimmed) > minPlausibleURLLength
}
