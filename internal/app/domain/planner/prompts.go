package planner

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/voyager/internal/app/models"
)

const systemInstruction = `
You are Voyager, a world-class travel agent.

STRICT BOOKING RULES:
1. DATE & LOCATION SPECIFICITY: Every 'bookingUrl' MUST include the trip dates and cities.
2. TRANSPORT RELIABILITY: For buses, if FlixBus links look unreliable, use alternatives like RegioJet, Omio, or official state rail/bus websites.
3. NO HALLUCINATIONS: Do not guess URLs. If a specific deep link is not found, use a search result on a trusted aggregator site for those dates.

PLANNING RULES:
- ROUND TRIP: You MUST always end the journey by returning to the starting point (departureLocation). The last day should involve travel back home.
- DESTINATION SEQUENCE: Follow the user's city sequence exactly before returning home.
- THEMATIC RELEVANCE: Match events to goals (Romantic, Nightlife, Sightseeing, etc.).
- REALISM: Max 4-5 activities per day. Account for transit.
- OUTPUT: Respond with a single JSON object with fields name, departureLocation, destination, startDate, endDate, summary and itinerary (array of {day, date, theme, activities}); each activity has time ("HH:MM"), title, description, location, type (one of FLIGHT, HOTEL, RESTAURANT, SIGHTSEEING, TRANSPORT, OTHER), costEstimate and bookingUrl. Day numbers start at 1 and are contiguous.
`

// generationPrompt builds the request prompt for a fresh trip.
func generationPrompt(req models.TripRequest) string {
	destinations := make([]string, 0, len(req.Destinations))
	for _, d := range req.Destinations {
		if strings.TrimSpace(d) != "" {
			destinations = append(destinations, d)
		}
	}

	return fmt.Sprintf(`Plan a trip starting from %s.
STRICT ROUTE SEQUENCE: %s.
DATES: from %s to %s.
Preferred transport: %s.
Budget: %s.
USER GOALS: %s

ACTION: Ensure the trip ends with a return to %s. Use working booking links for the specified dates across reliable carriers.`,
		req.DepartureLocation,
		strings.Join(destinations, " -> "),
		req.StartDate,
		req.EndDate,
		req.TransportType,
		req.TotalBudget,
		req.Goals,
		req.DepartureLocation,
	)
}

// editPrompt builds the request prompt for a free-text edit against the
// complete serialized current trip.
func editPrompt(currentTrip string, departureLocation, instruction string) string {
	return fmt.Sprintf(`Update this trip: %q. Current trip data: %s.
Ensure the return to %s is maintained.`,
		instruction,
		currentTrip,
		departureLocation,
	)
}
