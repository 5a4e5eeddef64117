package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActivityType is the fixed category vocabulary for itinerary activities.
// Values are uppercase on the wire because the generator schema uses them.
type ActivityType string

const (
	ActivityFlight      ActivityType = "FLIGHT"
	ActivityHotel       ActivityType = "HOTEL"
	ActivityRestaurant  ActivityType = "RESTAURANT"
	ActivitySightseeing ActivityType = "SIGHTSEEING"
	ActivityTransport   ActivityType = "TRANSPORT"
	ActivityOther       ActivityType = "OTHER"
)

// ParseActivityType normalizes and validates a category string.
func ParseActivityType(raw string) (ActivityType, error) {
	switch ActivityType(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActivityFlight:
		return ActivityFlight, nil
	case ActivityHotel:
		return ActivityHotel, nil
	case ActivityRestaurant:
		return ActivityRestaurant, nil
	case ActivitySightseeing:
		return ActivitySightseeing, nil
	case ActivityTransport:
		return ActivityTransport, nil
	case ActivityOther:
		return ActivityOther, nil
	}
	return "", fmt.Errorf("%w: unknown activity type %q", ErrValidation, raw)
}

// GroundingLink is a source reference returned by the generator.
type GroundingLink struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Activity is a single scheduled item within a day. Activities have no
// identity of their own; position within the day is the identity.
type Activity struct {
	Time         string       `json:"time"` // "HH:MM", sorts lexicographically
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Location     string       `json:"location,omitempty"`
	Type         ActivityType `json:"type"`
	CostEstimate string       `json:"costEstimate,omitempty"`
	BookingURL   string       `json:"bookingUrl,omitempty"`
}

// DailyPlan is one calendar day of a trip. Day is 1-based and must match
// the plan's position in the itinerary.
type DailyPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
}

// Trip is the top-level itinerary aggregate for one planned journey.
// Every mutation commits a complete, internally consistent Trip.
type Trip struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	DepartureLocation string          `json:"departureLocation"`
	Destination       string          `json:"destination"`
	StartDate         string          `json:"startDate"` // ISO "2006-01-02"
	EndDate           string          `json:"endDate"`
	Summary           string          `json:"summary"`
	Itinerary         []DailyPlan     `json:"itinerary"`
	ImageURL          string          `json:"imageUrl"`
	Sources           []GroundingLink `json:"sources"`
	EditCount         int             `json:"editCount"`
}

// TripRequest is a generation input. It is consumed once and never persisted.
type TripRequest struct {
	DepartureLocation string   `json:"departureLocation"`
	Destinations      []string `json:"destinations"`
	StartDate         string   `json:"startDate"`
	EndDate           string   `json:"endDate"`
	TransportType     string   `json:"transportType"`
	TotalBudget       string   `json:"totalBudget"`
	Goals             string   `json:"goals"`
}

// TransportTypes is the fixed vocabulary for TripRequest.TransportType.
var TransportTypes = []string{
	"Own car",
	"Plane",
	"Train",
	"Bus",
	"Rental car",
	"Cheapest available",
	"Public transport",
}

// Validate checks a TripRequest before it is handed to the generator.
func (r TripRequest) Validate() error {
	if strings.TrimSpace(r.DepartureLocation) == "" {
		return fmt.Errorf("%w: departure location is required", ErrValidation)
	}
	hasDestination := false
	for _, d := range r.Destinations {
		if strings.TrimSpace(d) != "" {
			hasDestination = true
			break
		}
	}
	if !hasDestination {
		return fmt.Errorf("%w: at least one destination is required", ErrValidation)
	}
	if r.StartDate == "" || r.EndDate == "" {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	return nil
}

// ValidateItinerary enforces the structural Trip invariants: a non-empty
// itinerary whose day fields form a contiguous ascending sequence starting
// at 1, and activities with non-empty time/title and a known category.
func (t Trip) ValidateItinerary() error {
	if len(t.Itinerary) == 0 {
		return fmt.Errorf("%w: itinerary is empty", ErrValidation)
	}
	for i, day := range t.Itinerary {
		if day.Day != i+1 {
			return fmt.Errorf("%w: day numbering is not contiguous (position %d has day %d)", ErrValidation, i+1, day.Day)
		}
		for j, a := range day.Activities {
			if strings.TrimSpace(a.Time) == "" || strings.TrimSpace(a.Title) == "" {
				return fmt.Errorf("%w: day %d activity %d is missing time or title", ErrValidation, day.Day, j+1)
			}
			if _, err := ParseActivityType(string(a.Type)); err != nil {
				return fmt.Errorf("%w: day %d activity %d has unknown type %q", ErrValidation, day.Day, j+1, a.Type)
			}
		}
	}
	return nil
}
