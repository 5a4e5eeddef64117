package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/FACorreiaa/voyager/internal/app/models"
)

// generatedTrip is the generator's response schema: a Trip minus the fields
// the core assigns on receipt (id, imageUrl, sources, editCount).
type generatedTrip struct {
	Name              string             `json:"name"`
	DepartureLocation string             `json:"departureLocation"`
	Destination       string             `json:"destination"`
	StartDate         string             `json:"startDate"`
	EndDate           string             `json:"endDate"`
	Summary           string             `json:"summary"`
	Itinerary         []models.DailyPlan `json:"itinerary"`
}

func (g generatedTrip) toTrip() models.Trip {
	return models.Trip{
		Name:              g.Name,
		DepartureLocation: g.DepartureLocation,
		Destination:       g.Destination,
		StartDate:         g.StartDate,
		EndDate:           g.EndDate,
		Summary:           g.Summary,
		Itinerary:         g.Itinerary,
	}
}

var fencedJSON = regexp.MustCompile("```json\\n?([\\s\\S]*?)\\n?```")

// extractJSON pulls the JSON object out of a model response. Models wrap
// output in markdown fences or chat around it despite the JSON mime type.
func extractJSON(responseText string) string {
	if match := fencedJSON.FindStringSubmatch(responseText); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}

	cleaned := strings.ReplaceAll(responseText, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	// Trim any prose before/after the outermost object.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

// decodeGeneratedTrip parses a model response into a trip payload. Any
// decode failure fails the whole operation; there is no partial acceptance.
func decodeGeneratedTrip(responseText string) (models.Trip, error) {
	raw := extractJSON(responseText)
	if raw == "" {
		return models.Trip{}, fmt.Errorf("%w: empty response", models.ErrGeneration)
	}

	var payload generatedTrip
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.Trip{}, fmt.Errorf("%w: unparseable response: %v", models.ErrGeneration, err)
	}

	return payload.toTrip(), nil
}
