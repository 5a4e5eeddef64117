// Package itinerary merges AI edits and manual insertions into a trip.
//
// AI edits are whole-object replacements: the generator returns a complete
// new itinerary, not a diff, so the replacement is validated and trusted as
// the new source of truth. Manual insertion is the opposite: a minimal
// splice into a single day that leaves every other day untouched.
package itinerary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FACorreiaa/voyager/internal/app/models"
)

// ApplyGeneratedEdit replaces the itinerary-bearing fields of trip with
// those of replacement. The trip's identity never changes under edit and
// the edit counter advances by exactly one. An invalid replacement is
// rejected with ErrValidation and the prior trip is returned unchanged.
func ApplyGeneratedEdit(trip, replacement models.Trip) (models.Trip, error) {
	if err := replacement.ValidateItinerary(); err != nil {
		return trip, fmt.Errorf("rejecting edit: %w", err)
	}

	updated := replacement
	updated.ID = trip.ID
	updated.EditCount = trip.EditCount + 1

	// The generator omits presentation fields; carry them over.
	if updated.ImageURL == "" {
		updated.ImageURL = trip.ImageURL
	}
	if len(updated.Sources) == 0 {
		updated.Sources = trip.Sources
	}

	return updated, nil
}

// InsertManualActivity splices activity into the day at dayIndex (1-based)
// and re-sorts that day's activities by time, stable for equal times. Other
// days keep their original slice identity.
func InsertManualActivity(trip models.Trip, dayIndex int, activity models.Activity) (models.Trip, error) {
	if dayIndex < 1 || dayIndex > len(trip.Itinerary) {
		return trip, fmt.Errorf("%w: day %d of %d", models.ErrRange, dayIndex, len(trip.Itinerary))
	}
	if strings.TrimSpace(activity.Title) == "" || strings.TrimSpace(activity.Time) == "" {
		return trip, fmt.Errorf("%w: activity requires a title and a time", models.ErrRange)
	}
	if activity.Type == "" {
		activity.Type = models.ActivityOther
	}
	if _, err := models.ParseActivityType(string(activity.Type)); err != nil {
		return trip, fmt.Errorf("%w: %v", models.ErrRange, err)
	}

	updated := trip
	updated.Itinerary = make([]models.DailyPlan, len(trip.Itinerary))
	copy(updated.Itinerary, trip.Itinerary)

	day := &updated.Itinerary[dayIndex-1]
	activities := make([]models.Activity, 0, len(day.Activities)+1)
	activities = append(activities, day.Activities...)
	activities = append(activities, activity)
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Time < activities[j].Time
	})
	day.Activities = activities

	return updated, nil
}
