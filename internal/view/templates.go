package view

import (
	"fmt"
	"strconv"

	"github.com/claude/workoutmap/internal/models"
)

// ListEntry is the data behind one row of the workout list.
type ListEntry struct {
	WorkoutID string        `json:"workoutId"`
	Kind      models.Kind   `json:"kind"`
	Title     string        `json:"title"`
	Details   []DetailField `json:"details"`
}

// DetailField is one icon/value/unit cell in a list entry.
type DetailField struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Icon returns the emoji shown for a kind.
func Icon(kind models.Kind) string {
	switch kind {
	case models.KindRunning:
		return "🏃‍♂️"
	case models.KindCycling:
		return "🚴‍♀️"
	default:
		return "📍"
	}
}

// PopupClass returns the CSS class of a kind's marker popup.
func PopupClass(kind models.Kind) string {
	return string(kind) + "-popup"
}

// MarkerLabel is the popup text of a workout's marker.
func MarkerLabel(w *models.Workout) string {
	return Icon(w.Kind()) + " " + w.Description
}

// Entry builds the list row for a workout.
func Entry(w *models.Workout) ListEntry {
	fields := []DetailField{
		{Icon: Icon(w.Kind()), Value: formatNumber(w.DistanceKm), Unit: "km"},
		{Icon: "⏱", Value: formatNumber(w.DurationMin), Unit: "min"},
	}
	switch d := w.Details.(type) {
	case models.Running:
		fields = append(fields,
			DetailField{Icon: "⚡️", Value: strconv.FormatFloat(d.PaceMinPerKm, 'f', 1, 64), Unit: "min/km"},
			DetailField{Icon: "🦶🏼", Value: strconv.Itoa(d.CadenceSPM), Unit: "spm"},
		)
	case models.Cycling:
		fields = append(fields,
			DetailField{Icon: "⚡️", Value: strconv.FormatFloat(d.SpeedKmPerH, 'f', 1, 64), Unit: "km/h"},
			DetailField{Icon: "⛰", Value: formatNumber(d.ElevationGainM), Unit: "m"},
		)
	default:
		panic(fmt.Sprintf("view: no list template for %T", d))
	}
	return ListEntry{
		WorkoutID: w.ID,
		Kind:      w.Kind(),
		Title:     w.Description,
		Details:   fields,
	}
}

// formatNumber prints user-entered values the way they were typed (5.2, 20).
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
