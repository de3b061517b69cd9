package models

import (
	"fmt"
	"time"
)

// Record is the plain persisted form of a workout. Derived metrics are
// written for readers of the blob but recomputed on restore.
type Record struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	Coords      Coordinates `json:"coords"`
	DistanceKm  float64     `json:"distanceKm"`
	DurationMin float64     `json:"durationMin"`
	Kind        Kind        `json:"kind"`
	Description string      `json:"description"`

	CadenceSPM     *int     `json:"cadenceSpm,omitempty"`
	ElevationGainM *float64 `json:"elevationGainM,omitempty"`
	PaceMinPerKm   *float64 `json:"paceMinPerKm,omitempty"`
	SpeedKmPerH    *float64 `json:"speedKmPerH,omitempty"`
}

// Record converts the workout to its persisted form.
func (w *Workout) Record() Record {
	r := Record{
		ID:          w.ID,
		CreatedAt:   w.CreatedAt,
		Coords:      w.Coords,
		DistanceKm:  w.DistanceKm,
		DurationMin: w.DurationMin,
		Kind:        w.Kind(),
		Description: w.Description,
	}
	switch d := w.Details.(type) {
	case Running:
		cadence, pace := d.CadenceSPM, d.PaceMinPerKm
		r.CadenceSPM, r.PaceMinPerKm = &cadence, &pace
	case Cycling:
		elevation, speed := d.ElevationGainM, d.SpeedKmPerH
		r.ElevationGainM, r.SpeedKmPerH = &elevation, &speed
	}
	return r
}

// FromRecord rebuilds a full workout from its persisted form, running the
// same validation and metric derivation as New. The id, creation time and
// description are kept as stored.
func FromRecord(r Record) (*Workout, error) {
	if r.ID == "" {
		return nil, &ValidationError{Field: "id", Reason: "missing workout id"}
	}
	if r.CreatedAt.IsZero() {
		return nil, &ValidationError{Field: "createdAt", Reason: "missing creation time"}
	}

	in := Input{
		Kind:        r.Kind,
		Coords:      r.Coords,
		DistanceKm:  r.DistanceKm,
		DurationMin: r.DurationMin,
	}
	switch r.Kind {
	case KindRunning:
		if r.CadenceSPM == nil {
			return nil, &ValidationError{Field: "cadenceSpm", Reason: "missing cadence"}
		}
		in.Extra = float64(*r.CadenceSPM)
	case KindCycling:
		if r.ElevationGainM == nil {
			return nil, &ValidationError{Field: "elevationGainM", Reason: "missing elevation gain"}
		}
		in.Extra = *r.ElevationGainM
	default:
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown workout kind %q", r.Kind)}
	}

	return build(r.ID, r.CreatedAt, r.Description, in)
}
