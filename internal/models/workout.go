package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind is the workout discriminant.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// kindInfo holds everything that differs per workout kind. Adding a kind
// means adding a Details type and an entry here.
type kindInfo struct {
	title string
	// build validates the kind-specific input and derives the primary metric.
	build func(extra, distanceKm, durationMin float64) (Details, error)
}

var kinds = map[Kind]kindInfo{
	KindRunning: {title: "Running", build: buildRunning},
	KindCycling: {title: "Cycling", build: buildCycling},
}

// Kinds returns the known kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindRunning, KindCycling}
}

// ParseKind maps a form/wire value to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kinds[k]; !ok {
		return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown workout kind %q", s)}
	}
	return k, nil
}

// Title returns the capitalized kind name ("Running").
func (k Kind) Title() string {
	if ks, ok := kinds[k]; ok {
		return ks.title
	}
	return string(k)
}

// Coordinates is a map position. It encodes as [lat,lng].
type Coordinates struct {
	Lat float64
	Lng float64
}

// Validate checks that the position is a real point on the map.
func (c Coordinates) Validate() error {
	if !isFinite(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{Field: "lat", Reason: "latitude must be between -90 and 90"}
	}
	if !isFinite(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return &ValidationError{Field: "lng", Reason: "longitude must be between -180 and 180"}
	}
	return nil
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinates: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinates: want [lat,lng], got %d values", len(pair))
	}
	c.Lat, c.Lng = pair[0], pair[1]
	return nil
}

// Details is the kind-specific part of a workout.
type Details interface {
	Kind() Kind
}

// Running details. PaceMinPerKm is derived at construction.
type Running struct {
	CadenceSPM   int
	PaceMinPerKm float64
}

func (Running) Kind() Kind { return KindRunning }

// Cycling details. SpeedKmPerH is derived at construction.
type Cycling struct {
	ElevationGainM float64
	SpeedKmPerH    float64
}

func (Cycling) Kind() Kind { return KindCycling }

// maxCadence keeps the cadence representable as an int on every platform.
const maxCadence = math.MaxInt32

func buildRunning(cadence, distanceKm, durationMin float64) (Details, error) {
	if !isFinite(cadence) || cadence <= 0 {
		return nil, &ValidationError{Field: "cadenceSpm", Reason: "cadence must be a positive number"}
	}
	if cadence != math.Trunc(cadence) {
		return nil, &ValidationError{Field: "cadenceSpm", Reason: "cadence must be a whole number of steps per minute"}
	}
	if cadence > maxCadence {
		return nil, &ValidationError{Field: "cadenceSpm", Reason: "cadence is too large"}
	}
	pace := durationMin / distanceKm
	if !isFinite(pace) || pace <= 0 {
		return nil, &ValidationError{Field: "paceMinPerKm", Reason: "distance and duration give an out-of-range pace"}
	}
	return Running{
		CadenceSPM:   int(cadence),
		PaceMinPerKm: pace,
	}, nil
}

func buildCycling(elevation, distanceKm, durationMin float64) (Details, error) {
	if !isFinite(elevation) || elevation < 0 {
		return nil, &ValidationError{Field: "elevationGainM", Reason: "elevation gain must be zero or a positive number"}
	}
	speed := distanceKm / (durationMin / 60)
	if !isFinite(speed) || speed <= 0 {
		return nil, &ValidationError{Field: "speedKmPerH", Reason: "distance and duration give an out-of-range speed"}
	}
	return Cycling{
		ElevationGainM: elevation,
		SpeedKmPerH:    speed,
	}, nil
}

// Workout is one logged session. Everything except the click counter is
// fixed at construction; callers must treat the fields as read-only.
type Workout struct {
	ID          string
	CreatedAt   time.Time
	Coords      Coordinates
	DistanceKm  float64
	DurationMin float64
	Description string
	Details     Details

	clicks int
}

// Input is a validated-on-construction form submission.
type Input struct {
	Kind        Kind
	Coords      Coordinates
	DistanceKm  float64
	DurationMin float64
	// Extra is cadence (running) or elevation gain (cycling).
	Extra float64
}

// New builds a workout from user input. It is the only place descriptions
// and derived metrics are computed.
func New(in Input, createdAt time.Time) (*Workout, error) {
	return build(uuid.NewString(), createdAt, "", in)
}

func build(id string, createdAt time.Time, description string, in Input) (*Workout, error) {
	ks, ok := kinds[in.Kind]
	if !ok {
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown workout kind %q", in.Kind)}
	}
	if err := in.Coords.Validate(); err != nil {
		return nil, err
	}
	if !isFinite(in.DistanceKm) || in.DistanceKm <= 0 {
		return nil, &ValidationError{Field: "distanceKm", Reason: "distance must be a positive number"}
	}
	if !isFinite(in.DurationMin) || in.DurationMin <= 0 {
		return nil, &ValidationError{Field: "durationMin", Reason: "duration must be a positive number"}
	}
	details, err := ks.build(in.Extra, in.DistanceKm, in.DurationMin)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = describe(ks.title, createdAt)
	}
	return &Workout{
		ID:          id,
		CreatedAt:   createdAt,
		Coords:      in.Coords,
		DistanceKm:  in.DistanceKm,
		DurationMin: in.DurationMin,
		Description: description,
		Details:     details,
	}, nil
}

// describe renders "Running on April 14".
func describe(title string, at time.Time) string {
	return fmt.Sprintf("%s on %s", title, at.Format("January 2"))
}

// Kind returns the workout discriminant.
func (w *Workout) Kind() Kind {
	return w.Details.Kind()
}

// Extra returns the kind-specific input value (cadence or elevation gain).
func (w *Workout) Extra() float64 {
	switch d := w.Details.(type) {
	case Running:
		return float64(d.CadenceSPM)
	case Cycling:
		return d.ElevationGainM
	default:
		panic(fmt.Sprintf("models: unhandled workout details %T", d))
	}
}

// Click records a selection of the workout and returns the new count.
func (w *Workout) Click() int {
	w.clicks++
	return w.clicks
}

// Clicks returns how often the workout was selected in this process.
func (w *Workout) Clicks() int {
	return w.clicks
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
