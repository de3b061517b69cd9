// Package app drives the workout log from user events: it owns the form
// state, validates submissions into workouts, and keeps the store, the
// persisted slot and the rendered map and list in step.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/observability"
	"github.com/claude/workoutmap/internal/store"
	"github.com/claude/workoutmap/internal/view"
)

var (
	// ErrNoActiveForm is returned for form events while no form is open.
	ErrNoActiveForm = errors.New("no workout form is open")
	// ErrClosed is returned for events after Close.
	ErrClosed = errors.New("workout log is closed")
)

// State is the form state.
type State int

const (
	// Idle: form hidden.
	Idle State = iota
	// Placing: form visible with a captured map location.
	Placing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Placing:
		return "placing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Persister is the durable side of the log: snapshot, clear and restore.
type Persister interface {
	store.Persister
	Load(ctx context.Context) ([]*models.Workout, error)
}

// Options tune the interaction.
type Options struct {
	// ZoomLevel is used when panning to a selected workout.
	ZoomLevel int
	// HideFormDelay is the visual transition after a successful submit.
	HideFormDelay time.Duration
	// Now is the clock for workout creation times.
	Now func() time.Time
}

// Submission is a filled-in workout form.
type Submission struct {
	// Kind defaults to the last toggled kind when empty.
	Kind           models.Kind
	DistanceKm     float64
	DurationMin    float64
	// Only the field matching the resolved kind is used.
	CadenceSpm     float64
	ElevationGainM float64
}

func (s Submission) extra(kind models.Kind) float64 {
	if kind == models.KindCycling {
		return s.ElevationGainM
	}
	return s.CadenceSpm
}

// Status describes the form for inspection.
type Status struct {
	State    State               `json:"state"`
	Location *models.Coordinates `json:"location,omitempty"`
	Kind     models.Kind         `json:"kind"`
	Workouts int                 `json:"workouts"`
}

// App is the application state: one per process, built at startup and
// torn down with Close. Every event runs to completion under one lock.
type App struct {
	mu      sync.Mutex
	state   State
	pending models.Coordinates
	kind    models.Kind
	closed  bool

	store   *store.Store
	persist Persister
	view    view.View
	log     *slog.Logger
	opts    Options
}

// New wires an App. Call Start before delivering events.
func New(persist Persister, v view.View, log *slog.Logger, opts Options) *App {
	if opts.ZoomLevel <= 0 {
		opts.ZoomLevel = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &App{
		kind:    models.KindRunning,
		store:   store.New(persist, v),
		persist: persist,
		view:    v,
		log:     log,
		opts:    opts,
	}
}

// Start restores the persisted log and renders it.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	workouts, err := a.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("restoring workouts: %w", err)
	}
	for _, w := range workouts {
		marker := a.view.RenderMarker(w.ID, w.Coords, view.MarkerLabel(w), w.Kind())
		if err := a.store.Load(w, marker); err != nil {
			a.log.Warn("skipping restored workout", "id", w.ID, "error", err)
			a.view.RemoveMarker(marker)
			continue
		}
		a.view.RenderListEntry(view.Entry(w))
	}
	observability.SetLiveWorkouts(a.store.Len())
	a.log.Info("workout log restored", "workouts", a.store.Len())
	return nil
}

// Close flushes the log and releases the view. Later events fail with ErrClosed.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	var err error
	if a.store.Len() > 0 {
		err = a.store.Flush(ctx)
	}
	if c, ok := a.view.(interface{ Close() }); ok {
		c.Close()
	}
	return err
}

// LocationSelected opens the form for a clicked map position. A second
// click while the form is open moves the captured position.
func (a *App) LocationSelected(at models.Coordinates) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	if err := at.Validate(); err != nil {
		a.log.Warn("ignoring map click", "lat", at.Lat, "lng", at.Lng, "error", err)
		return err
	}
	a.state = Placing
	a.pending = at
	a.view.ShowForm()
	return nil
}

// TypeToggled switches which extra field the form shows.
func (a *App) TypeToggled(kind models.Kind) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireForm("type toggle"); err != nil {
		return err
	}

	if _, err := models.ParseKind(string(kind)); err != nil {
		return err
	}
	a.kind = kind
	a.view.ToggleExtraField(kind)
	return nil
}

// FormCancelled closes the form without creating a workout.
func (a *App) FormCancelled() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireForm("cancel"); err != nil {
		return err
	}

	a.resetForm()
	a.view.HideForm(0)
	return nil
}

// FormSubmitted validates the form and, on success, adds the workout to the
// log and closes the form. On failure the form stays open and nothing changes.
func (a *App) FormSubmitted(ctx context.Context, sub Submission) (models.Workout, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireForm("submit"); err != nil {
		return models.Workout{}, err
	}

	kind := sub.Kind
	if kind == "" {
		kind = a.kind
	}
	w, err := models.New(models.Input{
		Kind:        kind,
		Coords:      a.pending,
		DistanceKm:  sub.DistanceKm,
		DurationMin: sub.DurationMin,
		Extra:       sub.extra(kind),
	}, a.opts.Now())
	if err != nil {
		notice := err.Error()
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			observability.RecordValidationFailure(verr.Field)
			notice = verr.Reason
		}
		a.log.Info("rejected workout submission", "kind", kind, "error", err)
		a.view.ShowNotice(notice)
		return models.Workout{}, err
	}

	marker := a.view.RenderMarker(w.ID, w.Coords, view.MarkerLabel(w), w.Kind())
	if err := a.store.Add(ctx, w, marker); err != nil {
		a.view.RemoveMarker(marker)
		a.log.Error("adding workout failed", "id", w.ID, "error", err)
		a.view.ShowNotice("Could not save the workout, please try again.")
		return models.Workout{}, err
	}
	a.view.RenderListEntry(view.Entry(w))
	a.resetForm()
	a.view.HideForm(a.opts.HideFormDelay)

	observability.RecordWorkoutCreated(string(w.Kind()))
	observability.SetLiveWorkouts(a.store.Len())
	a.log.Info("workout added", "id", w.ID, "kind", w.Kind(), "description", w.Description)
	return *w, nil
}

// ListItemActivated handles a click on a list entry: the delete affordance
// removes the workout, anywhere else pans the map to it.
func (a *App) ListItemActivated(ctx context.Context, id string, isDelete bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	if isDelete {
		if err := a.store.RemoveByID(ctx, id); err != nil {
			a.logStoreError("removing workout", id, err)
			return err
		}
		a.view.RemoveListEntry(id)
		observability.RecordWorkoutsRemoved(1)
		observability.SetLiveWorkouts(a.store.Len())
		a.log.Info("workout removed", "id", id)
		return nil
	}

	clicks, err := a.store.Click(id)
	if err != nil {
		a.logStoreError("selecting workout", id, err)
		return err
	}
	w, _ := a.store.FindByID(id)
	a.view.PanTo(w.Coords, a.opts.ZoomLevel)
	a.log.Debug("workout selected", "id", id, "clicks", clicks)
	return nil
}

// ResetRequested erases the whole log and redraws an empty view.
func (a *App) ResetRequested(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	n := a.store.Len()
	if err := a.store.ResetAll(ctx); err != nil {
		a.log.Error("reset failed", "error", err)
		a.view.ShowNotice("Could not reset the workout log.")
		return err
	}
	a.resetForm()
	a.kind = models.KindRunning
	a.view.ClearAllRendering()

	observability.RecordWorkoutsRemoved(n)
	observability.SetLiveWorkouts(0)
	a.log.Info("workout log reset", "removed", n)
	return nil
}

// Status reports the form state.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := Status{State: a.state, Kind: a.kind, Workouts: a.store.Len()}
	if a.state == Placing {
		at := a.pending
		st.Location = &at
	}
	return st
}

// Workouts returns the live log, oldest first.
func (a *App) Workouts() []models.Workout {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.All()
}

// Workout returns one workout by id.
func (a *App) Workout(id string) (models.Workout, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.FindByID(id)
}

func (a *App) requireForm(event string) error {
	if a.closed {
		return ErrClosed
	}
	if a.state != Placing {
		a.log.Warn("form event without an open form", "event", event)
		return ErrNoActiveForm
	}
	return nil
}

func (a *App) resetForm() {
	a.state = Idle
	a.pending = models.Coordinates{}
}

func (a *App) logStoreError(op, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		// The list showed an entry the store does not have.
		a.log.Error(op+": list and store out of sync", "id", id, "error", err)
		return
	}
	a.log.Error(op+" failed", "id", id, "error", err)
	a.view.ShowNotice("Could not update the workout log.")
}
