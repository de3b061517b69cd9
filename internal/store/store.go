// Package store holds the live workout log and the map marker attached to
// each workout.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/claude/workoutmap/internal/models"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = &NotFoundError{}

// NotFoundError is returned when no live workout has the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "workout not found: " + e.ID
	}
	return "workout not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// MarkerHandle is an opaque reference to a rendered map marker.
type MarkerHandle interface {
	MarkerID() string
}

// MarkerDetacher removes rendered markers from the map.
type MarkerDetacher interface {
	RemoveMarker(h MarkerHandle)
}

// Persister snapshots the log to durable storage.
type Persister interface {
	Save(ctx context.Context, workouts []models.Workout) error
	Clear(ctx context.Context) error
}

type entry struct {
	workout *models.Workout
	marker  MarkerHandle
}

// Store keeps each workout together with its marker, keyed by id, plus the
// insertion order. A workout and its marker are added and removed together.
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	entries   map[string]entry
	order     []string
	persister Persister
	markers   MarkerDetacher
}

// New creates an empty store.
func New(persister Persister, markers MarkerDetacher) *Store {
	return &Store{
		entries:   make(map[string]entry),
		persister: persister,
		markers:   markers,
	}
}

// Load inserts a workout without persisting. Used when restoring at startup.
func (s *Store) Load(w *models.Workout, marker MarkerHandle) error {
	if w == nil || marker == nil {
		return errors.New("store: workout and marker are required")
	}
	if _, exists := s.entries[w.ID]; exists {
		return fmt.Errorf("store: duplicate workout id %s", w.ID)
	}
	s.entries[w.ID] = entry{workout: w, marker: marker}
	s.order = append(s.order, w.ID)
	return nil
}

// Add appends a workout with its marker and snapshots the log. If the
// snapshot fails the workout is not kept.
func (s *Store) Add(ctx context.Context, w *models.Workout, marker MarkerHandle) error {
	if err := s.Load(w, marker); err != nil {
		return err
	}
	if err := s.persister.Save(ctx, s.All()); err != nil {
		delete(s.entries, w.ID)
		s.order = s.order[:len(s.order)-1]
		return fmt.Errorf("saving workouts: %w", err)
	}
	return nil
}

// FindByID returns a copy of the workout with the given id.
func (s *Store) FindByID(id string) (models.Workout, bool) {
	e, ok := s.entries[id]
	if !ok {
		return models.Workout{}, false
	}
	return *e.workout, true
}

// Click increments the click counter of a live workout.
func (s *Store) Click(id string) (int, error) {
	e, ok := s.entries[id]
	if !ok {
		return 0, &NotFoundError{ID: id}
	}
	return e.workout.Click(), nil
}

// RemoveByID removes a workout and its marker, snapshots the log, then
// detaches the marker from the map.
func (s *Store) RemoveByID(ctx context.Context, id string) error {
	e, ok := s.entries[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	idx := slices.Index(s.order, id)

	delete(s.entries, id)
	s.order = slices.Delete(s.order, idx, idx+1)

	if err := s.persister.Save(ctx, s.All()); err != nil {
		s.entries[id] = e
		s.order = slices.Insert(s.order, idx, id)
		return fmt.Errorf("saving workouts: %w", err)
	}

	s.markers.RemoveMarker(e.marker)
	return nil
}

// ResetAll erases the persisted log, detaches every marker and empties the store.
func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.persister.Clear(ctx); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}
	for _, id := range s.order {
		s.markers.RemoveMarker(s.entries[id].marker)
	}
	s.entries = make(map[string]entry)
	s.order = nil
	return nil
}

// Flush snapshots the current log.
func (s *Store) Flush(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.All()); err != nil {
		return fmt.Errorf("saving workouts: %w", err)
	}
	return nil
}

// All returns copies of the live workouts, oldest first.
func (s *Store) All() []models.Workout {
	out := make([]models.Workout, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entries[id].workout)
	}
	return out
}

// Marker returns the marker attached to a workout.
func (s *Store) Marker(id string) (MarkerHandle, bool) {
	e, ok := s.entries[id]
	return e.marker, ok
}

// Len reports the number of live workouts.
func (s *Store) Len() int {
	return len(s.order)
}
