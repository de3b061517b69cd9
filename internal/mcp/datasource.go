package mcp

import (
	"context"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/store"
)

// DataSource abstracts the workout log for MCP tools. Both Local (in-process)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	// ListWorkouts returns workouts oldest first; an empty kind matches all.
	ListWorkouts(ctx context.Context, kind models.Kind) ([]models.Record, error)
	// GetWorkout returns a *store.NotFoundError for unknown ids.
	GetWorkout(ctx context.Context, id string) (*models.Record, error)
}

// WorkoutLog is the read side of the running application.
type WorkoutLog interface {
	Workouts() []models.Workout
	Workout(id string) (models.Workout, bool)
}

// Local reads the workout log of the running process.
type Local struct {
	log WorkoutLog
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(log WorkoutLog) *Local {
	return &Local{log: log}
}

func (l *Local) ListWorkouts(_ context.Context, kind models.Kind) ([]models.Record, error) {
	ws := l.log.Workouts()
	out := make([]models.Record, 0, len(ws))
	for i := range ws {
		if kind != "" && ws[i].Kind() != kind {
			continue
		}
		out = append(out, ws[i].Record())
	}
	return out, nil
}

func (l *Local) GetWorkout(_ context.Context, id string) (*models.Record, error) {
	w, ok := l.log.Workout(id)
	if !ok {
		return nil, &store.NotFoundError{ID: id}
	}
	rec := w.Record()
	return &rec, nil
}
