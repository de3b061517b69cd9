package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/store"
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts with per-kind totals. Each workout has coordinates, distance (km), duration (min), a description, and pace (min/km) with cadence for runs or speed (km/h) with elevation gain for rides."),
	mcp.WithString("kind", mcp.Description("Only return workouts of this kind"), mcp.Enum("running", "cycling")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id as returned by list_workouts")),
)

// kindTotals sums the workouts of one kind.
type kindTotals struct {
	Count       int     `json:"count"`
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin float64 `json:"durationMin"`
}

func totals(records []models.Record) map[models.Kind]*kindTotals {
	out := make(map[models.Kind]*kindTotals)
	for _, r := range records {
		t, ok := out[r.Kind]
		if !ok {
			t = &kindTotals{}
			out[r.Kind] = t
		}
		t.Count++
		t.DistanceKm += r.DistanceKm
		t.DurationMin += r.DurationMin
	}
	return out
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var kind models.Kind
	if s := req.GetString("kind", ""); s != "" {
		k, err := models.ParseKind(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kind = k
	}

	records, err := h.ds.ListWorkouts(ctx, kind)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"count":    len(records),
		"totals":   totals(records),
		"workouts": records,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	rec, err := h.ds.GetWorkout(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError("no workout with id " + id), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
