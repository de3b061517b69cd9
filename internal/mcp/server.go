package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("WorkoutMap", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("WorkoutMap workout log. Lists running and cycling workouts logged on the map, with distance, duration, location and derived pace or speed. Read-only."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkouts, Handler: h.workouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resWorkouts = mcp.NewResource(
	"workoutmap://workouts",
	"Workout Log",
	mcp.WithResourceDescription("Every logged workout, oldest first"),
	mcp.WithMIMEType("application/json"),
)
