// Command workoutmap-mcp serves the MCP tools over stdio against a remote
// WorkoutMap server, for assistants that launch a local binary.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/workoutmap/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	remote := flag.String("remote", os.Getenv("WORKOUTMAP_REMOTE_URL"), "base URL of the WorkoutMap server")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *remote == "" {
		fmt.Fprintf(os.Stderr, "Usage: workoutmap-mcp -remote http://workoutmap.tailnet.ts.net\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := mcp.New(mcp.NewHTTPClient(*remote), Version, log)
	log.Info("mcp stdio server starting", "remote", *remote)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
