package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/claude/workoutmap/internal/config"
	"github.com/claude/workoutmap/internal/importer"
	"github.com/claude/workoutmap/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("file", "", "export file or directory of .json/.json.gz exports (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing the workout log")
	replace := flag.Bool("replace", false, "replace the stored workout log instead of merging by id")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: workoutmap-import -config config.yaml -file export.json [-dry-run] [-replace]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to load .env", "error", err)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: the workout log will not be written")
	}

	// Open storage (runs migrations)
	db, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		log.Error("failed to open storage", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run import
	imp := importer.New(storage.NewSlotPersister(db, cfg.Storage.Slot, log), log, *dryRun, *replace)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		db.Close()
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"workouts_read", stats.WorkoutsRead,
		"workouts_added", stats.WorkoutsAdded,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"workouts_kept", stats.WorkoutsKept,
	)
}
