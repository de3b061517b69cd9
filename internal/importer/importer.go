package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	WorkoutsRead       int
	WorkoutsAdded      int
	WorkoutsDuplicated int
	WorkoutsKept       int
}

// Slot is the persisted workout log the importer merges into.
type Slot interface {
	Load(ctx context.Context) ([]*models.Workout, error)
	Save(ctx context.Context, workouts []models.Workout) error
}

// Importer reads browser exports of the workout log and merges them into the slot.
type Importer struct {
	slot    Slot
	codec   *storage.Codec
	log     *slog.Logger
	dryRun  bool
	replace bool
	stats   Stats
}

// New creates a new Importer. With replace, the stored log is discarded
// instead of merged into.
func New(slot Slot, log *slog.Logger, dryRun, replace bool) *Importer {
	return &Importer{slot: slot, codec: storage.NewCodec(log), log: log, dryRun: dryRun, replace: replace}
}

// Import processes one export file, or every .json/.json.gz file in a directory.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	files, err := exportFiles(path)
	if err != nil {
		return &imp.stats, err
	}

	var merged []*models.Workout
	if !imp.replace {
		existing, err := imp.slot.Load(ctx)
		if err != nil {
			return &imp.stats, fmt.Errorf("loading stored workouts: %w", err)
		}
		merged = existing
		imp.stats.WorkoutsKept = len(existing)
	}
	seen := make(map[string]bool, len(merged))
	for _, w := range merged {
		seen[w.ID] = true
	}

	for _, f := range files {
		workouts, err := imp.readFile(f)
		if err != nil {
			imp.stats.FilesErrored++
			imp.log.Warn("skipping export file", "file", f, "error", err)
			continue
		}
		if len(workouts) == 0 {
			imp.stats.FilesSkipped++
			continue
		}
		imp.stats.FilesProcessed++
		imp.stats.WorkoutsRead += len(workouts)

		for _, w := range workouts {
			if seen[w.ID] {
				imp.stats.WorkoutsDuplicated++
				continue
			}
			seen[w.ID] = true
			merged = append(merged, w)
			imp.stats.WorkoutsAdded++
		}
	}

	if imp.dryRun {
		return &imp.stats, nil
	}
	if imp.stats.FilesProcessed == 0 && !imp.replace {
		return &imp.stats, errors.New("no workouts found to import")
	}

	// The log is shown oldest first.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	out := make([]models.Workout, len(merged))
	for i, w := range merged {
		out[i] = *w
	}
	if err := imp.slot.Save(ctx, out); err != nil {
		return &imp.stats, fmt.Errorf("saving workouts: %w", err)
	}
	return &imp.stats, nil
}

func (imp *Importer) readFile(path string) ([]*models.Workout, error) {
	data, err := ReadExport(path)
	if err != nil {
		return nil, err
	}
	return imp.codec.Decode(data)
}

func exportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.gz")) {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)
	return files, nil
}
