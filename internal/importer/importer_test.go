package importer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/claude/workoutmap/internal/models"
)

// Two runs and a ride as the browser app stored them in localStorage.
const legacyExport = `[
 {"date":"2026-04-14T07:00:00.000Z","id":"1713078000000","clicks":2,"coords":[48.2,16.37],"distance":5.2,"duration":20,"type":"running","candence":150,"pace":3.85,"description":"Running on April 14"},
 {"date":"2026-04-15T07:00:00.000Z","id":"1713164400000","clicks":0,"coords":[48.21,16.4],"distance":10,"duration":35,"type":"cycling","elevationGain":550,"speed":17.14,"description":"Cycling on April 15"},
 {"date":"2026-04-16T07:00:00.000Z","id":"1713250800000","clicks":0,"coords":[48.19,16.3],"distance":-3,"duration":15,"type":"running","candence":170,"description":"Running on April 16"}
]`

type memSlot struct {
	stored []*models.Workout
	saved  []models.Workout
	saves  int
}

func (s *memSlot) Load(context.Context) ([]*models.Workout, error) {
	return s.stored, nil
}

func (s *memSlot) Save(_ context.Context, ws []models.Workout) error {
	s.saves++
	s.saved = ws
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func gzipped(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func ids(ws []models.Workout) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}

// TestImportLegacyExport verifies a browser export is decoded, invalid
// records are skipped and the result is saved.
func TestImportLegacyExport(t *testing.T) {
	path := writeFile(t, t.TempDir(), "workouts.json", []byte(legacyExport))
	slot := &memSlot{}

	stats, err := New(slot, testLogger(), false, false).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FilesProcessed != 1 || stats.WorkoutsRead != 2 || stats.WorkoutsAdded != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if slot.saves != 1 || len(slot.saved) != 2 {
		t.Fatalf("saved %d workouts in %d saves, want 2 in 1", len(slot.saved), slot.saves)
	}
	run := slot.saved[0]
	if run.ID != "1713078000000" || run.Description != "Running on April 14" {
		t.Errorf("first workout = %+v", run)
	}
	if got := run.Details.(models.Running).CadenceSPM; got != 150 {
		t.Errorf("cadence = %d, want 150", got)
	}
}

// TestImportMergesByID verifies stored workouts are kept, duplicates are
// skipped and the merged log is ordered by creation time.
func TestImportMergesByID(t *testing.T) {
	stored, err := models.New(models.Input{
		Kind: models.KindCycling, Coords: models.Coordinates{Lat: 1, Lng: 1},
		DistanceKm: 20, DurationMin: 60, Extra: 100,
	}, time.Date(2026, 4, 14, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	slot := &memSlot{stored: []*models.Workout{stored}}

	dir := t.TempDir()
	writeFile(t, dir, "a.json", []byte(legacyExport))
	writeFile(t, dir, "b.json.gz", gzipped(t, legacyExport))
	writeFile(t, dir, "notes.txt", []byte("ignored"))

	stats, err := New(slot, testLogger(), false, false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FilesProcessed != 2 || stats.WorkoutsKept != 1 || stats.WorkoutsAdded != 2 || stats.WorkoutsDuplicated != 2 {
		t.Errorf("stats = %+v", stats)
	}
	want := []string{"1713078000000", stored.ID, "1713164400000"}
	got := ids(slot.saved)
	if len(got) != len(want) {
		t.Fatalf("saved = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("saved[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

// TestImportReplace verifies -replace discards the stored log.
func TestImportReplace(t *testing.T) {
	stored, _ := models.New(models.Input{
		Kind: models.KindRunning, Coords: models.Coordinates{Lat: 1, Lng: 1},
		DistanceKm: 1, DurationMin: 5, Extra: 160,
	}, time.Now())
	slot := &memSlot{stored: []*models.Workout{stored}}
	path := writeFile(t, t.TempDir(), "workouts.json", []byte(legacyExport))

	if _, err := New(slot, testLogger(), false, true).Import(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slot.saved) != 2 {
		t.Errorf("saved %d workouts, want 2", len(slot.saved))
	}
}

// TestImportDryRun verifies nothing is written in dry-run mode.
func TestImportDryRun(t *testing.T) {
	slot := &memSlot{}
	path := writeFile(t, t.TempDir(), "workouts.json", []byte(legacyExport))

	stats, err := New(slot, testLogger(), true, false).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.WorkoutsAdded != 2 {
		t.Errorf("added = %d, want 2", stats.WorkoutsAdded)
	}
	if slot.saves != 0 {
		t.Errorf("dry run saved %d times", slot.saves)
	}
}

// TestImportCorruptFile verifies a corrupt export is counted and nothing is saved.
func TestImportCorruptFile(t *testing.T) {
	slot := &memSlot{}
	path := writeFile(t, t.TempDir(), "workouts.json", []byte(`{"not":"an array"}`))

	stats, err := New(slot, testLogger(), false, false).Import(context.Background(), path)
	if err == nil {
		t.Fatal("expected error when nothing could be imported")
	}
	if stats.FilesErrored != 1 || slot.saves != 0 {
		t.Errorf("stats = %+v, saves = %d", stats, slot.saves)
	}
}

// TestReadExportGzipMagic verifies gzip content is detected without the .gz suffix.
func TestReadExportGzipMagic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "workouts.json", gzipped(t, "[]"))
	data, err := ReadExport(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("data = %q, want []", data)
	}
}
