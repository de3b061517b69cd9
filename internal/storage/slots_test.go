package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "workoutmap.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSlotLifecycle verifies put/get/overwrite/delete on a named slot.
func TestSlotLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, ok, err := db.GetSlot(ctx, "workouts"); err != nil || ok {
		t.Fatalf("GetSlot on empty db = ok %v, err %v; want absent", ok, err)
	}

	if err := db.PutSlot(ctx, "workouts", []byte("[1]")); err != nil {
		t.Fatal(err)
	}
	if err := db.PutSlot(ctx, "workouts", []byte("[2]")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := db.GetSlot(ctx, "workouts")
	if err != nil || !ok || string(v) != "[2]" {
		t.Fatalf("GetSlot = %q, %v, %v; want [2]", v, ok, err)
	}

	if err := db.DeleteSlot(ctx, "workouts"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := db.GetSlot(ctx, "workouts"); ok {
		t.Error("slot still present after delete")
	}
	if err := db.DeleteSlot(ctx, "workouts"); err != nil {
		t.Errorf("deleting a missing slot: %v", err)
	}
}

// TestOpenIsIdempotent verifies migrations can run again on an existing file.
func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.PutSlot(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if v, ok, _ := db.GetSlot(ctx, "k"); !ok || string(v) != "v" {
		t.Errorf("value lost across reopen: %q", v)
	}
}

// TestSlotPersister verifies Save/Load/Clear through the codec, including
// recovery from a corrupt slot.
func TestSlotPersister(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := NewSlotPersister(db, "", discardLogger())

	if ws, err := p.Load(ctx); err != nil || len(ws) != 0 {
		t.Fatalf("Load on empty slot = %d, %v", len(ws), err)
	}

	want := sampleWorkouts(t)
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := p.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != want[0].ID || got[1].ID != want[1].ID {
		t.Errorf("loaded ids = %v", ids(got))
	}

	if err := p.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if ok, _ := p.Exists(ctx); ok {
		t.Error("slot present after Clear")
	}

	if err := db.PutSlot(ctx, DefaultSlot, []byte("{garbage")); err != nil {
		t.Fatal(err)
	}
	if ws, err := p.Load(ctx); err != nil || len(ws) != 0 {
		t.Errorf("Load of corrupt slot = %d, %v; want empty, nil", len(ws), err)
	}
}
