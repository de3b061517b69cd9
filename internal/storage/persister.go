package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/observability"
)

// DefaultSlot is the slot name the workout log is stored under.
const DefaultSlot = "workouts"

// SlotPersister keeps the whole workout log as one blob in a named slot.
type SlotPersister struct {
	db    *DB
	slot  string
	codec *Codec
	log   *slog.Logger
}

// NewSlotPersister creates a persister writing to slot (DefaultSlot when empty).
func NewSlotPersister(db *DB, slot string, log *slog.Logger) *SlotPersister {
	if slot == "" {
		slot = DefaultSlot
	}
	return &SlotPersister{db: db, slot: slot, codec: NewCodec(log), log: log}
}

// Save replaces the slot with a snapshot of workouts.
func (p *SlotPersister) Save(ctx context.Context, workouts []models.Workout) error {
	blob, err := p.codec.Snapshot(workouts)
	if err == nil {
		err = p.db.PutSlot(ctx, p.slot, blob)
	}
	observability.RecordSnapshot("save", err, time.Now())
	if err != nil {
		p.log.Error("snapshot failed", "slot", p.slot, "workouts", len(workouts), "error", err)
		return err
	}
	return nil
}

// Clear removes the slot, leaving no persisted log.
func (p *SlotPersister) Clear(ctx context.Context) error {
	err := p.db.DeleteSlot(ctx, p.slot)
	observability.RecordSnapshot("clear", err, time.Now())
	if err != nil {
		p.log.Error("clearing slot failed", "slot", p.slot, "error", err)
		return err
	}
	return nil
}

// Load restores the workout log. A missing or corrupt slot yields an empty log.
func (p *SlotPersister) Load(ctx context.Context) ([]*models.Workout, error) {
	blob, ok, err := p.db.GetSlot(ctx, p.slot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return p.codec.Restore(blob), nil
}

// Exists reports whether the slot currently holds a value.
func (p *SlotPersister) Exists(ctx context.Context) (bool, error) {
	_, ok, err := p.db.GetSlot(ctx, p.slot)
	return ok, err
}
