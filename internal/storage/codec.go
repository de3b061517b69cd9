package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/claude/workoutmap/internal/models"
)

// ErrCorrupt matches every *CorruptError via errors.Is.
var ErrCorrupt = &CorruptError{}

// CorruptError is returned when a stored blob cannot be parsed at all.
type CorruptError struct {
	Err error
}

func (e *CorruptError) Error() string {
	if e.Err == nil {
		return "corrupt workout log"
	}
	return "corrupt workout log: " + e.Err.Error()
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool {
	_, ok := target.(*CorruptError)
	return ok
}

// Codec converts the workout log to and from the blob kept in a storage slot.
type Codec struct {
	log *slog.Logger
}

// NewCodec creates a codec that reports skipped data on log.
func NewCodec(log *slog.Logger) *Codec {
	return &Codec{log: log}
}

// Snapshot serializes the plain data of every workout, oldest first.
func (c *Codec) Snapshot(workouts []models.Workout) ([]byte, error) {
	records := make([]models.Record, 0, len(workouts))
	for i := range workouts {
		records = append(records, workouts[i].Record())
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding workouts: %w", err)
	}
	return data, nil
}

// Restore decodes a blob and never fails: a missing blob yields no
// workouts, a corrupt one is logged and yields no workouts.
func (c *Codec) Restore(blob []byte) []*models.Workout {
	workouts, err := c.Decode(blob)
	if err != nil {
		c.log.Warn("discarding corrupt workout log", "bytes", len(blob), "error", err)
		return nil
	}
	return workouts
}

// Decode rebuilds full workouts from a blob. Both the current record layout
// and the browser localStorage layout are accepted. Records that fail entity
// validation or repeat an id are skipped with a warning; a blob that is not a
// JSON array returns *CorruptError.
func (c *Codec) Decode(blob []byte) ([]*models.Workout, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, &CorruptError{Err: err}
	}

	out := make([]*models.Workout, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		w, err := decodeRecord(raw)
		if err != nil {
			c.log.Warn("skipping unreadable workout record", "index", i, "error", err)
			continue
		}
		if seen[w.ID] {
			c.log.Warn("skipping duplicate workout record", "index", i, "id", w.ID)
			continue
		}
		seen[w.ID] = true
		out = append(out, w)
	}
	return out, nil
}

func decodeRecord(raw json.RawMessage) (*models.Workout, error) {
	var probe struct {
		Kind *string `json:"kind"`
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	var rec models.Record
	if probe.Kind == nil && probe.Type != nil {
		var legacy legacyRecord
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, err
		}
		var err error
		if rec, err = legacy.record(); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return models.FromRecord(rec)
}

// legacyRecord is the layout the browser app wrote to localStorage.
type legacyRecord struct {
	ID            string             `json:"id"`
	Date          time.Time          `json:"date"`
	Coords        models.Coordinates `json:"coords"`
	Distance      float64            `json:"distance"`
	Duration      float64            `json:"duration"`
	Type          string             `json:"type"`
	Description   string             `json:"description"`
	Candence      *float64           `json:"candence"`
	Cadence       *float64           `json:"cadence"`
	ElevationGain *float64           `json:"elevationGain"`
}

func (l legacyRecord) record() (models.Record, error) {
	kind, err := models.ParseKind(l.Type)
	if err != nil {
		return models.Record{}, err
	}
	rec := models.Record{
		ID:             l.ID,
		CreatedAt:      l.Date,
		Coords:         l.Coords,
		DistanceKm:     l.Distance,
		DurationMin:    l.Duration,
		Kind:           kind,
		Description:    l.Description,
		ElevationGainM: l.ElevationGain,
	}

	cadence := l.Candence
	if cadence == nil {
		cadence = l.Cadence
	}
	if cadence != nil {
		if *cadence != math.Trunc(*cadence) || math.Abs(*cadence) > math.MaxInt32 {
			return models.Record{}, &models.ValidationError{Field: "cadenceSpm", Reason: "cadence must be a whole number of steps per minute"}
		}
		spm := int(*cadence)
		rec.CadenceSPM = &spm
	}
	return rec, nil
}
