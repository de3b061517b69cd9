package view

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/workoutmap/internal/models"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func names(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name
	}
	return out
}

// TestCaptureCollectsCommands verifies commands issued inside Capture are
// returned in order with increasing sequence numbers.
func TestCaptureCollectsCommands(t *testing.T) {
	h := testHub()
	h.ShowNotice("outside")

	wantErr := errors.New("boom")
	cmds, err := h.Capture(func() error {
		h.ShowForm()
		h.ToggleExtraField(models.KindCycling)
		h.HideForm(time.Second)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	got := names(cmds)
	want := []string{CmdShowForm, CmdToggleExtraField, CmdHideForm}
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if cmds[0].Seq != 2 || cmds[2].Seq != 4 {
		t.Errorf("seqs = %d..%d, want 2..4", cmds[0].Seq, cmds[2].Seq)
	}
	if p := cmds[2].Payload.(HideFormPayload); p.TransitionMs != 1000 {
		t.Errorf("transition = %d, want 1000", p.TransitionMs)
	}

	// Nothing leaks into the next capture.
	cmds, _ = h.Capture(func() error { return nil })
	if len(cmds) != 0 {
		t.Errorf("empty capture returned %v", names(cmds))
	}
}

// TestSubscribeReceivesBroadcast verifies subscribers see every command and
// are released on unsubscribe and on Close.
func TestSubscribeReceivesBroadcast(t *testing.T) {
	h := testHub()
	ch, unsubscribe := h.Subscribe()
	other, _ := h.Subscribe()

	m := h.RenderMarker("w1", models.Coordinates{Lat: 1, Lng: 2}, "label", models.KindRunning)
	if m.MarkerID() != "marker-w1" {
		t.Errorf("marker id = %q", m.MarkerID())
	}

	select {
	case cmd := <-ch:
		p := cmd.Payload.(RenderMarkerPayload)
		if cmd.Name != CmdRenderMarker || p.WorkoutID != "w1" || p.PopupClass != "running-popup" {
			t.Errorf("got %+v", cmd)
		}
	case <-time.After(time.Second):
		t.Fatal("no command received")
	}

	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel open after unsubscribe")
	}
	unsubscribe()

	h.Close()
	<-other // the buffered renderMarker
	if _, ok := <-other; ok {
		t.Error("channel open after Close")
	}

	late, _ := h.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscription after Close should be closed")
	}
}

// TestRenderLog verifies the replay commands for an existing log.
func TestRenderLog(t *testing.T) {
	w, err := models.New(models.Input{Kind: models.KindCycling, Coords: models.Coordinates{Lat: 3, Lng: 4}, DistanceKm: 10, DurationMin: 35, Extra: 550}, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	cmds := RenderLog([]models.Workout{*w})
	got := names(cmds)
	if len(got) != 3 || got[0] != CmdClearAllRendering || got[1] != CmdRenderMarker || got[2] != CmdRenderListEntry {
		t.Fatalf("commands = %v", got)
	}
	if p := cmds[1].Payload.(RenderMarkerPayload); p.ID != "marker-"+w.ID || p.Label != "🚴‍♀️ Cycling on June 1" {
		t.Errorf("marker payload = %+v", p)
	}
}
