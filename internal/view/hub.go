package view

import (
	"log/slog"
	"sync"
	"time"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/store"
)

// Hub implements View by turning every call into a Command. Commands issued
// inside Capture are returned to the caller; all commands are broadcast to
// subscribers.
type Hub struct {
	captureMu sync.Mutex

	mu    sync.Mutex
	seq   uint64
	batch []Command
	taken bool

	subsMu sync.Mutex
	subs   map[chan Command]struct{}
	closed bool

	log *slog.Logger
}

var _ View = (*Hub)(nil)

// NewHub creates a hub with no subscribers.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		subs: make(map[chan Command]struct{}),
		log:  log,
	}
}

// Capture runs fn and returns the commands it issued. Captures run one at a time.
func (h *Hub) Capture(fn func() error) ([]Command, error) {
	h.captureMu.Lock()
	defer h.captureMu.Unlock()

	h.mu.Lock()
	h.batch, h.taken = []Command{}, true
	h.mu.Unlock()

	err := fn()

	h.mu.Lock()
	cmds := h.batch
	h.batch, h.taken = nil, false
	h.mu.Unlock()
	return cmds, err
}

// Subscribe registers a listener for every future command. The returned
// function unsubscribes. The channel is closed when the hub closes.
func (h *Hub) Subscribe() (<-chan Command, func()) {
	ch := make(chan Command, 64)
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	return ch, func() {
		h.subsMu.Lock()
		defer h.subsMu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Close drops all subscribers.
func (h *Hub) Close() {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

func (h *Hub) emit(name string, payload any) {
	h.mu.Lock()
	h.seq++
	cmd := Command{Seq: h.seq, Name: name, Payload: payload}
	if h.taken {
		h.batch = append(h.batch, cmd)
	}
	h.mu.Unlock()

	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- cmd:
		default:
			h.log.Warn("dropping command for slow subscriber", "command", name, "seq", cmd.Seq)
		}
	}
}

func (h *Hub) ShowForm() {
	h.emit(CmdShowForm, nil)
}

func (h *Hub) HideForm(transition time.Duration) {
	h.emit(CmdHideForm, HideFormPayload{TransitionMs: transition.Milliseconds()})
}

func (h *Hub) ToggleExtraField(kind models.Kind) {
	h.emit(CmdToggleExtraField, ToggleExtraFieldPayload{Kind: kind})
}

func (h *Hub) RenderMarker(workoutID string, at models.Coordinates, label string, kind models.Kind) store.MarkerHandle {
	p := markerPayload(workoutID, at, label, kind)
	h.emit(CmdRenderMarker, p)
	return p.Marker
}

func (h *Hub) RemoveMarker(m store.MarkerHandle) {
	h.emit(CmdRemoveMarker, RemoveMarkerPayload{MarkerID: m.MarkerID()})
}

func (h *Hub) RenderListEntry(entry ListEntry) {
	h.emit(CmdRenderListEntry, entry)
}

func (h *Hub) RemoveListEntry(workoutID string) {
	h.emit(CmdRemoveListEntry, RemoveListEntryPayload{WorkoutID: workoutID})
}

func (h *Hub) PanTo(at models.Coordinates, zoom int) {
	h.emit(CmdPanTo, PanToPayload{Coords: at, Zoom: zoom})
}

func (h *Hub) ClearAllRendering() {
	h.emit(CmdClearAllRendering, nil)
}

func (h *Hub) ShowNotice(message string) {
	h.emit(CmdShowNotice, NoticePayload{Message: message})
}

func markerPayload(workoutID string, at models.Coordinates, label string, kind models.Kind) RenderMarkerPayload {
	return RenderMarkerPayload{
		Marker:     Marker{ID: "marker-" + workoutID, WorkoutID: workoutID},
		Coords:     at,
		Label:      label,
		PopupClass: PopupClass(kind),
	}
}

// RenderLog returns the commands that draw an existing log from scratch,
// for a renderer that connects after startup. Commands are not broadcast.
func RenderLog(workouts []models.Workout) []Command {
	cmds := make([]Command, 0, 2*len(workouts)+1)
	cmds = append(cmds, Command{Name: CmdClearAllRendering})
	for i := range workouts {
		w := &workouts[i]
		cmds = append(cmds,
			Command{Name: CmdRenderMarker, Payload: markerPayload(w.ID, w.Coords, MarkerLabel(w), w.Kind())},
			Command{Name: CmdRenderListEntry, Payload: Entry(w)},
		)
	}
	return cmds
}
