// Package view is the boundary to whatever draws the map and workout list.
// The core talks to it only through the View interface; Hub turns every
// call into a Command that a browser applies.
package view

import (
	"time"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/store"
)

// View receives rendering commands from the workout log.
type View interface {
	store.MarkerDetacher

	ShowForm()
	HideForm(transition time.Duration)
	ToggleExtraField(kind models.Kind)
	RenderMarker(workoutID string, at models.Coordinates, label string, kind models.Kind) store.MarkerHandle
	RenderListEntry(entry ListEntry)
	RemoveListEntry(workoutID string)
	PanTo(at models.Coordinates, zoom int)
	ClearAllRendering()
	ShowNotice(message string)
}

// Command names sent to the renderer.
const (
	CmdShowForm          = "showForm"
	CmdHideForm          = "hideForm"
	CmdToggleExtraField  = "toggleExtraField"
	CmdRenderMarker      = "renderMarker"
	CmdRemoveMarker      = "removeMarker"
	CmdRenderListEntry   = "renderListEntry"
	CmdRemoveListEntry   = "removeListEntry"
	CmdPanTo             = "panTo"
	CmdClearAllRendering = "clearAllRendering"
	CmdShowNotice        = "showNotice"
)

// Command is one rendering instruction.
type Command struct {
	Seq     uint64 `json:"seq"`
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// Marker is the handle Hub hands out for a rendered marker.
type Marker struct {
	ID        string `json:"markerId"`
	WorkoutID string `json:"workoutId"`
}

// MarkerID implements store.MarkerHandle.
func (m Marker) MarkerID() string { return m.ID }

// Command payloads.
type (
	HideFormPayload struct {
		TransitionMs int64 `json:"transitionMs"`
	}
	ToggleExtraFieldPayload struct {
		Kind models.Kind `json:"kind"`
	}
	RenderMarkerPayload struct {
		Marker
		Coords     models.Coordinates `json:"coords"`
		Label      string             `json:"label"`
		PopupClass string             `json:"popupClass"`
	}
	RemoveMarkerPayload struct {
		MarkerID string `json:"markerId"`
	}
	RemoveListEntryPayload struct {
		WorkoutID string `json:"workoutId"`
	}
	PanToPayload struct {
		Coords models.Coordinates `json:"coords"`
		Zoom   int                `json:"zoom"`
	}
	NoticePayload struct {
		Message string `json:"message"`
	}
)
