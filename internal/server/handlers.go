package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/workoutmap/internal/app"
	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/store"
	"github.com/claude/workoutmap/internal/view"
)

// eventResponse is returned by every event endpoint: the form state after
// the event and the rendering commands it produced.
type eventResponse struct {
	State    app.Status     `json:"state"`
	Commands []view.Command `json:"commands"`
	Error    string         `json:"error,omitempty"`
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type typeRequest struct {
	Kind string `json:"kind"`
}

type submitRequest struct {
	Kind           string   `json:"kind"`
	DistanceKm     *float64 `json:"distanceKm"`
	DurationMin    *float64 `json:"durationMin"`
	CadenceSpm     *float64 `json:"cadenceSpm"`
	ElevationGainM *float64 `json:"elevationGainM"`
}

type selectRequest struct {
	ID     string `json:"id"`
	Delete bool   `json:"delete"`
}

// dispatch runs one event against the app and reports its commands.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, event string, fn func() error) {
	cmds, err := s.hub.Capture(fn)
	resp := eventResponse{State: s.app.Status(), Commands: cmds}
	status := http.StatusOK
	if err != nil {
		status = errorStatus(err)
		resp.Error = err.Error()
		if status >= http.StatusInternalServerError {
			s.log.Error("event failed", "event", event, "user", userInfoFromContext(r).Login, "error", err)
		}
	}
	writeJSON(w, status, resp)
}

func errorStatus(err error) int {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNoActiveForm):
		return http.StatusConflict
	case errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng are required"})
		return
	}
	at := models.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	s.dispatch(w, r, "location", func() error { return s.app.LocationSelected(at) })
}

func (s *Server) handleTypeToggle(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.dispatch(w, r, "type", func() error { return s.app.TypeToggled(models.Kind(req.Kind)) })
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Empty form fields fail validation like any other non-positive input.
	// The app picks the extra field for the kind it resolves.
	sub := app.Submission{
		Kind:           models.Kind(req.Kind),
		DistanceKm:     valueOrNaN(req.DistanceKm),
		DurationMin:    valueOrNaN(req.DurationMin),
		CadenceSpm:     valueOrNaN(req.CadenceSpm),
		ElevationGainM: valueOrNaN(req.ElevationGainM),
	}

	s.dispatch(w, r, "submit", func() error {
		_, err := s.app.FormSubmitted(r.Context(), sub)
		return err
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "cancel", s.app.FormCancelled)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}
	s.dispatch(w, r, "select", func() error {
		return s.app.ListItemActivated(r.Context(), req.ID, req.Delete)
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "reset", func() error { return s.app.ResetRequested(r.Context()) })
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Status())
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	var kind models.Kind
	if v := r.URL.Query().Get("kind"); v != "" {
		k, err := models.ParseKind(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		kind = k
	}

	workouts := s.app.Workouts()
	records := make([]models.Record, 0, len(workouts))
	for i := range workouts {
		if kind != "" && workouts[i].Kind() != kind {
			continue
		}
		records = append(records, workouts[i].Record())
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	workout, ok := s.app.Workout(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": (&store.NotFoundError{ID: id}).Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout.Record())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.RenderLog(s.app.Workouts()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
