package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MarisaKirisame/mdo/internal/model"
	"github.com/MarisaKirisame/mdo/internal/when"
)

// Handler exposes the engine's operations over HTTP. It owns payload shape
// validation; semantic validation (existence, cycles, permutation
// completeness) stays in the store.
type Handler struct {
	store *Store

	// today overrides the clock for reproducible serving in tests.
	today func() when.Date
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store, today: when.Today}
}

func (h *Handler) SetToday(fn func() when.Date) {
	h.today = fn
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeOpErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalid), errors.Is(err, when.ErrUnparsable):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

type createPayload struct {
	Title    string  `json:"title"`
	ParentID *string `json:"parent_id"`
	Position *int    `json:"position"`
}

type reorderPayload struct {
	Order []string `json:"order"`
}

type movePayload struct {
	TaskID   string  `json:"task_id"`
	ParentID *string `json:"parent_id"`
	Position int     `json:"position"`
}

type schedulePayload struct {
	When  string `json:"when"`
	Clear bool   `json:"clear"`
}

type forestResponse struct {
	Tasks []*model.TaskNode `json:"tasks"`
}

type agendaResponse struct {
	Tasks []model.Task `json:"tasks"`
}

// TasksRoot handles the /api/tasks collection.
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var rootID *model.TaskID
		if raw := strings.TrimSpace(r.URL.Query().Get("root")); raw != "" {
			id := model.TaskID(raw)
			rootID = &id
		}
		forest, err := h.store.List(rootID)
		if err != nil {
			writeOpErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, forestResponse{Tasks: forest})

	case http.MethodPost:
		var in createPayload
		if err := decodeValid(r, createSchema, &in); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := h.store.Create(in.Title, taskID(in.ParentID), in.Position)
		if err != nil {
			writeOpErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// TasksReorder handles POST /api/tasks/reorder.
func (h *Handler) TasksReorder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in reorderPayload
	if err := decodeValid(r, reorderSchema, &in); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	order := make([]model.TaskID, 0, len(in.Order))
	for _, id := range in.Order {
		order = append(order, model.TaskID(id))
	}
	forest, err := h.store.Reorder(order)
	if err != nil {
		writeOpErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forestResponse{Tasks: forest})
}

// TasksMove handles POST /api/tasks/move.
func (h *Handler) TasksMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in movePayload
	if err := decodeValid(r, moveSchema, &in); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	forest, err := h.store.Move(model.TaskID(in.TaskID), taskID(in.ParentID), in.Position)
	if err != nil {
		writeOpErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forestResponse{Tasks: forest})
}

// TasksDueToday handles GET /api/tasks/due-today. The optional ?on=
// parameter substitutes the reference day.
func (h *Handler) TasksDueToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	today := h.today()
	if raw := strings.TrimSpace(r.URL.Query().Get("on")); raw != "" {
		parsed, err := when.ParseDate(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "on must be a YYYY-MM-DD date")
			return
		}
		today = parsed
	}
	due, err := h.store.DueOn(today)
	if err != nil {
		writeOpErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agendaResponse{Tasks: due})
}

// TasksSub handles /api/tasks/{id} and /api/tasks/{id}/...
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	if tail == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	parts := strings.Split(tail, "/")
	id := model.TaskID(parts[0])

	if len(parts) == 1 {
		if r.Method != http.MethodDelete {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := h.store.Delete(id); err != nil {
			writeOpErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if len(parts) == 2 && parts[1] == "complete" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		result, err := h.store.Complete(id, h.today())
		if err != nil {
			writeOpErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if len(parts) == 2 && parts[1] == "schedule" {
		if r.Method != http.MethodPut {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var in schedulePayload
		if err := decodeValid(r, scheduleSchema, &in); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		if in.Clear {
			updated, err := h.store.SetSchedule(id, nil, 0)
			if err != nil {
				writeOpErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, updated)
			return
		}
		due, interval, err := when.Resolve(in.When, h.today())
		if err != nil {
			writeOpErr(w, err)
			return
		}
		updated, err := h.store.SetSchedule(id, &due, model.Recurrence(interval))
		if err != nil {
			writeOpErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
		return
	}

	writeErr(w, http.StatusNotFound, "not found")
}

func taskID(s *string) *model.TaskID {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	id := model.TaskID(*s)
	return &id
}
