package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/event-hub/internal/application/event"
	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/transport/http/response"
)

type EventsHandler struct {
	svc *event.Service
}

func NewEventsHandler(svc *event.Service) *EventsHandler {
	return &EventsHandler{svc: svc}
}

func eventID(r *http.Request) domain.ID {
	return domain.ID(chi.URLParam(r, "id"))
}

// Public

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := event.Filter{
		Status:    domain.EventStatus(q.Get("status")),
		Category:  domain.Category(q.Get("category")),
		From:      q.Get("from"),
		To:        q.Get("to"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if v := q.Get("availableOnly"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.Err(w, r, domain.ErrInvalidField("availableOnly", "must be true or false"))
			return
		}
		f.AvailableOnly = b
	}

	items, err := h.svc.Events(f)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, items)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.EventByID(eventID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, ev)
}

func (h *EventsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	response.Data(w, r, http.StatusOK, h.svc.Categories())
}

func (h *EventsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response.Data(w, r, http.StatusOK, h.svc.Statistics())
}

// Organizer

type createEventReq struct {
	domain.EventInput
	Status domain.EventStatus `json:"status,omitempty"`
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	var req createEventReq
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	ev, err := h.svc.CreateEvent(r.Context(), actor, event.CreateCmd{EventInput: req.EventInput, Status: req.Status})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusCreated, ev)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	var patch domain.EventPatch
	if err := response.DecodeJSON(r, &patch); err != nil {
		response.Err(w, r, err)
		return
	}

	ev, err := h.svc.UpdateEvent(r.Context(), actor, event.UpdateCmd{ID: eventID(r), Patch: patch})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, ev)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), actor, eventID(r)); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}

// Registrations

type registerReq struct {
	UserID domain.ID `json:"userId,omitempty"`
}

// Register books the caller, or the body's userId when acting for someone else.
func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	var req registerReq
	if r.ContentLength != 0 {
		if err := response.DecodeJSON(r, &req); err != nil {
			response.Err(w, r, err)
			return
		}
	}

	reg, err := h.svc.RegisterForEvent(r.Context(), actor, eventID(r), req.UserID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusCreated, reg)
}

// Unregister takes the target user from ?userId=, defaulting to the caller.
func (h *EventsHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	userID := domain.ID(r.URL.Query().Get("userId"))
	if err := h.svc.UnregisterFromEvent(r.Context(), actor, eventID(r), userID); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *EventsHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	if !actor.Can(domain.PermViewAllEvents) {
		response.Err(w, r, domain.ErrPermissionDenied(domain.PermViewAllEvents))
		return
	}
	id := eventID(r)
	if _, err := h.svc.EventByID(id); err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, h.svc.EventRegistrations(id))
}

// Me

func (h *EventsHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	response.Data(w, r, http.StatusOK, h.svc.UserRegistrations(actor.ID))
}

func (h *EventsHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authenticated(w, r)
	if !ok {
		return
	}
	response.Data(w, r, http.StatusOK, h.svc.UserCreatedEvents(actor.ID))
}
