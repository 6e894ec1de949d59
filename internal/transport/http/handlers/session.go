package handlers

import (
	"net/http"

	"github.com/baechuer/event-hub/internal/application/navigation"
	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/transport/http/response"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

type interactionsResp struct {
	ContextID string `json:"contextId"`
	Count     int64  `json:"count"`
}

func (h *SessionHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	n, err := ws.Counter.Get(r.Context())
	if err != nil {
		response.Err(w, r, domain.ErrInternal(err))
		return
	}
	response.Data(w, r, http.StatusOK, interactionsResp{ContextID: ws.ContextID, Count: n})
}

func (h *SessionHandler) Interact(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	n, err := ws.Counter.Incr(r.Context())
	if err != nil {
		response.Err(w, r, domain.ErrInternal(err))
		return
	}
	response.Data(w, r, http.StatusOK, interactionsResp{ContextID: ws.ContextID, Count: n})
}

type navigationResp struct {
	ContextID string                 `json:"contextId"`
	Current   navigation.RouteName   `json:"current"`
	History   []navigation.RouteName `json:"history"`
}

// Navigation reports the context's current route and its history, oldest first.
func (h *SessionHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	st := ws.Router.State()
	if st.History == nil {
		st.History = []navigation.RouteName{}
	}
	response.Data(w, r, http.StatusOK, navigationResp{ContextID: ws.ContextID, Current: st.Current, History: st.History})
}
