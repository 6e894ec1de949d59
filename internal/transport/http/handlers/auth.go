package handlers

import (
	"net/http"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/transport/http/response"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler { return &AuthHandler{} }

type meResp struct {
	User        domain.PublicUser   `json:"user"`
	Permissions []domain.Permission `json:"permissions"`
	ExpiresAt   time.Time           `json:"expiresAt"`
}

func meFrom(sess domain.Session) meResp {
	return meResp{
		User:        sess.User,
		Permissions: domain.Permissions(sess.User.Role),
		ExpiresAt:   sess.ExpiresAt,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var req domain.LoginInput
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	if _, err := ws.Auth.Login(r.Context(), req.Username, req.Password); err != nil {
		response.Err(w, r, err)
		return
	}
	sess, _ := ws.Auth.Session()
	response.Data(w, r, http.StatusOK, meFrom(sess))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var req domain.RegistrationInput
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	u, err := ws.Auth.Register(r.Context(), req)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusCreated, u)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	if err := ws.Auth.Logout(r.Context()); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	sess, err := ws.Auth.RefreshSession(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, meFrom(sess))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	sess, ok := ws.Auth.Session()
	if !ok {
		response.Err(w, r, domain.ErrNotAuthenticated())
		return
	}
	response.Data(w, r, http.StatusOK, meFrom(sess))
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var req domain.ProfileInput
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	if _, err := ws.Auth.UpdateProfile(r.Context(), req); err != nil {
		response.Err(w, r, err)
		return
	}
	sess, _ := ws.Auth.Session()
	response.Data(w, r, http.StatusOK, meFrom(sess))
}
