package httptransport

import (
	"net/http"

	"milsabores/internal/auth/models"
	"milsabores/pkg/platform/httputil"
	"milsabores/pkg/requestcontext"
)

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(h.tab(r).Session.State()))
}

// HandleLogin handles POST /session/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	st, err := h.tab(r).Session.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(st))
}

// HandleRegister handles POST /session/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	st, err := h.tab(r).Session.Register(ctx, models.Registration{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: req.birthDate,
	})
	if err != nil {
		h.fail(w, r, "registration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSessionResponse(st))
}

// HandleLogout handles POST /session/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.tab(r).Session.Logout(r.Context()); err != nil {
		h.fail(w, r, "logout failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
