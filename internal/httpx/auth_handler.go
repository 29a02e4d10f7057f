package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-retail-pos.git/internal/auth"
)

type AuthHandler struct {
	Service *auth.Service
}

// Register pasang route publik (login).
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.login)
}

// RegisterAdmin pasang manajemen staff; caller wajib gate dengan RequireRole(ADMIN).
func (h *AuthHandler) RegisterAdmin(r chi.Router) {
	r.Get("/staff", h.listStaff)
	r.Post("/staff", h.createStaff)
	r.Delete("/staff/{id}", h.deactivateStaff)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		writeErr(w, http.StatusBadRequest, "username and password required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, st, err := h.Service.Login(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			writeErr(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "staff": st})
}

func (h *AuthHandler) listStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ss, err := h.Service.Staff.List(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (h *AuthHandler) createStaff(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string    `json:"username"`
		Password string    `json:"password"`
		Role     auth.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	st, err := h.Service.Register(ctx, in.Username, in.Password, in.Role)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *AuthHandler) deactivateStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Service.Staff.Deactivate(ctx, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
