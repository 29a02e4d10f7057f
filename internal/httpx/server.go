package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-retail-pos.git/internal/orders"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeOrderErr mapping taksonomi error engine ke status HTTP.
func writeOrderErr(w http.ResponseWriter, err error) {
	var ve *orders.ValidationError
	var nf *orders.NotFoundError
	var is *orders.InsufficientStockError
	var pe *orders.PersistenceError
	switch {
	case errors.As(err, &ve):
		writeErr(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		writeErr(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &is):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   is.Error(),
			"details": is.Details,
		})
	case errors.As(err, &pe):
		writeErr(w, http.StatusBadGateway, pe.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
