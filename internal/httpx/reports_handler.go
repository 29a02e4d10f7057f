package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-retail-pos.git/internal/reports"
)

type ReportsHandler struct {
	Service *reports.Service
}

func (h *ReportsHandler) Register(r chi.Router) {
	r.Get("/reports/sales", h.sales)
	r.Get("/reports/top-variants", h.topVariants)
	r.Get("/reports/low-stock", h.lowStock)
	r.Get("/reports/dashboard", h.dashboard)
}

// parsePeriod: ?from=2026-08-01&to=2026-08-31; default 30 hari terakhir.
// `to` eksklusif di query, jadi digeser +1 hari dari input tanggal.
func parsePeriod(r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, false
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, false
		}
		to = t.AddDate(0, 0, 1)
	}
	return from, to, true
}

func (h *ReportsHandler) sales(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parsePeriod(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid period, want YYYY-MM-DD")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	sum, err := h.Service.SalesSummary(ctx, from, to)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *ReportsHandler) topVariants(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parsePeriod(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid period, want YYYY-MM-DD")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	top, err := h.Service.TopVariants(ctx, from, to, limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *ReportsHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	low, err := h.Service.LowStock(ctx, threshold)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, low)
}

func (h *ReportsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parsePeriod(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid period, want YYYY-MM-DD")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	d, err := h.Service.Dashboard(ctx, from, to, limit, threshold)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}
