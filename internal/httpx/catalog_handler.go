package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-retail-pos.git/internal/catalog"
)

// CatalogHandler: CRUD glue untuk admin. Tidak ada invariant di sini;
// semua aturan stok ada di order engine.
type CatalogHandler struct {
	Repo *catalog.Repo
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Put("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)

	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}", h.getProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/products/{id}/variants", h.listVariants)
	r.Post("/products/{id}/variants", h.createVariant)
	r.Get("/variants/{id}", h.getVariant)
	r.Put("/variants/{id}", h.updateVariant)
	r.Delete("/variants/{id}", h.deleteVariant)
	r.Post("/variants/{id}/restock", h.restock)

	r.Get("/sp-groups", h.listSPGroups)
	r.Post("/sp-groups", h.createSPGroup)
	r.Delete("/sp-groups/{id}", h.deleteSPGroup)
	r.Put("/sp-groups/{id}/items", h.setSPItems)
}

func (h *CatalogHandler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

func writeCatalogErr(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}

// ---- categories ----

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	cs, err := h.Repo.ListCategories(ctx)
	if err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeErr(w, http.StatusBadRequest, "name required")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	c, err := h.Repo.CreateCategory(ctx, in.Name)
	if err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeErr(w, http.StatusBadRequest, "name required")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.UpdateCategory(ctx, chi.URLParam(r, "id"), in.Name); err != nil {
		writeCatalogErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.DeleteCategory(ctx, chi.URLParam(r, "id")); err != nil {
		writeCatalogErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- products ----

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	ps, err := h.Repo.ListProducts(ctx, r.URL.Query().Get("category_id"))
	if err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" {
		writeErr(w, http.StatusBadRequest, "name required")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.CreateProduct(ctx, &p); err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.Repo.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" {
		writeErr(w, http.StatusBadRequest, "name required")
		return
	}
	p.ID = chi.URLParam(r, "id")
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.UpdateProduct(ctx, &p); err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		writeCatalogErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- variants ----

func (h *CatalogHandler) listVariants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	vs, err := h.Repo.ListVariants(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

func (h *CatalogHandler) createVariant(w http.ResponseWriter, r *http.Request) {
	var v catalog.Variant
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil || v.SKU == "" {
		writeErr(w, http.StatusBadRequest, "sku required")
		return
	}
	if v.PriceCents < 0 || v.Stock < 0 {
		writeErr(w, http.StatusBadRequest, "price and stock must be non-negative")
		return
	}
	v.ProductID = chi.URLParam(r, "id")
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.CreateVariant(ctx, &v); err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *CatalogHandler) getVariant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	v, err := h.Repo.GetVariant(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *CatalogHandler) updateVariant(w http.ResponseWriter, r *http.Request) {
	var v catalog.Variant
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil || v.SKU == "" {
		writeErr(w, http.StatusBadRequest, "sku required")
		return
	}
	if v.PriceCents < 0 {
		writeErr(w, http.StatusBadRequest, "price must be non-negative")
		return
	}
	v.ID = chi.URLParam(r, "id")
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.UpdateVariant(ctx, &v); err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *CatalogHandler) deleteVariant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.DeleteVariant(ctx, chi.URLParam(r, "id")); err != nil {
		writeCatalogErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) restock(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Qty <= 0 {
		writeErr(w, http.StatusBadRequest, "qty must be positive")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.Restock(ctx, chi.URLParam(r, "id"), in.Qty); err != nil {
		writeCatalogErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- SP groups ----

func (h *CatalogHandler) listSPGroups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	gs, err := h.Repo.ListSPGroups(ctx)
	if err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

func (h *CatalogHandler) createSPGroup(w http.ResponseWriter, r *http.Request) {
	var g catalog.SPGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil || g.Name == "" {
		writeErr(w, http.StatusBadRequest, "name required")
		return
	}
	if !g.StartsAt.Before(g.EndsAt) {
		writeErr(w, http.StatusBadRequest, "starts_at must be before ends_at")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.CreateSPGroup(ctx, &g); err != nil {
		writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *CatalogHandler) deleteSPGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.DeleteSPGroup(ctx, chi.URLParam(r, "id")); err != nil {
		writeCatalogErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) setSPItems(w http.ResponseWriter, r *http.Request) {
	var items []catalog.SPItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	for _, it := range items {
		if it.VariantID == "" || it.PriceCents < 0 {
			writeErr(w, http.StatusBadRequest, "invalid sp item")
			return
		}
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Repo.SetSPItems(ctx, chi.URLParam(r, "id"), items); err != nil {
		writeCatalogErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
