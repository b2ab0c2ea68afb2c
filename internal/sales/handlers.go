package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-vendas/internal/common"
)

// Handler exposes the sale endpoints.
type Handler struct {
	Svc          *Service
	Validate     *validator.Validate
	DefaultLimit int
	MaxLimit     int
}

// Preview recomputes totals and the due schedule without persisting anything.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var in PreviewInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	if err := h.Validate.Struct(in); err != nil {
		common.RenderError(w, common.NewValidationError("invalid preview payload", common.FieldErrors(err)))
		return
	}
	view, err := h.Svc.Preview(r.Context(), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Create commits a new sale.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in SaleInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	if err := h.Validate.Struct(in); err != nil {
		common.RenderError(w, common.NewValidationError("invalid sale payload", common.FieldErrors(err)))
		return
	}
	view, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

// Update replaces a stored sale with the payload.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	var in SaleInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	if err := h.Validate.Struct(in); err != nil {
		common.RenderError(w, common.NewValidationError("invalid sale payload", common.FieldErrors(err)))
		return
	}
	view, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// UpdateStatus sets the sale status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	var in StatusInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	if err := h.Validate.Struct(in); err != nil {
		common.RenderError(w, common.NewValidationError("invalid status payload", common.FieldErrors(err)))
		return
	}
	if err := h.Svc.UpdateStatus(r.Context(), id, in.Status); err != nil {
		common.RenderError(w, err)
		return
	}
	view, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// List responds with a paginated sale list, optionally filtered by status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	entries, total, err := h.Svc.List(r.Context(), r.URL.Query().Get("status"), perPage, (page-1)*perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	if entries == nil {
		entries = []ListEntry{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       entries,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get responds with one sale aggregate.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	view, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func saleID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "saleID"))
	if err != nil {
		return uuid.Nil, common.NewAppError("BAD_REQUEST", "invalid sale id", http.StatusBadRequest, nil)
	}
	return id, nil
}
