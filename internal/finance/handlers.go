package finance

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-vendas/internal/common"
)

// Handler exposes the receivables endpoints.
type Handler struct {
	Svc          *Service
	DefaultLimit int
	MaxLimit     int
}

// List responds with a paginated receivables list, optionally filtered by status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	receivables, total, err := h.Svc.List(r.Context(), r.URL.Query().Get("status"), perPage, (page-1)*perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	if receivables == nil {
		receivables = []Receivable{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       receivables,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Summary responds with the aggregate receivables totals.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Svc.Summarize(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to summarize receivables", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sum})
}

type payPayload struct {
	PaymentDate string `json:"payment_date"`
}

// MarkPaid settles a pending receivable. The payment date defaults to today.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "receivableID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid receivable id", nil)
		return
	}
	var in payPayload
	if r.ContentLength != 0 {
		if err := common.DecodeJSON(r, &in); err != nil {
			common.RenderError(w, err)
			return
		}
	}
	paymentDate := time.Now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(in.PaymentDate) != "" {
		paymentDate, err = time.Parse(dateLayout, in.PaymentDate)
		if err != nil {
			common.RenderError(w, common.NewValidationError("invalid payment payload", map[string]string{"payment_date": "must be a date in YYYY-MM-DD form"}))
			return
		}
	}
	rec, err := h.Svc.MarkPaid(r.Context(), id, paymentDate)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}
