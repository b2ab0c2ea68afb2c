package analytics

import (
	"net/http"

	"github.com/noah-isme/backend-vendas/internal/common"
)

// Handler exposes the analytics endpoints.
type Handler struct {
	Svc *Service
}

// SalesDaily responds with the completed-sales daily series.
func (h *Handler) SalesDaily(w http.ResponseWriter, r *http.Request) {
	points, err := h.Svc.SalesDaily(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load sales series", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": points})
}

// Dashboard responds with the headline counters.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Svc.Dashboard(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load dashboard", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": d})
}
