package settings

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/money"
)

// Handler exposes HTTP handlers for company settings.
type Handler struct {
	Svc *Service
}

type payload struct {
	TaxRate string `json:"tax_rate"`
}

// Get responds with the current company settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Svc.Snapshot(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load settings", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": payload{TaxRate: money.PercentFromBps(snapshot.TaxRateBps)},
	})
}

// Update sets the default tax rate.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in payload
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	if strings.TrimSpace(in.TaxRate) == "" {
		common.RenderError(w, common.NewValidationError("invalid settings payload", map[string]string{"tax_rate": "is required"}))
		return
	}
	bps, err := money.BpsFromPercent(in.TaxRate)
	if err != nil || bps < 0 || bps > 10_000 {
		common.RenderError(w, common.NewValidationError("invalid settings payload", map[string]string{"tax_rate": "must be a percent between 0 and 100"}))
		return
	}
	if err := h.Svc.UpdateTaxRate(r.Context(), bps); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update settings", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": payload{TaxRate: money.PercentFromBps(bps)},
	})
}
