package settings

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/amara-oss/backend-duka/internal/common"
	"github.com/amara-oss/backend-duka/internal/delivery"
	"github.com/amara-oss/backend-duka/internal/pricing"
)

// Handler exposes the delivery settings admin endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type updateRequest struct {
	Enabled               bool                     `json:"enabled"`
	DefaultFee            pricing.Money            `json:"defaultFee" validate:"gte=0"`
	FreeDeliveryThreshold pricing.Money            `json:"freeDeliveryThreshold" validate:"gte=0"`
	AreaFees              map[string]pricing.Money `json:"areaFees" validate:"dive,gte=0"`
}

// Get returns the current delivery settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.Get(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load delivery settings", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Update replaces the delivery settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in updateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid delivery settings", err.Error())
			return
		}
	}
	out, err := h.Svc.Update(r.Context(), delivery.Settings{
		Enabled:               in.Enabled,
		DefaultFee:            in.DefaultFee,
		FreeDeliveryThreshold: in.FreeDeliveryThreshold,
		AreaFees:              in.AreaFees,
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update delivery settings", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
