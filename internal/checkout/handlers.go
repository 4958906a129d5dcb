package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/amara-oss/backend-duka/internal/cart"
	"github.com/amara-oss/backend-duka/internal/common"
)

// Handler exposes checkout over HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Create finalizes a cart into a sale.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid checkout payload", err.Error())
			return
		}
	}
	out, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		var appErr *common.AppError
		switch {
		case errors.As(err, &appErr):
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		case errors.Is(err, cart.ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
		case errors.Is(err, ErrEmptyCart):
			common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "cart has no items", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
		}
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}
