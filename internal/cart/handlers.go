package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amara-oss/backend-duka/internal/common"
	"github.com/amara-oss/backend-duka/internal/pricing"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc      *Service
	Currency string
}

// Create creates or returns the active cart for a till/device identifier.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		AnonID string `json:"anonId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	anonID := strings.TrimSpace(payload.AnonID)
	if anonID == "" {
		anonID = uuid.NewString()
	}
	c, err := h.Svc.EnsureCart(r.Context(), anonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"cartId": c.ID.String(),
			"anonId": anonID,
		},
	})
}

// Get returns cart contents and the recomputed totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	summary, items, err := h.Svc.Totals(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	responseItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		line := map[string]any{
			"id":        it.ID.String(),
			"productId": it.ProductID.String(),
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
			"subtotal":  it.Subtotal,
		}
		if it.VariantID != nil {
			line["variantId"] = it.VariantID.String()
		}
		responseItems = append(responseItems, line)
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"id":    cartID.String(),
			"items": responseItems,
			"totals": map[string]any{
				"subtotal":   summary.Subtotal,
				"discount":   summary.Discount,
				"finalPrice": summary.FinalPrice,
				"tax":        summary.Tax,
				"total":      summary.Total,
			},
			"currency": h.Currency,
		},
	})
}

// AddItem appends or merges a cart line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		ProductID string        `json:"productId"`
		VariantID *string       `json:"variantId"`
		UnitPrice pricing.Money `json:"unitPrice"`
		Qty       int           `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json payload", nil)
		return
	}
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	var variantID *uuid.UUID
	if payload.VariantID != nil && *payload.VariantID != "" {
		vID, err := uuid.Parse(*payload.VariantID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid variant id", nil)
			return
		}
		variantID = &vID
	}
	if err := h.Svc.AddItem(r.Context(), cartID, productID, variantID, payload.UnitPrice, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// UpdateItem replaces a line quantity; a non-positive quantity removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json payload", nil)
		return
	}
	if err := h.Svc.UpdateQuantity(r.Context(), cartID, itemID, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// RemoveItem deletes a line; removing an absent line succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), cartID, itemID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear empties the cart and resets discount and customer selection.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Clear(r.Context(), cartID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyDiscount sets the whole-cart discount. Value accepts either a JSON
// number or a string; malformed input coerces to zero.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Value any    `json:"value"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json payload", nil)
		return
	}
	d, err := h.Svc.ApplyDiscount(r.Context(), cartID, rawDiscountValue(payload.Value), payload.Type)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"type":  string(d.Kind),
			"value": d.Value,
		},
	})
}

// RemoveDiscount resets the cart discount.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.RemoveDiscount(r.Context(), cartID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachCustomer links or detaches a customer reference.
func (h *Handler) AttachCustomer(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		CustomerID *string `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json payload", nil)
		return
	}
	var customerID *uuid.UUID
	if payload.CustomerID != nil && *payload.CustomerID != "" {
		cID, err := uuid.Parse(*payload.CustomerID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
			return
		}
		customerID = &cID
	}
	if err := h.Svc.AttachCustomer(r.Context(), cartID, customerID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}

// rawDiscountValue normalises the flexible JSON value field into the string
// form expected by the defensive parser.
func rawDiscountValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}
