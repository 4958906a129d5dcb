package delivery

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amara-oss/backend-duka/internal/common"
)

// Handler exposes delivery quoting over HTTP.
type Handler struct {
	Svc      *Service
	Currency string
}

// quoteRequest tolerates sloppy till input: numbers may arrive as strings
// and unknown fields are ignored.
type quoteRequest struct {
	Subtotal   any    `json:"subtotal"`
	Method     string `json:"method"`
	DistanceKm any    `json:"distanceKm"`
	Area       string `json:"area"`
	At         string `json:"at"`
}

// Quote prices a delivery for the given subtotal, method, distance and area.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "delivery service not configured", nil)
		return
	}
	var in quoteRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json payload", nil)
		return
	}
	req := QuoteRequest{
		Subtotal:   int64(common.ParseNonNegativeFloat(rawNumber(in.Subtotal), 0)),
		Method:     in.Method,
		DistanceKm: common.ParseNonNegativeFloat(rawNumber(in.DistanceKm), 0),
		Area:       in.Area,
	}
	if in.At != "" {
		if at, err := time.Parse(time.RFC3339, in.At); err == nil {
			req.At = at
		}
	}
	quote, err := h.Svc.Quote(r.Context(), req)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to quote delivery", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote, "currency": h.Currency})
}

// rawNumber normalises a flexible JSON number-or-string field into the string
// form expected by the defensive parser.
func rawNumber(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return ""
	}
}
