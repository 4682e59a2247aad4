package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"wincloud_hotel/internal/app"
	"wincloud_hotel/internal/domain"
)

type Handlers struct {
	Sync        *app.SyncService
	Pricing     *app.PricingService
	SyncMaxBody int64
	SyncRPS     int
}

func (s *Server) MountHandlers(h *Handlers) {
	maxBody := h.SyncMaxBody
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	syncRPS := h.SyncRPS
	if syncRPS <= 0 {
		syncRPS = 50
	}

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.With(RateLimit(syncRPS)).Post("/wincloud/hotel-sync", h.hotelSync(maxBody))
	s.mux.Post("/v1/pricing/quote", h.priceQuote)
	s.mux.Post("/v1/availability", h.availability)
}

// hotelSync is the channel-manager feed endpoint. The body is raw XML
// up to maxBody bytes; every outcome, success or fault, is an XML RS
// document produced by the sync service.
func (h *Handlers) hotelSync(maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "xml") {
			writeFailure(w, http.StatusUnsupportedMediaType, "content type must be application/xml or text/xml")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeFailure(w, http.StatusRequestEntityTooLarge, "request body exceeds the sync payload limit")
				return
			}
			writeFailure(w, http.StatusBadRequest, "cannot read request body")
			return
		}

		res := h.Sync.Process(r.Context(), body)
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(res.Status)
		if _, err := w.Write(res.Body); err != nil {
			log.Error().Err(err).Msg("failed to write sync response")
		}
	}
}

// priceQuote answers the internal JSON pricing query.
func (h *Handlers) priceQuote(w http.ResponseWriter, r *http.Request) {
	var req domain.StayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	quote, err := h.Pricing.Quote(r.Context(), req)
	if err != nil {
		status, msg := quoteErrorStatus(err)
		writeFailure(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": quote})
}

// availability answers the internal JSON availability query. The
// result fields are flattened into the envelope.
func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	var req domain.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	res, err := h.Pricing.Availability(r.Context(), req)
	if err != nil {
		status, msg := quoteErrorStatus(err)
		writeFailure(w, status, msg)
		return
	}
	out := map[string]any{
		"success":       true,
		"isAvailable":   res.IsAvailable,
		"demandedRooms": res.DemandedRooms,
	}
	if res.TotalAvailableRooms != nil {
		out["totalAvailableRooms"] = *res.TotalAvailableRooms
	}
	if res.Message != "" {
		out["message"] = res.Message
	}
	writeJSON(w, http.StatusOK, out)
}

// quoteErrorStatus maps the pricing error family to a transport status:
// input failures are client bugs (400), business failures are valid
// queries with a negative answer (200, success:false).
func quoteErrorStatus(err error) (int, string) {
	if qe := domain.AsQuoteError(err); qe != nil {
		if qe.Kind == domain.QuoteInput {
			return http.StatusBadRequest, qe.Message
		}
		return http.StatusOK, qe.Message
	}
	log.Error().Err(err).Msg("pricing query failed")
	return http.StatusInternalServerError, "internal error"
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
