// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/app"
	"staybook/internal/domain"
)

// SessionCookie carries the opaque browser id the pending booking is keyed by.
const SessionCookie = "sb_session"

const maxBodyBytes = 1 << 20

type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type Handlers struct {
	Search  *app.SearchService
	Booking *app.BookingService
	Cookie  CookieConfig
}

type problem struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Status  int             `json:"status"`
	Detail  string          `json:"detail,omitempty"`
	Details json.RawMessage `json:"details,omitempty"` // raw provider payload
	Missing []string        `json:"missing,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/places", h.places)
	s.mux.Post("/v1/hotels/search", h.searchHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Post("/v1/hotels/{id}/rooms", h.hotelRooms)

	s.mux.Route("/v1/checkout", func(r chi.Router) {
		r.Use(NoStore)
		r.Post("/prebook", h.prebook)
		r.Get("/pending", h.pending)
		r.Get("/return", h.checkoutReturn)
		r.Get("/outcomes/{prebookId}", h.outcome)
	})
}

// ---- responses ----

func writeProblem(w http.ResponseWriter, p problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// problemFor maps domain errors onto HTTP problems.
func problemFor(err error) problem {
	var (
		ve *domain.ValidationError
		ce *domain.CorrelationError
		ge *domain.GatewayError
	)
	switch {
	case errors.As(err, &ve):
		return problem{Title: "Invalid request", Status: http.StatusBadRequest, Detail: ve.Error()}
	case errors.As(err, &ce):
		return problem{Title: "Missing booking information", Status: http.StatusUnprocessableEntity, Detail: ce.Error(), Missing: ce.Missing}
	case errors.As(err, &ge):
		if ge.Op == "hotel" && errors.Is(err, domain.ErrNotFound) {
			return problem{Title: "Not Found", Status: http.StatusNotFound, Detail: "hotel not found"}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return problem{Title: "Provider timeout", Status: http.StatusGatewayTimeout, Detail: ge.Error()}
		}
		return problem{Title: "Provider error", Status: http.StatusBadGateway, Detail: ge.Message, Details: ge.Payload}
	case errors.Is(err, domain.ErrNoBookingData):
		return problem{Title: "Provider error", Status: http.StatusBadGateway, Detail: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return problem{Title: "Not Found", Status: http.StatusNotFound, Detail: "not found"}
	case errors.Is(err, context.DeadlineExceeded):
		return problem{Title: "Timeout", Status: http.StatusGatewayTimeout}
	default:
		return problem{Title: "Internal Server Error", Status: http.StatusInternalServerError}
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	if p.Status >= 500 {
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("request failed")
	}
	writeProblem(w, p)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, problem{Title: "Invalid JSON", Status: http.StatusBadRequest, Detail: err.Error()})
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- browser session ----

func browserID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	return ""
}

// ensureBrowserID reuses a valid cookie or issues a new one.
func (h *Handlers) ensureBrowserID(w http.ResponseWriter, r *http.Request) string {
	if id := browserID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.Cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// ---- search ----

func (h *Handlers) places(w http.ResponseWriter, r *http.Request) {
	out, err := h.Search.Places(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": out})
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	var c domain.SearchCriteria
	if !decodeBody(w, r, &c) {
		return
	}
	out, err := h.Search.SearchHotels(r.Context(), c)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": out})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hd, err := h.Search.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	etag, body := calcETagAndBody(hd)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) hotelRooms(w http.ResponseWriter, r *http.Request) {
	var c domain.SearchCriteria
	if !decodeBody(w, r, &c) {
		return
	}
	out, err := h.Search.HotelRooms(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- checkout ----

type prebookResponse struct {
	Status domain.BookingStatus `json:"status"`
	app.PaymentHandoff
}

func (h *Handlers) prebook(w http.ResponseWriter, r *http.Request) {
	var sel app.Selection
	if !decodeBody(w, r, &sel) {
		return
	}
	id := h.ensureBrowserID(w, r)

	sess, handoff, err := h.Booking.StartPrebook(r.Context(), id, sel)
	observability.ObserveBooking(string(sess.Status))
	if err != nil {
		if sess.Status == domain.StatusFailed {
			observability.ObserveBookingFailure("prebook", err)
		}
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prebookResponse{Status: sess.Status, PaymentHandoff: handoff})
}

func (h *Handlers) pending(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Booking.Pending(r.Context(), browserID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type returnResponse struct {
	Status  domain.BookingStatus  `json:"status"`
	Booking *domain.BookingResult `json:"booking"`
	Hotel   *domain.HotelDetail   `json:"hotel,omitempty"`
	Rate    *domain.Rate          `json:"rate,omitempty"`
}

// checkoutReturn is where the payment page lands the browser.
func (h *Handlers) checkoutReturn(w http.ResponseWriter, r *http.Request) {
	rp := app.ReturnParamsFromQuery(r.URL.Query())

	sess, res, err := h.Booking.Resume(r.Context(), browserID(r), rp)
	observability.ObserveBooking(string(sess.Status))
	if err != nil {
		var ce *domain.CorrelationError
		if errors.As(err, &ce) {
			observability.ObserveCorrelationGaps(ce.Missing)
		}
		observability.ObserveBookingFailure("finalize", err)
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, returnResponse{
		Status:  sess.Status,
		Booking: res,
		Hotel:   sess.SelectedHotel,
		Rate:    sess.SelectedRate,
	})
}

func (h *Handlers) outcome(w http.ResponseWriter, r *http.Request) {
	o, err := h.Booking.Outcome(r.Context(), chi.URLParam(r, "prebookId"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prebookId":        o.PrebookID,
		"status":           o.Status,
		"bookingId":        o.BookingID,
		"confirmationCode": o.ConfirmationCode,
		"hotelName":        o.HotelName,
		"missing":          o.Missing,
		"error":            o.ErrorDetail,
		"createdAt":        o.CreatedAt,
	})
}
