package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"staybook/internal/domain"
)

// Provider integration contract. The payment page only works with prebooks
// created in payment-SDK mode, and book must reference its transaction.
const (
	ForcedUsePaymentSDK        = true
	PaymentMethodTransactionID = "TRANSACTION_ID"
	GuestOccupancyNumber       = 1
	GuestRemarks               = ""
	FallbackHolderPhone        = "0000000000"
	DefaultReturnPath          = "/confirmation"

	// FinalizeTimeout bounds the shared book call, which outlives the
	// request that started it.
	FinalizeTimeout = 40 * time.Second
)

type PaymentConfig struct {
	PublicKey     string // "sandbox" or "live"
	ReturnBaseURL string
	ReturnPath    string
}

// Selection is what the traveler picked plus who is staying.
// UsePaymentSDK is accepted from callers but never honoured.
type Selection struct {
	OfferID       string              `json:"offerId"`
	Guest         domain.GuestInfo    `json:"guest"`
	Hotel         *domain.HotelDetail `json:"hotel,omitempty"`
	Rate          *domain.Rate        `json:"rate,omitempty"`
	UsePaymentSDK bool                `json:"usePaymentSdk"`
}

// PaymentHandoff is everything the hosted payment widget needs.
type PaymentHandoff struct {
	PrebookID     string `json:"prebookId"`
	TransactionID string `json:"transactionId,omitempty"`
	PaymentSecret string `json:"paymentSecret"`
	PublicKey     string `json:"publicKey"`
	ReturnURL     string `json:"returnUrl"`
}

// BookingService drives a booking session from rate selection through the
// payment redirect to a single book call.
type BookingService struct {
	gw       domain.Gateway
	store    domain.SessionStore
	archive  domain.BookingArchive
	payment  PaymentConfig
	inflight singleflight.Group
}

func NewBookingService(gw domain.Gateway, store domain.SessionStore, archive domain.BookingArchive, pc PaymentConfig) *BookingService {
	if pc.ReturnPath == "" {
		pc.ReturnPath = DefaultReturnPath
	}
	return &BookingService{gw: gw, store: store, archive: archive, payment: pc}
}

// StartPrebook locks the selected offer at the provider and persists the
// continuation record before control leaves for the payment page.
// Nothing is persisted when the prebook fails.
func (s *BookingService) StartPrebook(ctx context.Context, browserID string, sel Selection) (domain.BookingSession, PaymentHandoff, error) {
	sess := domain.BookingSession{
		OfferID:       strings.TrimSpace(sel.OfferID),
		SelectedRate:  sel.Rate,
		SelectedHotel: sel.Hotel,
		Guest:         sel.Guest,
		Status:        domain.StatusSelected,
	}
	if sess.OfferID == "" {
		return sess, PaymentHandoff{}, &domain.ValidationError{Field: "offerId", Reason: "is required"}
	}
	if err := sel.Guest.Validate(); err != nil {
		return sess, PaymentHandoff{}, err
	}

	res, err := s.gw.Prebook(ctx, domain.PrebookRequest{OfferID: sess.OfferID, UsePaymentSDK: ForcedUsePaymentSDK})
	if err == nil && res.PrebookID == "" {
		err = &domain.GatewayError{Op: "prebook", Message: "response carried no prebookId"}
	}
	if err != nil {
		sess.Status = domain.StatusFailed
		log.Warn().Err(err).Str("offer_id", sess.OfferID).Msg("prebook failed")
		return sess, PaymentHandoff{}, err
	}

	sess.PrebookID = res.PrebookID
	sess.TransactionID = res.TransactionID
	sess.Status = domain.StatusPrebooked

	guest := sel.Guest
	rec := domain.PendingBooking{
		Guest:         &guest,
		Hotel:         sel.Hotel,
		Rate:          sel.Rate,
		PrebookID:     res.PrebookID,
		TransactionID: res.TransactionID,
	}
	// last writer wins: any earlier pending booking of this browser is dropped
	if err := s.store.Set(ctx, browserID, rec); err != nil {
		sess.Status = domain.StatusFailed
		log.Error().Err(err).Str("prebook_id", res.PrebookID).Msg("persist pending booking failed")
		return sess, PaymentHandoff{}, fmt.Errorf("persist pending booking: %w", err)
	}

	sess.Status = domain.StatusAwaitingPayment
	log.Info().Str("prebook_id", res.PrebookID).Str("status", string(sess.Status)).Msg("handing off to payment")

	return sess, PaymentHandoff{
		PrebookID:     res.PrebookID,
		TransactionID: res.TransactionID,
		PaymentSecret: res.PaymentSecret,
		PublicKey:     s.payment.PublicKey,
		ReturnURL:     s.returnURL(res.PrebookID, res.TransactionID),
	}, nil
}

// Resume runs when the payment page sends the browser back. It correlates
// the return parameters with the stored record and, only when everything is
// present, issues exactly one book call. The stored record is cleared only
// after a confirmed booking.
func (s *BookingService) Resume(ctx context.Context, browserID string, rp ReturnParams) (domain.BookingSession, *domain.BookingResult, error) {
	sess := domain.BookingSession{PrebookID: rp.PrebookID, TransactionID: rp.TransactionID, Status: domain.StatusFailed}

	stored, err := s.store.Get(ctx, browserID)
	if err != nil {
		log.Error().Err(err).Msg("read pending booking failed")
		return sess, nil, fmt.Errorf("read pending booking: %w", err)
	}

	corr, err := correlate(rp, stored)
	if err != nil {
		var ce *domain.CorrelationError
		if errors.As(err, &ce) {
			log.Warn().Strs("missing", ce.Missing).Msg("booking correlation failed")
			s.record(ctx, domain.BookingOutcome{
				PrebookID:     rp.PrebookID,
				TransactionID: rp.TransactionID,
				Status:        domain.StatusFailed,
				Missing:       ce.Missing,
				ErrorDetail:   ce.Error(),
			})
		}
		return sess, nil, err
	}

	sess = domain.BookingSession{
		SelectedRate:  corr.Record.Rate,
		SelectedHotel: corr.Record.Hotel,
		Guest:         corr.Guest,
		PrebookID:     corr.PrebookID,
		TransactionID: corr.TransactionID,
		Status:        domain.StatusAwaitingPayment,
	}

	// concurrent returns for the same prebook share one book call
	v, err, shared := s.inflight.Do(corr.PrebookID, func() (any, error) {
		// detached: one caller disconnecting must not cancel the book the
		// others joined
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FinalizeTimeout)
		defer cancel()

		// a return that lost the race finds the record already consumed
		cur, err := s.store.Get(fctx, browserID)
		if err != nil {
			return nil, fmt.Errorf("read pending booking: %w", err)
		}
		if cur == nil {
			return nil, &domain.CorrelationError{Missing: []string{domain.MissingStoredSession}}
		}
		return s.finalize(fctx, browserID, corr)
	})
	if shared {
		log.Info().Str("prebook_id", corr.PrebookID).Msg("joined in-flight finalize")
	}
	if err != nil {
		sess.Status = domain.StatusFailed
		return sess, nil, err
	}
	sess.Status = domain.StatusFinalized
	return sess, v.(*domain.BookingResult), nil
}

func (s *BookingService) finalize(ctx context.Context, browserID string, c Correlated) (*domain.BookingResult, error) {
	outcome := domain.BookingOutcome{
		PrebookID:     c.PrebookID,
		TransactionID: c.TransactionID,
		GuestEmail:    c.Guest.Email,
	}
	if c.Record.Hotel != nil {
		outcome.HotelName = c.Record.Hotel.Name
	}

	resp, err := s.gw.Book(ctx, BuildBookRequest(c))
	if err == nil && resp.Data == nil {
		err = &domain.GatewayError{Op: "book", Message: domain.ErrNoBookingData.Error(), Payload: resp.Raw, Err: domain.ErrNoBookingData}
	}
	if err != nil {
		// record stays in the store so the same identifiers can be retried by hand
		log.Error().Err(err).Str("prebook_id", c.PrebookID).Msg("finalize failed")
		outcome.Status = domain.StatusFailed
		outcome.ErrorDetail = err.Error()
		var ge *domain.GatewayError
		if errors.As(err, &ge) {
			outcome.RawJSON = ge.Payload
		}
		s.record(ctx, outcome)
		return nil, err
	}

	if err := s.store.Clear(ctx, browserID); err != nil {
		log.Error().Err(err).Str("prebook_id", c.PrebookID).Msg("clear pending booking failed")
	}

	data := resp.Data
	outcome.Status = domain.StatusFinalized
	outcome.BookingID = data.BookingID
	outcome.ConfirmationCode = data.HotelConfirmationCode
	if data.HotelName != "" {
		outcome.HotelName = data.HotelName
	}
	outcome.RawJSON = resp.Raw
	s.record(ctx, outcome)

	log.Info().Str("prebook_id", c.PrebookID).Str("booking_id", data.BookingID).Msg("booking confirmed")
	return data, nil
}

// Pending returns the stored continuation record, or domain.ErrNotFound.
func (s *BookingService) Pending(ctx context.Context, browserID string) (domain.PendingBooking, error) {
	rec, err := s.store.Get(ctx, browserID)
	if err != nil {
		return domain.PendingBooking{}, err
	}
	if rec == nil {
		return domain.PendingBooking{}, domain.ErrNotFound
	}
	return *rec, nil
}

// Outcome looks up an archived finalize result.
func (s *BookingService) Outcome(ctx context.Context, prebookID string) (domain.BookingOutcome, error) {
	if s.archive == nil {
		return domain.BookingOutcome{}, domain.ErrNotFound
	}
	return s.archive.GetOutcome(ctx, prebookID)
}

// BuildBookRequest produces the fixed finalize payload: one holder, a
// transaction-id payment and a single guest derived from the holder.
func BuildBookRequest(c Correlated) domain.BookRequest {
	g := c.Guest
	holderPhone := g.Phone
	if strings.TrimSpace(holderPhone) == "" {
		holderPhone = FallbackHolderPhone
	}
	return domain.BookRequest{
		PrebookID: c.PrebookID,
		Holder: domain.Holder{
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Phone:     holderPhone,
		},
		Payment: domain.Payment{
			Method:        PaymentMethodTransactionID,
			TransactionID: c.TransactionID,
		},
		Guests: []domain.BookGuest{{
			OccupancyNumber: GuestOccupancyNumber,
			FirstName:       g.FirstName,
			LastName:        g.LastName,
			Email:           g.Email,
			Phone:           g.Phone,
			Remarks:         GuestRemarks,
		}},
	}
}

func (s *BookingService) returnURL(prebookID, transactionID string) string {
	q := url.Values{}
	q.Set(ParamPrebookID, prebookID)
	q.Set(ParamTransactionID, transactionID)
	return strings.TrimRight(s.payment.ReturnBaseURL, "/") + s.payment.ReturnPath + "?" + q.Encode()
}

// record archives an outcome; archive trouble never changes the outcome.
func (s *BookingService) record(ctx context.Context, o domain.BookingOutcome) {
	if s.archive == nil {
		return
	}
	o.CreatedAt = time.Now().UTC()
	if err := s.archive.RecordOutcome(ctx, o); err != nil {
		log.Warn().Err(err).Str("prebook_id", o.PrebookID).Msg("archive booking outcome failed")
	}
}
