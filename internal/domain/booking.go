package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusSelected        BookingStatus = "selected"
	StatusPrebooked       BookingStatus = "prebooked"
	StatusAwaitingPayment BookingStatus = "awaiting_payment"
	StatusFinalized       BookingStatus = "finalized"
	StatusFailed          BookingStatus = "failed"
)

type GuestInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

func (g GuestInfo) Validate() error {
	switch {
	case strings.TrimSpace(g.FirstName) == "":
		return &ValidationError{Field: "guest.firstName", Reason: "is required"}
	case strings.TrimSpace(g.LastName) == "":
		return &ValidationError{Field: "guest.lastName", Reason: "is required"}
	case !strings.Contains(g.Email, "@"):
		return &ValidationError{Field: "guest.email", Reason: "must be a valid email address"}
	}
	return nil
}

// BookingSession is the in-memory view of one purchase attempt.
// SelectedHotel and SelectedRate are display snapshots, not authoritative.
type BookingSession struct {
	OfferID       string        `json:"offerId,omitempty"`
	SelectedRate  *Rate         `json:"rate,omitempty"`
	SelectedHotel *HotelDetail  `json:"hotel,omitempty"`
	Guest         GuestInfo     `json:"guest"`
	PrebookID     string        `json:"prebookId,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Status        BookingStatus `json:"status"`
}

// PendingBooking is the durable continuation record written before the
// browser leaves for the payment page. The shape is unversioned: readers
// must treat missing fields as absent.
type PendingBooking struct {
	Guest         *GuestInfo   `json:"guest,omitempty"`
	Hotel         *HotelDetail `json:"hotel,omitempty"`
	Rate          *Rate        `json:"rate,omitempty"`
	PrebookID     string       `json:"prebookId,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
}

// ---- provider booking contract ----

type PrebookRequest struct {
	OfferID       string `json:"offerId"`
	UsePaymentSDK bool   `json:"usePaymentSdk"`
}

type PrebookResult struct {
	PrebookID     string `json:"prebookId"`
	TransactionID string `json:"transactionId,omitempty"`
	PaymentSecret string `json:"secretKey,omitempty"`
}

type Holder struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Payment struct {
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

type BookGuest struct {
	OccupancyNumber int    `json:"occupancyNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Remarks         string `json:"remarks"`
}

// BookRequest is the finalize payload; its shape is a wire contract.
type BookRequest struct {
	PrebookID string      `json:"prebookId"`
	Holder    Holder      `json:"holder"`
	Payment   Payment     `json:"payment"`
	Guests    []BookGuest `json:"guests"`
}

type BookingResult struct {
	BookingID             string          `json:"bookingId"`
	Status                string          `json:"status,omitempty"`
	HotelConfirmationCode string          `json:"hotelConfirmationCode,omitempty"`
	CheckIn               string          `json:"checkin,omitempty"`
	CheckOut              string          `json:"checkout,omitempty"`
	HotelName             string          `json:"hotelName,omitempty"`
	Holder                *Holder         `json:"holder,omitempty"`
	Price                 *Money          `json:"price,omitempty"`
	Raw                   json.RawMessage `json:"-"`
}

// BookResponse mirrors the provider envelope; Data is nil when the
// provider answered without a booking.
type BookResponse struct {
	Data *BookingResult
	Raw  json.RawMessage
}

// BookingOutcome is the archived result of one finalize attempt.
type BookingOutcome struct {
	PrebookID        string
	TransactionID    string
	BookingID        string
	Status           BookingStatus
	ConfirmationCode string
	HotelName        string
	GuestEmail       string
	Missing          []string
	ErrorDetail      string
	RawJSON          []byte
	CreatedAt        time.Time
}
