package app

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

// Candidate is one possible source for an identifier. Empty Value = absent.
type Candidate struct {
	Source string
	Value  string
}

// Resolve returns the first present value, in the order given, plus the
// names of every source that had nothing.
func Resolve(candidates ...Candidate) (string, []string) {
	var (
		value   string
		missing []string
	)
	for _, c := range candidates {
		v := strings.TrimSpace(c.Value)
		if v == "" {
			missing = append(missing, c.Source)
			continue
		}
		if value == "" {
			value = v
		}
	}
	return value, missing
}

// Return-URL parameter names. Alternates are how payment integrations name
// their own payment identifier, checked in this order.
const (
	ParamPrebookID     = "prebookId"
	ParamTransactionID = "transactionId"
)

var AltTransactionParams = []string{"payment_intent", "paymentId"}

// ReturnParams are the query parameters the payment page sent back.
type ReturnParams struct {
	PrebookID     string
	TransactionID string
	Alternates    map[string]string
}

func ReturnParamsFromQuery(q url.Values) ReturnParams {
	rp := ReturnParams{
		PrebookID:     q.Get(ParamPrebookID),
		TransactionID: q.Get(ParamTransactionID),
		Alternates:    map[string]string{},
	}
	for _, k := range AltTransactionParams {
		if v := q.Get(k); v != "" {
			rp.Alternates[k] = v
		}
	}
	return rp
}

// Correlated is what finalize needs after the round trip.
type Correlated struct {
	PrebookID     string
	TransactionID string
	Guest         domain.GuestInfo
	Record        *domain.PendingBooking
}

// correlate reconciles the return URL with the stored record. Precedence:
// prebookId = URL, store; transactionId = URL, store, alternates.
func correlate(rp ReturnParams, stored *domain.PendingBooking) (Correlated, error) {
	var storedPrebook, storedTx string
	if stored != nil {
		storedPrebook, storedTx = stored.PrebookID, stored.TransactionID
	}

	prebookID, pbGaps := Resolve(
		Candidate{Source: "url:" + ParamPrebookID, Value: rp.PrebookID},
		Candidate{Source: "store:" + ParamPrebookID, Value: storedPrebook},
	)

	txCandidates := []Candidate{
		{Source: "url:" + ParamTransactionID, Value: rp.TransactionID},
		{Source: "store:" + ParamTransactionID, Value: storedTx},
	}
	for _, k := range AltTransactionParams {
		txCandidates = append(txCandidates, Candidate{Source: "url:" + k, Value: rp.Alternates[k]})
	}
	transactionID, txGaps := Resolve(txCandidates...)
	log.Debug().
		Strs("prebook_sources_empty", pbGaps).
		Strs("transaction_sources_empty", txGaps).
		Bool("stored", stored != nil).
		Msg("correlating payment return")

	var missing []string
	if stored == nil || stored.Guest == nil {
		missing = append(missing, domain.MissingStoredSession)
	}
	if transactionID == "" {
		missing = append(missing, domain.MissingTransactionID)
	}
	if prebookID == "" {
		missing = append(missing, domain.MissingPrebookID)
	}
	if len(missing) > 0 {
		return Correlated{}, &domain.CorrelationError{Missing: missing}
	}

	return Correlated{
		PrebookID:     prebookID,
		TransactionID: transactionID,
		Guest:         *stored.Guest,
		Record:        stored,
	}, nil
}
