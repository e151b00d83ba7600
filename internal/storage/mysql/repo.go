package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"staybook/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valJSON(b []byte) any {
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	return string(b)
}
func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// Repo is the booking archive: an append-only log of finalize outcomes.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) RecordOutcome(ctx context.Context, o domain.BookingOutcome) error {
	var missing []byte
	if len(o.Missing) > 0 {
		missing, _ = json.Marshal(o.Missing)
	}
	_, err := r.db.ExecContext(ctx, insertOutcomeSQL,
		valStr(o.PrebookID),
		valStr(o.TransactionID),
		valStr(o.BookingID),
		string(o.Status),
		valStr(o.ConfirmationCode),
		valStr(o.HotelName),
		valStr(o.GuestEmail),
		valJSON(missing),
		valStr(o.ErrorDetail),
		valJSON(o.RawJSON),
		valTime(o.CreatedAt),
	)
	return err
}

func (r *Repo) GetOutcome(ctx context.Context, prebookID string) (domain.BookingOutcome, error) {
	row := r.db.QueryRowContext(ctx, getOutcomeSQL, prebookID)

	var o domain.BookingOutcome
	var pb, tx, bid, code, hotel, email, detail sql.NullString
	var status string
	var missingRaw, rawB []byte

	if err := row.Scan(
		&pb, &tx, &bid,
		&status,
		&code, &hotel, &email,
		&missingRaw,
		&detail,
		&rawB,
		&o.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BookingOutcome{}, domain.ErrNotFound
		}
		return domain.BookingOutcome{}, err
	}

	o.PrebookID = pb.String
	o.TransactionID = tx.String
	o.BookingID = bid.String
	o.Status = domain.BookingStatus(status)
	o.ConfirmationCode = code.String
	o.HotelName = hotel.String
	o.GuestEmail = email.String
	o.ErrorDetail = detail.String
	if len(missingRaw) > 0 {
		_ = json.Unmarshal(missingRaw, &o.Missing)
	}
	if len(rawB) > 0 {
		o.RawJSON = append([]byte(nil), rawB...)
	}
	return o, nil
}

var _ domain.BookingArchive = (*Repo)(nil)
