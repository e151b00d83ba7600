package domain

import "context"

// Gateway is the travel-data provider as consumed by the core.
type Gateway interface {
	SearchPlaces(ctx context.Context, text string) ([]Place, error)
	SearchRates(ctx context.Context, c SearchCriteria) (RatesResult, error)
	GetHotelDetail(ctx context.Context, hotelID string) (HotelDetail, error)
	Prebook(ctx context.Context, req PrebookRequest) (PrebookResult, error)
	Book(ctx context.Context, req BookRequest) (BookResponse, error)
}

// SessionStore holds at most one PendingBooking per browser context.
// Get returns (nil, nil) when nothing is stored.
type SessionStore interface {
	Get(ctx context.Context, browserID string) (*PendingBooking, error)
	Set(ctx context.Context, browserID string, rec PendingBooking) error
	Clear(ctx context.Context, browserID string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type BookingArchive interface {
	// Write path
	RecordOutcome(ctx context.Context, o BookingOutcome) error

	// Read path
	GetOutcome(ctx context.Context, prebookID string) (BookingOutcome, error)
}
