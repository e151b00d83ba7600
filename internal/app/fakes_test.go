package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"staybook/internal/domain"
)

// ---- fakes ----

type fakeGateway struct {
	mu sync.Mutex

	places    []domain.Place
	rates     domain.RatesResult
	ratesErr  error
	details   map[string]domain.HotelDetail
	detailErr error

	prebookRes domain.PrebookResult
	prebookErr error
	bookResp   domain.BookResponse
	bookErr    error

	placesCalls  int
	ratesCalls   int
	detailCalls  int
	prebookCalls int
	bookCalls    int

	lastCriteria domain.SearchCriteria
	lastPrebook  domain.PrebookRequest
	lastBook     domain.BookRequest

	bookCtxErr      error
	bookHasDeadline bool
}

func (f *fakeGateway) SearchPlaces(ctx context.Context, text string) ([]domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placesCalls++
	return f.places, nil
}

func (f *fakeGateway) SearchRates(ctx context.Context, c domain.SearchCriteria) (domain.RatesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratesCalls++
	f.lastCriteria = c
	return f.rates, f.ratesErr
}

func (f *fakeGateway) GetHotelDetail(ctx context.Context, id string) (domain.HotelDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailErr != nil {
		return domain.HotelDetail{}, f.detailErr
	}
	hd, ok := f.details[id]
	if !ok {
		return domain.HotelDetail{}, &domain.GatewayError{Op: "hotel", Status: 404, Message: "not found", Err: domain.ErrNotFound}
	}
	return hd, nil
}

func (f *fakeGateway) Prebook(ctx context.Context, req domain.PrebookRequest) (domain.PrebookResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prebookCalls++
	f.lastPrebook = req
	return f.prebookRes, f.prebookErr
}

func (f *fakeGateway) Book(ctx context.Context, req domain.BookRequest) (domain.BookResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookCalls++
	f.lastBook = req
	f.bookCtxErr = ctx.Err()
	_, f.bookHasDeadline = ctx.Deadline()
	return f.bookResp, f.bookErr
}

func (f *fakeGateway) books() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookCalls
}

// fakeCache round-trips through JSON so any value type works.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// memStore is the in-memory session store.
type memStore struct {
	mu     sync.Mutex
	recs   map[string]domain.PendingBooking
	getErr error
	setErr error
	clears int
}

func newMemStore() *memStore { return &memStore{recs: map[string]domain.PendingBooking{}} }

func (s *memStore) Get(ctx context.Context, id string) (*domain.PendingBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}
func (s *memStore) Set(ctx context.Context, id string, rec domain.PendingBooking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.recs[id] = rec
	return nil
}
func (s *memStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	delete(s.recs, id)
	return nil
}
func (s *memStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.recs[id]
	return ok
}

type memArchive struct {
	mu       sync.Mutex
	outcomes []domain.BookingOutcome
	err      error
}

func (a *memArchive) RecordOutcome(ctx context.Context, o domain.BookingOutcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.outcomes = append(a.outcomes, o)
	return nil
}
func (a *memArchive) GetOutcome(ctx context.Context, prebookID string) (domain.BookingOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.outcomes) - 1; i >= 0; i-- {
		if a.outcomes[i].PrebookID == prebookID {
			return a.outcomes[i], nil
		}
	}
	return domain.BookingOutcome{}, domain.ErrNotFound
}
func (a *memArchive) last() domain.BookingOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.outcomes) == 0 {
		return domain.BookingOutcome{}
	}
	return a.outcomes[len(a.outcomes)-1]
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
