package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "staybook/internal/adapters/redis"
	"staybook/internal/domain"
)

func newRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	mr := newRedis(t)
	c := redisad.Connect(mr.Addr(), "", 0)
	defer c.Close()
	st := redisad.NewSessionStore(c, time.Hour)
	ctx := context.Background()

	got, err := st.Get(ctx, "b1")
	if err != nil || got != nil {
		t.Fatalf("expected empty store, got %+v, %v", got, err)
	}

	rec := domain.PendingBooking{
		Guest:         &domain.GuestInfo{FirstName: "Ada", LastName: "L", Email: "a@x.io"},
		Hotel:         &domain.HotelDetail{HotelID: "h1", Name: "Hotel One"},
		PrebookID:     "pb1",
		TransactionID: "tx1",
	}
	if err := st.Set(ctx, "b1", rec); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("pending:b1"); ttl != time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}

	got, err = st.Get(ctx, "b1")
	if err != nil || got == nil {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if got.PrebookID != "pb1" || got.TransactionID != "tx1" || got.Guest.Email != "a@x.io" || got.Hotel.Name != "Hotel One" {
		t.Fatalf("unexpected record: %+v", got)
	}

	// other browsers see nothing
	if other, _ := st.Get(ctx, "b2"); other != nil {
		t.Fatalf("record leaked to another browser: %+v", other)
	}

	if err := st.Clear(ctx, "b1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, _ := st.Get(ctx, "b1"); got != nil {
		t.Fatalf("expected cleared record, got %+v", got)
	}
}

func TestSessionStore_LastWriterWins(t *testing.T) {
	mr := newRedis(t)
	c := redisad.Connect(mr.Addr(), "", 0)
	defer c.Close()
	st := redisad.NewSessionStore(c, time.Hour)
	ctx := context.Background()

	_ = st.Set(ctx, "b1", domain.PendingBooking{PrebookID: "first"})
	_ = st.Set(ctx, "b1", domain.PendingBooking{PrebookID: "second"})

	got, err := st.Get(ctx, "b1")
	if err != nil || got == nil || got.PrebookID != "second" {
		t.Fatalf("expected second record, got %+v, %v", got, err)
	}
}

func TestSessionStore_TolerantDecode(t *testing.T) {
	mr := newRedis(t)
	c := redisad.Connect(mr.Addr(), "", 0)
	defer c.Close()
	st := redisad.NewSessionStore(c, time.Hour)
	ctx := context.Background()

	// partial record written by an older release
	_ = mr.Set("pending:partial", `{"prebookId":"pb9","extra":true}`)
	got, err := st.Get(ctx, "partial")
	if err != nil || got == nil {
		t.Fatalf("partial record: %+v, %v", got, err)
	}
	if got.PrebookID != "pb9" || got.Guest != nil || got.TransactionID != "" {
		t.Fatalf("unexpected partial record: %+v", got)
	}

	_ = mr.Set("pending:broken", `{not json`)
	got, err = st.Get(ctx, "broken")
	if err != nil || got != nil {
		t.Fatalf("corrupt record should read as absent, got %+v, %v", got, err)
	}
}

func TestSessionStore_ReadFailure(t *testing.T) {
	mr := newRedis(t)
	c := redisad.Connect(mr.Addr(), "", 0)
	defer c.Close()
	st := redisad.NewSessionStore(c, time.Hour)

	mr.SetError("LOADING")
	if _, err := st.Get(context.Background(), "b1"); err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestCache_GetSetDel(t *testing.T) {
	mr := newRedis(t)
	c := redisad.Connect(mr.Addr(), "", 0)
	defer c.Close()
	cache := redisad.NewCache(c)
	ctx := context.Background()

	var hd domain.HotelDetail
	if ok, err := cache.Get(ctx, "hotel:h1", &hd); ok || err != nil {
		t.Fatalf("expected miss, got %v, %v", ok, err)
	}
	if err := cache.Set(ctx, "hotel:h1", domain.HotelDetail{HotelID: "h1", Name: "One"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := cache.Get(ctx, "hotel:h1", &hd); !ok || err != nil || hd.Name != "One" {
		t.Fatalf("expected hit, got %v, %v, %+v", ok, err, hd)
	}
	mr.FastForward(61 * time.Second)
	if ok, _ := cache.Get(ctx, "hotel:h1", &hd); ok {
		t.Fatal("entry should have expired")
	}

	_ = cache.Set(ctx, "hotel:h2", domain.HotelDetail{HotelID: "h2"}, 60)
	if err := cache.Del(ctx, "hotel:h2"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := cache.Get(ctx, "hotel:h2", &hd); ok {
		t.Fatal("entry should be gone")
	}
}
