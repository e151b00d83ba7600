// internal/adapters/liteapi/client.go
package liteapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

const maxBody = 8 << 20

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----
// Reads are retried on 429/5xx. Prebook and book are sent once: a repeated
// book may create a second reservation.

func (c *Client) SearchPlaces(ctx context.Context, text string) ([]domain.Place, error) {
	u := c.base + "/data/places?" + url.Values{"textQuery": {text}}.Encode()
	var env struct {
		Data []domain.Place `json:"data"`
	}
	if _, err := c.do(ctx, "places", http.MethodGet, u, nil, true, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []domain.Place{}
	}
	return env.Data, nil
}

func (c *Client) SearchRates(ctx context.Context, sc domain.SearchCriteria) (domain.RatesResult, error) {
	body, err := json.Marshal(newRatesRequest(sc))
	if err != nil {
		return domain.RatesResult{}, err
	}
	var resp ratesResponse
	if _, err := c.do(ctx, "rates", http.MethodPost, c.base+"/hotels/rates", body, true, &resp); err != nil {
		return domain.RatesResult{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) GetHotelDetail(ctx context.Context, hotelID string) (domain.HotelDetail, error) {
	u := c.base + "/data/hotel?" + url.Values{"hotelId": {hotelID}}.Encode()
	var env struct {
		Data map[string]any `json:"data"`
	}
	if _, err := c.do(ctx, "hotel", http.MethodGet, u, nil, true, &env); err != nil {
		return domain.HotelDetail{}, err
	}
	if env.Data == nil {
		return domain.HotelDetail{}, &domain.GatewayError{Op: "hotel", Status: http.StatusNotFound, Message: "hotel not found", Err: domain.ErrNotFound}
	}
	hd := mapHotelDetail(env.Data)
	if hd.HotelID == "" {
		hd.HotelID = hotelID
	}
	return hd, nil
}

func (c *Client) Prebook(ctx context.Context, req domain.PrebookRequest) (domain.PrebookResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.PrebookResult{}, err
	}
	var env struct {
		Data *domain.PrebookResult `json:"data"`
	}
	raw, err := c.do(ctx, "prebook", http.MethodPost, c.base+"/rates/prebook", body, false, &env)
	if err != nil {
		return domain.PrebookResult{}, err
	}
	if env.Data == nil {
		return domain.PrebookResult{}, &domain.GatewayError{Op: "prebook", Message: "response carried no data", Payload: raw}
	}
	if strings.TrimSpace(env.Data.PrebookID) == "" {
		return domain.PrebookResult{}, &domain.GatewayError{Op: "prebook", Message: "response carried no prebookId", Payload: raw}
	}
	return *env.Data, nil
}

func (c *Client) Book(ctx context.Context, req domain.BookRequest) (domain.BookResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.BookResponse{}, err
	}
	var env struct {
		Data map[string]any `json:"data"`
	}
	raw, err := c.do(ctx, "book", http.MethodPost, c.base+"/rates/book", body, false, &env)
	if err != nil {
		return domain.BookResponse{}, err
	}
	out := domain.BookResponse{Raw: raw}
	if env.Data != nil {
		out.Data = mapBooking(env.Data)
	}
	return out, nil
}

// ---- Internals ----

// do sends one request (or several when retry is set), decodes a 2xx body
// into out and returns the raw body. Every failure is a *domain.GatewayError.
func (c *Client) do(ctx context.Context, op, method, u string, body []byte, retry bool, out any) (json.RawMessage, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, &domain.GatewayError{Op: op, Message: err.Error(), Err: err}
	}

	attempts := 1
	if retry {
		attempts = 4
	}

	var lastErr *domain.GatewayError
	for i := 0; i < attempts; i++ {
		// build a fresh request each attempt
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return nil, &domain.GatewayError{Op: op, Message: err.Error(), Err: err}
		}
		req.Header.Set("X-API-Key", c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "staybook/1.0")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("liteapi", op, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, &domain.GatewayError{Op: op, Message: ctx.Err().Error(), Err: ctx.Err()}
			}
			lastErr = &domain.GatewayError{Op: op, Message: err.Error(), Err: err}
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return nil, lastErr
		}

		b, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		resp.Body.Close()
		observability.ObserveExternal("liteapi", op, resp.StatusCode, time.Since(start))
		if rerr != nil {
			return nil, &domain.GatewayError{Op: op, Status: resp.StatusCode, Message: rerr.Error(), Err: rerr}
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out != nil && len(bytes.TrimSpace(b)) > 0 {
				if err := json.Unmarshal(b, out); err != nil {
					return b, &domain.GatewayError{Op: op, Status: resp.StatusCode, Message: "decode response: " + err.Error(), Payload: rawPayload(b), Err: err}
				}
			}
			return b, nil

		case retry && retryable(resp.StatusCode):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			lastErr = statusError(op, resp.StatusCode, b)
			wait := retryAfter(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < attempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			return nil, lastErr

		default:
			return nil, statusError(op, resp.StatusCode, b)
		}
	}
	return nil, lastErr
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func statusError(op string, status int, body []byte) *domain.GatewayError {
	ge := &domain.GatewayError{
		Op:      op,
		Status:  status,
		Message: errorMessage(body, status),
		Payload: rawPayload(body),
	}
	if status == http.StatusNotFound {
		ge.Err = domain.ErrNotFound
	}
	return ge
}

// errorMessage digs the human message out of {"error":"..."} or
// {"error":{"message":"..."}}; falls back to the status text.
func errorMessage(body []byte, status int) string {
	var m map[string]any
	if json.Unmarshal(body, &m) == nil {
		for _, p := range []string{"error.message", "error", "message", "error.description"} {
			if s := lookupStr(m, p); s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}

// rawPayload keeps JSON bodies verbatim and quotes anything else.
func rawPayload(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return append(json.RawMessage(nil), b...)
	}
	q, _ := json.Marshal(string(b))
	return q
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter from crypto/rand, which is safe for concurrent use.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

var _ domain.Gateway = (*Client)(nil)
