package app

import (
	"context"
	"errors"
	"net/http"

	"staybook/internal/domain"
)

// WarmService pre-loads static hotel content into the cache so detail pages
// do not wait on the provider.
type WarmService struct {
	gw    domain.Gateway
	cache domain.Cache
	ttl   int
}

func NewWarmService(gw domain.Gateway, cache domain.Cache, ttlSec int) *WarmService {
	return &WarmService{gw: gw, cache: cache, ttl: ttlSec}
}

func (s *WarmService) WarmHotel(ctx context.Context, id string) error {
	hd, err := s.gw.GetHotelDetail(ctx, id)
	if err != nil {
		var ge *domain.GatewayError
		if errors.As(err, &ge) {
			switch ge.Status {
			case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
				// gone or not ours: drop any stale snapshot and move on
				if s.cache != nil {
					_ = s.cache.Del(ctx, hotelKey(id))
				}
				return nil
			}
		}
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, hotelKey(id), hd, s.ttl)
}
