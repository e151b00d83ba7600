package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"staybook/internal/domain"
)

type SearchService struct {
	gw       domain.Gateway
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewSearchService(gw domain.Gateway, c domain.Cache, ttl time.Duration) *SearchService {
	return &SearchService{gw: gw, cache: c, cacheTTL: ttl}
}

// HotelRooms is one hotel's static detail plus its rates grouped by room.
type HotelRooms struct {
	Hotel domain.HotelDetail `json:"hotel"`
	Rooms []domain.RoomGroup `json:"rooms"`
}

func placesKey(text string) string { return "places:" + strings.ToLower(text) }
func hotelKey(id string) string    { return "hotel:" + id }

func (s *SearchService) Places(ctx context.Context, text string) ([]domain.Place, error) {
	text = strings.TrimSpace(text)
	if len(text) < 3 {
		return nil, &domain.ValidationError{Field: "q", Reason: "must be at least 3 characters"}
	}
	key := placesKey(text)
	var out []domain.Place
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	out, err := s.gw.SearchPlaces(ctx, text)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// SearchHotels validates the criteria, asks the provider for rates and
// hotel data and aggregates them. Offers are bound to the search that
// produced them, so results are never cached.
func (s *SearchService) SearchHotels(ctx context.Context, c domain.SearchCriteria) ([]domain.HotelBundle, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	res, err := s.gw.SearchRates(ctx, c)
	if err != nil {
		return nil, err
	}
	return Aggregate(res.RateGroups, res.Hotels), nil
}

func (s *SearchService) GetHotel(ctx context.Context, id string) (domain.HotelDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.HotelDetail{}, &domain.ValidationError{Field: "hotelId", Reason: "is required"}
	}
	key := hotelKey(id)
	var hd domain.HotelDetail
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &hd); ok {
			return hd, nil
		}
	}
	hd, err := s.gw.GetHotelDetail(ctx, id)
	if err != nil {
		return domain.HotelDetail{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, hd, int(s.cacheTTL.Seconds()))
	}
	return hd, nil
}

// HotelRooms fetches detail and rates for one hotel in parallel and groups
// the rates by room. The destination of c is replaced by the hotel id.
func (s *SearchService) HotelRooms(ctx context.Context, id string, c domain.SearchCriteria) (HotelRooms, error) {
	c.PlaceID, c.Query, c.HotelIDs = "", "", []string{id}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return HotelRooms{}, err
	}

	var (
		detail domain.HotelDetail
		rates  domain.RatesResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = s.GetHotel(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.gw.SearchRates(gctx, c)
		return err
	})
	if err := g.Wait(); err != nil {
		return HotelRooms{}, fmt.Errorf("hotel %s rooms: %w", id, err)
	}

	out := HotelRooms{Hotel: detail, Rooms: []domain.RoomGroup{}}
	for _, rg := range rates.RateGroups {
		if rg.HotelID == id {
			out.Rooms = GroupRooms(rg.Offers)
			break
		}
	}
	return out, nil
}
