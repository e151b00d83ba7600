package app

import "staybook/internal/domain"

// Aggregate joins every rate group with the first hotel detail sharing its
// hotelId and computes the cheapest displayable price. It returns exactly one
// bundle per input group, in input order, and never fails on a missing join.
func Aggregate(groups []domain.RateGroup, details []domain.HotelDetail) []domain.HotelBundle {
	index := make(map[string]int, len(details))
	for i, d := range details {
		if _, seen := index[d.HotelID]; !seen {
			index[d.HotelID] = i // first match wins
		}
	}

	out := make([]domain.HotelBundle, 0, len(groups))
	for _, g := range groups {
		b := domain.HotelBundle{RateGroup: g}
		if i, ok := index[g.HotelID]; ok {
			d := details[i]
			b.Detail = &d
		}
		b.MinPrice, b.Currency = minPrice(g.Offers)
		out = append(out, b)
	}
	return out
}

// minPrice scans every priced rate; rates without a price are left out.
func minPrice(offers []domain.RoomTypeOffer) (*float64, string) {
	var (
		lowest   float64
		found    bool
		currency string
	)
	for _, o := range offers {
		for _, r := range o.Rates {
			if r.Price == nil {
				continue
			}
			if !found {
				lowest, currency, found = r.Price.Amount, r.Price.Currency, true
				continue
			}
			if r.Price.Amount < lowest {
				lowest = r.Price.Amount
			}
		}
	}
	if !found {
		return nil, ""
	}
	return &lowest, currency
}
