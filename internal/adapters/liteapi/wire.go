package liteapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"staybook/internal/domain"
)

type occupancy struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children"`
}

type ratesRequest struct {
	Checkin          string      `json:"checkin"`
	Checkout         string      `json:"checkout"`
	Currency         string      `json:"currency"`
	GuestNationality string      `json:"guestNationality"`
	Occupancies      []occupancy `json:"occupancies"`
	PlaceID          string      `json:"placeId,omitempty"`
	HotelIDs         []string    `json:"hotelIds,omitempty"`
	AISearch         string      `json:"aiSearch,omitempty"`
	RoomMapping      bool        `json:"roomMapping"`
	IncludeHotelData bool        `json:"includeHotelData"`
}

// newRatesRequest builds the single-room occupancy the provider expects.
func newRatesRequest(sc domain.SearchCriteria) ratesRequest {
	children := sc.ChildAges
	if children == nil {
		children = []int{}
	}
	return ratesRequest{
		Checkin:          sc.CheckIn,
		Checkout:         sc.CheckOut,
		Currency:         sc.Currency,
		GuestNationality: sc.GuestNationality,
		Occupancies:      []occupancy{{Adults: sc.Adults, Children: children}},
		PlaceID:          sc.PlaceID,
		HotelIDs:         sc.HotelIDs,
		AISearch:         sc.Query,
		RoomMapping:      true,
		IncludeHotelData: true,
	}
}

// flexString accepts a JSON string or number; the provider sends room ids
// both ways.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n.String() == "0" {
		*f = ""
		return nil
	}
	*f = flexString(n.String())
	return nil
}

type wireMoney struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type wireRate struct {
	RateID       string     `json:"rateId"`
	Name         string     `json:"name"`
	MappedRoomID flexString `json:"mappedRoomId"`
	BoardName    string     `json:"boardName"`
	Remarks      string     `json:"remarks"`
	RetailRate   struct {
		Total                 []wireMoney `json:"total"`
		SuggestedSellingPrice []wireMoney `json:"suggestedSellingPrice"`
	} `json:"retailRate"`
	CancellationPolicies *struct {
		RefundableTag string `json:"refundableTag"`
		Policies      []struct {
			CancelTime string  `json:"cancelTime"`
			Amount     float64 `json:"amount"`
			Currency   string  `json:"currency"`
			Type       string  `json:"type"`
		} `json:"cancelPolicyInfos"`
	} `json:"cancellationPolicies"`
}

type wireRoomType struct {
	OfferID string     `json:"offerId"`
	Rates   []wireRate `json:"rates"`
}

type wireRateGroup struct {
	HotelID   string         `json:"hotelId"`
	RoomTypes []wireRoomType `json:"roomTypes"`
}

type ratesResponse struct {
	Data   []wireRateGroup  `json:"data"`
	Hotels []map[string]any `json:"hotels"`
}

const refundableTag = "RFN"

func (r ratesResponse) toDomain() domain.RatesResult {
	out := domain.RatesResult{
		RateGroups: make([]domain.RateGroup, 0, len(r.Data)),
		Hotels:     make([]domain.HotelDetail, 0, len(r.Hotels)),
	}
	for _, g := range r.Data {
		rg := domain.RateGroup{HotelID: g.HotelID, Offers: make([]domain.RoomTypeOffer, 0, len(g.RoomTypes))}
		for _, rt := range g.RoomTypes {
			rg.Offers = append(rg.Offers, rt.toDomain())
		}
		out.RateGroups = append(out.RateGroups, rg)
	}
	for _, h := range r.Hotels {
		out.Hotels = append(out.Hotels, mapHotelDetail(h))
	}
	return out
}

// The offer takes its room name and mapping from its first rate.
func (rt wireRoomType) toDomain() domain.RoomTypeOffer {
	o := domain.RoomTypeOffer{OfferID: rt.OfferID, Rates: make([]domain.Rate, 0, len(rt.Rates))}
	for i, wr := range rt.Rates {
		if i == 0 {
			o.RoomName = wr.Name
			o.MappedRoomID = string(wr.MappedRoomID)
			o.Description = wr.Remarks
		}
		o.Rates = append(o.Rates, wr.toDomain())
	}
	return o
}

func (wr wireRate) toDomain() domain.Rate {
	r := domain.Rate{
		RateID:      wr.RateID,
		Name:        wr.Name,
		BoardName:   wr.BoardName,
		Description: wr.Remarks,
	}
	// only the first entry of each price list counts
	if len(wr.RetailRate.Total) > 0 {
		m := wr.RetailRate.Total[0]
		r.Price = &domain.Money{Amount: m.Amount, Currency: m.Currency}
	}
	if len(wr.RetailRate.SuggestedSellingPrice) > 0 {
		m := wr.RetailRate.SuggestedSellingPrice[0]
		r.SuggestedPrice = &domain.Money{Amount: m.Amount, Currency: m.Currency}
	}
	if cp := wr.CancellationPolicies; cp != nil {
		r.Refundable = cp.RefundableTag == refundableTag
		pol := &domain.CancellationPolicy{RefundableTag: cp.RefundableTag}
		for _, p := range cp.Policies {
			pol.Deadlines = append(pol.Deadlines, domain.CancelDeadline{
				CancelTime: p.CancelTime, Amount: p.Amount, Currency: p.Currency, Type: p.Type,
			})
		}
		r.CancellationPolicy = pol
	}
	return r
}

// idString renders ids that may arrive as numbers.
func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}
