package domain

// Money is an amount in a single currency as quoted by the provider.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type CancelDeadline struct {
	CancelTime string  `json:"cancelTime,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	Currency   string  `json:"currency,omitempty"`
	Type       string  `json:"type,omitempty"`
}

type CancellationPolicy struct {
	RefundableTag string           `json:"refundableTag,omitempty"` // RFN | NRFN
	Deadlines     []CancelDeadline `json:"deadlines,omitempty"`
}

// Rate is one bookable price point inside a room-type offer.
// Price is nil when the provider omitted the price list; such a rate is
// still shown but never takes part in price computation.
type Rate struct {
	RateID             string              `json:"rateId,omitempty"`
	Name               string              `json:"name,omitempty"`
	BoardName          string              `json:"boardName,omitempty"`
	Price              *Money              `json:"price,omitempty"`
	SuggestedPrice     *Money              `json:"suggestedPrice,omitempty"` // struck-through reference price
	Refundable         bool                `json:"refundable"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty"`
	Description        string              `json:"description,omitempty"`
}

// RoomTypeOffer groups the rates of one provider offer. OfferID is only
// valid for the search that produced it.
type RoomTypeOffer struct {
	OfferID      string `json:"offerId"`
	RoomName     string `json:"roomName,omitempty"`
	MappedRoomID string `json:"mappedRoomId,omitempty"` // "" = not mapped
	Description  string `json:"description,omitempty"`
	Rates        []Rate `json:"rates"`
}

type RateGroup struct {
	HotelID string          `json:"hotelId"`
	Offers  []RoomTypeOffer `json:"roomTypes"`
}

type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type HotelDetail struct {
	HotelID     string   `json:"hotelId"`
	Name        string   `json:"name,omitempty"`
	Address     string   `json:"address,omitempty"`
	MainPhoto   string   `json:"mainPhoto,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Images      []Image  `json:"images,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// RatesResult is the raw pair returned by a rate search.
type RatesResult struct {
	RateGroups []RateGroup   `json:"rateGroups"`
	Hotels     []HotelDetail `json:"hotels"`
}

// HotelBundle is a rate group joined with its hotel detail (left join).
// MinPrice is nil when the group holds no priced rate; Currency is "" then.
type HotelBundle struct {
	RateGroup
	Detail   *HotelDetail `json:"hotel,omitempty"`
	MinPrice *float64     `json:"minPrice,omitempty"`
	Currency string       `json:"currency,omitempty"`
}

// UnmappedRoomKey groups offers that carry no mapped room id.
const UnmappedRoomKey = "unmapped"

type OfferRate struct {
	OfferID string `json:"offerId"`
	Rate
}

type RoomGroup struct {
	Key         string      `json:"key"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Rates       []OfferRate `json:"rates"`
}

type Place struct {
	PlaceID          string `json:"placeId"`
	DisplayName      string `json:"displayName"`
	FormattedAddress string `json:"formattedAddress,omitempty"`
}
