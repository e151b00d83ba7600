package domain

import (
	"strings"
	"time"
)

const (
	DefaultCurrency    = "USD"
	DefaultNationality = "US"
	dateLayout         = "2006-01-02"
)

// SearchCriteria describes a rate search. Exactly one of PlaceID, HotelIDs
// or Query selects the destination.
type SearchCriteria struct {
	CheckIn          string   `json:"checkin"`
	CheckOut         string   `json:"checkout"`
	Adults           int      `json:"adults"`
	ChildAges        []int    `json:"children,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	GuestNationality string   `json:"guestNationality,omitempty"`
	PlaceID          string   `json:"placeId,omitempty"`
	HotelIDs         []string `json:"hotelIds,omitempty"`
	Query            string   `json:"aiSearch,omitempty"`
}

// Normalize trims inputs and fills provider defaults.
func (c SearchCriteria) Normalize() SearchCriteria {
	c.CheckIn = strings.TrimSpace(c.CheckIn)
	c.CheckOut = strings.TrimSpace(c.CheckOut)
	c.PlaceID = strings.TrimSpace(c.PlaceID)
	c.Query = strings.TrimSpace(c.Query)
	ids := make([]string, 0, len(c.HotelIDs))
	for _, id := range c.HotelIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	c.HotelIDs = ids
	if c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency)); c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.GuestNationality = strings.ToUpper(strings.TrimSpace(c.GuestNationality)); c.GuestNationality == "" {
		c.GuestNationality = DefaultNationality
	}
	return c
}

// Validate reports the first problem found; call it on a normalized value.
func (c SearchCriteria) Validate() error {
	selectors := 0
	if c.PlaceID != "" {
		selectors++
	}
	if len(c.HotelIDs) > 0 {
		selectors++
	}
	if c.Query != "" {
		selectors++
	}
	if selectors != 1 {
		return &ValidationError{Field: "destination", Reason: "exactly one of placeId, hotelIds or aiSearch is required"}
	}

	in, err := time.Parse(dateLayout, c.CheckIn)
	if err != nil {
		return &ValidationError{Field: "checkin", Reason: "must be in YYYY-MM-DD format"}
	}
	out, err := time.Parse(dateLayout, c.CheckOut)
	if err != nil {
		return &ValidationError{Field: "checkout", Reason: "must be in YYYY-MM-DD format"}
	}
	if !out.After(in) {
		return &ValidationError{Field: "checkout", Reason: "must be after checkin"}
	}
	if c.Adults < 1 {
		return &ValidationError{Field: "adults", Reason: "must be a positive integer"}
	}
	for _, age := range c.ChildAges {
		if age < 0 || age > 17 {
			return &ValidationError{Field: "children", Reason: "ages must be between 0 and 17"}
		}
	}
	return nil
}

// Nights is the stay length; zero when the dates do not parse.
func (c SearchCriteria) Nights() int {
	in, err1 := time.Parse(dateLayout, c.CheckIn)
	out, err2 := time.Parse(dateLayout, c.CheckOut)
	if err1 != nil || err2 != nil || !out.After(in) {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}
