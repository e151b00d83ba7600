package liteapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

/********** alias registries **********/

// The provider names the same hotel field differently in search results
// and in the detail endpoint.
var hotelAliases = map[string][]string{
	"id":          {"id", "hotelId", "hotel_id"},
	"name":        {"name", "hotelName"},
	"address":     {"address", "address.line", "location.address", "formatted_address"},
	"photo":       {"main_photo", "mainPhoto", "thumbnail", "hotelImages.0.url"},
	"description": {"hotelDescription", "description", "markdown_description"},
}

var bookingAliases = map[string][]string{
	"id":           {"bookingId", "booking_id", "id"},
	"status":       {"status", "bookingStatus"},
	"confirmation": {"hotelConfirmationCode", "confirmationCode", "supplierBookingId"},
	"checkin":      {"checkin", "checkIn"},
	"checkout":     {"checkout", "checkOut"},
	"hotel_name":   {"hotel.name", "hotelName"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps; numeric parts
// index into slices.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		switch obj := cur.(type) {
		case map[string]any:
			v, ok := obj[part]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(obj) {
				return nil
			}
			cur = obj[i]
		default:
			return nil
		}
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {name/facility}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if n := firstAlias(t, map[string][]string{"n": {"name", "facility", "label"}}, "n"); n != "" {
						out = append(out, n)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// composeAddress joins address components when no single field exists.
func composeAddress(p map[string]any) string {
	parts := []string{
		lookupStr(p, "address.addressLine1"),
		lookupStr(p, "address.street"),
		lookupStr(p, "city"),
		lookupStr(p, "address.city"),
		lookupStr(p, "zip"),
		lookupStr(p, "country"),
	}
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if t := strings.TrimSpace(part); t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

/********** hotel mapper **********/

func mapHotelDetail(p map[string]any) domain.HotelDetail {
	hd := domain.HotelDetail{
		HotelID:     firstAlias(p, hotelAliases, "id"),
		Name:        firstAlias(p, hotelAliases, "name"),
		Address:     firstAlias(p, hotelAliases, "address"),
		MainPhoto:   firstAlias(p, hotelAliases, "photo"),
		Rating:      getFloatFlexible(p, "rating", "reviewScore", "starRating", "stars"),
		Facilities:  firstSliceStrings(p, "hotelFacilities", "facilities"),
		Tags:        firstSliceStrings(p, "tags"),
		Description: firstAlias(p, hotelAliases, "description"),
	}
	if hd.HotelID == "" {
		hd.HotelID = idString(lookupAny(p, "id"))
	}
	if hd.Address == "" {
		hd.Address = composeAddress(p)
	}
	if raw, ok := lookupAny(p, "hotelImages").([]any); ok {
		for _, it := range raw {
			img, ok := it.(map[string]any)
			if !ok {
				continue
			}
			u := lookupStr(img, "url")
			if u == "" {
				u = lookupStr(img, "urlHd")
			}
			if u == "" {
				continue
			}
			hd.Images = append(hd.Images, domain.Image{URL: u, Caption: lookupStr(img, "caption")})
		}
	}
	return hd
}

/********** booking mapper **********/

func mapBooking(d map[string]any) *domain.BookingResult {
	br := &domain.BookingResult{
		BookingID:             firstAlias(d, bookingAliases, "id"),
		Status:                firstAlias(d, bookingAliases, "status"),
		HotelConfirmationCode: firstAlias(d, bookingAliases, "confirmation"),
		CheckIn:               firstAlias(d, bookingAliases, "checkin"),
		CheckOut:              firstAlias(d, bookingAliases, "checkout"),
		HotelName:             firstAlias(d, bookingAliases, "hotel_name"),
	}
	if br.BookingID == "" {
		br.BookingID = idString(lookupAny(d, "bookingId"))
	}
	if h, ok := lookupAny(d, "holder").(map[string]any); ok {
		br.Holder = &domain.Holder{
			FirstName: lookupStr(h, "firstName"),
			LastName:  lookupStr(h, "lastName"),
			Email:     lookupStr(h, "email"),
			Phone:     lookupStr(h, "phone"),
		}
	}
	if amt := getFloatFlexible(d, "price", "totalAmount", "price.amount"); amt != nil {
		br.Price = &domain.Money{Amount: *amt, Currency: lookupStr(d, "currency")}
	}

	raw, err := json.Marshal(d)
	if err != nil {
		log.Error().Err(err).Str("context", "mapBooking").Msg("failed to marshal booking to JSON")
	}
	br.Raw = raw
	return br
}
