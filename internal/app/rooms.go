package app

import "staybook/internal/domain"

// GroupRooms merges offers by mapped room id (or the "unmapped" key) and
// tags each rate with the offer it came from, since prebook needs the offer.
// Groups come out in order of first appearance; name and description are
// taken from the first offer seen for a key.
func GroupRooms(offers []domain.RoomTypeOffer) []domain.RoomGroup {
	pos := make(map[string]int)
	var out []domain.RoomGroup

	for _, o := range offers {
		key := o.MappedRoomID
		if key == "" {
			key = domain.UnmappedRoomKey
		}
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, domain.RoomGroup{
				Key:         key,
				Name:        o.RoomName,
				Description: o.Description,
				Rates:       []domain.OfferRate{},
			})
		}
		for _, r := range o.Rates {
			out[i].Rates = append(out[i].Rates, domain.OfferRate{OfferID: o.OfferID, Rate: r})
		}
	}
	return out
}
