package app_test

import (
	"reflect"
	"sort"
	"testing"

	"staybook/internal/app"
	"staybook/internal/domain"
)

func TestGroupRooms(t *testing.T) {
	offers := []domain.RoomTypeOffer{
		{OfferID: "o1", MappedRoomID: "10", RoomName: "Double", Description: "first",
			Rates: []domain.Rate{{RateID: "a"}, {RateID: "b"}}},
		{OfferID: "o2", RoomName: "Mystery", Rates: []domain.Rate{{RateID: "c"}}},
		{OfferID: "o3", MappedRoomID: "10", RoomName: "Double (alt)", Description: "second",
			Rates: []domain.Rate{{RateID: "d"}}},
		{OfferID: "o4", RoomName: "Other unmapped", Rates: []domain.Rate{{RateID: "e"}}},
	}

	got := app.GroupRooms(offers)
	if len(got) != 2 {
		t.Fatalf("want 2 groups, got %d: %+v", len(got), got)
	}

	g0, g1 := got[0], got[1]
	if g0.Key != "10" || g0.Name != "Double" || g0.Description != "first" {
		t.Fatalf("first offer should name the group: %+v", g0)
	}
	if g1.Key != domain.UnmappedRoomKey || g1.Name != "Mystery" {
		t.Fatalf("unexpected unmapped group: %+v", g1)
	}

	wantG0 := []struct{ offer, rate string }{{"o1", "a"}, {"o1", "b"}, {"o3", "d"}}
	if len(g0.Rates) != len(wantG0) {
		t.Fatalf("g0 rates = %+v", g0.Rates)
	}
	for i, w := range wantG0 {
		if g0.Rates[i].OfferID != w.offer || g0.Rates[i].RateID != w.rate {
			t.Fatalf("g0 rate %d = %+v, want %v", i, g0.Rates[i], w)
		}
	}
	if len(g1.Rates) != 2 || g1.Rates[1].OfferID != "o4" {
		t.Fatalf("g1 rates = %+v", g1.Rates)
	}

	total := 0
	for _, g := range got {
		total += len(g.Rates)
	}
	if total != 5 {
		t.Fatalf("every rate must land in exactly one group, got %d", total)
	}
}

func TestGroupRooms_Empty(t *testing.T) {
	if got := app.GroupRooms(nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %+v", got)
	}
}

func TestGroupRooms_MembershipIgnoresOrder(t *testing.T) {
	a := domain.RoomTypeOffer{OfferID: "oa", MappedRoomID: "7", RoomName: "King", Rates: []domain.Rate{{RateID: "a1"}, {RateID: "a2"}}}
	b := domain.RoomTypeOffer{OfferID: "ob", MappedRoomID: "7", RoomName: "King Deluxe", Rates: []domain.Rate{{RateID: "b1"}}}
	u := domain.RoomTypeOffer{OfferID: "ou", RoomName: "Room", Rates: []domain.Rate{{RateID: "u1"}}}

	members := func(groups []domain.RoomGroup) map[string][]string {
		m := map[string][]string{}
		for _, g := range groups {
			for _, r := range g.Rates {
				m[g.Key] = append(m[g.Key], r.OfferID+"/"+r.RateID)
			}
			sort.Strings(m[g.Key])
		}
		return m
	}
	names := func(groups []domain.RoomGroup) map[string]string {
		m := map[string]string{}
		for _, g := range groups {
			m[g.Key] = g.Name
		}
		return m
	}

	fwd := app.GroupRooms([]domain.RoomTypeOffer{a, u, b})
	rev := app.GroupRooms([]domain.RoomTypeOffer{b, u, a})

	if !reflect.DeepEqual(members(fwd), members(rev)) {
		t.Fatalf("membership depends on order:\n%v\n%v", members(fwd), members(rev))
	}
	if got := members(fwd)["7"]; !reflect.DeepEqual(got, []string{"oa/a1", "oa/a2", "ob/b1"}) {
		t.Fatalf("key 7 members = %v", got)
	}
	if n := names(fwd)["7"]; n != "King" {
		t.Fatalf("forward name = %q, want first offer's", n)
	}
	if n := names(rev)["7"]; n != "King Deluxe" {
		t.Fatalf("reverse name = %q, want first offer's", n)
	}
	if fwd[0].Key != "7" || rev[0].Key != "7" || fwd[1].Key != domain.UnmappedRoomKey {
		t.Fatalf("group order should follow first appearance: %v / %v", fwd, rev)
	}
}
