package app_test

import (
	"net/url"
	"reflect"
	"testing"

	"staybook/internal/app"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		in          []app.Candidate
		want        string
		wantMissing []string
	}{
		{"first wins", []app.Candidate{{Source: "a", Value: "1"}, {Source: "b", Value: "2"}}, "1", nil},
		{"falls through", []app.Candidate{{Source: "a", Value: ""}, {Source: "b", Value: " "}, {Source: "c", Value: "3"}}, "3", []string{"a", "b"}},
		{"none", []app.Candidate{{Source: "a", Value: ""}, {Source: "b", Value: ""}}, "", []string{"a", "b"}},
		{"no candidates", nil, "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, missing := app.Resolve(tc.in...)
			if got != tc.want || !reflect.DeepEqual(missing, tc.wantMissing) {
				t.Fatalf("Resolve = %q %v, want %q %v", got, missing, tc.want, tc.wantMissing)
			}
		})
	}
}

func TestReturnParamsFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("prebookId", "pb1")
	q.Set("payment_intent", "pi_1")
	q.Set("paymentId", "pay_1")
	q.Set("other", "x")

	rp := app.ReturnParamsFromQuery(q)
	if rp.PrebookID != "pb1" || rp.TransactionID != "" {
		t.Fatalf("unexpected params: %+v", rp)
	}
	if len(rp.Alternates) != 2 || rp.Alternates["payment_intent"] != "pi_1" || rp.Alternates["paymentId"] != "pay_1" {
		t.Fatalf("unexpected alternates: %+v", rp.Alternates)
	}
}
