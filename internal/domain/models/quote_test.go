package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestQuoteDisplay(t *testing.T) {
	cases := []struct {
		q    Quote
		want string
	}{
		{PendingQuote("AAPL"), "Loading..."},
		{UnavailableQuote("AAPL", time.Now()), "N/A"},
		{Quote{Symbol: "AAPL", Price: 187.456, State: StateAvailable}, "$187.46"},
		{Quote{Symbol: "AAPL", Price: 10, State: StateStale}, "$10.00"},
		{Quote{Symbol: "CL=F", Price: -37.634, State: StateAvailable}, "-$37.63"},
	}
	for _, tc := range cases {
		if got := tc.q.Display(); got != tc.want {
			t.Fatalf("Display(%+v) = %q, want %q", tc.q, got, tc.want)
		}
	}
}

func TestQuoteJSONOmitsPriceWhenUnavailable(t *testing.T) {
	b, err := json.Marshal(UnavailableQuote("TSLA", time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"price":null`) || !strings.Contains(s, `"state":"unavailable"`) || !strings.Contains(s, `"text":"N/A"`) {
		t.Fatalf("unexpected json %s", s)
	}
}

func TestFieldDisplay(t *testing.T) {
	if got := (Field{State: StateLoading}).Display(); got != "Loading..." {
		t.Fatalf("got %q", got)
	}
	if got := (Field{State: StateUnavailable}).Display(); got != "N/A" {
		t.Fatalf("got %q", got)
	}
	if got := (Field{Value: "4.2%", State: StateAvailable}).Display(); got != "4.2%" {
		t.Fatalf("got %q", got)
	}
}
