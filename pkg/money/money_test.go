package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToSmallestUnit(t *testing.T) {
	cases := []struct {
		in       string
		currency string
		want     int64
	}{
		{"40.55", "USD", 4055},
		{"40.5", "USD", 4050},
		{"40", "USD", 4000},
		{"0", "EUR", 0},
		{"0.01", "GBP", 1},
		{"1234.56", "EUR", 123456},
		{"40.555", "USD", 4056}, // rounds half away from zero
		{"12.34", "XXX", 1234},  // unknown currency falls back to 2 decimals
	}
	for _, c := range cases {
		got := ToSmallestUnit(decimal.RequireFromString(c.in), c.currency)
		if got != c.want {
			t.Errorf("ToSmallestUnit(%s, %s) = %d, want %d", c.in, c.currency, got, c.want)
		}
	}
}

func TestFromSmallestUnit(t *testing.T) {
	got := FromSmallestUnit(4055, "USD")
	if !got.Equal(decimal.RequireFromString("40.55")) {
		t.Errorf("FromSmallestUnit(4055, USD) = %s, want 40.55", got)
	}
	if s := FromSmallestUnit(4050, "USD").StringFixed(2); s != "40.50" {
		t.Errorf("FromSmallestUnit(4050, USD) = %s, want 40.50", s)
	}
}

func TestRoundTrip(t *testing.T) {
	amounts := []string{"0", "0.01", "0.99", "1", "40.5", "40.55", "999999.99", "123.40"}
	for _, code := range Codes() {
		for _, a := range amounts {
			d := decimal.RequireFromString(a)
			back := FromSmallestUnit(ToSmallestUnit(d, code), code)
			if !back.Equal(d) {
				t.Errorf("round trip %s %s: got %s", a, code, back)
			}
		}
	}
}

func TestSupported(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "GBP"} {
		if !Supported(code) {
			t.Errorf("expected %s to be supported", code)
		}
	}
	if Supported("JPY") {
		t.Error("JPY should not be supported")
	}
	if Decimals("JPY") != 2 {
		t.Error("unknown currencies must default to 2 decimals")
	}
}
