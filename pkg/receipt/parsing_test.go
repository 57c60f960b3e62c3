package receipt

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"40.55", 4055},
		{"40,55", 4055},
		{"1,234.56", 123456},
		{"1.234,56", 123456},
		{"1.234", 123400},     // grouping dot
		{"1,234", 123400},     // grouping comma
		{"1.234.567", 123456700},
		{"40", 4000},
		{"$40.55", 4055},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.raw, "USD")
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", c.raw, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestFindAmountCandidates(t *testing.T) {
	text := "Groceries 2x 3.99\n$12.50\nTOTAL 45.80\nEUR 7,25"
	cands := FindAmountCandidates(text)

	byRaw := map[string]Candidate{}
	for _, c := range cands {
		byRaw[c.Raw] = c
	}
	if _, ok := byRaw["3.99"]; ok {
		t.Error("bare figure on a non-total line must be skipped")
	}
	if c, ok := byRaw["12.50"]; !ok || c.TotalLine {
		t.Errorf("currency-marked figure expected off the total line, got %+v", c)
	}
	if c, ok := byRaw["45.80"]; !ok || !c.TotalLine {
		t.Errorf("total-line figure expected, got %+v", c)
	}
	if _, ok := byRaw["7,25"]; !ok {
		t.Error("EUR-prefixed figure expected")
	}
}

func TestBestAmountPrefersTotalLine(t *testing.T) {
	text := "$99.99\nTotal 45.80"
	units, raw, err := BestAmount(text, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != "45.80" || units != 4580 {
		t.Errorf("expected the total-line figure to win, got %q (%d)", raw, units)
	}
}

func TestBestAmountFallsBackToLargest(t *testing.T) {
	text := "$12.50\n$99.99"
	units, raw, err := BestAmount(text, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != "99.99" || units != 9999 {
		t.Errorf("expected the largest figure, got %q (%d)", raw, units)
	}
}

func TestBestAmountNoMatch(t *testing.T) {
	_, _, err := BestAmount("no numbers here", "USD")
	if !errors.Is(err, ErrNoAmount) {
		t.Fatalf("expected ErrNoAmount, got %v", err)
	}
}
