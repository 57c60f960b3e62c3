package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"finbook/pkg/money"
)

// Candidate is a raw amount figure pulled out of OCR text.
type Candidate struct {
	Raw       string
	TotalLine bool // matched on a line carrying a total-style label
}

var (
	currencyAmountRE = regexp.MustCompile(`(?i)(?:[$€£]|usd|eur|gbp)\s*([0-9]{1,3}(?:[.,][0-9]{3})*(?:[.,][0-9]{1,2})?|[0-9]+(?:[.,][0-9]{1,2})?)`)
	bareAmountRE     = regexp.MustCompile(`[0-9]{1,3}(?:[.,][0-9]{3})*[.,][0-9]{2}\b|[0-9]+[.,][0-9]{2}\b`)
	totalLabelRE     = regexp.MustCompile(`(?i)\b(total|amount due|balance due|paid)\b`)
)

// FindAmountCandidates scans OCR text line by line: currency-marked figures
// count anywhere, bare decimal figures only on lines with a total-style
// label, since receipts are full of quantities and item codes.
func FindAmountCandidates(text string) []Candidate {
	var out []Candidate
	seen := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		isTotal := totalLabelRE.MatchString(line)
		for _, m := range currencyAmountRE.FindAllStringSubmatch(line, -1) {
			raw := m[1]
			if seen[raw] {
				continue
			}
			seen[raw] = true
			out = append(out, Candidate{Raw: raw, TotalLine: isTotal})
		}
		if !isTotal {
			continue
		}
		for _, raw := range bareAmountRE.FindAllString(line, -1) {
			if seen[raw] {
				continue
			}
			seen[raw] = true
			out = append(out, Candidate{Raw: raw, TotalLine: true})
		}
	}
	return out
}

// ParseAmount converts a matched figure like "1.234,56", "1,234.56" or
// "40,55" into smallest currency units. The position of the last separator
// decides which one is the decimal point.
func ParseAmount(raw, currency string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "$€£ ")
	if s == "" {
		return 0, ErrNoAmount
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56: comma is the decimal separator
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 == 2 {
			// 40,55
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234 or 1,234,567: grouping only
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			// 1.234 or 1.234.567: grouping only
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		d = d.Neg()
	}
	return money.ToSmallestUnit(d, currency), nil
}

// BestAmount picks the most plausible amount from OCR text: a figure from a
// total-labelled line wins over any other, then the largest figure wins.
func BestAmount(text, currency string) (int64, string, error) {
	var (
		bestUnits int64
		bestRaw   string
		bestTotal bool
	)
	for _, c := range FindAmountCandidates(text) {
		units, err := ParseAmount(c.Raw, currency)
		if err != nil || units <= 0 {
			continue
		}
		better := false
		switch {
		case bestRaw == "":
			better = true
		case c.TotalLine && !bestTotal:
			better = true
		case c.TotalLine == bestTotal && units > bestUnits:
			better = true
		}
		if better {
			bestUnits, bestRaw, bestTotal = units, c.Raw, c.TotalLine
		}
	}
	if bestRaw == "" {
		return 0, "", ErrNoAmount
	}
	return bestUnits, bestRaw, nil
}
