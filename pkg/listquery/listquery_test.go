package listquery

import (
	"net/url"
	"testing"
)

var testDef = Definition{
	Fields: map[string]string{
		"amount":     "amount",
		"status":     "status",
		"note":       "note",
		"date":       "date",
		"isArchived": "is_archived",
		"order":      "display_order",
		"createdAt":  "created_at",
	},
	Text: map[string]bool{
		"status": true,
		"note":   true,
	},
	DefaultSort: "created_at DESC",
}

func TestParseOperatorSuffix(t *testing.T) {
	v := url.Values{"amount[gte]": {"100"}}
	q := Parse(v, testDef)
	if len(q.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(q.Filters))
	}
	f := q.Filters[0]
	if f.Column != "amount" || f.Op != ">=" {
		t.Fatalf("expected amount >=, got %s %s", f.Column, f.Op)
	}
	n, ok := f.Value.(int64)
	if !ok || n != 100 {
		t.Fatalf("expected numeric value 100, got %T %v", f.Value, f.Value)
	}
}

func TestParseEqualityAndIn(t *testing.T) {
	v := url.Values{
		"status[in]": {"pending,completed"},
		"isArchived": {"false"},
	}
	q := Parse(v, testDef)
	if len(q.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(q.Filters))
	}
	// filters are sorted by column name
	if q.Filters[0].Column != "is_archived" || q.Filters[0].Op != "=" {
		t.Fatalf("unexpected first filter: %+v", q.Filters[0])
	}
	if b, ok := q.Filters[0].Value.(bool); !ok || b {
		t.Fatalf("expected boolean false, got %T %v", q.Filters[0].Value, q.Filters[0].Value)
	}
	if q.Filters[1].Op != "IN" {
		t.Fatalf("expected IN filter, got %+v", q.Filters[1])
	}
	list, ok := q.Filters[1].Value.([]any)
	if !ok || len(list) != 2 || list[0] != "pending" || list[1] != "completed" {
		t.Fatalf("unexpected IN values: %v", q.Filters[1].Value)
	}
}

func TestParseIgnoresUnknownAndReservedKeys(t *testing.T) {
	v := url.Values{
		"userId":    {"42"},      // not in the allowlist: ignored
		"nope[gte]": {"1"},       // unknown field with operator: ignored
		"select":    {"amount"},  // reserved
		"sort":      {"-date"},   // reserved
		"page":      {"2"},       // reserved
		"limit":     {"10"},      // reserved
	}
	q := Parse(v, testDef)
	if len(q.Filters) != 0 {
		t.Fatalf("expected no filters, got %+v", q.Filters)
	}
	if len(q.Select) != 1 || q.Select[0] != "amount" {
		t.Fatalf("unexpected select: %v", q.Select)
	}
	if len(q.Sort) != 1 || q.Sort[0] != "date DESC" {
		t.Fatalf("unexpected sort: %v", q.Sort)
	}
	if q.Page != 2 || q.Limit != 10 {
		t.Fatalf("unexpected page/limit: %d/%d", q.Page, q.Limit)
	}
}

func TestParseDefaults(t *testing.T) {
	q := Parse(url.Values{}, testDef)
	if q.Page != 1 || q.Limit != 0 {
		t.Fatalf("expected page 1 limit 0, got %d/%d", q.Page, q.Limit)
	}
	if len(q.Sort) != 1 || q.Sort[0] != "created_at DESC" {
		t.Fatalf("expected default sort, got %v", q.Sort)
	}
}

func TestParseMalformedPaginationFallsBack(t *testing.T) {
	v := url.Values{"page": {"abc"}, "limit": {"-3"}}
	q := Parse(v, testDef)
	if q.Page != 1 || q.Limit != 0 {
		t.Fatalf("malformed values must fall back to defaults, got %d/%d", q.Page, q.Limit)
	}
}

func TestParseKeepsTextFieldValuesAsStrings(t *testing.T) {
	v := url.Values{
		"note":       {"123"},
		"status[in]": {"42,completed"},
		"amount":     {"123"},
	}
	q := Parse(v, testDef)
	if len(q.Filters) != 3 {
		t.Fatalf("expected 3 filters, got %+v", q.Filters)
	}
	// sorted by column: amount, note, status
	if n, ok := q.Filters[0].Value.(int64); !ok || n != 123 {
		t.Fatalf("amount must coerce to int64, got %T %v", q.Filters[0].Value, q.Filters[0].Value)
	}
	if s, ok := q.Filters[1].Value.(string); !ok || s != "123" {
		t.Fatalf("note must stay a string, got %T %v", q.Filters[1].Value, q.Filters[1].Value)
	}
	list, ok := q.Filters[2].Value.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("unexpected IN values: %v", q.Filters[2].Value)
	}
	if s, ok := list[0].(string); !ok || s != "42" {
		t.Fatalf("text IN members must stay strings, got %T %v", list[0], list[0])
	}
}

func TestParseClampsHugePagination(t *testing.T) {
	v := url.Values{
		"page":  {"9223372036854775807"},
		"limit": {"9223372036854775807"},
	}
	q := Parse(v, testDef)
	if q.Page != maxPage || q.Limit != maxLimit {
		t.Fatalf("expected clamped page/limit %d/%d, got %d/%d", maxPage, maxLimit, q.Page, q.Limit)
	}
	if skip := (q.Page - 1) * q.Limit; skip < 0 {
		t.Fatalf("skip must not go negative, got %d", skip)
	}
	p := Paginate(q.Page, q.Limit, 25)
	if p.Next != nil {
		t.Fatalf("page far past the end must have no next, got %+v", p.Next)
	}
	if p.Prev == nil || p.Prev.Page != maxPage-1 {
		t.Fatalf("expected prev page %d, got %+v", maxPage-1, p.Prev)
	}
}

func TestParseSortMultipleFields(t *testing.T) {
	v := url.Values{"sort": {"-date,order"}}
	q := Parse(v, testDef)
	if len(q.Sort) != 2 || q.Sort[0] != "date DESC" || q.Sort[1] != "display_order ASC" {
		t.Fatalf("unexpected sort: %v", q.Sort)
	}
}

func TestPaginateMiddlePage(t *testing.T) {
	p := Paginate(2, 10, 25)
	if p.Next == nil || p.Next.Page != 3 || p.Next.Limit != 10 {
		t.Fatalf("expected next {3,10}, got %+v", p.Next)
	}
	if p.Prev == nil || p.Prev.Page != 1 || p.Prev.Limit != 10 {
		t.Fatalf("expected prev {1,10}, got %+v", p.Prev)
	}
}

func TestPaginateBoundaries(t *testing.T) {
	first := Paginate(1, 10, 25)
	if first.Prev != nil {
		t.Fatalf("first page must have no prev, got %+v", first.Prev)
	}
	if first.Next == nil || first.Next.Page != 2 {
		t.Fatalf("first page must have next, got %+v", first.Next)
	}

	last := Paginate(3, 10, 25)
	if last.Next != nil {
		t.Fatalf("last page must have no next, got %+v", last.Next)
	}
	if last.Prev == nil || last.Prev.Page != 2 {
		t.Fatalf("last page must have prev, got %+v", last.Prev)
	}

	exact := Paginate(1, 25, 25)
	if exact.Next != nil || exact.Prev != nil {
		t.Fatalf("single full page must have no cursors, got %+v", exact)
	}

	disabled := Paginate(1, 0, 25)
	if disabled.Next != nil || disabled.Prev != nil {
		t.Fatalf("disabled pagination must have no cursors, got %+v", disabled)
	}
}

func TestSplitOperator(t *testing.T) {
	cases := []struct {
		key   string
		field string
		op    string
	}{
		{"amount[gt]", "amount", ">"},
		{"amount[gte]", "amount", ">="},
		{"amount[lt]", "amount", "<"},
		{"amount[lte]", "amount", "<="},
		{"status[in]", "status", "IN"},
		{"amount", "amount", "="},
		{"amount[bogus]", "amount[bogus]", "="}, // unrecognized suffix stays literal
	}
	for _, c := range cases {
		field, op := splitOperator(c.key)
		if field != c.field || op != c.op {
			t.Errorf("splitOperator(%q) = %q %q, want %q %q", c.key, field, op, c.field, c.op)
		}
	}
}
