// Package listquery translates raw list-endpoint query parameters into a
// typed filter/sort/projection/pagination plan and runs that plan against a
// gorm query, producing the uniform result envelope returned by every list
// endpoint.
//
// Filter parameters use bracket suffixes for comparison operators, e.g.
// amount[gte]=100 or status[in]=pending,completed. The reserved parameters
// select, sort, page and limit shape the result instead of filtering it.
package listquery

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// reserved parameter names control presentation, never filtering.
var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// operators maps recognized bracket suffixes to SQL comparison operators.
var operators = map[string]string{
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
	"in":  "IN",
}

// Pagination bounds. Values beyond these clamp rather than fail, which
// keeps the skip computation (page-1)*limit safely inside the int range.
const (
	maxPage  = 1_000_000
	maxLimit = 1_000
)

// Definition describes how a resource exposes itself to list queries.
// Fields maps external parameter names to database columns; parameters not
// listed are ignored, so the owner scoping applied by the caller can never
// be overridden or widened through request parameters. Text marks fields
// backed by character columns, whose operands must stay strings.
type Definition struct {
	Fields      map[string]string
	Text        map[string]bool
	DefaultSort string
}

// Filter is a single typed predicate parsed from a query parameter.
type Filter struct {
	Column string
	Op     string
	Value  any
}

// Query is the parsed plan for one list request.
type Query struct {
	Filters []Filter
	Select  []string // external field names to project
	Sort    []string // SQL order expressions
	Page    int
	Limit   int // 0 disables pagination

	def Definition
}

// Parse builds a Query from raw URL parameters. Malformed page or limit
// values fall back to their defaults (page 1, pagination disabled) instead
// of failing.
func Parse(values url.Values, def Definition) Query {
	q := Query{Page: 1, def: def}

	for key, vals := range values {
		if len(vals) == 0 || reserved[key] {
			continue
		}
		field, op := splitOperator(key)
		col, ok := def.Fields[field]
		if !ok {
			continue
		}
		raw := vals[0]
		if op == "IN" {
			parts := strings.Split(raw, ",")
			list := make([]any, 0, len(parts))
			for _, p := range parts {
				list = append(list, coerceField(def, field, strings.TrimSpace(p)))
			}
			q.Filters = append(q.Filters, Filter{Column: col, Op: op, Value: list})
			continue
		}
		q.Filters = append(q.Filters, Filter{Column: col, Op: op, Value: coerceField(def, field, raw)})
	}
	// map iteration order is random; keep the plan deterministic
	sort.Slice(q.Filters, func(i, j int) bool {
		if q.Filters[i].Column != q.Filters[j].Column {
			return q.Filters[i].Column < q.Filters[j].Column
		}
		return q.Filters[i].Op < q.Filters[j].Op
	})

	if sel := values.Get("select"); sel != "" {
		for _, f := range strings.Split(sel, ",") {
			f = strings.TrimSpace(f)
			if _, ok := def.Fields[f]; ok {
				q.Select = append(q.Select, f)
			}
		}
	}

	if s := values.Get("sort"); s != "" {
		for _, f := range strings.Split(s, ",") {
			f = strings.TrimSpace(f)
			dir := "ASC"
			if strings.HasPrefix(f, "-") {
				dir = "DESC"
				f = f[1:]
			}
			if col, ok := def.Fields[f]; ok {
				q.Sort = append(q.Sort, col+" "+dir)
			}
		}
	}
	if len(q.Sort) == 0 {
		ds := def.DefaultSort
		if ds == "" {
			ds = "created_at DESC"
		}
		q.Sort = []string{ds}
	}

	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		q.Page = min(p, maxPage)
	}
	if l, err := strconv.Atoi(values.Get("limit")); err == nil && l > 0 {
		q.Limit = min(l, maxLimit)
	}
	return q
}

// splitOperator parses a parameter key into its field name and SQL operator.
// A key without a recognized bracket suffix is an equality filter.
func splitOperator(key string) (string, string) {
	if i := strings.IndexByte(key, '['); i > 0 && strings.HasSuffix(key, "]") {
		if op, ok := operators[key[i+1:len(key)-1]]; ok {
			return key[:i], op
		}
	}
	return key, "="
}

// coerceField types a raw parameter value for its target column. Text
// columns always take the string as-is: coercing "123" to an integer would
// make the store reject the varchar comparison outright.
func coerceField(def Definition, field, s string) any {
	if def.Text[field] {
		return s
	}
	return coerce(s)
}

// coerce turns a raw parameter value into a typed operand so numeric
// comparisons reach the store as numbers, not strings.
func coerce(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// Page is a pagination cursor pointing at an adjacent page.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the next/prev cursors; both are omitted when the
// window touches the corresponding end of the result set.
type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// Envelope is the uniform list response: total matching count
// (pre-pagination), cursors, and the page of data.
type Envelope struct {
	Success    bool       `json:"success"`
	Count      int64      `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       any        `json:"data"`
}

// Paginate computes the cursors for a page window over total matching rows.
// A limit of zero disables pagination entirely.
func Paginate(page, limit int, total int64) Pagination {
	var p Pagination
	if limit <= 0 {
		return p
	}
	skip := (page - 1) * limit
	if int64(skip+limit) < total {
		p.Next = &Page{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Prev = &Page{Page: page - 1, Limit: limit}
	}
	return p
}

// Run executes the query against tx, which must already carry the model and
// any mandatory owner scoping. It returns the filled envelope and, when no
// projection was requested, the typed rows (so callers can post-process
// them before serialization). Zero matches are not an error.
func Run[T any](tx *gorm.DB, q Query, preloads ...string) (*Envelope, []T, error) {
	for _, f := range q.Filters {
		if f.Op == "IN" {
			tx = tx.Where(f.Column+" IN ?", f.Value)
		} else {
			tx = tx.Where(f.Column+" "+f.Op+" ?", f.Value)
		}
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	for _, s := range q.Sort {
		tx = tx.Order(s)
	}
	if q.Limit > 0 {
		tx = tx.Offset((q.Page - 1) * q.Limit).Limit(q.Limit)
	}

	env := &Envelope{
		Success:    true,
		Count:      total,
		Pagination: Paginate(q.Page, q.Limit, total),
	}

	if len(q.Select) > 0 {
		cols := make([]string, 0, len(q.Select)+1)
		cols = append(cols, "id")
		for _, f := range q.Select {
			cols = append(cols, q.def.Fields[f])
		}
		var rows []map[string]any
		if err := tx.Select(cols).Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		env.Data = renameColumns(rows, q.def)
		return env, nil, nil
	}

	for _, p := range preloads {
		tx = tx.Preload(p)
	}
	var items []T
	if err := tx.Find(&items).Error; err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []T{}
	}
	env.Data = items
	return env, items, nil
}

// renameColumns maps projected row keys from database column names back to
// the external field names the caller asked for.
func renameColumns(rows []map[string]any, def Definition) []map[string]any {
	colToField := make(map[string]string, len(def.Fields))
	for f, c := range def.Fields {
		colToField[c] = f
	}
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		m := make(map[string]any, len(r))
		for k, v := range r {
			if f, ok := colToField[k]; ok {
				m[f] = v
			} else {
				m[k] = v
			}
		}
		out = append(out, m)
	}
	return out
}
