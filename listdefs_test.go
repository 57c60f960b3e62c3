package main

import (
	"net/url"
	"testing"

	"finbook/pkg/listquery"
)

// Every resource lists newest-first unless the request asks otherwise.
func TestListDefinitionsDefaultSort(t *testing.T) {
	defs := map[string]listquery.Definition{
		"accounts":     accountListDef,
		"categories":   categoryListDef,
		"transactions": transactionListDef,
		"attachments":  attachmentListDef,
	}
	for name, def := range defs {
		q := listquery.Parse(url.Values{}, def)
		if len(q.Sort) != 1 || q.Sort[0] != "created_at DESC" {
			t.Errorf("%s: default sort = %v, want [created_at DESC]", name, q.Sort)
		}
	}
}
