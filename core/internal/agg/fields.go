package agg

import (
	"github.com/dosco/lookahead/core/internal/qcode"
)

// orderFields returns the response keys of fields with aliased fields first
// and plain fields after, both in request order. Lookups and the projection
// are built in this order.
func orderFields(fields qcode.Fields) []string {
	seen := make(map[string]struct{}, len(fields))
	aliased := make([]string, 0, len(fields))
	var plain []string

	for _, f := range fields {
		key := f.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if f.Name != key {
			aliased = append(aliased, key)
		} else {
			plain = append(plain, key)
		}
	}
	return append(aliased, plain...)
}
