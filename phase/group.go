package phase

import (
	"sort"

	pv "github.com/gofhir/procvalidity"
)

// Group partitions records by validity set. Unclassified records share the
// empty set name and are reconciled against each other like any other set.
// Input order is kept within each group.
func Group(records []pv.ProcedureValidity) map[string][]pv.ProcedureValidity {
	groups := make(map[string][]pv.ProcedureValidity)
	for _, rec := range records {
		groups[rec.ValiditySet] = append(groups[rec.ValiditySet], rec)
	}
	return groups
}

// SetNames returns the keys of groups in sorted order.
func SetNames(groups map[string][]pv.ProcedureValidity) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
