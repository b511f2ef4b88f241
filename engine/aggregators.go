package engine

import (
	"sort"
	"strings"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/dataset"
)

// ============================================================================
// GROUPING — Group, Aggregate, Sort, Limit over a Table View
// ============================================================================
// Backs every chart that aggregates before plotting (pie always, bar and
// line when a group_by is configured). Groups are row-index views into the
// parent table, so no data is copied.
// ============================================================================

// Group is one aggregated bucket of rows sharing a key value.
type Group struct {
	Key   string
	Value float64
	Count int
	View  *dataset.Table
}

// GroupAndAggregate buckets rows by a key column, reduces a measure column
// per bucket, then sorts and limits. Pipeline: group, aggregate, sort,
// limit. Buckets keep first-seen order unless sortBy says otherwise.
func GroupAndAggregate(
	t *dataset.Table,
	keyCol string,
	measure string,
	agg config.Aggregation,
	sortBy string,
	limit int,
) ([]Group, error) {
	if !t.HasColumn(keyCol) {
		return nil, &ColumnError{Column: keyCol, Reason: "not found"}
	}
	if t.NumRows() == 0 {
		return nil, nil
	}

	// 1. Group
	grouped := make(map[string][]int)
	order := make([]string, 0)
	for row := 0; row < t.NumRows(); row++ {
		if t.IsNull(keyCol, row) {
			continue
		}
		key := t.String(keyCol, row)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], row)
	}

	// 2. Aggregate
	groups := make([]Group, 0, len(order))
	for _, key := range order {
		view := t.Select(grouped[key])
		value, err := Aggregate(view, measure, agg)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{
			Key:   key,
			Value: value,
			Count: view.NumRows(),
			View:  view,
		})
	}

	// 3. Sort
	SortGroups(groups, sortBy)

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups, nil
}

// SortGroups sorts aggregated groups by the named sort mode. Unknown modes
// preserve grouping order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "label_asc", "alpha_asc":
		sort.SliceStable(groups, func(i, j int) bool {
			return strings.ToLower(groups[i].Key) < strings.ToLower(groups[j].Key)
		})
	case "label_desc":
		sort.SliceStable(groups, func(i, j int) bool {
			return strings.ToLower(groups[i].Key) > strings.ToLower(groups[j].Key)
		})
	}
}
