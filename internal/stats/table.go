package stats

import (
	"cmp"
	"slices"
	"strconv"

	"ticket-stats/internal/tickets"
)

// Unknown is the category label for tickets with an empty value in the grouped column.
const Unknown = "未知"

// TopN is the truncation applied to department rankings.
const TopN = 10

// Table is a ranked category count, labels and data are parallel.
type Table struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Len returns the number of categories.
func (t Table) Len() int {
	return len(t.Labels)
}

// Total returns the sum of all counts.
func (t Table) Total() int {
	sum := 0
	for _, v := range t.Data {
		sum += v
	}
	return sum
}

// Count returns the count recorded for label, or 0.
func (t Table) Count(label string) int {
	if i := slices.Index(t.Labels, label); i >= 0 {
		return t.Data[i]
	}
	return 0
}

// Top keeps the first n categories. It never reorders.
func (t Table) Top(n int) Table {
	if n < 0 || t.Len() <= n {
		return t
	}
	return Table{
		Labels: slices.Clone(t.Labels[:n]),
		Data:   slices.Clone(t.Data[:n]),
	}
}

// KeyFunc extracts the grouping key of a ticket. An empty key is counted under Unknown.
type KeyFunc func(tickets.Ticket) string

// CountBy groups items by key and ranks the groups by descending count.
// Ties keep the order in which the keys were first encountered.
func CountBy(items []tickets.Ticket, key KeyFunc) Table {
	order, counts := tally(items, func(t tickets.Ticket) (string, bool) {
		k := key(t)
		if k == "" {
			k = Unknown
		}
		return k, true
	})

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	return build(order, counts)
}

// CountByLabelOrder groups items by key and orders the groups by ascending key.
// Items whose key is empty are skipped.
func CountByLabelOrder(items []tickets.Ticket, key KeyFunc) Table {
	order, counts := tally(items, func(t tickets.Ticket) (string, bool) {
		k := key(t)
		return k, k != ""
	})
	slices.Sort(order)
	return build(order, counts)
}

// CountByYear counts dated tickets per year, ascending.
func CountByYear(items []tickets.Ticket) Table {
	years, groups := SplitByYear(items)
	t := Table{Labels: make([]string, 0, len(years)), Data: make([]int, 0, len(years))}
	for _, y := range years {
		t.Labels = append(t.Labels, strconv.Itoa(y))
		t.Data = append(t.Data, len(groups[y]))
	}
	return t
}

func tally(items []tickets.Ticket, key func(tickets.Ticket) (string, bool)) ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)
	for _, it := range items {
		k, ok := key(it)
		if !ok {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	return order, counts
}

func build(order []string, counts map[string]int) Table {
	t := Table{Labels: make([]string, 0, len(order)), Data: make([]int, 0, len(order))}
	for _, k := range order {
		t.Labels = append(t.Labels, k)
		t.Data = append(t.Data, counts[k])
	}
	return t
}
