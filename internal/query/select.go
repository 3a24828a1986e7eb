package query

import "sort"

// topN sorts items by value and takes entries until n distinct values have
// been consumed. Ties at the boundary are all included, so the result may
// hold more than n items, never fewer when n distinct values exist.
func topN[T any](items []T, n int, value func(T) float64, ascending bool) []T {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return value(sorted[i]) < value(sorted[j])
		}
		return value(sorted[i]) > value(sorted[j])
	})

	var (
		out      []T
		distinct int
		current  float64
	)
	for i, item := range sorted {
		v := value(item)
		if i == 0 || v != current {
			distinct++
			if distinct > n {
				break
			}
			current = v
		}
		out = append(out, item)
	}
	return out
}

// boundByGames drops items whose backing game count falls below min before
// any ranking happens.
func boundByGames[T any](items []T, min int, count func(T) int) []T {
	if min <= 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if count(item) >= min {
			out = append(out, item)
		}
	}
	return out
}
