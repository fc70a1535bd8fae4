// Package sorting provides tiebreak functions for ordering slices of
// entries that are concurrent under their clocks.
package sorting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-crdt/log/entry"
)

// ResolveConflict breaks a tie between two entries whose clocks
// compare equal.
type ResolveConflict func(a, b *entry.Entry) (int, error)

// ByClocks orders by clock first, falling back to resolveConflict on
// ties.
func ByClocks(a, b *entry.Entry, resolveConflict ResolveConflict) (int, error) {
	diff := entry.CompareClocks(a.Clock, b.Clock)
	if diff == 0 {
		return resolveConflict(a, b)
	}

	return diff, nil
}

// ByClockID orders by clock id alone, falling back to resolveConflict
// on ties.
func ByClockID(a, b *entry.Entry, resolveConflict ResolveConflict) (int, error) {
	if a.Clock.ID == b.Clock.ID {
		return resolveConflict(a, b)
	}
	if a.Clock.ID < b.Clock.ID {
		return -1, nil
	}

	return 1, nil
}

// First always favors a over b; used as a terminal tiebreaker.
func First(_, _ *entry.Entry) (int, error) {
	return 1, nil
}

// FirstWriteWins is the inverse of LastWriteWins.
func FirstWriteWins(a, b *entry.Entry) (int, error) {
	res, err := LastWriteWins(a, b)

	return res * -1, err
}

// LastWriteWins breaks clock ties by clock id, and id ties by
// favoring a — a fully deterministic, total tiebreaker.
func LastWriteWins(a, b *entry.Entry) (int, error) {
	byID := func(a, b *entry.Entry) (int, error) {
		return ByClockID(a, b, First)
	}

	return ByClocks(a, b, byID)
}

// NoZeroes wraps a tiebreaker so that a zero result (an undecided tie)
// is treated as an error instead of silently collapsing the order.
func NoZeroes(compFunc ResolveConflict) ResolveConflict {
	return func(a, b *entry.Entry) (int, error) {
		ret, err := compFunc(a, b)
		if ret != 0 || err != nil {
			return ret, err
		}

		return 0, errors.New("tiebreaker function returned zero and therefore cannot be used")
	}
}

// Reverse reverses a slice of entries in place.
func Reverse(a []*entry.Entry) {
	for i := len(a)/2 - 1; i >= 0; i-- {
		opp := len(a) - 1 - i
		a[i], a[opp] = a[opp], a[i]
	}
}

// Sort orders values using compFunc, stably.
func Sort(compFunc ResolveConflict, values []*entry.Entry) {
	sort.SliceStable(values, func(i, j int) bool {
		ret, err := compFunc(values[i], values[j])
		if err != nil {
			fmt.Printf("error while comparing entries: %v\n", err)
			return false
		}

		return ret < 0
	})
}
