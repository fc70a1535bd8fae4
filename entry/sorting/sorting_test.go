package sorting_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-crdt/log/entry"
	"github.com/go-crdt/log/entry/sorting"
)

func e(id string, time int, hash string) *entry.Entry {
	return &entry.Entry{Hash: hash, Clock: entry.NewClock(id, time)}
}

func TestLastWriteWinsOrdersByClockThenID(t *testing.T) {
	a := e("a", 1, "hA")
	b := e("b", 1, "hB")

	res, err := sorting.LastWriteWins(a, b)
	require.NoError(t, err)
	require.Less(t, res, 0)
}

func TestFirstWriteWinsIsInverse(t *testing.T) {
	a := e("a", 1, "hA")
	b := e("b", 1, "hB")

	last, err := sorting.LastWriteWins(a, b)
	require.NoError(t, err)

	first, err := sorting.FirstWriteWins(a, b)
	require.NoError(t, err)

	require.Equal(t, -last, first)
}

func TestNoZeroesRejectsUndecidedTies(t *testing.T) {
	always0 := func(a, b *entry.Entry) (int, error) { return 0, nil }

	_, err := sorting.NoZeroes(always0)(e("a", 1, "x"), e("a", 1, "x"))
	require.Error(t, err)
}

func TestSortIsStableByComparator(t *testing.T) {
	values := []*entry.Entry{
		e("b", 2, "h1"),
		e("a", 1, "h2"),
		e("c", 1, "h3"),
	}

	sorting.Sort(sorting.LastWriteWins, values)

	require.Equal(t, "h2", values[0].Hash)
	require.Equal(t, "h3", values[1].Hash)
	require.Equal(t, "h1", values[2].Hash)
}

func TestReverse(t *testing.T) {
	values := []*entry.Entry{e("a", 1, "1"), e("a", 2, "2"), e("a", 3, "3")}
	sorting.Reverse(values)

	require.Equal(t, "3", values[0].Hash)
	require.Equal(t, "1", values[2].Hash)
}
