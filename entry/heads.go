package entry

import (
	"sort"

	"github.com/go-crdt/log/iface"
)

// FindHeads returns the entries in entries that are not referenced by
// any other entry's Next, sorted by clock id for a deterministic
// serialization order.
func FindHeads(entries *OrderedMap) []*Entry {
	referenced := make(map[iface.Hash]struct{})

	for _, e := range entries.Slice() {
		for _, n := range e.Next {
			referenced[n] = struct{}{}
		}
	}

	var heads []*Entry
	for _, e := range entries.Slice() {
		if _, ok := referenced[e.Hash]; !ok {
			heads = append(heads, e)
		}
	}

	sort.SliceStable(heads, func(i, j int) bool {
		return heads[i].Clock.ID < heads[j].Clock.ID
	})

	return heads
}

// FindTails returns the entries that reference a hash absent from the
// set, or that have no predecessors at all — the entries bordering the
// part of the DAG that still needs fetching.
func FindTails(entries []*Entry) []*Entry {
	present := make(map[iface.Hash]struct{}, len(entries))
	for _, e := range entries {
		present[e.Hash] = struct{}{}
	}

	var tails []*Entry
	for _, e := range entries {
		if len(e.Next) == 0 {
			tails = append(tails, e)
			continue
		}

		for _, n := range e.Next {
			if _, ok := present[n]; !ok {
				tails = append(tails, e)
				break
			}
		}
	}

	sort.SliceStable(tails, func(i, j int) bool {
		return Compare(tails[i], tails[j]) < 0
	})

	return tails
}

// FindTailHashes returns the external hashes referenced by the set's
// tails but not resolvable within it.
func FindTailHashes(entries []*Entry) []iface.Hash {
	present := make(map[iface.Hash]struct{}, len(entries))
	for _, e := range entries {
		present[e.Hash] = struct{}{}
	}

	var hashes []iface.Hash
	for _, e := range entries {
		for _, n := range e.Next {
			if _, ok := present[n]; !ok {
				hashes = append(hashes, n)
			}
		}
	}

	return hashes
}

// Difference computes the set of entries reachable from otherHeads by
// following Next, breadth-first, that are not already present in self.
// fetch resolves a hash to an entry, consulting otherEntries first and
// falling back to the store; it is the suspension point of a Join.
func Difference(self *OrderedMap, otherHeads []*Entry, otherEntries *OrderedMap, fetch func(hash iface.Hash) (*Entry, bool)) *OrderedMap {
	result := NewOrderedMap()
	visited := make(map[iface.Hash]struct{})

	var stack []*Entry
	stack = append(stack, otherHeads...)

	for len(stack) > 0 {
		e := stack[0]
		stack = stack[1:]

		if e == nil || e.Hash == "" {
			continue
		}
		if _, ok := visited[e.Hash]; ok {
			continue
		}

		visited[e.Hash] = struct{}{}

		if _, ok := self.Get(e.Hash); ok {
			continue
		}

		result.Set(e.Hash, e)

		for _, n := range e.Next {
			if _, ok := visited[n]; ok {
				continue
			}
			if _, ok := self.Get(n); ok {
				continue
			}

			if next, ok := otherEntries.Get(n); ok {
				stack = append(stack, next)
				continue
			}

			if fetch != nil {
				if next, ok := fetch(n); ok {
					stack = append(stack, next)
				}
			}
		}
	}

	return result
}
