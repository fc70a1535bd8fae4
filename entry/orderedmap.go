package entry

import (
	"sync"

	"github.com/iancoleman/orderedmap"
)

// OrderedMap is a hash -> *Entry index that preserves insertion order,
// so iteration (ToString, ToJSON, findHeads tiebreaks) is deterministic
// across replicas that inserted entries in the same sequence.
type OrderedMap struct {
	lock       sync.RWMutex
	orderedMap *orderedmap.OrderedMap
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{orderedMap: orderedmap.New()}
}

// NewOrderedMapFromEntries builds an OrderedMap from a slice, keyed by
// each entry's hash. Undefined entries (nil or no hash) are skipped.
func NewOrderedMapFromEntries(entries []*Entry) *OrderedMap {
	m := NewOrderedMap()

	for _, e := range entries {
		if e == nil || e.Hash == "" {
			continue
		}

		m.Set(e.Hash, e)
	}

	return m
}

// Merge returns a copy of o with every entry of other layered on top.
func (o *OrderedMap) Merge(other *OrderedMap) *OrderedMap {
	merged := o.Copy()

	for _, k := range other.Keys() {
		if v, ok := other.Get(k); ok {
			merged.Set(k, v)
		}
	}

	return merged
}

// Copy returns a shallow copy of o.
func (o *OrderedMap) Copy() *OrderedMap {
	o.lock.RLock()
	defer o.lock.RUnlock()

	m := NewOrderedMap()
	for _, k := range o.orderedMap.Keys() {
		if v, ok := o.orderedMap.Get(k); ok {
			m.orderedMap.Set(k, v)
		}
	}

	return m
}

// Get retrieves an Entry by hash.
func (o *OrderedMap) Get(hash string) (*Entry, bool) {
	o.lock.RLock()
	defer o.lock.RUnlock()

	v, ok := o.orderedMap.Get(hash)
	if !ok {
		return nil, false
	}

	e, ok := v.(*Entry)

	return e, ok
}

// UnsafeGet retrieves an Entry by hash, returning nil if absent.
func (o *OrderedMap) UnsafeGet(hash string) *Entry {
	e, _ := o.Get(hash)

	return e
}

// Set inserts or replaces the entry stored under hash.
func (o *OrderedMap) Set(hash string, e *Entry) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.orderedMap.Set(hash, e)
}

// Delete removes the entry stored under hash, if any.
func (o *OrderedMap) Delete(hash string) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.orderedMap.Delete(hash)
}

// Keys returns the hashes in insertion order.
func (o *OrderedMap) Keys() []string {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return o.orderedMap.Keys()
}

// Len reports the number of entries held.
func (o *OrderedMap) Len() int {
	return len(o.Keys())
}

// Slice returns the entries in insertion order.
func (o *OrderedMap) Slice() []*Entry {
	keys := o.Keys()
	out := make([]*Entry, 0, len(keys))

	for _, k := range keys {
		if e := o.UnsafeGet(k); e != nil {
			out = append(out, e)
		}
	}

	return out
}
