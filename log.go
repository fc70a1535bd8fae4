// Package crdtlog implements an append-only, eventually-consistent log:
// a Grow-only Set CRDT of immutable entries linked into a causal DAG,
// totally ordered on convergence by a hybrid Lamport clock.
package crdtlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/go-crdt/log/accesscontroller"
	"github.com/go-crdt/log/entry"
	"github.com/go-crdt/log/entry/sorting"
	"github.com/go-crdt/log/errs"
	"github.com/go-crdt/log/iface"
)

// Log is a G-Set CRDT of entries linked into a causal DAG, with a
// hybrid Lamport clock giving a deterministic total order over
// converged entries. All mutating operations (Append, Join) are
// serialized by lock: a Log instance is safe to share across
// goroutines but performs no internal concurrency of its own.
type Log struct {
	lock sync.RWMutex

	store    iface.Store
	keystore iface.Keystore

	id      string
	entries *entry.OrderedMap
	heads   *entry.OrderedMap
	clock   *entry.Clock
	ownKey  iface.Signer
	access  accesscontroller.Interface
}

// NewLog constructs a Log. A nil opts is treated as LogOptions{}: an
// anonymous, empty, unsigned, open log with a generated id.
func NewLog(store iface.Store, opts *LogOptions) (*Log, error) {
	if store == nil {
		return nil, errs.StoreMissing
	}
	if opts == nil {
		opts = &LogOptions{}
	}

	id := opts.ID
	if id == "" {
		id = generateID()
	}

	entries := entry.NewOrderedMapFromEntries(opts.Entries)

	var heads *entry.OrderedMap
	if opts.Heads != nil {
		heads = entry.NewOrderedMapFromEntries(opts.Heads)
	} else {
		heads = entry.NewOrderedMapFromEntries(entry.FindHeads(entries))
	}

	maxHeadTime := 0
	for _, h := range heads.Slice() {
		if h.Clock.Time > maxHeadTime {
			maxHeadTime = h.Clock.Time
		}
	}

	clockTime := maxHeadTime
	if opts.Clock != nil && opts.Clock.Time > clockTime {
		clockTime = opts.Clock.Time
	}

	clockID := id
	if opts.OwnKey != nil {
		clockID = opts.OwnKey.PublicIdentity()
	}

	access := opts.AccessControler
	if access == nil {
		if opts.OwnKey != nil {
			access = accesscontroller.NewAllowlist(opts.OwnKey.PublicIdentity())
		} else {
			access = accesscontroller.NewAllowlist(accesscontroller.AnyKey)
		}
	}

	return &Log{
		store:    store,
		keystore: opts.Keystore,
		id:       id,
		entries:  entries,
		heads:    heads,
		clock:    entry.NewClock(clockID, clockTime),
		ownKey:   opts.OwnKey,
		access:   access,
	}, nil
}

// GetID returns the log's identifier.
func (l *Log) GetID() string {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.id
}

// Heads returns the current head entries, sorted by clock id.
func (l *Log) Heads() []*entry.Entry {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return entry.FindHeads(l.heads)
}

// Tails returns the entries bordering an incomplete part of the DAG.
func (l *Log) Tails() []*entry.Entry {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return entry.FindTails(l.entries.Slice())
}

// TailHashes returns the external hashes a caller must fetch to close
// the DAG.
func (l *Log) TailHashes() []iface.Hash {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return entry.FindTailHashes(l.entries.Slice())
}

// Values returns every entry in the log, sorted by Entry.Compare
// (oldest first).
func (l *Log) Values() []*entry.Entry {
	l.lock.RLock()
	defer l.lock.RUnlock()

	values := l.entries.Slice()
	sort.SliceStable(values, func(i, j int) bool {
		return entry.Compare(values[i], values[j]) < 0
	})

	return values
}

// Append creates a new entry from payload, referencing the current
// heads, advances the clock, and inserts it as the sole new head.
func (l *Log) Append(ctx context.Context, payload []byte) (*entry.Entry, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.ownKey != nil {
		if err := l.access.CanAppend(nil, l.ownKey.PublicIdentity()); err != nil {
			return nil, err
		}
	}

	heads := l.heads.Slice()

	newTime := l.clock.Time
	for _, h := range heads {
		if h.Clock.Time > newTime {
			newTime = h.Clock.Time
		}
	}
	newTime++

	l.clock = entry.NewClock(l.clock.ID, newTime)

	e, err := entry.Create(ctx, l.store, l.id, payload, heads, l.clock, l.ownKey)
	if err != nil {
		return nil, err
	}

	l.entries.Set(e.Hash, e)
	l.heads = entry.NewOrderedMapFromEntries([]*entry.Entry{e})

	return e, nil
}

// otherLog is the minimal shape Join requires of its argument.
type otherLog interface {
	GetID() string
	Heads() []*entry.Entry
	Values() []*entry.Entry
}

// Join merges other into l: it computes the entries reachable from
// other's heads that l does not already have, verifies them when l is
// in signed mode, merges the entry sets, optionally trims to
// sizeLimit, and recomputes heads and clock. sizeLimit < 0 means
// unbounded. newID, if non-empty, becomes the merged log's id;
// otherwise the greater of the two ids (by string comparison) is kept.
func (l *Log) Join(other otherLog, sizeLimit int, newID string) error {
	if other == nil {
		return errs.NotALog
	}

	// other is read before l's lock is taken: other may be l itself (a
	// self-join), and its accessors read-lock the same mutex.
	otherID := other.GetID()
	otherEntries := entry.NewOrderedMapFromEntries(other.Values())
	otherHeads := other.Heads()

	l.lock.Lock()
	defer l.lock.Unlock()

	newItems := entry.Difference(l.entries, otherHeads, otherEntries, l.fetchEntry)

	if l.ownKey != nil {
		verified, err := l.verifyIncoming(newItems)
		if err != nil {
			return err
		}

		newItems = verified
	}

	for _, hash := range newItems.Keys() {
		e, _ := newItems.Get(hash)
		l.entries.Set(hash, e)
	}

	if sizeLimit >= 0 {
		l.trim(sizeLimit)
	}

	// Heads must be recomputed against the full entry set, not just the
	// old heads of l and other: a newly merged-in entry can reference a
	// predecessor that l already held from an earlier, unrelated join,
	// long before that predecessor ever became one of l's or other's
	// heads. Restricting the candidate pool to {l.heads, other.heads}
	// would leave such a predecessor stranded as a spurious head even
	// though something in l.entries now points at it.
	l.heads = entry.NewOrderedMapFromEntries(entry.FindHeads(l.entries))

	maxHeadTime := l.clock.Time
	for _, h := range l.heads.Slice() {
		if h.Clock.Time > maxHeadTime {
			maxHeadTime = h.Clock.Time
		}
	}
	l.clock = entry.NewClock(l.clock.ID, maxHeadTime)

	if newID != "" {
		l.id = newID
	} else if otherID > l.id {
		l.id = otherID
	}

	return nil
}

// fetchEntry resolves a hash against the store when it is missing from
// both logs' locally materialized entry sets; the suspension point of
// a Join's difference computation.
func (l *Log) fetchEntry(hash iface.Hash) (*entry.Entry, bool) {
	raw, err := l.store.Get(context.Background(), hash)
	if err != nil {
		return nil, false
	}

	e, err := entry.Decode(raw)
	if err != nil {
		return nil, false
	}
	e.Hash = hash

	return e, true
}

// verifyIncoming applies the signed-mode verification steps of Join to
// newItems, returning the subset that pass. A missing key or signature,
// or a key the log does not allow, aborts the whole join (no mutation,
// error returned); a bad signature, or in solo-owner mode an entry
// carrying another log id, just drops that one entry.
func (l *Log) verifyIncoming(newItems *entry.OrderedMap) (*entry.OrderedMap, error) {
	ownKeyID := l.ownKey.PublicIdentity()

	allowlist, _ := l.access.(*accesscontroller.Allowlist)
	solo := allowlist.Solo(ownKeyID)

	verified := entry.NewOrderedMap()

	for _, hash := range newItems.Keys() {
		e, _ := newItems.Get(hash)

		if e.Key == "" {
			return nil, errs.EntryMissingKey
		}
		if len(e.Sig) == 0 {
			return nil, errs.EntryMissingSig
		}

		if !allowlist.Allows(e.Key) && e.Key != ownKeyID {
			fmt.Fprintf(os.Stderr, "warning: rejecting join, entry %s not allowed to write\n", e.Hash)
			return nil, errs.NotAllowedToWrite
		}

		if solo && e.ID != l.id {
			continue
		}

		if err := entry.Verify(l.keystore, e); err != nil {
			continue
		}

		verified.Set(hash, e)
	}

	return verified, nil
}

// trim keeps only the sizeLimit newest entries under Entry.compare,
// dropping the oldest first. Non-associative with further joins by
// design: trimming discards history a later join can no longer see.
func (l *Log) trim(sizeLimit int) {
	values := l.entries.Slice()
	if len(values) <= sizeLimit {
		return
	}

	sort.SliceStable(values, func(i, j int) bool {
		return entry.Compare(values[i], values[j]) < 0
	})

	kept := values[len(values)-sizeLimit:]
	l.entries = entry.NewOrderedMapFromEntries(kept)
}

// ToJSON returns the minimal root-pointer record: the log id and its
// current head hashes.
func (l *Log) ToJSON() *JSONLog {
	l.lock.RLock()
	defer l.lock.RUnlock()

	heads := entry.FindHeads(l.heads)
	hashes := make([]iface.Hash, len(heads))
	for i, h := range heads {
		hashes[i] = h.Hash
	}

	return &JSONLog{ID: l.id, Heads: hashes}
}

// ToSnapshot returns the full materialization: id, heads and every
// value.
func (l *Log) ToSnapshot() *Snapshot {
	return &Snapshot{
		ID:     l.GetID(),
		Heads:  l.Heads(),
		Values: l.Values(),
	}
}

// ToBuffer returns the UTF-8 JSON bytes of ToJSON.
func (l *Log) ToBuffer() ([]byte, error) {
	buf, err := json.Marshal(l.ToJSON())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal log")
	}

	return buf, nil
}

// ToMultihash persists ToBuffer's bytes to the store and returns the
// resulting hash, the root pointer a peer can later reconstruct this
// log from via LogIO.
func (l *Log) ToMultihash(ctx context.Context) (iface.Hash, error) {
	buf, err := l.ToBuffer()
	if err != nil {
		return "", err
	}

	return l.store.Put(ctx, buf)
}

// ToString renders the log as a human-readable tree, newest entry
// first, indented by depth in the DAG.
func (l *Log) ToString(payloadMapper func([]byte) string) string {
	values := l.Values()
	sorting.Reverse(values)

	if payloadMapper == nil {
		payloadMapper = func(p []byte) string { return string(p) }
	}

	var b strings.Builder
	for _, e := range values {
		depth := len(entry.FindChildren(e, values))
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("└─ ")
		b.WriteString(payloadMapper(e.Payload))
		b.WriteString("\n")
	}

	return b.String()
}

var _ otherLog = (*Log)(nil)
