// Package logio reconstructs a Log from a root hash or an existing
// entry set, fetching predecessors from a store breadth-first up to a
// length bound, with optional per-entry progress notification.
package logio

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	crdtlog "github.com/go-crdt/log"
	"github.com/go-crdt/log/entry"
	"github.com/go-crdt/log/iface"
)

// Options configures a reconstruction call. A nil Length means
// unbounded (fetch the whole reachable graph). Exclude lists hashes
// that should never be fetched or descended into. Progress, if set,
// is invoked once per entry newly added to the result.
type Options struct {
	Length   *int
	Exclude  []iface.Hash
	Progress func(hash iface.Hash, e *entry.Entry, parent *entry.Entry, depth int)
}

// FromMultihash fetches the root JSONLog record at rootHash, then
// breadth-first traverses Next from its heads until Length entries
// have been collected (most-recent-first) or the frontier is empty.
func FromMultihash(ctx context.Context, store iface.Store, rootHash iface.Hash, opts *Options) (*crdtlog.LogOptions, error) {
	raw, err := store.Get(ctx, rootHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch root")
	}

	var root struct {
		ID    string       `json:"id"`
		Heads []iface.Hash `json:"heads"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, errors.Wrap(err, "failed to decode root record")
	}

	heads := make([]*entry.Entry, 0, len(root.Heads))
	for _, h := range root.Heads {
		e, err := fetchEntry(ctx, store, h)
		if err != nil {
			return nil, err
		}

		heads = append(heads, e)
	}

	return expand(ctx, store, root.ID, heads, nil, opts)
}

// FromEntryHash fetches the single entry at entryHash and reconstructs
// a log rooted at it.
func FromEntryHash(ctx context.Context, store iface.Store, logID string, entryHash iface.Hash, opts *Options) (*crdtlog.LogOptions, error) {
	e, err := fetchEntry(ctx, store, entryHash)
	if err != nil {
		return nil, err
	}

	return expand(ctx, store, logID, []*entry.Entry{e}, nil, opts)
}

// FromJSON reconstructs a log from an already-fetched JSONLog record.
func FromJSON(ctx context.Context, store iface.Store, id string, heads []iface.Hash, opts *Options) (*crdtlog.LogOptions, error) {
	headEntries := make([]*entry.Entry, 0, len(heads))
	for _, h := range heads {
		e, err := fetchEntry(ctx, store, h)
		if err != nil {
			return nil, err
		}

		headEntries = append(headEntries, e)
	}

	return expand(ctx, store, id, headEntries, nil, opts)
}

// FromEntry deepens an already-materialized entry set by up to
// opts.Length more predecessors, reachable from the given heads.
func FromEntry(ctx context.Context, store iface.Store, id string, sourceEntries []*entry.Entry, heads []*entry.Entry, opts *Options) (*crdtlog.LogOptions, error) {
	return expand(ctx, store, id, heads, sourceEntries, opts)
}

// Expand deepens an existing log's entry set by up to opts.Length more
// entries reachable from its current tails.
func Expand(ctx context.Context, store iface.Store, l *crdtlog.Log, opts *Options) (*crdtlog.LogOptions, error) {
	return ExpandFrom(ctx, store, l.GetID(), l.Values(), l.Tails(), opts)
}

// ExpandFrom is the entry point Expand uses: widen sourceEntries by
// traversing Next from frontier.
func ExpandFrom(ctx context.Context, store iface.Store, id string, sourceEntries []*entry.Entry, frontier []*entry.Entry, opts *Options) (*crdtlog.LogOptions, error) {
	return expand(ctx, store, id, frontier, sourceEntries, opts)
}

func expand(ctx context.Context, store iface.Store, id string, heads []*entry.Entry, sourceEntries []*entry.Entry, opts *Options) (*crdtlog.LogOptions, error) {
	if opts == nil {
		opts = &Options{}
	}

	exclude := make(map[iface.Hash]struct{}, len(opts.Exclude))
	for _, h := range opts.Exclude {
		exclude[h] = struct{}{}
	}

	visited := make(map[iface.Hash]struct{})
	collected := entry.NewOrderedMap()

	for _, e := range sourceEntries {
		collected.Set(e.Hash, e)
		visited[e.Hash] = struct{}{}
	}

	// Length counts entries added on top of sourceEntries.
	limit := -1
	if opts.Length != nil {
		limit = collected.Len() + *opts.Length
	}

	type queued struct {
		e      *entry.Entry
		parent *entry.Entry
		depth  int
	}

	var frontier []queued
	for _, h := range heads {
		frontier = append(frontier, queued{e: h})
	}

	for len(frontier) > 0 {
		if limit >= 0 && collected.Len() >= limit {
			break
		}

		q := frontier[0]
		frontier = frontier[1:]

		if _, ok := exclude[q.e.Hash]; ok {
			continue
		}

		// visited only guards against re-queuing a hash as somebody's
		// child; it must not skip expanding a frontier seed's own Next,
		// or a seed drawn from sourceEntries (which pre-populates
		// visited) would never have its predecessors fetched — exactly
		// the case Expand/ExpandFrom hit, since Tails() is a subset of
		// Values().
		if _, already := collected.Get(q.e.Hash); !already {
			collected.Set(q.e.Hash, q.e)

			if opts.Progress != nil {
				opts.Progress(q.e.Hash, q.e, q.parent, q.depth)
			}
		}

		for _, n := range q.e.Next {
			if _, ok := visited[n]; ok {
				continue
			}
			if _, ok := exclude[n]; ok {
				continue
			}

			visited[n] = struct{}{}

			next, err := fetchEntry(ctx, store, n)
			if err != nil {
				return nil, err
			}

			frontier = append(frontier, queued{e: next, parent: q.e, depth: q.depth + 1})
		}
	}

	values := collected.Slice()
	sort.SliceStable(values, func(i, j int) bool {
		return entry.Compare(values[i], values[j]) < 0
	})

	// Heads are derived from the fully collected set rather than echoed
	// back from the heads argument: for FromMultihash/FromEntryHash/
	// FromJSON that argument already is the log's heads, but for
	// Expand/ExpandFrom/FromEntry it is the frontier being deepened
	// (the log's tails), which is not the same thing. Deriving it fresh
	// gives the right answer either way, since fetching more ancestors
	// never changes who the current heads are.
	return &crdtlog.LogOptions{
		ID:      id,
		Entries: values,
		Heads:   entry.FindHeads(collected),
	}, nil
}

func fetchEntry(ctx context.Context, store iface.Store, hash iface.Hash) (*entry.Entry, error) {
	raw, err := store.Get(ctx, hash)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch entry %s", hash)
	}

	e, err := entry.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode entry %s", hash)
	}

	e.Hash = hash

	return e, nil
}
