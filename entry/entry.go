// Package entry implements the immutable DAG node of the log: its
// canonical form, content-addressed hashing, signing and verification,
// and the heads/tails/difference algorithms that operate over a pool
// of entries.
package entry

import (
	"context"
	"sort"

	"github.com/go-crdt/log/errs"
	"github.com/go-crdt/log/iface"
	"github.com/pkg/errors"
)

// EntryVersion is the canonical-form version tag stored on every
// entry, bumped only if the wire shape changes.
const EntryVersion = 1

// Entry is an immutable record in the log's causal DAG.
type Entry struct {
	Hash    iface.Hash   `json:"hash,omitempty"`
	ID      string       `json:"id"`
	Payload []byte       `json:"payload"`
	Next    []iface.Hash `json:"next"`
	V       int          `json:"v"`
	Clock   *Clock       `json:"clock"`
	Key     string       `json:"key,omitempty"`
	Sig     []byte       `json:"sig,omitempty"`
}

// Create builds a new entry from a payload and a set of predecessor
// entries, signs it when a signer is supplied, submits its canonical
// form to the store, and returns it with Hash populated.
func Create(ctx context.Context, store iface.Store, logID string, payload []byte, predecessors []*Entry, clock *Clock, signer iface.Signer) (*Entry, error) {
	next := canonicalNext(predecessors)

	e := &Entry{
		ID:      logID,
		Payload: payload,
		Next:    next,
		V:       EntryVersion,
		Clock:   clock,
	}

	if signer != nil {
		body, err := signingBytes(e)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build signing body")
		}

		sig, err := signer.Sign(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to sign entry")
		}

		e.Sig = sig
		e.Key = signer.PublicIdentity()
	}

	raw, err := canonicalBytes(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize entry")
	}

	hash, err := store.Put(ctx, raw)
	if err != nil {
		return nil, errors.Wrap(errs.StoreError, err.Error())
	}

	e.Hash = hash

	return e, nil
}

// canonicalNext sorts predecessor hashes and drops duplicates, so two
// replicas building "the same" entry from the same heads hash to the
// same entry.
func canonicalNext(predecessors []*Entry) []iface.Hash {
	seen := make(map[iface.Hash]struct{}, len(predecessors))
	next := make([]iface.Hash, 0, len(predecessors))

	for _, p := range predecessors {
		if p == nil || p.Hash == "" {
			continue
		}
		if _, ok := seen[p.Hash]; ok {
			continue
		}

		seen[p.Hash] = struct{}{}
		next = append(next, p.Hash)
	}

	sort.Strings(next)

	return next
}

// Verify checks that the entry carries a key and signature and that
// the signature is valid over its canonical signing body.
func Verify(keystore iface.Keystore, e *Entry) error {
	if e.Key == "" {
		return errs.EntryMissingKey
	}
	if len(e.Sig) == 0 {
		return errs.EntryMissingSig
	}

	body, err := signingBytes(e)
	if err != nil {
		return errors.Wrap(err, "failed to build signing body")
	}

	ok, err := keystore.Verify(e.Key, e.Sig, body)
	if err != nil {
		return errors.Wrap(err, "verification error")
	}
	if !ok {
		return errs.VerificationFailed
	}

	return nil
}

// IsValid reports whether an entry carries the minimal required
// fields to be considered well-formed.
func IsValid(e *Entry) bool {
	return e != nil && e.ID != "" && e.Clock != nil && e.Hash != ""
}

// Compare gives the total order used to sort entries everywhere: by
// clock time, then clock id, then hash, so ties between concurrent
// entries from the same id (which should not normally happen) still
// resolve deterministically.
func Compare(a, b *Entry) int {
	if c := CompareClocks(a.Clock, b.Clock); c != 0 {
		return c
	}

	if a.Hash < b.Hash {
		return -1
	}
	if a.Hash > b.Hash {
		return 1
	}

	return 0
}

// FindChildren returns the entries in pool that descend from e along a
// single chain: starting at e, it repeatedly takes the first entry in
// pool whose Next lists the current one. Other branches of the DAG are
// not followed, so descendants off that chain are not returned. The
// result is ordered oldest first. Used for rendering only, not on the
// append/join hot path.
func FindChildren(e *Entry, pool []*Entry) []*Entry {
	var stack []*Entry

	parent := findDirectChild(e.Hash, pool)
	for parent != nil {
		stack = append(stack, parent)
		e = parent
		parent = findDirectChild(e.Hash, pool)
	}

	sort.SliceStable(stack, func(i, j int) bool {
		return Compare(stack[i], stack[j]) < 0
	})

	return stack
}

func findDirectChild(hash iface.Hash, pool []*Entry) *Entry {
	for _, candidate := range pool {
		for _, n := range candidate.Next {
			if n == hash {
				return candidate
			}
		}
	}

	return nil
}
