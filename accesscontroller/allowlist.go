package accesscontroller

import (
	"github.com/go-crdt/log/entry"
	"github.com/go-crdt/log/errs"
)

// AnyKey is the sentinel allowedKeys entry meaning "any key may write".
const AnyKey = "*"

// Allowlist is the default Interface: a fixed set of key identities
// permitted to append, with the AnyKey sentinel meaning "everyone".
type Allowlist struct {
	keys map[string]struct{}
	any  bool
}

// NewAllowlist builds an Allowlist from a set of public-key identities.
// A single AnyKey entry makes every key pass.
func NewAllowlist(keys ...string) *Allowlist {
	a := &Allowlist{keys: make(map[string]struct{}, len(keys))}

	for _, k := range keys {
		if k == AnyKey {
			a.any = true
			continue
		}

		a.keys[k] = struct{}{}
	}

	return a
}

// Allows reports whether key is permitted to write under this list.
func (a *Allowlist) Allows(key string) bool {
	if a == nil {
		return false
	}
	if a.any {
		return true
	}

	_, ok := a.keys[key]

	return ok
}

// Len reports the number of concrete (non-sentinel) keys held.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}

	return len(a.keys)
}

// Solo reports whether this list names exactly one key, equal to
// ownKey — the "solo owner" mode referenced during Join's identity
// check.
func (a *Allowlist) Solo(ownKey string) bool {
	if a == nil || a.any || len(a.keys) != 1 {
		return false
	}

	_, ok := a.keys[ownKey]

	return ok
}

// CanAppend allows any entry whose key passes Allows.
func (a *Allowlist) CanAppend(_ *entry.Entry, key string) error {
	if !a.Allows(key) {
		return errs.NotAllowedToWrite
	}

	return nil
}

var _ Interface = (*Allowlist)(nil)
