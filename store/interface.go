// Package store provides the default EntryStore adapter: a
// content-addressed block store built from the IPFS Go stack, wired up
// for local/offline use.
package store

import "github.com/go-crdt/log/iface"

// Store is an alias for the seam the Log depends on; kept here so
// package store's default implementation and its interface live
// together with the rest of the adapter.
type Store = iface.Store
