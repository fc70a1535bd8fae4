// Package accesscontroller defines the pluggable write-permission seam
// a Log consults on Append. Join checks incoming entries against it only
// when it is an *Allowlist.
package accesscontroller

import "github.com/go-crdt/log/entry"

// Interface decides whether an entry signed by key may be appended to
// a log.
type Interface interface {
	CanAppend(e *entry.Entry, key string) error
}
