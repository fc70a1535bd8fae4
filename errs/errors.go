// Package errs collects the typed failure kinds that Log and LogIO can
// surface. Each is a plain string constant implementing error, per
// https://dave.cheney.net/2016/04/07/constant-errors — callers match on
// the sentinel with errors.Is, call sites wrap it with github.com/pkg/errors
// to keep a causal chain.
package errs

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// StoreMissing is returned when a Log is constructed without a Store.
	StoreMissing = Error("store is not defined")

	// LogMissing is returned when an operation requires a Log that was
	// not supplied.
	LogMissing = Error("log is not defined")

	// NotALog is returned when a value passed to Join does not present
	// the minimal Log shape (id, heads, entries).
	NotALog = Error("given argument is not an instance of Log")

	// BadEntries is returned when the entries supplied to a Log
	// constructor are malformed.
	BadEntries = Error("entries are not defined")

	// BadHeads is returned when the heads supplied to a Log constructor
	// are malformed.
	BadHeads = Error("heads are not defined")

	// InvalidHash is returned when a hash string cannot be parsed as a
	// content address.
	InvalidHash = Error("hash is not a valid multihash")

	// NotAllowedToWrite is returned when Append is attempted by a key
	// not present in allowedKeys.
	NotAllowedToWrite = Error("not allowed to write")

	// EntryMissingKey is returned when an incoming signed entry has no
	// key field.
	EntryMissingKey = Error("entry does not have a key")

	// EntryMissingSig is returned when an incoming signed entry has no
	// sig field.
	EntryMissingSig = Error("entry does not have a signature")

	// VerificationFailed is returned (and the entry dropped, not the
	// join aborted) when a cryptographic verify returns false.
	VerificationFailed = Error("signature verification failed")

	// StoreError wraps an underlying store/keystore failure.
	StoreError = Error("store error")
)
