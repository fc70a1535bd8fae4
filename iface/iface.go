// Package iface defines the seams between the core CRDT log and its
// external collaborators: the content-addressed entry store and the
// signature keystore.
package iface

import "context"

// Hash is a stable content address returned by a Store, in its
// canonical string encoding (a CIDv1 string in the default store).
type Hash = string

// Store is the content-addressed block store entries are persisted
// to and fetched from. It is the "EntryStore adapter" of the spec:
// an external collaborator, not part of the CRDT itself.
type Store interface {
	// Put content-addresses and persists an opaque blob, returning its
	// stable digest.
	Put(ctx context.Context, data []byte) (Hash, error)

	// Get retrieves previously stored content. Returns an error when
	// the hash is unknown to this store.
	Get(ctx context.Context, hash Hash) ([]byte, error)
}

// Signer produces signatures on behalf of an opaque key identity. It
// is the write-side half of the "SignatureAdapter" of the spec, bound
// to the Log as its ownKey.
type Signer interface {
	// PublicIdentity returns the canonical hex encoding of the signer's
	// public key, used as Entry.Key and as a Clock id.
	PublicIdentity() string

	// Sign signs bytes with the signer's private key.
	Sign(data []byte) ([]byte, error)
}

// Keystore is the full SignatureAdapter surface: key custody plus
// sign/verify. A Signer is obtained by binding a Keystore to one of
// its own key ids via GetKey/CreateKey.
type Keystore interface {
	HasKey(id string) (bool, error)
	CreateKey(id string) (Signer, error)
	GetKey(id string) (Signer, error)

	// Verify checks a signature produced by the holder of publicIdentity.
	Verify(publicIdentity string, sig []byte, data []byte) (bool, error)
}
