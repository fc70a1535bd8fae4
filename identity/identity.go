// Package identity binds a keystore-held key to a Log's ownKey: it is
// the "identity" side of the SignatureAdapter, responsible for
// producing the self-signed public identity a Log signs entries under.
package identity

import (
	"github.com/pkg/errors"

	"github.com/go-crdt/log/iface"
)

// Identity is a Signer whose public identity has been self-signed,
// the way an OrbitDB-style identity provider binds a keystore key to a
// stable id before it is used to sign entries.
type Identity struct {
	signer iface.Signer

	// SelfSignature is the signature of the public key bytes by the
	// same key, proving the identity owns the key it publishes.
	SelfSignature []byte
}

// New derives an Identity from an existing keystore, creating the key
// for id if it does not already exist.
func New(ks iface.Keystore, id string) (*Identity, error) {
	has, err := ks.HasKey(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check for existing key")
	}

	var signer iface.Signer
	if has {
		signer, err = ks.GetKey(id)
	} else {
		signer, err = ks.CreateKey(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain identity key")
	}

	sig, err := signer.Sign([]byte(signer.PublicIdentity()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to self-sign public identity")
	}

	return &Identity{signer: signer, SelfSignature: sig}, nil
}

// PublicIdentity returns the canonical hex encoding of the underlying
// signer's public key.
func (i *Identity) PublicIdentity() string {
	return i.signer.PublicIdentity()
}

// Sign signs data with the underlying signer's private key.
func (i *Identity) Sign(data []byte) ([]byte, error) {
	return i.signer.Sign(data)
}

var _ iface.Signer = (*Identity)(nil)
