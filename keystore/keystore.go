// Package keystore is the default SignatureAdapter: secp256k1 key
// custody over a datastore, with an LRU cache in front, producing
// Signers usable as a Log's ownKey.
package keystore

import (
	"context"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru"
	ds "github.com/ipfs/go-datastore"
	crypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/pkg/errors"

	"github.com/go-crdt/log/iface"
)

const cacheSize = 128

// Keystore persists secp256k1 keys in a datastore and caches recently
// used ones in memory.
type Keystore struct {
	store ds.Datastore
	cache *lru.Cache
}

// New wraps a datastore as a Keystore.
func New(store ds.Datastore) (*Keystore, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create keystore cache")
	}

	return &Keystore{store: store, cache: cache}, nil
}

func keyFor(id string) ds.Key {
	return ds.NewKey("/" + id)
}

// HasKey reports whether a key exists for id.
func (k *Keystore) HasKey(id string) (bool, error) {
	if k.cache.Contains(id) {
		return true, nil
	}

	return k.store.Has(context.Background(), keyFor(id))
}

// CreateKey generates a new secp256k1 key for id and persists it.
func (k *Keystore) CreateKey(id string) (iface.Signer, error) {
	priv, _, err := crypto.GenerateSecp256k1Key(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}

	raw, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal key")
	}

	if err := k.store.Put(context.Background(), keyFor(id), raw); err != nil {
		return nil, errors.Wrap(err, "failed to persist key")
	}

	signer := &signer{priv: priv}
	k.cache.Add(id, signer)

	return signer, nil
}

// GetKey retrieves the signer for id, creating none if absent.
func (k *Keystore) GetKey(id string) (iface.Signer, error) {
	if cached, ok := k.cache.Get(id); ok {
		return cached.(*signer), nil
	}

	raw, err := k.store.Get(context.Background(), keyFor(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load key")
	}

	priv, err := crypto.UnmarshalPrivateKey(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal key")
	}

	s := &signer{priv: priv}
	k.cache.Add(id, s)

	return s, nil
}

// Verify checks a signature produced by the holder of publicIdentity,
// a hex-encoded libp2p public key.
func (k *Keystore) Verify(publicIdentity string, sig []byte, data []byte) (bool, error) {
	raw, err := hex.DecodeString(publicIdentity)
	if err != nil {
		return false, errors.Wrap(err, "invalid public key encoding")
	}

	pub, err := crypto.UnmarshalPublicKey(raw)
	if err != nil {
		return false, errors.Wrap(err, "invalid public key")
	}

	return pub.Verify(data, sig)
}

type signer struct {
	priv crypto.PrivKey
}

func (s *signer) PublicIdentity() string {
	raw, err := crypto.MarshalPublicKey(s.priv.GetPublic())
	if err != nil {
		return ""
	}

	return hex.EncodeToString(raw)
}

func (s *signer) Sign(data []byte) ([]byte, error) {
	return s.priv.Sign(data)
}

var _ iface.Keystore = (*Keystore)(nil)
var _ iface.Signer = (*signer)(nil)
