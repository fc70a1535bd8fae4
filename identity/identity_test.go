package identity_test

import (
	"testing"

	ds "github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/require"

	"github.com/go-crdt/log/identity"
	"github.com/go-crdt/log/keystore"
)

func TestNewSelfSignsPublicIdentity(t *testing.T) {
	ks, err := keystore.New(ds.NewMapDatastore())
	require.NoError(t, err)

	id, err := identity.New(ks, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, id.PublicIdentity())

	ok, err := ks.Verify(id.PublicIdentity(), id.SelfSignature, []byte(id.PublicIdentity()))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewReusesExistingKey(t *testing.T) {
	ks, err := keystore.New(ds.NewMapDatastore())
	require.NoError(t, err)

	first, err := identity.New(ks, "alice")
	require.NoError(t, err)

	second, err := identity.New(ks, "alice")
	require.NoError(t, err)

	require.Equal(t, first.PublicIdentity(), second.PublicIdentity())
}
