package entry_test

import (
	"context"
	"testing"

	ds "github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/require"

	"github.com/go-crdt/log/entry"
	"github.com/go-crdt/log/keystore"
	"github.com/go-crdt/log/store"
)

func newStore(t *testing.T) *store.BlockStore {
	t.Helper()

	return store.NewBlockStore()
}

func newSigner(t *testing.T) *keystoreSigner {
	t.Helper()

	ks, err := keystore.New(ds.NewMapDatastore())
	require.NoError(t, err)

	signer, err := ks.CreateKey("test")
	require.NoError(t, err)

	return &keystoreSigner{ks: ks, signer: signer}
}

// keystoreSigner bundles a signer with the keystore that produced it so
// tests can both sign and verify.
type keystoreSigner struct {
	ks     *keystore.Keystore
	signer interface {
		PublicIdentity() string
		Sign([]byte) ([]byte, error)
	}
}

func (s *keystoreSigner) PublicIdentity() string { return s.signer.PublicIdentity() }
func (s *keystoreSigner) Sign(b []byte) ([]byte, error) { return s.signer.Sign(b) }

func TestCreateUnsigned(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	e, err := entry.Create(ctx, st, "log-a", []byte("hello"), nil, entry.NewClock("log-a", 1), nil)
	require.NoError(t, err)
	require.NotEmpty(t, e.Hash)
	require.Empty(t, e.Key)
	require.Empty(t, e.Sig)
	require.True(t, entry.IsValid(e))
}

func TestCreateSignedAndVerify(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	signer := newSigner(t)

	e, err := entry.Create(ctx, st, "log-a", []byte("hello"), nil, entry.NewClock(signer.PublicIdentity(), 1), signer)
	require.NoError(t, err)
	require.Equal(t, signer.PublicIdentity(), e.Key)
	require.NotEmpty(t, e.Sig)

	require.NoError(t, entry.Verify(signer.ks, e))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	signer := newSigner(t)

	e, err := entry.Create(ctx, st, "log-a", []byte("hello"), nil, entry.NewClock(signer.PublicIdentity(), 1), signer)
	require.NoError(t, err)

	e.Sig[0] ^= 0xFF

	require.Error(t, entry.Verify(signer.ks, e))
}

func TestCanonicalNextIsSortedAndDeduped(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	a, err := entry.Create(ctx, st, "log-a", []byte("a"), nil, entry.NewClock("log-a", 1), nil)
	require.NoError(t, err)

	b, err := entry.Create(ctx, st, "log-a", []byte("b"), nil, entry.NewClock("log-a", 1), nil)
	require.NoError(t, err)

	child, err := entry.Create(ctx, st, "log-a", []byte("c"), []*entry.Entry{a, b, a}, entry.NewClock("log-a", 2), nil)
	require.NoError(t, err)

	require.Len(t, child.Next, 2)
	require.True(t, child.Next[0] < child.Next[1])
}

func TestCompareOrdersByClockThenHash(t *testing.T) {
	early := &entry.Entry{Hash: "z", Clock: entry.NewClock("a", 1)}
	late := &entry.Entry{Hash: "a", Clock: entry.NewClock("a", 2)}

	require.Less(t, entry.Compare(early, late), 0)
	require.Greater(t, entry.Compare(late, early), 0)
}

func TestFindChildren(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	root, err := entry.Create(ctx, st, "log-a", []byte("root"), nil, entry.NewClock("log-a", 1), nil)
	require.NoError(t, err)

	child, err := entry.Create(ctx, st, "log-a", []byte("child"), []*entry.Entry{root}, entry.NewClock("log-a", 2), nil)
	require.NoError(t, err)

	grandchild, err := entry.Create(ctx, st, "log-a", []byte("grandchild"), []*entry.Entry{child}, entry.NewClock("log-a", 3), nil)
	require.NoError(t, err)

	pool := []*entry.Entry{root, child, grandchild}
	children := entry.FindChildren(root, pool)

	require.Len(t, children, 2)
	require.Equal(t, child.Hash, children[0].Hash)
	require.Equal(t, grandchild.Hash, children[1].Hash)
}
