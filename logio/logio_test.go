package logio_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	crdtlog "github.com/go-crdt/log"
	"github.com/go-crdt/log/entry"
	"github.com/go-crdt/log/logio"
	"github.com/go-crdt/log/store"
)

func TestFromMultihashReconstructsLog(t *testing.T) {
	ctx := context.Background()
	st := store.NewBlockStore()

	original, err := crdtlog.NewLog(st, &crdtlog.LogOptions{ID: "A"})
	require.NoError(t, err)

	_, err = original.Append(ctx, []byte("one"))
	require.NoError(t, err)
	_, err = original.Append(ctx, []byte("two"))
	require.NoError(t, err)
	_, err = original.Append(ctx, []byte("three"))
	require.NoError(t, err)

	root, err := original.ToMultihash(ctx)
	require.NoError(t, err)

	opts, err := logio.FromMultihash(ctx, st, root, nil)
	require.NoError(t, err)
	require.Equal(t, "A", opts.ID)
	require.Len(t, opts.Entries, 3)

	rebuilt, err := crdtlog.NewLog(st, opts)
	require.NoError(t, err)

	require.Equal(t, original.Values()[0].Hash, rebuilt.Values()[0].Hash)
	require.Len(t, rebuilt.Heads(), 1)
}

func TestFromMultihashRespectsLength(t *testing.T) {
	ctx := context.Background()
	st := store.NewBlockStore()

	original, err := crdtlog.NewLog(st, &crdtlog.LogOptions{ID: "A"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := original.Append(ctx, []byte{byte(i)})
		require.NoError(t, err)
	}

	root, err := original.ToMultihash(ctx)
	require.NoError(t, err)

	length := 2
	opts, err := logio.FromMultihash(ctx, st, root, &logio.Options{Length: &length})
	require.NoError(t, err)
	require.LessOrEqual(t, len(opts.Entries), length) // at most `length` entries in total, heads included
}

func TestFromMultihashInvokesProgress(t *testing.T) {
	ctx := context.Background()
	st := store.NewBlockStore()

	original, err := crdtlog.NewLog(st, &crdtlog.LogOptions{ID: "A"})
	require.NoError(t, err)

	_, err = original.Append(ctx, []byte("one"))
	require.NoError(t, err)
	_, err = original.Append(ctx, []byte("two"))
	require.NoError(t, err)

	root, err := original.ToMultihash(ctx)
	require.NoError(t, err)

	var progressed int
	_, err = logio.FromMultihash(ctx, st, root, &logio.Options{
		Progress: func(hash string, e *entry.Entry, parent *entry.Entry, depth int) {
			progressed++
		},
	})
	require.NoError(t, err)
	require.Greater(t, progressed, 0)
}

func buildPartialLog(t *testing.T, ctx context.Context, st *store.BlockStore) *crdtlog.Log {
	t.Helper()

	original, err := crdtlog.NewLog(st, &crdtlog.LogOptions{ID: "A"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := original.Append(ctx, []byte{byte(i)})
		require.NoError(t, err)
	}

	root, err := original.ToMultihash(ctx)
	require.NoError(t, err)

	length := 2
	opts, err := logio.FromMultihash(ctx, st, root, &logio.Options{Length: &length})
	require.NoError(t, err)
	require.Len(t, opts.Entries, 2)

	partial, err := crdtlog.NewLog(st, opts)
	require.NoError(t, err)
	require.NotEmpty(t, partial.TailHashes())

	return partial
}

func TestExpandFetchesMissingPredecessors(t *testing.T) {
	ctx := context.Background()
	st := store.NewBlockStore()
	partial := buildPartialLog(t, ctx, st)

	expanded, err := logio.Expand(ctx, st, partial, nil)
	require.NoError(t, err)

	full, err := crdtlog.NewLog(st, expanded)
	require.NoError(t, err)

	require.Empty(t, full.TailHashes())
	require.Len(t, full.Values(), 5)
}

func TestExpandFromDeepensGivenFrontier(t *testing.T) {
	ctx := context.Background()
	st := store.NewBlockStore()
	partial := buildPartialLog(t, ctx, st)

	expanded, err := logio.ExpandFrom(ctx, st, partial.GetID(), partial.Values(), partial.Tails(), nil)
	require.NoError(t, err)

	full, err := crdtlog.NewLog(st, expanded)
	require.NoError(t, err)

	require.Empty(t, full.TailHashes())
	require.Len(t, full.Values(), 5)
}

func TestFromEntryReconstructsFromKnownEntries(t *testing.T) {
	ctx := context.Background()
	st := store.NewBlockStore()
	partial := buildPartialLog(t, ctx, st)

	expanded, err := logio.FromEntry(ctx, st, partial.GetID(), partial.Values(), partial.Tails(), nil)
	require.NoError(t, err)

	full, err := crdtlog.NewLog(st, expanded)
	require.NoError(t, err)

	require.Empty(t, full.TailHashes())
	require.Len(t, full.Values(), 5)
}
