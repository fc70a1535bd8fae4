package store

import (
	"context"

	bserv "github.com/ipfs/go-blockservice"
	"github.com/ipfs/go-cid"
	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	bstore "github.com/ipfs/go-ipfs-blockstore"
	offline "github.com/ipfs/go-ipfs-exchange-offline"
	ipld "github.com/ipfs/go-ipld-format"
	"github.com/ipfs/go-merkledag"
	"github.com/pkg/errors"

	"github.com/go-crdt/log/iface"
)

// BlockStore is the default EntryStore adapter, an in-process
// content-addressed DAG store good enough to run a Log without a
// caller-supplied backend. It never dials out: its exchange is always
// offline.Exchange, so Get only resolves blocks this process has Put.
type BlockStore struct {
	dag ipld.DAGService
}

// NewBlockStore assembles a BlockStore from an in-memory datastore. A
// caller wanting persistence supplies their own ds.Datastore via
// NewBlockStoreFromDatastore instead.
func NewBlockStore() *BlockStore {
	return NewBlockStoreFromDatastore(ds.NewMapDatastore())
}

// NewBlockStoreFromDatastore assembles a BlockStore over an arbitrary
// datastore, mirroring the way the reference stack wires a blockstore,
// blockservice and merkledag DAG service on top of it.
func NewBlockStoreFromDatastore(store ds.Datastore) *BlockStore {
	bs := bstore.NewBlockstore(dssync.MutexWrap(store))
	blockService := bserv.New(bs, offline.Exchange(bs))
	dag := merkledag.NewDAGService(blockService)

	return &BlockStore{dag: dag}
}

// Put wraps data as a raw-codec IPLD block, content-addressing it by
// its SHA-256 digest, and persists it. data is treated as opaque: the
// caller (Entry.Create) is responsible for canonicalizing it first, so
// two replicas storing "the same" bytes get the same hash.
func (b *BlockStore) Put(ctx context.Context, data []byte) (iface.Hash, error) {
	node := merkledag.NewRawNode(data)

	if err := b.dag.Add(ctx, node); err != nil {
		return "", errors.Wrap(err, "failed to persist block")
	}

	return node.Cid().String(), nil
}

// Get resolves hash and returns the raw canonical bytes previously
// passed to Put.
func (b *BlockStore) Get(ctx context.Context, hash iface.Hash) ([]byte, error) {
	c, err := cid.Decode(hash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hash")
	}

	node, err := b.dag.Get(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch block")
	}

	return node.RawData(), nil
}

var _ iface.Store = (*BlockStore)(nil)
