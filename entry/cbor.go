package entry

import (
	cbornode "github.com/ipfs/go-ipld-cbor"
	"github.com/polydawn/refmt/obj/atlas"
)

// clockCBOR and the two body shapes below exist purely to pin field
// order for canonical serialization: polydawn/refmt's atlas encodes
// struct fields in the order the atlas lists them, which is what lets
// two replicas that built "the same" entry hash to the same CID.

type clockCBOR struct {
	ID   string
	Time int
}

// signingBody is the unsigned portion of an entry: what gets signed,
// and what gets hashed again for verification.
type signingBody struct {
	ID      string
	Payload []byte
	Next    []string
	V       int
	Clock   clockCBOR
}

// fullRecord is the complete canonical form submitted to the store,
// key order per the entry canonical serialization: id, payload, next,
// v, clock, key, sig (hash is assigned by the store, never encoded).
type fullRecord struct {
	ID      string
	Payload []byte
	Next    []string
	V       int
	Clock   clockCBOR
	Key     string
	Sig     []byte
}

func init() {
	cbornode.RegisterCborType(atlas.BuildEntry(clockCBOR{}).StructMap().
		AddField("ID", atlas.StructMapEntry{SerialName: "id"}).
		AddField("Time", atlas.StructMapEntry{SerialName: "time"}).
		Complete())

	cbornode.RegisterCborType(atlas.BuildEntry(signingBody{}).StructMap().
		AddField("ID", atlas.StructMapEntry{SerialName: "id"}).
		AddField("Payload", atlas.StructMapEntry{SerialName: "payload"}).
		AddField("Next", atlas.StructMapEntry{SerialName: "next"}).
		AddField("V", atlas.StructMapEntry{SerialName: "v"}).
		AddField("Clock", atlas.StructMapEntry{SerialName: "clock"}).
		Complete())

	cbornode.RegisterCborType(atlas.BuildEntry(fullRecord{}).StructMap().
		AddField("ID", atlas.StructMapEntry{SerialName: "id"}).
		AddField("Payload", atlas.StructMapEntry{SerialName: "payload"}).
		AddField("Next", atlas.StructMapEntry{SerialName: "next"}).
		AddField("V", atlas.StructMapEntry{SerialName: "v"}).
		AddField("Clock", atlas.StructMapEntry{SerialName: "clock"}).
		AddField("Key", atlas.StructMapEntry{SerialName: "key", OmitEmpty: true}).
		AddField("Sig", atlas.StructMapEntry{SerialName: "sig", OmitEmpty: true}).
		Complete())
}

func toClockCBOR(c *Clock) clockCBOR {
	return clockCBOR{ID: c.ID, Time: c.Time}
}

// signingBytes returns the canonical bytes an entry is signed over and
// re-hashed against during verification: the record minus hash and sig.
func signingBytes(e *Entry) ([]byte, error) {
	return cbornode.DumpObject(signingBody{
		ID:      e.ID,
		Payload: e.Payload,
		Next:    e.Next,
		V:       e.V,
		Clock:   toClockCBOR(e.Clock),
	})
}

// canonicalBytes returns the full record submitted to the store: the
// digest of this exact byte string becomes the entry's hash.
func canonicalBytes(e *Entry) ([]byte, error) {
	return cbornode.DumpObject(fullRecord{
		ID:      e.ID,
		Payload: e.Payload,
		Next:    e.Next,
		V:       e.V,
		Clock:   toClockCBOR(e.Clock),
		Key:     e.Key,
		Sig:     e.Sig,
	})
}

// Decode reconstructs an Entry from the canonical bytes previously
// produced by canonicalBytes. The caller is responsible for assigning
// Hash, since that is the store's digest of raw, not something the
// record encodes about itself.
func Decode(raw []byte) (*Entry, error) {
	var fr fullRecord
	if err := cbornode.DecodeInto(raw, &fr); err != nil {
		return nil, err
	}

	return &Entry{
		ID:      fr.ID,
		Payload: fr.Payload,
		Next:    fr.Next,
		V:       fr.V,
		Clock:   NewClock(fr.Clock.ID, fr.Clock.Time),
		Key:     fr.Key,
		Sig:     fr.Sig,
	}, nil
}
