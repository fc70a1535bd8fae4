package crdtlog

import (
	"github.com/go-crdt/log/accesscontroller"
	"github.com/go-crdt/log/entry"
	"github.com/go-crdt/log/iface"
)

// LogOptions configures NewLog. All fields are optional; sensible
// zero-value defaults reproduce an empty, unsigned, open log.
type LogOptions struct {
	ID              string
	Entries         []*entry.Entry
	Heads           []*entry.Entry
	Clock           *entry.Clock
	OwnKey          iface.Signer
	Keystore        iface.Keystore
	AccessControler accesscontroller.Interface
}

// JSONLog is the minimal root-pointer record returned by ToJSON: the
// log id plus its current head hashes.
type JSONLog struct {
	ID    string       `json:"id"`
	Heads []iface.Hash `json:"heads"`
}

// Snapshot is the full materialization returned by ToSnapshot.
type Snapshot struct {
	ID     string         `json:"id"`
	Heads  []*entry.Entry `json:"heads"`
	Values []*entry.Entry `json:"values"`
}
