// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anchor

import (
	"bytes"
	"errors"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bpsuite/bpcore/dbc"
	"github.com/bpsuite/bpcore/mpc"
)

// Version is the current anchor serialization version.
const Version uint8 = 1

// TagAnchorID is the tagged hash prefix for anchor identifiers.
var TagAnchorID = []byte("bp/dbc/anchor")

var (
	// ErrUnknownVersion is returned when deserializing an anchor with an
	// unsupported version byte.
	ErrUnknownVersion = errors.New("unknown anchor version")

	// ErrTxNotFound is the sentinel a TxFetcher returns when it has no
	// transaction with the requested id. It resolves to
	// OutcomeUnresolved rather than a verification failure.
	ErrTxNotFound = errors.New("transaction not found")
)

// TxFetcher retrieves confirmed transactions by id. It is the injected
// chain-lookup capability used by Resolve; this package performs no chain
// I/O of its own.
type TxFetcher interface {
	// FetchTx returns the confirmed transaction with the given id, or
	// ErrTxNotFound when no such transaction is known.
	FetchTx(txid chainhash.Hash) (*wire.MsgTx, error)
}

// Outcome is the result of resolving an anchor against chain facts.
type Outcome uint8

const (
	// OutcomeValid means the confirming transaction commits to the
	// message under the anchor's proofs.
	OutcomeValid Outcome = iota

	// OutcomeInvalid means the confirming transaction does not commit to
	// the message.
	OutcomeInvalid

	// OutcomeMalformed means the anchor's proof material is internally
	// inconsistent.
	OutcomeMalformed

	// OutcomeUnresolved means the confirming transaction could not be
	// retrieved. The caller should re-query chain state later; this is
	// never coerced into OutcomeInvalid.
	OutcomeUnresolved
)

// String returns a human-readable name of the resolution outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Anchor is a portable proof binding a commitment opening to a specific
// confirmed transaction. It contains everything a third party needs to
// verify the commitment given only the confirmed transaction itself.
type Anchor struct {
	// Txid is the id of the transaction containing the commitment.
	Txid chainhash.Hash

	// MPCProof is the aggregation inclusion path for the anchored
	// protocol slot.
	MPCProof mpc.MerkleProof

	// DBCProof opens the embedded commitment.
	DBCProof dbc.Proof
}

// Build assembles an anchor from a confirming transaction id, an embedding
// proof and the slot's aggregation path.
func Build(txid chainhash.Hash, dbcProof dbc.Proof,
	mpcProof mpc.MerkleProof) *Anchor {

	return &Anchor{
		Txid:     txid,
		MPCProof: mpcProof,
		DBCProof: dbcProof,
	}
}

// ID returns the anchor identifier: a tagged hash over the serialized
// anchor. Serialization is deterministic, so logically identical anchors
// share an id.
func (a *Anchor) ID() chainhash.Hash {
	var buf bytes.Buffer

	// Buffer writes cannot fail, and Serialize only fails on writer
	// errors for structurally complete anchors.
	_ = a.Serialize(&buf)

	return *chainhash.TaggedHash(TagAnchorID, buf.Bytes())
}

// Resolve verifies the anchored commitment for the given protocol and
// message against chain facts: the confirming transaction is retrieved
// through fetch, the aggregation path is convolved to the committed root
// and the embedding proof is checked against the transaction outputs.
func (a *Anchor) Resolve(protocol mpc.ProtocolID, msg chainhash.Hash,
	fetch TxFetcher) (Outcome, error) {

	tx, err := fetch.FetchTx(a.Txid)
	switch {
	case errors.Is(err, ErrTxNotFound):
		log.Debugf("anchor %v unresolved: tx %v not found", a.ID(),
			a.Txid)
		return OutcomeUnresolved, nil

	case err != nil:
		return OutcomeUnresolved, err
	}

	root, err := a.MPCProof.Convolve(protocol, msg)
	switch {
	case errors.Is(err, mpc.ErrPathTooLong),
		errors.Is(err, mpc.ErrPathPosition):

		return OutcomeMalformed, nil

	case err != nil:
		return OutcomeInvalid, nil
	}

	switch a.DBCProof.VerifyTx(root, tx) {
	case dbc.StatusValid:
		return OutcomeValid, nil
	case dbc.StatusMalformed:
		return OutcomeMalformed, nil
	default:
		return OutcomeInvalid, nil
	}
}

// Serialize encodes the anchor into w: version byte, confirming txid,
// embedding proof, aggregation path. The field order is fixed so identical
// logical content always produces identical bytes.
func (a *Anchor) Serialize(w io.Writer) error {
	if _, err := w.Write([]byte{Version}); err != nil {
		return err
	}
	if _, err := w.Write(a.Txid[:]); err != nil {
		return err
	}
	if err := a.DBCProof.Serialize(w); err != nil {
		return err
	}
	return a.MPCProof.Serialize(w)
}

// Deserialize decodes an anchor from r.
func (a *Anchor) Deserialize(r io.Reader) error {
	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return err
	}
	if version[0] != Version {
		return ErrUnknownVersion
	}

	if _, err := io.ReadFull(r, a.Txid[:]); err != nil {
		return err
	}
	if err := a.DBCProof.Deserialize(r); err != nil {
		return err
	}
	return a.MPCProof.Deserialize(r)
}
