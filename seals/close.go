// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seals

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bpsuite/bpcore/dbc"
	"github.com/bpsuite/bpcore/mpc"
)

var (
	// ErrNoSeals is returned when a batch close is requested over an
	// empty seal set.
	ErrNoSeals = errors.New("no seals to close")

	// ErrDuplicateSeal is returned when the same outpoint appears twice
	// in a batch close.
	ErrDuplicateSeal = errors.New("duplicate seal in batch")

	// ErrDuplicateProtocol is returned when two batch entries share a
	// protocol id.
	ErrDuplicateProtocol = errors.New("duplicate protocol in batch")
)

// CloseParams is the caller-supplied spend context for closing seals: the
// output descriptor hosting the commitment and the value assigned to the
// committed output. It carries no keys and no signing capability.
type CloseParams struct {
	// Host describes the output the commitment embeds into.
	Host dbc.Descriptor

	// Value is the amount, in satoshi, of the committed output.
	Value int64

	// MinDepth and Entropy parameterize the aggregation tree for batch
	// closes. Both are ignored for single closes.
	MinDepth uint8
	Entropy  uint64
}

// Witness is the unsigned closing-transaction skeleton for one or more
// seals, together with the opening data needed to verify the embedded
// commitment without full chain context. Signing and broadcasting the
// transaction is the caller's responsibility.
type Witness struct {
	// Tx is the unsigned transaction spending every closed seal.
	Tx *wire.MsgTx

	// Host is the committed output descriptor.
	Host dbc.Descriptor

	// Proof opens the embedded commitment.
	Proof *dbc.Proof

	// Paths holds the per-protocol aggregation proofs of a batch close.
	// Nil for single closes.
	Paths map[mpc.ProtocolID]*mpc.MerkleProof
}

// BatchEntry pairs a seal with the protocol and message it closes over when
// several seals close jointly in one transaction.
type BatchEntry struct {
	Seal     Seal
	Protocol mpc.ProtocolID
	Message  chainhash.Hash
}

// Close builds the unsigned transaction closing the seal over msg: it
// spends the sealed outpoint and embeds a deterministic commitment to msg
// into the output described by p.Host. Nothing is signed or broadcast.
func Close(seal Seal, msg chainhash.Hash, p CloseParams) (*Witness, error) {
	committed, proof, err := dbc.Commit(p.Host, msg)
	if err != nil {
		return nil, err
	}

	tx, err := closingTx([]Seal{seal}, committed, p.Value)
	if err != nil {
		return nil, err
	}

	log.Debugf("closing %v over message %v via %v", seal, msg,
		proof.Method)

	return &Witness{Tx: tx, Host: committed, Proof: proof}, nil
}

// CloseBatch builds one unsigned transaction closing every entry's seal.
// The entry messages aggregate into a single multi-protocol commitment
// root, which is embedded exactly as a single close would embed a message;
// the witness carries each entry's inclusion proof. Entry order determines
// transaction input order.
func CloseBatch(entries []BatchEntry, p CloseParams) (*Witness, error) {
	if len(entries) == 0 {
		return nil, ErrNoSeals
	}

	sealSet := make([]Seal, 0, len(entries))
	seen := make(map[wire.OutPoint]struct{}, len(entries))
	messages := make(map[mpc.ProtocolID]chainhash.Hash, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.Seal.Prevout]; ok {
			return nil, ErrDuplicateSeal
		}
		seen[entry.Seal.Prevout] = struct{}{}
		sealSet = append(sealSet, entry.Seal)

		if _, ok := messages[entry.Protocol]; ok {
			return nil, ErrDuplicateProtocol
		}
		messages[entry.Protocol] = entry.Message
	}

	tree, err := mpc.NewMerkleTree(mpc.MultiSource{
		MinDepth: p.MinDepth,
		Entropy:  p.Entropy,
		Messages: messages,
	})
	if err != nil {
		return nil, err
	}
	root := tree.Root()

	committed, proof, err := dbc.Commit(p.Host, root)
	if err != nil {
		return nil, err
	}

	tx, err := closingTx(sealSet, committed, p.Value)
	if err != nil {
		return nil, err
	}

	paths := make(map[mpc.ProtocolID]*mpc.MerkleProof, len(entries))
	for _, entry := range entries {
		path, err := tree.Proof(entry.Protocol)
		if err != nil {
			return nil, err
		}
		paths[entry.Protocol] = path
	}

	log.Debugf("closing %d seals over aggregated root %v via %v",
		len(entries), root, proof.Method)

	return &Witness{
		Tx:    tx,
		Host:  committed,
		Proof: proof,
		Paths: paths,
	}, nil
}

// closingTx assembles the unsigned transaction skeleton spending the sealed
// outpoints with the committed output.
func closingTx(sealSet []Seal, committed dbc.Descriptor,
	value int64) (*wire.MsgTx, error) {

	pkScript, err := committed.PkScript()
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, seal := range sealSet {
		prevout := seal.Prevout
		tx.AddTxIn(wire.NewTxIn(&prevout, nil, nil))
	}
	tx.AddTxOut(wire.NewTxOut(value, pkScript))

	return tx, nil
}
