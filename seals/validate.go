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

// Result is the outcome of validating a candidate closing transaction
// against a seal. Adverse results are first-class values, not errors: they
// are the expected product of adversarial or buggy input.
type Result uint8

const (
	// ResultValid means the transaction spends the sealed outpoint and
	// carries a valid commitment to the message.
	ResultValid Result = iota

	// ResultWrongSeal means the transaction does not spend the sealed
	// outpoint.
	ResultWrongSeal

	// ResultInvalidCommitment means the transaction spends the sealed
	// outpoint but does not commit to the message under the proof.
	ResultInvalidCommitment

	// ResultMalformed means the proof material is internally
	// inconsistent and no judgement could be made.
	ResultMalformed
)

// String returns a human-readable name of the validation result.
func (r Result) String() string {
	switch r {
	case ResultValid:
		return "valid"
	case ResultWrongSeal:
		return "wrong seal"
	case ResultInvalidCommitment:
		return "invalid commitment"
	case ResultMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Validate judges whether tx closes the seal over msg: the transaction must
// spend the sealed outpoint and one of its outputs must commit to msg under
// the proof.
func Validate(seal Seal, tx *wire.MsgTx, msg chainhash.Hash,
	proof *dbc.Proof) Result {

	if tx == nil || proof == nil {
		return ResultMalformed
	}

	if !spendsOutpoint(tx, seal.Prevout) {
		return ResultWrongSeal
	}

	return commitmentResult(proof.VerifyTx(msg, tx))
}

// ValidateBatch judges whether tx closes the seal over msg as part of a
// joint closing: the message must convolve through the seal's own
// aggregation path to the root the transaction commits to. A path extracted
// for a different slot yields ResultInvalidCommitment, so one participant
// of a joint closing cannot reuse another participant's proof.
func ValidateBatch(seal Seal, tx *wire.MsgTx, protocol mpc.ProtocolID,
	msg chainhash.Hash, path *mpc.MerkleProof, proof *dbc.Proof) Result {

	if tx == nil || proof == nil || path == nil {
		return ResultMalformed
	}

	if !spendsOutpoint(tx, seal.Prevout) {
		return ResultWrongSeal
	}

	root, err := path.Convolve(protocol, msg)
	switch {
	case errors.Is(err, mpc.ErrPathTooLong),
		errors.Is(err, mpc.ErrPathPosition):

		return ResultMalformed

	case err != nil:
		return ResultInvalidCommitment
	}

	return commitmentResult(proof.VerifyTx(root, tx))
}

// spendsOutpoint reports whether tx has an input spending op.
func spendsOutpoint(tx *wire.MsgTx, op wire.OutPoint) bool {
	for _, txIn := range tx.TxIn {
		if txIn.PreviousOutPoint == op {
			return true
		}
	}
	return false
}

// commitmentResult maps a commitment verification status onto a seal
// validation result.
func commitmentResult(status dbc.Status) Result {
	switch status {
	case dbc.StatusValid:
		return ResultValid
	case dbc.StatusMalformed:
		return ResultMalformed
	default:
		return ResultInvalidCommitment
	}
}
