// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seals

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// SpendStatus is a chain fact about an outpoint, as reported by a Resolver.
type SpendStatus uint8

const (
	// SpendUnknown means the resolver cannot currently judge the
	// outpoint. It is never coerced into either of the other states.
	SpendUnknown SpendStatus = iota

	// SpendUnspent means the outpoint exists and is unspent.
	SpendUnspent

	// SpendSpent means the outpoint has been spent by a confirmed
	// transaction.
	SpendSpent
)

// String returns a human-readable name of the spend status.
func (s SpendStatus) String() string {
	switch s {
	case SpendUnknown:
		return "unknown"
	case SpendUnspent:
		return "unspent"
	case SpendSpent:
		return "spent"
	default:
		return "invalid"
	}
}

// Resolver supplies chain facts to seal status judgement. Implementations
// wrap whatever chain index the caller operates; this package performs no
// chain I/O of its own.
type Resolver interface {
	// SpendingTx reports the spend status of an outpoint and, when
	// spent, the id of the confirmed spending transaction.
	SpendingTx(op wire.OutPoint) (SpendStatus, *chainhash.Hash, error)
}

// Status is the lifecycle state of a seal as judged from chain facts.
type Status uint8

const (
	// StatusUnknown means the resolver could not judge the seal. The
	// caller should re-query chain state later.
	StatusUnknown Status = iota

	// StatusOpen means the sealed outpoint is still unspent.
	StatusOpen

	// StatusClosed means the sealed outpoint was spent by the expected
	// witness transaction.
	StatusClosed

	// StatusInvalid means the sealed outpoint was spent by a transaction
	// other than the expected witness.
	StatusInvalid
)

// String returns a human-readable name of the seal status.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusInvalid:
		return "invalid"
	default:
		return "undefined"
	}
}

// CurrentStatus judges the lifecycle state of a seal from resolver facts.
// When witnessTxid is non-nil the judgement is relative to that expected
// closing transaction: a spend by any other transaction makes the seal
// StatusInvalid, even if that transaction carries a well-formed commitment.
// The first confirmed spend is the sole legitimate closing; alternative
// spends of the same outpoint are rejected as ambiguous rather than treated
// as a second closing. When witnessTxid is nil, any confirmed spend reports
// StatusClosed.
func CurrentStatus(seal Seal, witnessTxid *chainhash.Hash,
	r Resolver) (Status, error) {

	spendStatus, spender, err := r.SpendingTx(seal.Prevout)
	if err != nil {
		return StatusUnknown, err
	}

	switch spendStatus {
	case SpendUnknown:
		return StatusUnknown, nil

	case SpendUnspent:
		return StatusOpen, nil

	case SpendSpent:
		if spender == nil {
			return StatusUnknown, nil
		}
		if witnessTxid == nil || *spender == *witnessTxid {
			return StatusClosed, nil
		}

		log.Debugf("seal %v spent by %v, expected witness %v",
			seal, spender, witnessTxid)
		return StatusInvalid, nil

	default:
		return StatusUnknown, nil
	}
}
