// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anchor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/bpsuite/bpcore/dbc"
	"github.com/bpsuite/bpcore/mpc"
	"github.com/bpsuite/bpcore/seals"
)

// fakeFetcher is a TxFetcher over a static transaction table.
type fakeFetcher struct {
	txs map[chainhash.Hash]*wire.MsgTx
	err error
}

func (f *fakeFetcher) FetchTx(txid chainhash.Hash) (*wire.MsgTx, error) {
	if f.err != nil {
		return nil, f.err
	}
	tx, ok := f.txs[txid]
	if !ok {
		return nil, ErrTxNotFound
	}
	return tx, nil
}

// testPubKey derives a deterministic public key for tests.
func testPubKey(t *testing.T, n byte) *btcec.PublicKey {
	t.Helper()

	var buf [32]byte
	buf[0] = 0x20
	buf[31] = n
	_, pub := btcec.PrivKeyFromBytes(buf[:])
	return pub
}

// testProtocol derives a deterministic protocol id for tests.
func testProtocol(n byte) mpc.ProtocolID {
	var pid mpc.ProtocolID
	pid[0] = n
	pid[8] = 0xa5
	return pid
}

// testClosing builds a confirmed joint closing and returns the anchor
// material for the first protocol's slot.
func testClosing(t *testing.T) (*Anchor, mpc.ProtocolID, chainhash.Hash,
	*fakeFetcher) {

	t.Helper()

	pid1, pid2 := testProtocol(1), testProtocol(2)
	m1 := chainhash.HashH([]byte("anchored state"))
	m2 := chainhash.HashH([]byte("neighbor state"))

	witness, err := seals.CloseBatch(
		[]seals.BatchEntry{
			{
				Seal:     seals.New(chainhash.HashH([]byte("prev")), 0),
				Protocol: pid1,
				Message:  m1,
			},
			{
				Seal:     seals.New(chainhash.HashH([]byte("prev")), 1),
				Protocol: pid2,
				Message:  m2,
			},
		},
		seals.CloseParams{
			Host: dbc.NewTaprootDescriptor(
				testPubKey(t, 1), nil,
			),
			Value:   1_000,
			Entropy: 11,
		},
	)
	require.NoError(t, err)

	txid := witness.Tx.TxHash()
	anchor := Build(txid, *witness.Proof, *witness.Paths[pid1])
	fetcher := &fakeFetcher{
		txs: map[chainhash.Hash]*wire.MsgTx{txid: witness.Tx},
	}

	return anchor, pid1, m1, fetcher
}

// TestAnchorResolve asserts anchor resolution against chain facts: valid
// for the anchored slot, invalid for forged messages, unresolved when the
// transaction is not retrievable.
func TestAnchorResolve(t *testing.T) {
	t.Parallel()

	anchor, pid, msg, fetcher := testClosing(t)

	outcome, err := anchor.Resolve(pid, msg, fetcher)
	require.NoError(t, err)
	require.Equal(t, OutcomeValid, outcome)

	// A forged message fails verification.
	outcome, err = anchor.Resolve(
		pid, chainhash.HashH([]byte("forged")), fetcher,
	)
	require.NoError(t, err)
	require.Equal(t, OutcomeInvalid, outcome)

	// Another protocol cannot ride this slot's path.
	outcome, err = anchor.Resolve(testProtocol(9), msg, fetcher)
	require.NoError(t, err)
	require.Equal(t, OutcomeInvalid, outcome)

	// Unknown confirming transaction: unresolved, not invalid.
	outcome, err = anchor.Resolve(
		pid, msg, &fakeFetcher{txs: nil},
	)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnresolved, outcome)

	// Lookup failures propagate alongside the unresolved outcome.
	outcome, err = anchor.Resolve(pid, msg, &fakeFetcher{
		err: errors.New("index offline"),
	})
	require.Error(t, err)
	require.Equal(t, OutcomeUnresolved, outcome)
}

// TestAnchorMalformed asserts structurally broken anchors resolve to
// OutcomeMalformed.
func TestAnchorMalformed(t *testing.T) {
	t.Parallel()

	anchor, pid, msg, fetcher := testClosing(t)

	broken := *anchor
	broken.MPCProof.Pos = 1 << 22
	outcome, err := broken.Resolve(pid, msg, fetcher)
	require.NoError(t, err)
	require.Equal(t, OutcomeMalformed, outcome)

	broken = *anchor
	broken.DBCProof.InternalKey = nil
	outcome, err = broken.Resolve(pid, msg, fetcher)
	require.NoError(t, err)
	require.Equal(t, OutcomeMalformed, outcome)
}

// TestAnchorSerialization asserts anchors round-trip through their binary
// encoding and that logically identical anchors share identical bytes and
// ids.
func TestAnchorSerialization(t *testing.T) {
	t.Parallel()

	anchor, _, _, _ := testClosing(t)

	var buf1, buf2 bytes.Buffer
	require.NoError(t, anchor.Serialize(&buf1))
	require.NoError(t, anchor.Serialize(&buf2))
	require.Equal(t, buf1.Bytes(), buf2.Bytes())

	var decoded Anchor
	require.NoError(t, decoded.Deserialize(&buf1))

	require.Equal(t, anchor.Txid, decoded.Txid)
	require.Equal(t, anchor.MPCProof, decoded.MPCProof)
	require.Equal(t, anchor.DBCProof.Method, decoded.DBCProof.Method)
	require.Equal(t, anchor.DBCProof.PriorRoot, decoded.DBCProof.PriorRoot)
	require.Equal(t,
		anchor.DBCProof.InternalKey.SerializeCompressed(),
		decoded.DBCProof.InternalKey.SerializeCompressed())

	require.Equal(t, anchor.ID(), decoded.ID())

	// Version byte is enforced.
	raw := buf2.Bytes()
	raw[0] = 0x7f
	require.ErrorIs(t, decoded.Deserialize(bytes.NewReader(raw)),
		ErrUnknownVersion)
}
