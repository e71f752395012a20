// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anchor

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/bpsuite/bpcore/dbc"
	"github.com/bpsuite/bpcore/mpc"
)

// testPacket builds an unsigned two-output packet spending one input.
func testPacket(t *testing.T) *psbt.Packet {
	t.Helper()

	prev := chainhash.HashH([]byte("funding"))
	hostDesc := dbc.NewTaprootDescriptor(testPubKey(t, 30), nil)
	hostScript, err := hostDesc.PkScript()
	require.NoError(t, err)

	packet, err := psbt.New(
		[]*wire.OutPoint{{Hash: prev, Index: 0}},
		[]*wire.TxOut{
			wire.NewTxOut(5_000, hostScript),
			wire.NewTxOut(4_000, hostScript),
		},
		2, 0, []uint32{wire.MaxTxInSequenceNum},
	)
	require.NoError(t, err)
	return packet
}

// testSource builds a single-protocol commitment source.
func testSource(pid mpc.ProtocolID, msg chainhash.Hash) mpc.MultiSource {
	return mpc.MultiSource{
		Entropy:  21,
		Messages: map[mpc.ProtocolID]chainhash.Hash{pid: msg},
	}
}

// TestCommitPSBT asserts the embedding rewrites the host output and that
// the returned anchor verifies against the final unsigned transaction.
func TestCommitPSBT(t *testing.T) {
	t.Parallel()

	packet := testPacket(t)
	host := dbc.NewTaprootDescriptor(testPubKey(t, 30), nil)
	pid := testProtocol(3)
	msg := chainhash.HashH([]byte("psbt state"))

	before := make([]byte, len(packet.UnsignedTx.TxOut[0].PkScript))
	copy(before, packet.UnsignedTx.TxOut[0].PkScript)

	anchor, err := CommitPSBT(packet, 0, host, testSource(pid, msg), pid)
	require.NoError(t, err)

	// Only the host output changed, and it changed deterministically.
	require.NotEqual(t, before, packet.UnsignedTx.TxOut[0].PkScript)
	require.Equal(t, before, packet.UnsignedTx.TxOut[1].PkScript)
	require.Equal(t, packet.UnsignedTx.TxHash(), anchor.Txid)

	fetcher := &fakeFetcher{txs: map[chainhash.Hash]*wire.MsgTx{
		anchor.Txid: packet.UnsignedTx,
	}}
	outcome, err := anchor.Resolve(pid, msg, fetcher)
	require.NoError(t, err)
	require.Equal(t, OutcomeValid, outcome)
}

// TestCommitPSBTOpretAppend asserts a data-carrier host may be appended as
// a fresh output at the end of the transaction.
func TestCommitPSBTOpretAppend(t *testing.T) {
	t.Parallel()

	packet := testPacket(t)
	pid := testProtocol(4)
	msg := chainhash.HashH([]byte("opret state"))
	numBefore := len(packet.UnsignedTx.TxOut)

	anchor, err := CommitPSBT(
		packet, numBefore, dbc.NewOpReturnDescriptor(),
		testSource(pid, msg), pid,
	)
	require.NoError(t, err)

	require.Len(t, packet.UnsignedTx.TxOut, numBefore+1)
	require.Len(t, packet.Outputs, numBefore+1)
	appended := packet.UnsignedTx.TxOut[numBefore]
	require.Zero(t, appended.Value)

	fetcher := &fakeFetcher{txs: map[chainhash.Hash]*wire.MsgTx{
		anchor.Txid: packet.UnsignedTx,
	}}
	outcome, err := anchor.Resolve(pid, msg, fetcher)
	require.NoError(t, err)
	require.Equal(t, OutcomeValid, outcome)
}

// TestCommitPSBTErrors exercises the packet rejection paths.
func TestCommitPSBTErrors(t *testing.T) {
	t.Parallel()

	pid := testProtocol(5)
	msg := chainhash.HashH([]byte("m"))
	host := dbc.NewTaprootDescriptor(testPubKey(t, 31), nil)

	_, err := CommitPSBT(nil, 0, host, testSource(pid, msg), pid)
	require.ErrorIs(t, err, ErrNilPacket)

	packet := testPacket(t)
	_, err = CommitPSBT(packet, 5, host, testSource(pid, msg), pid)
	require.ErrorIs(t, err, ErrNoHostOutput)

	// Appending is reserved for data-carrier hosts.
	_, err = CommitPSBT(
		packet, len(packet.UnsignedTx.TxOut), host,
		testSource(pid, msg), pid,
	)
	require.ErrorIs(t, err, ErrNoHostOutput)

	// An empty source cannot be committed.
	_, err = CommitPSBT(packet, 0, host, mpc.MultiSource{}, pid)
	require.ErrorIs(t, err, mpc.ErrNoMessages)
}
