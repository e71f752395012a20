// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seals

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// testTxid derives a deterministic transaction id for tests.
func testTxid(n byte) chainhash.Hash {
	return chainhash.HashH([]byte{0x74, 0x78, n})
}

// fakeResolver is a Resolver over a static spend table.
type fakeResolver struct {
	spends map[wire.OutPoint]chainhash.Hash
	known  map[wire.OutPoint]struct{}
	err    error
}

func (f *fakeResolver) SpendingTx(op wire.OutPoint) (SpendStatus,
	*chainhash.Hash, error) {

	if f.err != nil {
		return SpendUnknown, nil, f.err
	}
	if spender, ok := f.spends[op]; ok {
		return SpendSpent, &spender, nil
	}
	if _, ok := f.known[op]; ok {
		return SpendUnspent, nil, nil
	}
	return SpendUnknown, nil, nil
}

// TestSealID asserts concealed seal ids are deterministic and sensitive to
// every component of the seal.
func TestSealID(t *testing.T) {
	t.Parallel()

	seal := NewBlinded(testTxid(1), 2, 77)
	require.Equal(t, seal.ID(), seal.ID())
	require.True(t, seal.VerifyID(seal.ID()))

	require.NotEqual(t, seal.ID(), NewBlinded(testTxid(1), 2, 78).ID())
	require.NotEqual(t, seal.ID(), NewBlinded(testTxid(1), 3, 77).ID())
	require.NotEqual(t, seal.ID(), NewBlinded(testTxid(2), 2, 77).ID())
	require.False(t, New(testTxid(1), 2).VerifyID(seal.ID()))
}

// TestSealSerialization asserts seals round-trip through their binary
// encoding and the encoding is byte-stable.
func TestSealSerialization(t *testing.T) {
	t.Parallel()

	seal := NewBlinded(testTxid(3), 7, 0xdeadbeef)

	var buf1, buf2 bytes.Buffer
	require.NoError(t, seal.Serialize(&buf1))
	require.NoError(t, seal.Serialize(&buf2))
	require.Equal(t, buf1.Bytes(), buf2.Bytes())

	var decoded Seal
	require.NoError(t, decoded.Deserialize(&buf1))
	require.Equal(t, seal, decoded)
}

// TestCurrentStatus exercises the lifecycle judgement, including the
// malleability policy: only the confirmed spender reported by the resolver
// closes the seal, any other expected witness renders it invalid.
func TestCurrentStatus(t *testing.T) {
	t.Parallel()

	seal := New(testTxid(4), 0)
	witnessTxid := testTxid(5)
	otherTxid := testTxid(6)

	resolver := &fakeResolver{
		spends: map[wire.OutPoint]chainhash.Hash{},
		known:  map[wire.OutPoint]struct{}{},
	}

	// Unknown outpoint: distinct status, never coerced to invalid.
	status, err := CurrentStatus(seal, &witnessTxid, resolver)
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, status)

	// Known and unspent: still open.
	resolver.known[seal.Prevout] = struct{}{}
	status, err = CurrentStatus(seal, &witnessTxid, resolver)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, status)

	// Spent by the expected witness: closed.
	resolver.spends[seal.Prevout] = witnessTxid
	status, err = CurrentStatus(seal, &witnessTxid, resolver)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, status)

	// No expected witness: any confirmed spend closes.
	status, err = CurrentStatus(seal, nil, resolver)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, status)

	// Spent by a different transaction than expected: invalid, not an
	// alternative closing.
	resolver.spends[seal.Prevout] = otherTxid
	status, err = CurrentStatus(seal, &witnessTxid, resolver)
	require.NoError(t, err)
	require.Equal(t, StatusInvalid, status)

	// Resolver failures propagate.
	resolver.err = errors.New("index offline")
	_, err = CurrentStatus(seal, &witnessTxid, resolver)
	require.Error(t, err)
}
