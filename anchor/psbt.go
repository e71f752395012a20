// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anchor

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"

	"github.com/bpsuite/bpcore/dbc"
	"github.com/bpsuite/bpcore/mpc"
)

var (
	// ErrNilPacket is returned when no packet is supplied.
	ErrNilPacket = errors.New("nil psbt packet")

	// ErrNoHostOutput is returned when the host output index does not
	// reference an output of the packet's unsigned transaction.
	ErrNoHostOutput = errors.New("host output index out of range")
)

// CommitPSBT embeds an aggregated commitment over source into the host
// output of an unsigned transaction carried by a PSBT packet, and returns
// the anchor for the given protocol's slot.
//
// The host descriptor must describe the output at hostIndex before the
// commitment. As a special case, a data-carrier host may use
// hostIndex == len(outputs) to append a fresh zero-value OP_RETURN output.
// The packet's unsigned transaction is rewritten in place; signing it
// afterwards is the caller's responsibility.
func CommitPSBT(packet *psbt.Packet, hostIndex int, host dbc.Descriptor,
	source mpc.MultiSource, protocol mpc.ProtocolID) (*Anchor, error) {

	if packet == nil || packet.UnsignedTx == nil {
		return nil, ErrNilPacket
	}

	tx := packet.UnsignedTx
	appending := host.Kind == dbc.KindOpReturn &&
		hostIndex == len(tx.TxOut)
	if (hostIndex < 0 || hostIndex >= len(tx.TxOut)) && !appending {
		return nil, ErrNoHostOutput
	}

	tree, err := mpc.NewMerkleTree(source)
	if err != nil {
		return nil, err
	}
	root := tree.Root()

	committed, dbcProof, err := dbc.Commit(host, root)
	if err != nil {
		return nil, err
	}

	pkScript, err := committed.PkScript()
	if err != nil {
		return nil, err
	}

	if appending {
		tx.AddTxOut(wire.NewTxOut(0, pkScript))
		packet.Outputs = append(packet.Outputs, psbt.POutput{})
	} else {
		tx.TxOut[hostIndex].PkScript = pkScript
	}

	path, err := tree.Proof(protocol)
	if err != nil {
		return nil, err
	}

	anchor := Build(tx.TxHash(), *dbcProof, *path)

	log.Debugf("embedded %d-slot commitment root %v into psbt output "+
		"%d via %v", len(source.Messages), root, hostIndex,
		dbcProof.Method)

	return anchor, nil
}
