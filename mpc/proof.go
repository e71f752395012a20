// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mpc

import (
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// MerkleProof proves that one slot of a commitment tree carries a particular
// message. It consists of the slot position and the sibling hashes from the
// leaf up to the root.
type MerkleProof struct {
	// Pos is the slot the proven message occupies.
	Pos uint32

	// Path holds the sibling node hashes, ordered leaf to root.
	Path []chainhash.Hash
}

// Depth returns the tree depth implied by the proof.
func (p *MerkleProof) Depth() uint8 {
	return uint8(len(p.Path))
}

// Convolve folds the proof path over the leaf derived from the given
// protocol and message, reconstructing the root of the tree the proof was
// extracted from. A proof whose slot does not match the protocol's
// deterministic slot is rejected with ErrUnrelatedProof.
func (p *MerkleProof) Convolve(pid ProtocolID,
	msg chainhash.Hash) (chainhash.Hash, error) {

	if len(p.Path) > MaxTreeDepth {
		return chainhash.Hash{}, ErrPathTooLong
	}

	width := uint32(1) << uint(len(p.Path))
	if p.Pos >= width {
		return chainhash.Hash{}, ErrPathPosition
	}
	if protocolPos(pid, width) != p.Pos {
		return chainhash.Hash{}, ErrUnrelatedProof
	}

	node := messageLeaf(pid, msg)
	pos := p.Pos
	for _, sibling := range p.Path {
		if pos&1 == 1 {
			node = branchHash(sibling, node)
		} else {
			node = branchHash(node, sibling)
		}
		pos >>= 1
	}

	return node, nil
}

// Serialize encodes the proof into w using a fixed field order: the slot
// position, the path length and then each path node.
func (p *MerkleProof) Serialize(w io.Writer) error {
	var pos [4]byte
	binary.LittleEndian.PutUint32(pos[:], p.Pos)
	if _, err := w.Write(pos[:]); err != nil {
		return err
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(p.Path))); err != nil {
		return err
	}
	for i := range p.Path {
		if _, err := w.Write(p.Path[i][:]); err != nil {
			return err
		}
	}

	return nil
}

// Deserialize decodes a proof from r, enforcing the MaxTreeDepth bound on
// the path length.
func (p *MerkleProof) Deserialize(r io.Reader) error {
	var pos [4]byte
	if _, err := io.ReadFull(r, pos[:]); err != nil {
		return err
	}
	p.Pos = binary.LittleEndian.Uint32(pos[:])

	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return err
	}
	if count > MaxTreeDepth {
		return ErrPathTooLong
	}

	p.Path = make([]chainhash.Hash, count)
	for i := range p.Path {
		if _, err := io.ReadFull(r, p.Path[i][:]); err != nil {
			return err
		}
	}

	return nil
}
