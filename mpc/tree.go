// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mpc

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MerkleTree is a fully constructed multi-protocol commitment tree. It is
// immutable once built; all methods are read-only.
type MerkleTree struct {
	depth    uint8
	entropy  uint64
	messages map[ProtocolID]chainhash.Hash
	leaves   []chainhash.Hash
}

// NewMerkleTree builds a commitment tree from the given source. Construction
// is a pure function: identical sources always yield identical trees. The
// tree depth is the smallest depth of at least src.MinDepth (default
// MinTreeDepth) at which every protocol id maps to a distinct slot;
// ErrTreeOverflow is returned when no depth up to MaxTreeDepth suffices.
func NewMerkleTree(src MultiSource) (*MerkleTree, error) {
	if len(src.Messages) == 0 {
		return nil, ErrNoMessages
	}

	minDepth := src.MinDepth
	if minDepth == 0 {
		minDepth = MinTreeDepth
	}

	depth, ok := fitDepth(src.Messages, minDepth)
	if !ok {
		return nil, ErrTreeOverflow
	}

	// Fill every slot with an entropy leaf first, then overwrite the
	// slots occupied by actual messages.
	width := uint32(1) << depth
	leaves := make([]chainhash.Hash, width)
	for pos := uint32(0); pos < width; pos++ {
		leaves[pos] = entropyLeaf(src.Entropy, pos)
	}

	messages := make(map[ProtocolID]chainhash.Hash, len(src.Messages))
	for pid, msg := range src.Messages {
		leaves[protocolPos(pid, width)] = messageLeaf(pid, msg)
		messages[pid] = msg
	}

	return &MerkleTree{
		depth:    depth,
		entropy:  src.Entropy,
		messages: messages,
		leaves:   leaves,
	}, nil
}

// fitDepth finds the smallest tree depth at which all protocol ids occupy
// distinct slots.
func fitDepth(messages map[ProtocolID]chainhash.Hash,
	minDepth uint8) (uint8, bool) {

	for depth := minDepth; depth <= MaxTreeDepth; depth++ {
		width := uint32(1) << depth
		if uint64(len(messages)) > uint64(width) {
			continue
		}

		taken := make(map[uint32]struct{}, len(messages))
		distinct := true
		for pid := range messages {
			pos := protocolPos(pid, width)
			if _, ok := taken[pos]; ok {
				distinct = false
				break
			}
			taken[pos] = struct{}{}
		}
		if distinct {
			return depth, true
		}
	}

	return 0, false
}

// Depth returns the depth of the tree.
func (m *MerkleTree) Depth() uint8 {
	return m.depth
}

// Entropy returns the entropy the unoccupied slots were derived from.
func (m *MerkleTree) Entropy() uint64 {
	return m.entropy
}

// Root folds the leaves pairwise up to the 32-byte tree root, which is the
// digest embedded into the hosting transaction output.
func (m *MerkleTree) Root() chainhash.Hash {
	nodes := make([]chainhash.Hash, len(m.leaves))
	copy(nodes, m.leaves)

	for len(nodes) > 1 {
		next := nodes[:len(nodes)/2]
		for i := range next {
			next[i] = branchHash(nodes[2*i], nodes[2*i+1])
		}
		nodes = next
	}

	return nodes[0]
}

// Proof extracts the inclusion proof for the slot occupied by the given
// protocol. The proof, together with the protocol id and its message,
// reconstructs the tree root via MerkleProof.Convolve.
func (m *MerkleTree) Proof(pid ProtocolID) (*MerkleProof, error) {
	if _, ok := m.messages[pid]; !ok {
		return nil, ErrUnknownProtocol
	}

	width := uint32(1) << m.depth
	pos := protocolPos(pid, width)

	nodes := make([]chainhash.Hash, len(m.leaves))
	copy(nodes, m.leaves)

	path := make([]chainhash.Hash, 0, m.depth)
	idx := pos
	for len(nodes) > 1 {
		path = append(path, nodes[idx^1])

		next := nodes[:len(nodes)/2]
		for i := range next {
			next[i] = branchHash(nodes[2*i], nodes[2*i+1])
		}
		nodes = next
		idx >>= 1
	}

	return &MerkleProof{Pos: pos, Path: path}, nil
}
