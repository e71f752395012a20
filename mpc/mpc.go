// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mpc

import (
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// MinTreeDepth is the default minimum depth of a commitment tree. A
	// tree never has fewer than 2^MinTreeDepth slots, which hides the
	// actual number of participating protocols.
	MinTreeDepth = 3

	// MaxTreeDepth is the maximum supported depth of a commitment tree.
	MaxTreeDepth = 24
)

var (
	// TagLeaf is the tagged hash prefix for an occupied leaf slot.
	TagLeaf = []byte("mpc/leaf")

	// TagEntropy is the tagged hash prefix for an unoccupied leaf slot.
	TagEntropy = []byte("mpc/entropy")

	// TagBranch is the tagged hash prefix for an internal tree node.
	TagBranch = []byte("mpc/branch")
)

var (
	// ErrNoMessages is returned when attempting to build a tree from a
	// source that contains no messages.
	ErrNoMessages = errors.New("no messages to commit to")

	// ErrTreeOverflow is returned when no tree depth up to MaxTreeDepth
	// can place all protocols into distinct slots.
	ErrTreeOverflow = errors.New("protocol ids do not fit into a tree")

	// ErrUnknownProtocol is returned when requesting an inclusion proof
	// for a protocol the tree does not contain.
	ErrUnknownProtocol = errors.New("protocol is not present in the tree")

	// ErrPathTooLong is returned when an inclusion proof path exceeds
	// MaxTreeDepth nodes.
	ErrPathTooLong = errors.New("merkle path exceeds maximum tree depth")

	// ErrPathPosition is returned when an inclusion proof position lies
	// outside the tree width implied by its path length.
	ErrPathPosition = errors.New("merkle path position out of range")

	// ErrUnrelatedProof is returned when an inclusion proof slot does not
	// match the slot derived from the protocol id.
	ErrUnrelatedProof = errors.New("proof is unrelated to the protocol")
)

// ProtocolID uniquely identifies a protocol participating in a multi-protocol
// commitment. It doubles as the slot selector within the tree.
type ProtocolID [32]byte

// String returns the hex encoding of the protocol id.
func (p ProtocolID) String() string {
	return hex.EncodeToString(p[:])
}

// MultiSource is the complete input to commitment tree construction: the
// per-protocol message digests, the minimum tree depth and the entropy used
// to derive leaves for unoccupied slots.
type MultiSource struct {
	// MinDepth overrides the default minimum tree depth when non-zero.
	MinDepth uint8

	// Entropy seeds the leaves of unoccupied slots. It must be supplied
	// explicitly by the caller.
	Entropy uint64

	// Messages maps each participating protocol to its message digest.
	Messages map[ProtocolID]chainhash.Hash
}

// protocolPos derives the deterministic slot of a protocol within a tree of
// the given width. The width must be a power of two.
func protocolPos(pid ProtocolID, width uint32) uint32 {
	return binary.LittleEndian.Uint32(pid[:4]) % width
}

// messageLeaf computes the leaf hash for an occupied slot.
func messageLeaf(pid ProtocolID, msg chainhash.Hash) chainhash.Hash {
	return *chainhash.TaggedHash(TagLeaf, pid[:], msg[:])
}

// entropyLeaf computes the leaf hash for an unoccupied slot.
func entropyLeaf(entropy uint64, pos uint32) chainhash.Hash {
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[:8], entropy)
	binary.LittleEndian.PutUint32(buf[8:], pos)
	return *chainhash.TaggedHash(TagEntropy, buf[:])
}

// branchHash computes an internal node from its two children. The order of
// the children is significant: the tree is ordered, not sorted, so swapping
// siblings produces a different root.
func branchHash(left, right chainhash.Hash) chainhash.Hash {
	return *chainhash.TaggedHash(TagBranch, left[:], right[:])
}
