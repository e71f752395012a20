// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dbc

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// TagTapretCommit is the tagged hash prefix for commitment digests
	// embedded as tapscript leaves.
	TagTapretCommit = []byte("bp/tapret")

	// TagOpretCommit is the tagged hash prefix for commitment digests
	// carried by OP_RETURN outputs.
	TagOpretCommit = []byte("bp/opret")
)

// opReturnScript renders a data-carrier script with the commitment digest as
// its sole payload.
func opReturnScript(commitment chainhash.Hash) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData(commitment[:]).
		Script()
}

// opretCommitment derives the digest embedded by the opret method.
func opretCommitment(msg chainhash.Hash) chainhash.Hash {
	return *chainhash.TaggedHash(TagOpretCommit, msg[:])
}

// commitmentLeaf builds the tapscript leaf carrying a tapret commitment. The
// leaf script is an unspendable OP_RETURN push of the tagged commitment
// digest, so adding it never widens the spending policy of the output.
func commitmentLeaf(msg chainhash.Hash) (txscript.TapLeaf, error) {
	digest := chainhash.TaggedHash(TagTapretCommit, msg[:])
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData(digest[:]).
		Script()
	if err != nil {
		return txscript.TapLeaf{}, err
	}

	return txscript.NewBaseTapLeaf(script), nil
}

// tapretScriptRoot computes the tapscript root of an output after embedding
// a tapret commitment: the commitment leaf alone when the output had no
// script tree, or a branch over the prior root and the commitment leaf.
func tapretScriptRoot(msg chainhash.Hash,
	priorRoot *chainhash.Hash) (chainhash.Hash, error) {

	leaf, err := commitmentLeaf(msg)
	if err != nil {
		return chainhash.Hash{}, err
	}

	leafHash := leaf.TapHash()
	if priorRoot == nil {
		return leafHash, nil
	}
	return tapBranchHash(*priorRoot, leafHash), nil
}

// tapBranchHash hashes two tapscript tree nodes into their parent, ordering
// the children lexicographically as BIP 341 requires.
func tapBranchHash(l, r chainhash.Hash) chainhash.Hash {
	if bytes.Compare(l[:], r[:]) > 0 {
		l, r = r, l
	}
	return *chainhash.TaggedHash(chainhash.TagTapBranch, l[:], r[:])
}

// taprootOutputKey computes the taproot output key of an internal key with
// an optional tapscript root.
func taprootOutputKey(internalKey *btcec.PublicKey,
	scriptRoot *chainhash.Hash) *btcec.PublicKey {

	if scriptRoot == nil {
		return txscript.ComputeTaprootKeyNoScript(internalKey)
	}
	return txscript.ComputeTaprootOutputKey(internalKey, scriptRoot[:])
}
