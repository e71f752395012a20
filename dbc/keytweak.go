// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dbc

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// TagSealCommit is the default tagged hash prefix for commitment tweaks.
var TagSealCommit = []byte("seal-commit")

// maxTweakAttempts bounds the deterministic retry loop in TweakPubKey. A
// single attempt failing already requires finding a hash preimage of zero
// mod the curve order, so the bound is never expected to be reached.
const maxTweakAttempts = 256

// tweakScalar derives the commitment tweak for the given attempt:
// t = taggedHash(tag, serializedKey, msg) for the first attempt, with a
// one-byte counter appended to the hash input on each retry. The result is
// reduced mod the curve order by ModNScalar.
func tweakScalar(keyBytes []byte, msg chainhash.Hash, tag []byte,
	attempt int) btcec.ModNScalar {

	var hash *chainhash.Hash
	if attempt == 0 {
		hash = chainhash.TaggedHash(tag, keyBytes, msg[:])
	} else {
		hash = chainhash.TaggedHash(
			tag, keyBytes, msg[:], []byte{byte(attempt)},
		)
	}

	var scalar btcec.ModNScalar
	scalar.SetBytes((*[32]byte)(hash))
	return scalar
}

// TweakPubKey embeds msg into pub by computing pub + t*G, where
// t = taggedHash(tag, pub, msg) mod n. The derivation is deterministic:
// identical inputs always produce the identical tweaked key and scalar. In
// the negligible-probability cases of a zero scalar or a point-at-infinity
// result the derivation retries with an incrementing counter appended to the
// hash input, keeping the function total while still reproducible from
// (pub, msg, tag) alone.
func TweakPubKey(pub *btcec.PublicKey, msg chainhash.Hash,
	tag []byte) (*btcec.PublicKey, *btcec.ModNScalar, error) {

	if pub == nil {
		return nil, nil, ErrMissingKey
	}
	keyBytes := pub.SerializeCompressed()

	var pubPoint btcec.JacobianPoint
	pub.AsJacobian(&pubPoint)

	for attempt := 0; attempt < maxTweakAttempts; attempt++ {
		scalar := tweakScalar(keyBytes, msg, tag, attempt)
		if scalar.IsZero() {
			continue
		}

		// tweaked = pub + t*G.
		var tweakPoint, result secp.JacobianPoint
		btcec.ScalarBaseMultNonConst(&scalar, &tweakPoint)
		btcec.AddNonConst(&pubPoint, &tweakPoint, &result)

		// Retry if the result is the point at infinity.
		if (result.X.IsZero() && result.Y.IsZero()) ||
			result.Z.IsZero() {

			continue
		}

		result.ToAffine()
		return btcec.NewPublicKey(&result.X, &result.Y), &scalar, nil
	}

	return nil, nil, ErrTweakRetriesExhausted
}

// VerifyTweakedKey reports whether tweaked is the deterministic commitment
// tweak of orig for the given message and tag.
func VerifyTweakedKey(orig, tweaked *btcec.PublicKey, msg chainhash.Hash,
	tag []byte) bool {

	if orig == nil || tweaked == nil {
		return false
	}

	expected, _, err := TweakPubKey(orig, msg, tag)
	if err != nil {
		return false
	}

	return bytes.Equal(
		expected.SerializeCompressed(), tweaked.SerializeCompressed(),
	)
}

// parsePubKey decodes a compressed public key, mapping decode failures to
// ErrInvalidPoint.
func parsePubKey(b []byte) (*btcec.PublicKey, error) {
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	return pub, nil
}
