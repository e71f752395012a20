// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dbc

import "errors"

var (
	// ErrInvalidPoint is returned when a serialized public key does not
	// decode to a point on the secp256k1 curve.
	ErrInvalidPoint = errors.New("public key is not a valid curve point")

	// ErrMissingKey is returned when a descriptor kind that requires a
	// public key carries none.
	ErrMissingKey = errors.New("descriptor is missing a public key")

	// ErrUnsupportedScriptType is returned when a descriptor does not
	// match any supported embedding strategy.
	ErrUnsupportedScriptType = errors.New("unsupported script type")

	// ErrNoCommitment is returned when rendering the script of a
	// data-carrier descriptor that has not been committed to yet.
	ErrNoCommitment = errors.New("descriptor carries no commitment")

	// ErrTweakRetriesExhausted is returned when no usable tweak scalar
	// could be derived. With a sound hash function this is never expected
	// to happen.
	ErrTweakRetriesExhausted = errors.New("tweak derivation retries exhausted")
)
