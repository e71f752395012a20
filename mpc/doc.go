// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mpc implements multi-protocol commitments: an ordered merkle tree
which aggregates message digests from multiple independent protocols into a
single 32-byte root suitable for embedding into a bitcoin transaction output.

Each protocol occupies a deterministic slot in the tree derived from its
protocol id, so independent parties constructing the same tree from the same
source always arrive at the same root. A per-slot inclusion proof allows a
protocol to later demonstrate its message participates in the root without
revealing any other slot. Mutating any message, or moving a message between
slots, changes the root and therefore invalidates every other slot's proof.

Empty slots are filled with leaves derived from caller-supplied entropy. The
entropy is an explicit input rather than ambient randomness so that tree
construction stays a pure function of its inputs.
*/
package mpc
