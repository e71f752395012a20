// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package anchor packages a deterministic bitcoin commitment opening together
with a reference to the confirming transaction into a portable,
chain-independent proof.

An anchor carries the confirming transaction id, the embedding proof and the
aggregation inclusion path for one protocol slot. Anchors serialize with a
fixed, versioned field order so two anchors with identical logical content
always produce identical bytes, which makes anchor ids stable for
deduplication. Resolving an anchor re-runs commitment verification against
the confirmed transaction retrieved through a caller-injected lookup.
*/
package anchor
