// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package seals implements bitcoin single-use seals: commitments whose opening
is bound to the spend of a designated, previously unspent transaction output.
The ledger's single-spend rule guarantees a seal closes at most once; this
package only computes and judges the commitments, it never touches the chain
itself.

Closing a seal produces an unsigned transaction skeleton spending the sealed
outpoint with an output that deterministically commits to the closing
message. Multiple seals can close jointly in one transaction, in which case
their messages aggregate into a single multi-protocol commitment root and
each seal receives its own inclusion proof.

All chain facts (spend status, confirmed transactions) are supplied by the
caller through the Resolver interface. A resolver that cannot answer yields
StatusUnknown, which is deliberately distinct from StatusInvalid: consensus
ambiguity requires re-querying later, not rejection.
*/
package seals
