// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package dbc implements deterministic bitcoin commitments: embedding a 32-byte
message digest into a transaction output in a way that is binding and, for
the key-based embeddings, hidden from chain observers.

Three embedding methods are supported, selected by the kind of the output
descriptor the commitment targets:

  - Key tweak: the output key K is replaced with K + t*G where t is a tagged
    hash of the key and the message. The output remains spendable by whoever
    controls the original key and is indistinguishable from any other
    key-path output.

  - Tapret: the commitment is inserted as an additional tapscript leaf and
    the taproot output key is recomputed. Any pre-existing script tree
    remains spendable.

  - Opret: the commitment digest becomes the payload of an OP_RETURN output.
    This burns the output value and hides nothing, but requires no extra
    proof material.

Commit is a pure function of the descriptor and message, so independent
parties sharing the message deterministically agree on the committed output.
Verification checks a proof against the actual on-chain output script and
reports a first-class status instead of an error, since rejection is an
expected outcome when handling adversarial input.
*/
package dbc
