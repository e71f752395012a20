// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dbc

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Method enumerates the supported commitment embedding methods.
type Method uint8

const (
	// MethodKeyTweak embeds the commitment by tweaking the output key.
	MethodKeyTweak Method = iota

	// MethodTapret embeds the commitment as a tapscript leaf.
	MethodTapret

	// MethodOpret embeds the commitment as an OP_RETURN payload.
	MethodOpret
)

// String returns a human-readable name of the embedding method.
func (m Method) String() string {
	switch m {
	case MethodKeyTweak:
		return "keytweak"
	case MethodTapret:
		return "tapret"
	case MethodOpret:
		return "opret"
	default:
		return "unknown"
	}
}

// Status is the outcome of verifying a commitment proof.
type Status uint8

const (
	// StatusValid means the output script commits to the message under
	// the proof.
	StatusValid Status = iota

	// StatusInvalid means the output script does not commit to the
	// message. This is an expected outcome for adversarial input, not an
	// error.
	StatusInvalid

	// StatusMalformed means the proof is internally inconsistent and no
	// judgement about the commitment could be made.
	StatusMalformed
)

// String returns a human-readable name of the verification status.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Proof carries the opening data needed to verify an embedded commitment
// against an output script without any further chain context.
type Proof struct {
	// Method is the embedding method the commitment used.
	Method Method

	// InternalKey is the original (pre-tweak) output key for
	// MethodKeyTweak, or the taproot internal key for MethodTapret. Nil
	// for MethodOpret.
	InternalKey *btcec.PublicKey

	// PriorRoot is the tapscript root the output carried before the
	// commitment was embedded, for MethodTapret outputs that already had
	// a script tree. Nil otherwise.
	PriorRoot *chainhash.Hash
}

// Commit embeds msg into the output described by desc, returning the
// committed descriptor together with the proof needed to verify the
// embedding. The embedding method is a total, deterministic function of the
// descriptor kind; identical inputs always yield identical outputs.
func Commit(desc Descriptor, msg chainhash.Hash) (Descriptor, *Proof, error) {
	switch desc.Kind {
	case KindKey:
		if desc.Key == nil {
			return Descriptor{}, nil, ErrMissingKey
		}

		tweaked, _, err := TweakPubKey(desc.Key, msg, TagSealCommit)
		if err != nil {
			return Descriptor{}, nil, err
		}

		committed := Descriptor{Kind: KindKey, Key: tweaked}
		proof := &Proof{
			Method:      MethodKeyTweak,
			InternalKey: desc.Key,
		}
		return committed, proof, nil

	case KindTaproot:
		if desc.Key == nil {
			return Descriptor{}, nil, ErrMissingKey
		}

		root, err := tapretScriptRoot(msg, desc.ScriptRoot)
		if err != nil {
			return Descriptor{}, nil, err
		}

		committed := Descriptor{
			Kind:       KindTaproot,
			Key:        desc.Key,
			ScriptRoot: &root,
		}
		proof := &Proof{
			Method:      MethodTapret,
			InternalKey: desc.Key,
			PriorRoot:   desc.ScriptRoot,
		}
		return committed, proof, nil

	case KindOpReturn:
		digest := opretCommitment(msg)
		committed := Descriptor{
			Kind:       KindOpReturn,
			Commitment: &digest,
		}
		return committed, &Proof{Method: MethodOpret}, nil

	default:
		return Descriptor{}, nil, ErrUnsupportedScriptType
	}
}

// Verify checks whether pkScript commits to msg under the proof. It is the
// exact inverse of Commit: it accepts every script Commit produces for the
// matching message and rejects any other message short of a hash collision.
func (p *Proof) Verify(msg chainhash.Hash, pkScript []byte) Status {
	expected, status := p.expectedScript(msg)
	if status != StatusValid {
		return status
	}

	if !bytes.Equal(expected, pkScript) {
		return StatusInvalid
	}
	return StatusValid
}

// VerifyTx checks whether any output of tx commits to msg under the proof.
func (p *Proof) VerifyTx(msg chainhash.Hash, tx *wire.MsgTx) Status {
	expected, status := p.expectedScript(msg)
	if status != StatusValid {
		return status
	}

	for _, txOut := range tx.TxOut {
		if bytes.Equal(expected, txOut.PkScript) {
			return StatusValid
		}
	}
	return StatusInvalid
}

// expectedScript recomputes the committed output script the proof asserts.
// A structurally inconsistent proof yields StatusMalformed.
func (p *Proof) expectedScript(msg chainhash.Hash) ([]byte, Status) {
	if p == nil {
		return nil, StatusMalformed
	}

	switch p.Method {
	case MethodKeyTweak:
		if p.InternalKey == nil || p.PriorRoot != nil {
			return nil, StatusMalformed
		}

		tweaked, _, err := TweakPubKey(
			p.InternalKey, msg, TagSealCommit,
		)
		if err != nil {
			return nil, StatusMalformed
		}

		script, err := keyScript(tweaked)
		if err != nil {
			return nil, StatusMalformed
		}
		return script, StatusValid

	case MethodTapret:
		if p.InternalKey == nil {
			return nil, StatusMalformed
		}

		committed := Descriptor{
			Kind: KindTaproot,
			Key:  p.InternalKey,
		}
		root, err := tapretScriptRoot(msg, p.PriorRoot)
		if err != nil {
			return nil, StatusMalformed
		}
		committed.ScriptRoot = &root

		script, err := committed.PkScript()
		if err != nil {
			return nil, StatusMalformed
		}
		return script, StatusValid

	case MethodOpret:
		if p.InternalKey != nil || p.PriorRoot != nil {
			return nil, StatusMalformed
		}

		script, err := opReturnScript(opretCommitment(msg))
		if err != nil {
			return nil, StatusMalformed
		}
		return script, StatusValid

	default:
		return nil, StatusMalformed
	}
}

// Serialize encodes the proof into w using a fixed field order.
func (p *Proof) Serialize(w io.Writer) error {
	if _, err := w.Write([]byte{byte(p.Method)}); err != nil {
		return err
	}

	switch p.Method {
	case MethodKeyTweak:
		if p.InternalKey == nil {
			return ErrMissingKey
		}
		_, err := w.Write(p.InternalKey.SerializeCompressed())
		return err

	case MethodTapret:
		if p.InternalKey == nil {
			return ErrMissingKey
		}
		key := p.InternalKey.SerializeCompressed()
		if _, err := w.Write(key); err != nil {
			return err
		}
		return writeOptionalHash(w, p.PriorRoot)

	case MethodOpret:
		return nil

	default:
		return ErrUnsupportedScriptType
	}
}

// Deserialize decodes a proof from r.
func (p *Proof) Deserialize(r io.Reader) error {
	var method [1]byte
	if _, err := io.ReadFull(r, method[:]); err != nil {
		return err
	}

	*p = Proof{Method: Method(method[0])}
	switch p.Method {
	case MethodKeyTweak:
		key, err := readPubKey(r)
		if err != nil {
			return err
		}
		p.InternalKey = key
		return nil

	case MethodTapret:
		key, err := readPubKey(r)
		if err != nil {
			return err
		}
		p.InternalKey = key

		root, err := readOptionalHash(r)
		if err != nil {
			return err
		}
		p.PriorRoot = root
		return nil

	case MethodOpret:
		return nil

	default:
		return ErrUnsupportedScriptType
	}
}
