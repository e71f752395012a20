// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dbc

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// DescriptorKind enumerates the output kinds a commitment can target.
// Exactly one embedding method is legal per kind; the mapping is a total
// function implemented by Commit.
type DescriptorKind uint8

const (
	// KindKey is a plain key-backed output (pay-to-witness-pubkey-hash).
	// Commitments tweak the key itself.
	KindKey DescriptorKind = iota

	// KindTaproot is a taproot output described by its internal key and
	// an optional pre-existing tapscript root. Commitments add a
	// tapscript leaf and recompute the output key.
	KindTaproot

	// KindOpReturn is a data-carrier output. Commitments become the sole
	// OP_RETURN payload, burning the output value.
	KindOpReturn
)

// String returns a human-readable name of the descriptor kind.
func (k DescriptorKind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindTaproot:
		return "taproot"
	case KindOpReturn:
		return "op_return"
	default:
		return "unknown"
	}
}

// Descriptor describes a transaction output a commitment targets, or the
// committed output produced by Commit. It is a closed tagged variant over
// the supported output kinds; which fields are populated depends on Kind.
type Descriptor struct {
	// Kind selects the output kind and with it the embedding method.
	Kind DescriptorKind

	// Key is the output key for KindKey, or the taproot internal key for
	// KindTaproot. Nil for KindOpReturn.
	Key *btcec.PublicKey

	// ScriptRoot is the tapscript merkle root for KindTaproot, if the
	// output carries a script tree. Nil otherwise.
	ScriptRoot *chainhash.Hash

	// Commitment is the embedded digest of a committed KindOpReturn
	// descriptor. Nil before Commit and for all other kinds.
	Commitment *chainhash.Hash
}

// NewKeyDescriptor returns a descriptor for a plain key-backed output.
func NewKeyDescriptor(key *btcec.PublicKey) Descriptor {
	return Descriptor{Kind: KindKey, Key: key}
}

// NewTaprootDescriptor returns a descriptor for a taproot output with the
// given internal key and optional tapscript root.
func NewTaprootDescriptor(internalKey *btcec.PublicKey,
	scriptRoot *chainhash.Hash) Descriptor {

	return Descriptor{
		Kind:       KindTaproot,
		Key:        internalKey,
		ScriptRoot: scriptRoot,
	}
}

// NewOpReturnDescriptor returns a descriptor requesting a data-carrier
// output. The descriptor renders no script until it has been committed to.
func NewOpReturnDescriptor() Descriptor {
	return Descriptor{Kind: KindOpReturn}
}

// PkScript renders the on-chain output script of the descriptor.
func (d *Descriptor) PkScript() ([]byte, error) {
	switch d.Kind {
	case KindKey:
		if d.Key == nil {
			return nil, ErrMissingKey
		}
		return keyScript(d.Key)

	case KindTaproot:
		if d.Key == nil {
			return nil, ErrMissingKey
		}
		outputKey := taprootOutputKey(d.Key, d.ScriptRoot)
		return txscript.PayToTaprootScript(outputKey)

	case KindOpReturn:
		if d.Commitment == nil {
			return nil, ErrNoCommitment
		}
		return opReturnScript(*d.Commitment)

	default:
		return nil, ErrUnsupportedScriptType
	}
}

// keyScript renders the pay-to-witness-pubkey-hash script of a key.
func keyScript(key *btcec.PublicKey) ([]byte, error) {
	keyHash := btcutil.Hash160(key.SerializeCompressed())
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(keyHash).
		Script()
}

// Serialize encodes the descriptor into w using a fixed field order.
func (d *Descriptor) Serialize(w io.Writer) error {
	if _, err := w.Write([]byte{byte(d.Kind)}); err != nil {
		return err
	}

	switch d.Kind {
	case KindKey:
		if d.Key == nil {
			return ErrMissingKey
		}
		_, err := w.Write(d.Key.SerializeCompressed())
		return err

	case KindTaproot:
		if d.Key == nil {
			return ErrMissingKey
		}
		if _, err := w.Write(d.Key.SerializeCompressed()); err != nil {
			return err
		}
		return writeOptionalHash(w, d.ScriptRoot)

	case KindOpReturn:
		return writeOptionalHash(w, d.Commitment)

	default:
		return ErrUnsupportedScriptType
	}
}

// Deserialize decodes a descriptor from r.
func (d *Descriptor) Deserialize(r io.Reader) error {
	var kind [1]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return err
	}

	*d = Descriptor{Kind: DescriptorKind(kind[0])}
	switch d.Kind {
	case KindKey:
		key, err := readPubKey(r)
		if err != nil {
			return err
		}
		d.Key = key
		return nil

	case KindTaproot:
		key, err := readPubKey(r)
		if err != nil {
			return err
		}
		d.Key = key

		root, err := readOptionalHash(r)
		if err != nil {
			return err
		}
		d.ScriptRoot = root
		return nil

	case KindOpReturn:
		commitment, err := readOptionalHash(r)
		if err != nil {
			return err
		}
		d.Commitment = commitment
		return nil

	default:
		return ErrUnsupportedScriptType
	}
}

func readPubKey(r io.Reader) (*btcec.PublicKey, error) {
	var buf [btcec.PubKeyBytesLenCompressed]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return parsePubKey(buf[:])
}

func writeOptionalHash(w io.Writer, h *chainhash.Hash) error {
	if h == nil {
		_, err := w.Write([]byte{0x00})
		return err
	}
	if _, err := w.Write([]byte{0x01}); err != nil {
		return err
	}
	_, err := w.Write(h[:])
	return err
}

func readOptionalHash(r io.Reader) (*chainhash.Hash, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, err
	}
	if flag[0] == 0x00 {
		return nil, nil
	}

	var h chainhash.Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return nil, err
	}
	return &h, nil
}
