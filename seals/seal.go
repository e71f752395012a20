// Copyright (c) 2024 The bpsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seals

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// TagOutpointSeal is the tagged hash prefix for concealed seal identifiers.
var TagOutpointSeal = []byte("seals/outpoint")

// Seal is a single-use seal definition: a reference to exactly one
// not-yet-spent transaction output. The optional blinding factor allows the
// seal to be published in concealed form without revealing which outpoint it
// controls. Seals are immutable once constructed.
type Seal struct {
	// Prevout is the sealed outpoint.
	Prevout wire.OutPoint

	// Blinding is an explicit blinding factor for the concealed seal id.
	// Zero is a valid (unblinded) value.
	Blinding uint64
}

// New returns a seal over the given outpoint with no blinding.
func New(txid chainhash.Hash, index uint32) Seal {
	return Seal{Prevout: wire.OutPoint{Hash: txid, Index: index}}
}

// NewBlinded returns a seal over the given outpoint concealed with the given
// blinding factor. The blinding must be drawn by the caller; it is never
// generated here so seal construction stays deterministic.
func NewBlinded(txid chainhash.Hash, index uint32, blinding uint64) Seal {
	return Seal{
		Prevout:  wire.OutPoint{Hash: txid, Index: index},
		Blinding: blinding,
	}
}

// ID returns the concealed seal identifier: a tagged hash over the outpoint
// and the blinding factor. Publishing the id commits to the seal without
// revealing the outpoint until the seal is revealed.
func (s Seal) ID() chainhash.Hash {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[:4], s.Prevout.Index)
	binary.LittleEndian.PutUint64(buf[4:], s.Blinding)
	return *chainhash.TaggedHash(
		TagOutpointSeal, s.Prevout.Hash[:], buf[:],
	)
}

// VerifyID reports whether the seal matches a previously published
// concealed identifier.
func (s Seal) VerifyID(id chainhash.Hash) bool {
	return s.ID() == id
}

// String returns a human-readable form of the seal.
func (s Seal) String() string {
	return fmt.Sprintf("seal(%v)", s.Prevout)
}

// Serialize encodes the seal into w using a fixed field order.
func (s *Seal) Serialize(w io.Writer) error {
	if _, err := w.Write(s.Prevout.Hash[:]); err != nil {
		return err
	}

	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[:4], s.Prevout.Index)
	binary.LittleEndian.PutUint64(buf[4:], s.Blinding)
	_, err := w.Write(buf[:])
	return err
}

// Deserialize decodes a seal from r.
func (s *Seal) Deserialize(r io.Reader) error {
	if _, err := io.ReadFull(r, s.Prevout.Hash[:]); err != nil {
		return err
	}

	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	s.Prevout.Index = binary.LittleEndian.Uint32(buf[:4])
	s.Blinding = binary.LittleEndian.Uint64(buf[4:])
	return nil
}
