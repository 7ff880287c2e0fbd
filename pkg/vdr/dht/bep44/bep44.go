/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bep44 encodes BEP44 mutable items as exchanged with a did:dht gateway:
// signature (64 bytes) || seq (big-endian) || v.
package bep44

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

const (
	// SignatureSize is the size of an Ed25519 signature.
	SignatureSize = 64
	// MaxValueSize is the largest v a mutable item may carry.
	MaxValueSize = 1000
	// DefaultSeqWidth is the width of seq on the wire, in bytes.
	DefaultSeqWidth = 8
	// WideSeqWidth is the 16 byte seq encoding some gateways emit.
	WideSeqWidth = 16
)

// BEP44 errors.
var (
	ErrValueTooLarge    = errors.New("bep44 value too large")
	ErrMessageTooShort  = errors.New("bep44 message too short")
	ErrInvalidSeqWidth  = errors.New("invalid bep44 seq width")
	ErrSeqOutOfRange    = errors.New("bep44 seq out of range")
	ErrInvalidSignature = errors.New("invalid bep44 signature")
)

// Message is a signed BEP44 mutable item.
type Message struct {
	Sig [SignatureSize]byte
	Seq int64
	V   []byte
}

// SignableBytes returns the bencoded "3:seqi<seq>e1:v<len>:<v>" buffer covered by the signature.
func SignableBytes(seq int64, v []byte) []byte {
	out := make([]byte, 0, len(v)+32) //nolint:gomnd
	out = append(out, "3:seqi"...)
	out = strconv.AppendInt(out, seq, 10)
	out = append(out, "e1:v"...)
	out = strconv.AppendInt(out, int64(len(v)), 10)
	out = append(out, ':')

	return append(out, v...)
}

// NewMessage signs v at sequence number seq.
func NewMessage(v []byte, seq int64, signer crypto.Signer) (*Message, error) {
	if len(v) > MaxValueSize {
		return nil, errors.Wrapf(ErrValueTooLarge, "%d bytes, at most %d", len(v), MaxValueSize)
	}

	if seq < 0 {
		return nil, errors.Wrapf(ErrSeqOutOfRange, "negative seq %d", seq)
	}

	sig, err := signer.Sign(SignableBytes(seq, v))
	if err != nil {
		return nil, errors.Wrap(err, "sign bep44 message")
	}

	if len(sig) != SignatureSize {
		return nil, errors.Wrapf(ErrInvalidSignature, "signature has %d bytes", len(sig))
	}

	m := &Message{Seq: seq, V: append([]byte(nil), v...)}
	copy(m.Sig[:], sig)

	return m, nil
}

// Marshal encodes the message with seq written in seqWidth bytes.
func (m *Message) Marshal(seqWidth int) ([]byte, error) {
	if err := checkSeqWidth(seqWidth); err != nil {
		return nil, err
	}

	if m.Seq < 0 {
		return nil, errors.Wrapf(ErrSeqOutOfRange, "negative seq %d", m.Seq)
	}

	out := make([]byte, SignatureSize+seqWidth, SignatureSize+seqWidth+len(m.V))
	copy(out, m.Sig[:])
	binary.BigEndian.PutUint64(out[SignatureSize+seqWidth-8:], uint64(m.Seq))

	return append(out, m.V...), nil
}

// Unmarshal decodes a message whose seq is seqWidth bytes wide. The signature is not checked.
func Unmarshal(b []byte, seqWidth int) (*Message, error) {
	if err := checkSeqWidth(seqWidth); err != nil {
		return nil, err
	}

	if len(b) < SignatureSize+seqWidth {
		return nil, errors.Wrapf(ErrMessageTooShort, "%d bytes, at least %d", len(b), SignatureSize+seqWidth)
	}

	v := b[SignatureSize+seqWidth:]
	if len(v) > MaxValueSize {
		return nil, errors.Wrapf(ErrValueTooLarge, "%d bytes, at most %d", len(v), MaxValueSize)
	}

	seqBytes := b[SignatureSize : SignatureSize+seqWidth]

	for _, high := range seqBytes[:seqWidth-8] {
		if high != 0 {
			return nil, errors.Wrap(ErrSeqOutOfRange, "seq does not fit in 64 bits")
		}
	}

	seq := binary.BigEndian.Uint64(seqBytes[seqWidth-8:])
	if seq > math.MaxInt64 {
		return nil, errors.Wrapf(ErrSeqOutOfRange, "seq %d", seq)
	}

	m := &Message{Seq: int64(seq), V: append([]byte(nil), v...)}
	copy(m.Sig[:], b[:SignatureSize])

	return m, nil
}

// Verify checks the signature against an Ed25519 public key.
func (m *Message) Verify(publicKey jwk.JWK) error {
	verifier, err := crypto.NewEd25519Verifier(publicKey)
	if err != nil {
		return errors.Wrap(err, "bep44 verifier")
	}

	if err := verifier.Verify(SignableBytes(m.Seq, m.V), m.Sig[:]); err != nil {
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}

	return nil
}

func checkSeqWidth(seqWidth int) error {
	if seqWidth != DefaultSeqWidth && seqWidth != WideSeqWidth {
		return errors.Wrapf(ErrInvalidSeqWidth, "%d, expected %d or %d", seqWidth, DefaultSeqWidth, WideSeqWidth)
	}

	return nil
}
