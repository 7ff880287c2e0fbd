/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

const (
	secp256k1CoordSize     = 32
	secp256k1SignatureSize = 2 * secp256k1CoordSize
	uncompressedPrefix     = 0x04
)

// GenerateSecp256k1 creates a new secp256k1 private JWK.
func GenerateSecp256k1(r io.Reader) (jwk.JWK, error) {
	if r == nil {
		r = rand.Reader
	}

	priv, err := secp256k1.GeneratePrivateKeyFromRand(r)
	if err != nil {
		return jwk.JWK{}, errors.Wrap(ErrPrivateKeyFailure, err.Error())
	}

	k := Secp256k1PublicJWK(priv.PubKey())
	d := priv.Key.Bytes()
	k.D = jwk.EncodeMember(d[:])

	return k, nil
}

// Secp256k1PublicJWK builds the public JWK for a secp256k1 public key.
func Secp256k1PublicJWK(pub *btcec.PublicKey) jwk.JWK {
	uncompressed := pub.SerializeUncompressed()

	return jwk.JWK{
		Alg: jwk.AlgorithmES256K,
		Kty: jwk.KeyTypeEC,
		Crv: jwk.CurveSecp256k1,
		X:   jwk.EncodeMember(uncompressed[1 : 1+secp256k1CoordSize]),
		Y:   jwk.EncodeMember(uncompressed[1+secp256k1CoordSize:]),
	}
}

// Secp256k1PublicKey parses the public point of a secp256k1 JWK.
func Secp256k1PublicKey(key jwk.JWK) (*btcec.PublicKey, error) {
	if key.Crv != jwk.CurveSecp256k1 {
		return nil, errors.Wrapf(ErrUnsupportedCurve, "expected %s, got %q", jwk.CurveSecp256k1, key.Crv)
	}

	x, err := decodeMember("x", key.X)
	if err != nil {
		return nil, err
	}

	y, err := decodeMember("y", key.Y)
	if err != nil {
		return nil, err
	}

	if len(x) != secp256k1CoordSize || len(y) != secp256k1CoordSize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "secp256k1 coordinates must be %d bytes", secp256k1CoordSize)
	}

	uncompressed := make([]byte, 0, 1+2*secp256k1CoordSize)
	uncompressed = append(uncompressed, uncompressedPrefix)
	uncompressed = append(uncompressed, x...)
	uncompressed = append(uncompressed, y...)

	pub, err := btcec.ParsePubKey(uncompressed)
	if err != nil {
		return nil, errors.Wrap(ErrPublicKeyFailure, err.Error())
	}

	return pub, nil
}

type secp256k1Signer struct {
	privateKey *btcec.PrivateKey
}

// NewSecp256k1Signer returns a Signer producing compact 64-byte r||s ES256K signatures.
func NewSecp256k1Signer(privateKey jwk.JWK) (Signer, error) {
	if !privateKey.IsPrivate() {
		return nil, ErrMissingPrivateKey
	}

	d, err := decodeMember("d", privateKey.D)
	if err != nil {
		return nil, err
	}

	if len(d) != secp256k1CoordSize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "secp256k1 private key must be %d bytes, got %d",
			secp256k1CoordSize, len(d))
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(d); overflow || scalar.IsZero() {
		return nil, errors.Wrap(ErrPrivateKeyFailure, "secp256k1 private key out of range")
	}

	priv, _ := btcec.PrivKeyFromBytes(d)

	return &secp256k1Signer{privateKey: priv}, nil
}

// Sign hashes the payload with SHA-256 and signs it with RFC 6979 deterministic ECDSA.
func (s *secp256k1Signer) Sign(payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)

	sig := ecdsa.Sign(s.privateKey, digest[:])

	r := sig.R()
	sv := sig.S()
	rb := r.Bytes()
	sb := sv.Bytes()

	out := make([]byte, 0, secp256k1SignatureSize)
	out = append(out, rb[:]...)
	out = append(out, sb[:]...)

	return out, nil
}

func (s *secp256k1Signer) Algorithm() string {
	return jwk.AlgorithmES256K
}

type secp256k1Verifier struct {
	publicKey *btcec.PublicKey
}

// NewSecp256k1Verifier returns a Verifier for compact ES256K signatures.
func NewSecp256k1Verifier(publicKey jwk.JWK) (Verifier, error) {
	pub, err := Secp256k1PublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	return &secp256k1Verifier{publicKey: pub}, nil
}

func (v *secp256k1Verifier) Verify(payload, signature []byte) error {
	if len(signature) != secp256k1SignatureSize {
		return errors.Wrapf(ErrInvalidSignatureLength, "secp256k1 signature must be %d bytes, got %d",
			secp256k1SignatureSize, len(signature))
	}

	var r, s btcec.ModNScalar

	if overflow := r.SetByteSlice(signature[:secp256k1CoordSize]); overflow || r.IsZero() {
		return errors.Wrap(ErrVerificationFailure, "secp256k1: invalid r")
	}

	if overflow := s.SetByteSlice(signature[secp256k1CoordSize:]); overflow || s.IsZero() {
		return errors.Wrap(ErrVerificationFailure, "secp256k1: invalid s")
	}

	digest := sha256.Sum256(payload)

	if !ecdsa.NewSignature(&r, &s).Verify(digest[:], v.publicKey) {
		return errors.Wrap(ErrVerificationFailure, "secp256k1: signature doesn't match")
	}

	return nil
}

func (v *secp256k1Verifier) Algorithm() string {
	return jwk.AlgorithmES256K
}
