/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"

	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

// GenerateEd25519 creates a new Ed25519 private JWK.
func GenerateEd25519(r io.Reader) (jwk.JWK, error) {
	if r == nil {
		r = rand.Reader
	}

	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return jwk.JWK{}, errors.Wrap(ErrPrivateKeyFailure, err.Error())
	}

	return Ed25519PrivateJWK(priv.Seed(), pub), nil
}

// Ed25519PublicJWK builds the public JWK for a raw Ed25519 public key.
func Ed25519PublicJWK(pub []byte) jwk.JWK {
	return jwk.JWK{
		Alg: jwk.AlgorithmEdDSA,
		Kty: jwk.KeyTypeOKP,
		Crv: jwk.CurveEd25519,
		X:   jwk.EncodeMember(pub),
	}
}

// Ed25519PrivateJWK builds the private JWK from a 32-byte seed and its public key.
func Ed25519PrivateJWK(seed, pub []byte) jwk.JWK {
	k := Ed25519PublicJWK(pub)
	k.D = jwk.EncodeMember(seed)

	return k
}

// Ed25519PublicKey decodes the raw public key of an Ed25519 JWK.
func Ed25519PublicKey(key jwk.JWK) (ed25519.PublicKey, error) {
	if key.Crv != jwk.CurveEd25519 {
		return nil, errors.Wrapf(ErrUnsupportedCurve, "expected %s, got %q", jwk.CurveEd25519, key.Crv)
	}

	x, err := decodeMember("x", key.X)
	if err != nil {
		return nil, err
	}

	if len(x) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "ed25519 public key must be %d bytes, got %d",
			ed25519.PublicKeySize, len(x))
	}

	return ed25519.PublicKey(x), nil
}

type ed25519Signer struct {
	privateKey ed25519.PrivateKey
}

// NewEd25519Signer returns a Signer for an Ed25519 private JWK.
func NewEd25519Signer(privateKey jwk.JWK) (Signer, error) {
	if !privateKey.IsPrivate() {
		return nil, ErrMissingPrivateKey
	}

	d, err := decodeMember("d", privateKey.D)
	if err != nil {
		return nil, err
	}

	if len(d) != ed25519.SeedSize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "ed25519 private key must be %d bytes, got %d",
			ed25519.SeedSize, len(d))
	}

	return &ed25519Signer{privateKey: ed25519.NewKeyFromSeed(d)}, nil
}

func (s *ed25519Signer) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(s.privateKey, payload), nil
}

func (s *ed25519Signer) Algorithm() string {
	return jwk.AlgorithmEdDSA
}

type ed25519Verifier struct {
	publicKey ed25519.PublicKey
}

// NewEd25519Verifier returns a Verifier for an Ed25519 JWK.
func NewEd25519Verifier(publicKey jwk.JWK) (Verifier, error) {
	pub, err := Ed25519PublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	return &ed25519Verifier{publicKey: pub}, nil
}

func (v *ed25519Verifier) Verify(payload, signature []byte) error {
	if len(signature) != ed25519.SignatureSize {
		return errors.Wrapf(ErrInvalidSignatureLength, "ed25519 signature must be %d bytes, got %d",
			ed25519.SignatureSize, len(signature))
	}

	if !ed25519.Verify(v.publicKey, payload, signature) {
		return errors.Wrap(ErrVerificationFailure, "ed25519: signature doesn't match")
	}

	return nil
}

func (v *ed25519Verifier) Algorithm() string {
	return jwk.AlgorithmEdDSA
}
