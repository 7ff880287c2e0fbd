/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package crypto provides the signature primitives behind every didtrust key: Ed25519 (EdDSA) and
// secp256k1 (ES256K), operating on JWKs.
//
// Signers and verifiers are created from JWKs with NewSigner and NewVerifier, which dispatch on
// the JWK curve. Callers outside of key managers should hold a Signer, never the private JWK.
package crypto

import (
	"io"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

// Signer produces signatures over arbitrary payloads.
type Signer interface {
	Sign(payload []byte) ([]byte, error)
	// Algorithm returns the JOSE algorithm name of the signatures produced, e.g. "EdDSA".
	Algorithm() string
}

// Verifier checks signatures over arbitrary payloads.
// Verify returns nil only when the signature is valid.
type Verifier interface {
	Verify(payload, signature []byte) error
	Algorithm() string
}

// Curve identifies a supported signature curve.
type Curve string

// Supported curves.
const (
	Ed25519   Curve = jwk.CurveEd25519
	Secp256k1 Curve = jwk.CurveSecp256k1
)

// Crypto errors.
var (
	ErrMissingPrivateKey      = errors.New("missing private key")
	ErrDecode                 = errors.New("failed to decode key material")
	ErrInvalidKeyLength       = errors.New("invalid key length")
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrPublicKeyFailure       = errors.New("invalid public key")
	ErrPrivateKeyFailure      = errors.New("invalid private key")
	ErrVerificationFailure    = errors.New("signature verification failed")
	ErrUnsupportedCurve       = errors.New("unsupported curve")
	ErrUnsupportedAlgorithm   = errors.New("unsupported algorithm")
)

// Algorithm returns the JOSE algorithm name for the curve.
func (c Curve) Algorithm() (string, error) {
	switch c {
	case Ed25519:
		return jwk.AlgorithmEdDSA, nil
	case Secp256k1:
		return jwk.AlgorithmES256K, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedCurve, "curve %q", string(c))
	}
}

// CurveForAlgorithm maps a JOSE "alg" value to its curve.
// "Ed25519" is accepted as an alias of "EdDSA" since some documents carry it in the JWK alg member.
func CurveForAlgorithm(alg string) (Curve, error) {
	switch alg {
	case jwk.AlgorithmEdDSA, jwk.CurveEd25519:
		return Ed25519, nil
	case jwk.AlgorithmES256K:
		return Secp256k1, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedAlgorithm, "alg %q", alg)
	}
}

// GenerateKey creates a new private JWK on the curve, reading entropy from rand.
// A nil rand uses crypto/rand.
func GenerateKey(curve Curve, rand io.Reader) (jwk.JWK, error) {
	switch curve {
	case Ed25519:
		return GenerateEd25519(rand)
	case Secp256k1:
		return GenerateSecp256k1(rand)
	default:
		return jwk.JWK{}, errors.Wrapf(ErrUnsupportedCurve, "curve %q", string(curve))
	}
}

// NewSigner returns a Signer for a private JWK.
func NewSigner(privateKey jwk.JWK) (Signer, error) {
	if !privateKey.IsPrivate() {
		return nil, ErrMissingPrivateKey
	}

	switch Curve(privateKey.Crv) {
	case Ed25519:
		return NewEd25519Signer(privateKey)
	case Secp256k1:
		return NewSecp256k1Signer(privateKey)
	default:
		return nil, errors.Wrapf(ErrUnsupportedCurve, "curve %q", privateKey.Crv)
	}
}

// NewVerifier returns a Verifier for a public (or private) JWK.
func NewVerifier(publicKey jwk.JWK) (Verifier, error) {
	switch Curve(publicKey.Crv) {
	case Ed25519:
		return NewEd25519Verifier(publicKey)
	case Secp256k1:
		return NewSecp256k1Verifier(publicKey)
	default:
		return nil, errors.Wrapf(ErrUnsupportedCurve, "curve %q", publicKey.Crv)
	}
}

func decodeMember(name, member string) ([]byte, error) {
	b, err := jwk.DecodeMember(member)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "jwk member %s: %s", name, err.Error())
	}

	return b, nil
}
