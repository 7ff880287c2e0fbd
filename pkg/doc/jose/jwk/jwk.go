/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwk holds the normalised JSON Web Key record used for every key in didtrust.
package jwk

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Key types.
const (
	KeyTypeOKP = "OKP"
	KeyTypeEC  = "EC"
)

// Curves.
const (
	CurveEd25519   = "Ed25519"
	CurveSecp256k1 = "secp256k1"
	CurveX25519    = "X25519"
)

// Algorithms.
const (
	AlgorithmEdDSA        = "EdDSA"
	AlgorithmES256K       = "ES256K"
	AlgorithmECDHESA256KW = "ECDH-ES+A256KW"
)

// ErrInvalidKey is returned when a JWK misses a required member or carries an unknown key type.
var ErrInvalidKey = errors.New("invalid JWK")

// JWK (JSON Web Key) is a JSON data structure that represents a cryptographic key.
// D is only set for private keys. All byte members are base64url without padding.
type JWK struct {
	Alg string `json:"alg,omitempty"`
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	D   string `json:"d,omitempty"`
	X   string `json:"x"`
	Y   string `json:"y,omitempty"`
}

// IsPrivate reports whether the key carries private material.
func (j JWK) IsPrivate() bool {
	return j.D != ""
}

// Public returns a copy of the key with the private member removed.
func (j JWK) Public() JWK {
	j.D = ""

	return j
}

// Validate checks the members required for the key type.
func (j JWK) Validate() error {
	if j.Crv == "" {
		return fmt.Errorf("%w: missing crv", ErrInvalidKey)
	}

	if j.X == "" {
		return fmt.Errorf("%w: missing x", ErrInvalidKey)
	}

	switch j.Kty {
	case KeyTypeOKP:
		return nil
	case KeyTypeEC:
		if j.Y == "" {
			return fmt.Errorf("%w: missing y for EC key", ErrInvalidKey)
		}

		return nil
	case "":
		return fmt.Errorf("%w: missing kty", ErrInvalidKey)
	default:
		return fmt.Errorf("%w: unsupported kty %s", ErrInvalidKey, j.Kty)
	}
}

// thumbprint members in the lexicographic order required by RFC 7638.
type ecThumbprintInput struct {
	Crv string `json:"crv"`
	Kty string `json:"kty"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type okpThumbprintInput struct {
	Crv string `json:"crv"`
	Kty string `json:"kty"`
	X   string `json:"x"`
}

// Thumbprint computes the RFC 7638 SHA-256 thumbprint, base64url encoded without padding.
// The digest input is built from a fixed member order, so equal keys always share a thumbprint.
func (j JWK) Thumbprint() (string, error) {
	if err := j.Validate(); err != nil {
		return "", err
	}

	var input interface{}

	if j.Kty == KeyTypeEC {
		input = ecThumbprintInput{Crv: j.Crv, Kty: j.Kty, X: j.X, Y: j.Y}
	} else {
		input = okpThumbprintInput{Crv: j.Crv, Kty: j.Kty, X: j.X}
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal thumbprint input: %w", err)
	}

	digest := sha256.Sum256(raw)

	return base64.RawURLEncoding.EncodeToString(digest[:]), nil
}

// Parse decodes a JWK from its JSON form and validates it.
func Parse(raw []byte) (JWK, error) {
	var j JWK

	if err := json.Unmarshal(raw, &j); err != nil {
		return JWK{}, fmt.Errorf("%w: %s", ErrInvalidKey, err.Error())
	}

	if err := j.Validate(); err != nil {
		return JWK{}, err
	}

	return j, nil
}

// DecodeMember decodes a base64url member, tolerating padding.
func DecodeMember(member string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(member)
	if err != nil {
		b, err = base64.URLEncoding.DecodeString(member)
	}

	return b, err
}

// EncodeMember encodes raw bytes as a base64url member without padding.
func EncodeMember(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
