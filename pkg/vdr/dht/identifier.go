/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dht

import (
	"crypto/ed25519"
	"fmt"

	"github.com/multiformats/go-base32"

	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

const zbase32Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

// IdentifierLength is the length of a did:dht method-specific id.
const IdentifierLength = 52

var zbase32 = base32.NewEncoding(zbase32Alphabet).WithPadding(base32.NoPadding) //nolint:gochecknoglobals

// IdentityKey decodes the Ed25519 identity key from a did:dht method-specific id.
func IdentityKey(id string) (jwk.JWK, error) {
	if len(id) != IdentifierLength {
		return jwk.JWK{}, fmt.Errorf("%w: identifier has %d characters, expected %d",
			did.InvalidDID, len(id), IdentifierLength)
	}

	raw, err := zbase32.DecodeString(id)
	if err != nil {
		return jwk.JWK{}, fmt.Errorf("%w: decode identifier: %s", did.InvalidDID, err.Error())
	}

	if len(raw) != ed25519.PublicKeySize || zbase32.EncodeToString(raw) != id {
		return jwk.JWK{}, fmt.Errorf("%w: identifier is not a z-base-32 Ed25519 key", did.InvalidDID)
	}

	return crypto.Ed25519PublicJWK(raw), nil
}

// Identifier returns the method-specific id for an Ed25519 identity key.
func Identifier(identityKey jwk.JWK) (string, error) {
	pub, err := crypto.Ed25519PublicKey(identityKey)
	if err != nil {
		return "", fmt.Errorf("identity key: %w", err)
	}

	return zbase32.EncodeToString(pub), nil
}

// DIDFromKey returns the did:dht URI of an Ed25519 identity key.
func DIDFromKey(identityKey jwk.JWK) (string, error) {
	id, err := Identifier(identityKey)
	if err != nil {
		return "", err
	}

	return "did:" + namespace + ":" + id, nil
}
