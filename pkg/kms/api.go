/*
 Copyright SecureKey Technologies Inc. All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

// Package kms defines the key manager contract. Key managers hold private JWKs and hand out
// signers; callers only ever see public JWKs and aliases.
package kms

import (
	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

// Key manager errors.
var (
	ErrKeyNotFound         = errors.New("key not found")
	ErrKeyGenerationFailed = errors.New("key generation failed")
	ErrPublicKeyImport     = errors.New("cannot import a public key as a private key")
	ErrPrivateKeyRequest   = errors.New("signer lookup requires a public key")
)

// KeyManager manages private keys addressed by alias. The alias of a key is the thumbprint of
// its public JWK.
type KeyManager interface {
	// GeneratePrivateKey creates and stores a new key on the curve and returns its alias.
	GeneratePrivateKey(curve crypto.Curve) (string, error)
	// ImportPrivateJWK stores a private key and returns its public JWK.
	ImportPrivateJWK(privateKey jwk.JWK) (jwk.JWK, error)
	// GetPublicKey returns the public JWK stored under alias.
	GetPublicKey(alias string) (jwk.JWK, error)
	// GetSigner returns a signer for the private counterpart of publicKey.
	GetSigner(publicKey jwk.JWK) (crypto.Signer, error)
	// Sign signs payload with the key stored under alias.
	Sign(alias string, payload []byte) ([]byte, error)
}

// KeyExporter exports every private key it holds.
type KeyExporter interface {
	ExportPrivateJWKs() ([]jwk.JWK, error)
}

// Alias returns the alias a key manager uses for the key.
func Alias(key jwk.JWK) (string, error) {
	return key.Thumbprint()
}
