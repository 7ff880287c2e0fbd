/*
 Copyright SecureKey Technologies Inc. All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

// Package localkms is the default key manager: private JWKs held in process memory, keyed by
// their public thumbprint.
package localkms

import (
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/common/log"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
	"github.com/trustcore/didtrust/pkg/kms"
)

var logger = log.New("didtrust/kms")

// InMemoryKeyManager implements kms.KeyManager and kms.KeyExporter. It is safe for concurrent use.
type InMemoryKeyManager struct {
	mu   sync.RWMutex
	keys map[string]jwk.JWK
	rand io.Reader
}

// Option configures an InMemoryKeyManager.
type Option func(km *InMemoryKeyManager)

// WithRandReader sets the entropy source used for key generation.
func WithRandReader(r io.Reader) Option {
	return func(km *InMemoryKeyManager) {
		km.rand = r
	}
}

// New returns an empty key manager.
func New(opts ...Option) *InMemoryKeyManager {
	km := &InMemoryKeyManager{keys: map[string]jwk.JWK{}}

	for _, opt := range opts {
		opt(km)
	}

	return km
}

// GeneratePrivateKey creates and stores a new key on the curve and returns its alias.
func (km *InMemoryKeyManager) GeneratePrivateKey(curve crypto.Curve) (string, error) {
	km.mu.RLock()
	r := km.rand
	km.mu.RUnlock()

	privateKey, err := crypto.GenerateKey(curve, r)
	if err != nil {
		return "", errors.Wrap(kms.ErrKeyGenerationFailed, err.Error())
	}

	publicKey, err := km.ImportPrivateJWK(privateKey)
	if err != nil {
		return "", errors.Wrap(kms.ErrKeyGenerationFailed, err.Error())
	}

	return kms.Alias(publicKey)
}

// ImportPrivateJWK stores a private key and returns its public JWK.
// Importing the same key twice keeps a single entry.
func (km *InMemoryKeyManager) ImportPrivateJWK(privateKey jwk.JWK) (jwk.JWK, error) {
	if !privateKey.IsPrivate() {
		return jwk.JWK{}, kms.ErrPublicKeyImport
	}

	alias, err := kms.Alias(privateKey)
	if err != nil {
		return jwk.JWK{}, errors.Wrap(err, "compute key alias")
	}

	km.mu.Lock()
	km.keys[alias] = privateKey
	km.mu.Unlock()

	logger.Debugf("imported %s key %s", privateKey.Crv, alias)

	return privateKey.Public(), nil
}

// GetPublicKey returns the public JWK stored under alias.
func (km *InMemoryKeyManager) GetPublicKey(alias string) (jwk.JWK, error) {
	privateKey, err := km.lookup(alias)
	if err != nil {
		return jwk.JWK{}, err
	}

	return privateKey.Public(), nil
}

// GetSigner returns a signer for the private counterpart of publicKey.
func (km *InMemoryKeyManager) GetSigner(publicKey jwk.JWK) (crypto.Signer, error) {
	if publicKey.IsPrivate() {
		return nil, kms.ErrPrivateKeyRequest
	}

	alias, err := kms.Alias(publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "compute key alias")
	}

	privateKey, err := km.lookup(alias)
	if err != nil {
		return nil, err
	}

	return crypto.NewSigner(privateKey)
}

// Sign signs payload with the key stored under alias.
func (km *InMemoryKeyManager) Sign(alias string, payload []byte) ([]byte, error) {
	privateKey, err := km.lookup(alias)
	if err != nil {
		return nil, err
	}

	signer, err := crypto.NewSigner(privateKey)
	if err != nil {
		return nil, err
	}

	return signer.Sign(payload)
}

// ExportPrivateJWKs returns every stored private key, ordered by alias.
func (km *InMemoryKeyManager) ExportPrivateJWKs() ([]jwk.JWK, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	aliases := make([]string, 0, len(km.keys))
	for alias := range km.keys {
		aliases = append(aliases, alias)
	}

	sort.Strings(aliases)

	keys := make([]jwk.JWK, 0, len(aliases))
	for _, alias := range aliases {
		keys = append(keys, km.keys[alias])
	}

	return keys, nil
}

func (km *InMemoryKeyManager) lookup(alias string) (jwk.JWK, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	privateKey, ok := km.keys[alias]
	if !ok {
		return jwk.JWK{}, errors.Wrapf(kms.ErrKeyNotFound, "alias %s", alias)
	}

	return privateKey, nil
}
