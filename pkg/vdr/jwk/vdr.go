/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwk implements the did:jwk method: the method-specific id is the base64url encoded
// public JWK and the document is derived from it without any network access.
package jwk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	josejwk "github.com/trustcore/didtrust/pkg/doc/jose/jwk"
	"github.com/trustcore/didtrust/pkg/kms"
	"github.com/trustcore/didtrust/pkg/kms/localkms"
)

const (
	namespace = "jwk"

	// VerificationMethodFragment is the fragment of the only verification method of a did:jwk.
	VerificationMethodFragment = "0"
)

// VDR implements the did:jwk method.
type VDR struct{}

// New creates a new VDR struct.
func New() *VDR {
	return &VDR{}
}

// Accept method of the VDR interface.
func (v *VDR) Accept(method string) bool {
	return method == namespace
}

// Close method of the VDR interface.
func (v *VDR) Close() error {
	return nil
}

// Read derives the document of a did:jwk. Any decoding failure is reported as did.InvalidDID.
func (v *VDR) Read(_ context.Context, didID string) (*did.DocResolution, error) {
	doc, err := Resolve(didID)
	if err != nil {
		return nil, err
	}

	return did.NewDocResolution(doc), nil
}

// Resolve derives the document of a did:jwk.
func Resolve(didID string) (*did.Doc, error) {
	parsed, err := did.Parse(didID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", did.InvalidDID, err.Error())
	}

	if parsed.Method != namespace {
		return nil, fmt.Errorf("%w: method %s is not %s", did.InvalidDID, parsed.Method, namespace)
	}

	raw, err := josejwk.DecodeMember(parsed.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: decode method specific id: %s", did.InvalidDID, err.Error())
	}

	key, err := josejwk.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", did.InvalidDID, err.Error())
	}

	if key.IsPrivate() {
		return nil, fmt.Errorf("%w: method specific id carries a private key", did.InvalidDID)
	}

	return buildDoc(parsed.URI, key), nil
}

// FromPublicJWK returns the did:jwk identifier and document of a public key.
func FromPublicJWK(publicKey josejwk.JWK) (*did.DID, *did.Doc, error) {
	publicKey = publicKey.Public()

	if err := publicKey.Validate(); err != nil {
		return nil, nil, err
	}

	raw, err := json.Marshal(publicKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal public jwk")
	}

	parsed, err := did.Parse("did:" + namespace + ":" + josejwk.EncodeMember(raw))
	if err != nil {
		return nil, nil, err
	}

	return parsed, buildDoc(parsed.URI, publicKey), nil
}

// Create generates a key on curve in km and returns the did:jwk bound to it. A nil km creates a
// fresh in-memory key manager.
func Create(km kms.KeyManager, curve crypto.Curve) (*bearerdid.BearerDID, error) {
	if km == nil {
		km = localkms.New()
	}

	if curve == "" {
		curve = crypto.Ed25519
	}

	alias, err := km.GeneratePrivateKey(curve)
	if err != nil {
		return nil, err
	}

	publicKey, err := km.GetPublicKey(alias)
	if err != nil {
		return nil, err
	}

	parsed, doc, err := FromPublicJWK(publicKey)
	if err != nil {
		return nil, err
	}

	return &bearerdid.BearerDID{DID: *parsed, Document: doc, KeyManager: km}, nil
}

func buildDoc(didURI string, publicKey josejwk.JWK) *did.Doc {
	vmID := didURI + "#" + VerificationMethodFragment

	doc := &did.Doc{
		Context: did.Context{did.ContextV1},
		ID:      didURI,
		VerificationMethod: []did.VerificationMethod{{
			ID:           vmID,
			Type:         did.JSONWebKeyType,
			Controller:   didURI,
			PublicKeyJwk: publicKey,
		}},
	}

	for _, purpose := range []did.Purpose{
		did.Authentication, did.AssertionMethod, did.CapabilityInvocation, did.CapabilityDelegation,
	} {
		doc.AddReference(purpose, vmID)
	}

	return doc
}
