/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"fmt"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/kms"
	"github.com/trustcore/didtrust/pkg/kms/localkms"
)

// VerificationMethodFragment is the fragment of the generated key of a did:web.
const VerificationMethodFragment = "key-0"

type createOpts struct {
	km                  kms.KeyManager
	curve               crypto.Curve
	services            []did.Service
	controller          []string
	alsoKnownAs         []string
	verificationMethods []did.VerificationMethod
}

// CreateOption configures Create.
type CreateOption func(opts *createOpts)

// WithKeyManager stores the generated key in km instead of a fresh in-memory key manager.
func WithKeyManager(km kms.KeyManager) CreateOption {
	return func(opts *createOpts) {
		opts.km = km
	}
}

// WithCurve selects the curve of the generated key. Ed25519 is the default.
func WithCurve(curve crypto.Curve) CreateOption {
	return func(opts *createOpts) {
		opts.curve = curve
	}
}

// WithService adds services to the document.
func WithService(services ...did.Service) CreateOption {
	return func(opts *createOpts) {
		opts.services = append(opts.services, services...)
	}
}

// WithController sets the document controllers.
func WithController(controller ...string) CreateOption {
	return func(opts *createOpts) {
		opts.controller = append(opts.controller, controller...)
	}
}

// WithAlsoKnownAs sets the document alsoKnownAs identifiers.
func WithAlsoKnownAs(aka ...string) CreateOption {
	return func(opts *createOpts) {
		opts.alsoKnownAs = append(opts.alsoKnownAs, aka...)
	}
}

// WithVerificationMethod appends verification methods after the generated key.
func WithVerificationMethod(vms ...did.VerificationMethod) CreateOption {
	return func(opts *createOpts) {
		opts.verificationMethods = append(opts.verificationMethods, vms...)
	}
}

// Create builds a did:web for domain. Nothing is published: the returned document must be
// hosted at the URL the identifier maps to.
func Create(domain string, opts ...CreateOption) (*bearerdid.BearerDID, error) {
	o := &createOpts{curve: crypto.Ed25519}

	for _, opt := range opts {
		opt(o)
	}

	if o.km == nil {
		o.km = localkms.New()
	}

	didURI, err := didFromDomain(domain)
	if err != nil {
		return nil, fmt.Errorf("error building did:web did --> %w", err)
	}

	parsed, err := did.Parse(didURI)
	if err != nil {
		return nil, fmt.Errorf("error building did:web did --> %w", err)
	}

	alias, err := o.km.GeneratePrivateKey(o.curve)
	if err != nil {
		return nil, err
	}

	publicKey, err := o.km.GetPublicKey(alias)
	if err != nil {
		return nil, err
	}

	vmID := didURI + "#" + VerificationMethodFragment

	doc := &did.Doc{
		Context: did.Context{did.ContextV1},
		ID:      didURI,
		VerificationMethod: append([]did.VerificationMethod{{
			ID:           vmID,
			Type:         did.JSONWebKeyType,
			Controller:   didURI,
			PublicKeyJwk: publicKey,
		}}, o.verificationMethods...),
		Service:     o.services,
		Controller:  o.controller,
		AlsoKnownAs: o.alsoKnownAs,
	}

	for _, purpose := range []did.Purpose{
		did.Authentication, did.AssertionMethod, did.CapabilityInvocation, did.CapabilityDelegation,
	} {
		doc.AddReference(purpose, vmID)
	}

	return &bearerdid.BearerDID{DID: *parsed, Document: doc, KeyManager: o.km}, nil
}
