/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dht

import (
	"context"
	"fmt"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/kms"
	"github.com/trustcore/didtrust/pkg/kms/localkms"
	"github.com/trustcore/didtrust/pkg/vdr/dht/dnspacket"
)

// identityPurposes are the relationships the identity key is listed under.
var identityPurposes = []did.Purpose{ //nolint:gochecknoglobals
	did.Authentication, did.AssertionMethod, did.CapabilityInvocation, did.CapabilityDelegation,
}

type purposedMethod struct {
	vm       did.VerificationMethod
	purposes []did.Purpose
}

type createOpts struct {
	publish             bool
	services            []did.Service
	controller          []string
	alsoKnownAs         []string
	verificationMethods []purposedMethod
	types               []int
}

// CreateOption configures Create.
type CreateOption func(opts *createOpts)

// WithPublish controls whether Create publishes the document. Documents are published by
// default.
func WithPublish(publish bool) CreateOption {
	return func(opts *createOpts) {
		opts.publish = publish
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

// WithVerificationMethod adds a verification method listed under the given relationships.
func WithVerificationMethod(vm did.VerificationMethod, purposes ...did.Purpose) CreateOption {
	return func(opts *createOpts) {
		opts.verificationMethods = append(opts.verificationMethods, purposedMethod{vm: vm, purposes: purposes})
	}
}

// WithTypes sets the indexed types of the DID.
func WithTypes(types ...int) CreateOption {
	return func(opts *createOpts) {
		opts.types = append(opts.types, types...)
	}
}

// Create generates an Ed25519 identity key in km, builds the did:dht document around it and
// publishes it unless WithPublish(false) is given. A nil km creates a fresh in-memory key
// manager.
func (v *VDR) Create(ctx context.Context, km kms.KeyManager, opts ...CreateOption) (*bearerdid.BearerDID, error) {
	o := &createOpts{publish: true}

	for _, opt := range opts {
		opt(o)
	}

	if km == nil {
		km = localkms.New()
	}

	alias, err := km.GeneratePrivateKey(crypto.Ed25519)
	if err != nil {
		return nil, err
	}

	identityKey, err := km.GetPublicKey(alias)
	if err != nil {
		return nil, err
	}

	didURI, err := DIDFromKey(identityKey)
	if err != nil {
		return nil, err
	}

	parsed, err := did.Parse(didURI)
	if err != nil {
		return nil, fmt.Errorf("error building did:dht did --> %w", err)
	}

	identityID := didURI + "#" + dnspacket.IdentityFragment

	doc := &did.Doc{
		ID:          didURI,
		Controller:  o.controller,
		AlsoKnownAs: o.alsoKnownAs,
		Service:     o.services,
		VerificationMethod: []did.VerificationMethod{{
			ID:           identityID,
			Type:         did.JSONWebKeyType,
			Controller:   didURI,
			PublicKeyJwk: identityKey,
		}},
	}

	for _, purpose := range identityPurposes {
		doc.AddReference(purpose, identityID)
	}

	for _, m := range o.verificationMethods {
		doc.VerificationMethod = append(doc.VerificationMethod, m.vm)

		for _, purpose := range m.purposes {
			doc.AddReference(purpose, m.vm.ID)
		}
	}

	bearer := &bearerdid.BearerDID{DID: *parsed, Document: doc, KeyManager: km}

	if o.publish {
		if err := v.Publish(ctx, bearer, o.types...); err != nil {
			return nil, err
		}
	}

	return bearer, nil
}
