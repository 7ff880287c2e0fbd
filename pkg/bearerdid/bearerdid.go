/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bearerdid binds a resolved DID document to a key manager holding the private keys of
// its verification methods.
package bearerdid

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/kms"
	"github.com/trustcore/didtrust/pkg/vdr/api"
)

// ErrMissingVerificationMethodID is returned by GetSigner when no verification method id is given.
var ErrMissingVerificationMethodID = errors.New("no option satisfies query requirements")

// Error reports a DID that could not be resolved while building a BearerDID.
type Error struct {
	DID  string
	Code did.ResolutionError
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve %s: %s", e.DID, string(e.Code))
}

// Unwrap returns the resolution error code so callers can test it with errors.Is.
func (e *Error) Unwrap() error {
	return e.Code
}

// BearerDID is a DID whose private keys are held by KeyManager.
// The key manager may be shared with other BearerDIDs.
type BearerDID struct {
	DID        did.DID
	Document   *did.Doc
	KeyManager kms.KeyManager
}

// New resolves uri and binds the resolved document to km.
func New(ctx context.Context, uri string, km kms.KeyManager, resolver api.Resolver) (*BearerDID, error) {
	parsed, err := did.Parse(uri)
	if err != nil {
		return nil, err
	}

	res := resolver.Resolve(ctx, parsed.URI)

	if err := res.Err(); err != nil {
		code := did.InternalError
		if res.ResolutionMetadata.Error != "" {
			code = res.ResolutionMetadata.Error
		}

		return nil, &Error{DID: parsed.URI, Code: code}
	}

	return &BearerDID{DID: *parsed, Document: res.DIDDocument, KeyManager: km}, nil
}

// GetSigner returns a signer for the verification method vmID. vmID may be a full verification
// method id, a "#fragment" or a bare fragment relative to the DID.
func (b *BearerDID) GetSigner(vmID string) (crypto.Signer, error) {
	vm, err := b.VerificationMethod(vmID)
	if err != nil {
		return nil, err
	}

	return b.KeyManager.GetSigner(vm.PublicKeyJwk)
}

// VerificationMethod returns the verification method vmID, accepting the same id forms as
// GetSigner.
func (b *BearerDID) VerificationMethod(vmID string) (*did.VerificationMethod, error) {
	if vmID == "" {
		return nil, ErrMissingVerificationMethodID
	}

	return b.Document.FindVerificationMethod(b.ExpandID(vmID))
}

// ExpandID turns a relative verification method id into an absolute one.
func (b *BearerDID) ExpandID(vmID string) string {
	if strings.HasPrefix(vmID, "did:") {
		return vmID
	}

	if !strings.HasPrefix(vmID, "#") {
		vmID = "#" + vmID
	}

	return b.DID.URI + vmID
}
