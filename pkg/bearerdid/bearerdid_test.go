/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bearerdid_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	josejwk "github.com/trustcore/didtrust/pkg/doc/jose/jwk"
	"github.com/trustcore/didtrust/pkg/kms"
	"github.com/trustcore/didtrust/pkg/kms/localkms"
	mockkms "github.com/trustcore/didtrust/pkg/mock/kms"
	mockvdr "github.com/trustcore/didtrust/pkg/mock/vdr"
	"github.com/trustcore/didtrust/pkg/vdr/jwk"
)

func TestNew(t *testing.T) {
	created, err := jwk.Create(nil, crypto.Ed25519)
	require.NoError(t, err)

	resolver := &mockvdr.MockResolver{}
	resolver.Store(created.Document)

	km := localkms.New()

	b, err := bearerdid.New(context.Background(), created.DID.URI, km, resolver)
	require.NoError(t, err)
	require.Equal(t, created.DID.URI, b.DID.URI)
	require.Equal(t, created.Document, b.Document)
	require.Equal(t, km, b.KeyManager)

	t.Run("resolution error", func(t *testing.T) {
		_, err := bearerdid.New(context.Background(), "did:jwk:unknown", km, resolver)
		require.Error(t, err)
		require.ErrorIs(t, err, did.NotFound)

		var bearerErr *bearerdid.Error
		require.True(t, errors.As(err, &bearerErr))
		require.Equal(t, "did:jwk:unknown", bearerErr.DID)
		require.Equal(t, did.NotFound, bearerErr.Code)
	})

	t.Run("invalid did", func(t *testing.T) {
		_, err := bearerdid.New(context.Background(), "not-a-did", km, resolver)
		require.ErrorIs(t, err, did.ErrInvalidDID)
	})
}

func TestGetSigner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	privateKey, err := crypto.GenerateEd25519(nil)
	require.NoError(t, err)

	signer, err := crypto.NewSigner(privateKey)
	require.NoError(t, err)

	publicKey := privateKey.Public()

	_, doc, err := jwk.FromPublicJWK(publicKey)
	require.NoError(t, err)

	parsed, err := did.Parse(doc.ID)
	require.NoError(t, err)

	km := mockkms.NewMockKeyManager(ctrl)
	b := &bearerdid.BearerDID{DID: *parsed, Document: doc, KeyManager: km}

	for _, vmID := range []string{"0", "#0", doc.ID + "#0"} {
		km.EXPECT().GetSigner(publicKey).Return(signer, nil)

		got, err := b.GetSigner(vmID)
		require.NoError(t, err, vmID)
		require.Equal(t, signer, got)
	}

	t.Run("missing id", func(t *testing.T) {
		_, err := b.GetSigner("")
		require.ErrorIs(t, err, bearerdid.ErrMissingVerificationMethodID)
	})

	t.Run("unknown verification method", func(t *testing.T) {
		_, err := b.GetSigner("#key-9")
		require.ErrorIs(t, err, did.ErrVerificationMethodNotFound)
	})

	t.Run("key not held", func(t *testing.T) {
		km.EXPECT().GetSigner(publicKey).Return(nil, kms.ErrKeyNotFound)

		_, err := b.GetSigner("0")
		require.ErrorIs(t, err, kms.ErrKeyNotFound)
	})

	require.Equal(t, doc.ID+"#abc", b.ExpandID("abc"))
	require.Equal(t, "did:example:other#abc", b.ExpandID("did:example:other#abc"))
}

func TestPortableDID(t *testing.T) {
	created, err := jwk.Create(localkms.New(), crypto.Secp256k1)
	require.NoError(t, err)

	pd, err := created.ToPortableDID(nil)
	require.NoError(t, err)
	require.Equal(t, created.DID.URI, pd.URI)
	require.Len(t, pd.PrivateKeys, 1)
	require.True(t, pd.PrivateKeys[0].IsPrivate())

	data, err := pd.JSONBytes()
	require.NoError(t, err)
	require.Contains(t, string(data), `"privateKeys"`)

	parsed, err := bearerdid.ParsePortableDID(data)
	require.NoError(t, err)

	restored, err := bearerdid.FromPortableDID(parsed)
	require.NoError(t, err)
	require.Equal(t, created.DID.URI, restored.DID.URI)
	require.Equal(t, created.Document, restored.Document)

	signer, err := restored.GetSigner("0")
	require.NoError(t, err)

	sig, err := signer.Sign([]byte("hello"))
	require.NoError(t, err)

	vm, err := created.VerificationMethod("0")
	require.NoError(t, err)

	verifier, err := crypto.NewVerifier(vm.PublicKeyJwk)
	require.NoError(t, err)
	require.NoError(t, verifier.Verify([]byte("hello"), sig))

	t.Run("explicit exporter", func(t *testing.T) {
		exporter := localkms.New()

		_, err := exporter.GeneratePrivateKey(crypto.Ed25519)
		require.NoError(t, err)

		pd, err := created.ToPortableDID(exporter)
		require.NoError(t, err)
		require.Len(t, pd.PrivateKeys, 1)
		require.Equal(t, crypto.Ed25519, crypto.Curve(pd.PrivateKeys[0].Crv))
	})

	t.Run("key manager cannot export", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		b := &bearerdid.BearerDID{DID: created.DID, Document: created.Document, KeyManager: mockkms.NewMockKeyManager(ctrl)}

		_, err := b.ToPortableDID(nil)
		require.Error(t, err)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := bearerdid.ParsePortableDID([]byte("{"))
		require.ErrorIs(t, err, bearerdid.ErrInvalidPortableDID)

		_, err = bearerdid.FromPortableDID(&bearerdid.PortableDID{URI: created.DID.URI})
		require.ErrorIs(t, err, bearerdid.ErrInvalidPortableDID)

		_, err = bearerdid.FromPortableDID(&bearerdid.PortableDID{URI: "nope", Document: created.Document})
		require.ErrorIs(t, err, did.ErrInvalidDID)

		public := *created.Document
		_, err = bearerdid.FromPortableDID(&bearerdid.PortableDID{
			URI:         created.DID.URI,
			Document:    &public,
			PrivateKeys: []josejwk.JWK{vm.PublicKeyJwk},
		})
		require.ErrorIs(t, err, kms.ErrPublicKeyImport)
	})
}
