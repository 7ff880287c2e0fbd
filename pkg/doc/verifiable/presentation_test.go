/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable_test

import (
	"context"
	"strings"
	"testing"
	"time"

	josejwt "github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/jwt"
	"github.com/trustcore/didtrust/pkg/doc/verifiable"
	"github.com/trustcore/didtrust/pkg/vdr"
	vdrjwk "github.com/trustcore/didtrust/pkg/vdr/jwk"
)

func signCredential(t *testing.T, issuer *bearerdid.BearerDID, subject string, opts ...verifiable.CreateOption) string {
	t.Helper()

	vc, err := verifiable.Create(verifiable.Issuer{ID: issuer.DID.URI}, verifiable.Subject{ID: subject}, opts...)
	require.NoError(t, err)

	token, err := vc.SignJWT(issuer, "")
	require.NoError(t, err)

	return token
}

func TestCreatePresentation(t *testing.T) {
	registry := vdr.New(vdr.WithVDR(vdrjwk.New()))
	issuer := newIssuer(t, crypto.Ed25519)
	holder := newIssuer(t, crypto.Secp256k1)

	vcJWT := signCredential(t, issuer, holder.DID.URI)

	t.Run("defaults", func(t *testing.T) {
		before := time.Now()

		vp, err := verifiable.CreatePresentation(context.Background(), holder.DID.URI, []string{vcJWT}, registry)
		require.NoError(t, err)
		require.Equal(t, []string{verifiable.ContextURI}, vp.Context)
		require.Equal(t, []string{verifiable.VPType}, vp.Types)
		require.True(t, strings.HasPrefix(vp.ID, "urn:uuid:"))
		require.Equal(t, holder.DID.URI, vp.Holder)
		require.False(t, vp.Issued.Before(before))
		require.Nil(t, vp.Expired)
		require.Equal(t, []string{vcJWT}, vp.Credentials)
	})

	t.Run("options", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)

		vp, err := verifiable.CreatePresentation(context.Background(), holder.DID.URI, nil, registry,
			verifiable.WithID("urn:uuid:presentation"),
			verifiable.WithContext("https://example.com/context"),
			verifiable.WithType("TestPresentation"),
			verifiable.WithExpirationDate(expires),
		)
		require.NoError(t, err)
		require.Equal(t, "urn:uuid:presentation", vp.ID)
		require.Equal(t, []string{verifiable.ContextURI, "https://example.com/context"}, vp.Context)
		require.Equal(t, []string{verifiable.VPType, "TestPresentation"}, vp.Types)
		require.Equal(t, &expires, vp.Expired)
	})

	t.Run("holder is not a DID", func(t *testing.T) {
		_, err := verifiable.CreatePresentation(context.Background(), "holder", []string{vcJWT}, registry)
		require.ErrorIs(t, err, verifiable.ErrInvalidPresentation)
		require.ErrorContains(t, err, "holder must be a valid DID URI")
	})

	t.Run("credential fails verification", func(t *testing.T) {
		parts := strings.Split(vcJWT, ".")
		parts[2] = "c2lnbmF0dXJl"

		_, err := verifiable.CreatePresentation(context.Background(), holder.DID.URI,
			[]string{strings.Join(parts, ".")}, registry)
		require.ErrorIs(t, err, crypto.ErrVerificationFailure)
		require.ErrorContains(t, err, "verifiable credential 0")
	})
}

func TestPresentationJSON(t *testing.T) {
	registry := vdr.New(vdr.WithVDR(vdrjwk.New()))
	holder := newIssuer(t, crypto.Ed25519)

	vp, err := verifiable.CreatePresentation(context.Background(), holder.DID.URI, nil, registry)
	require.NoError(t, err)

	vp.CustomFields = verifiable.CustomFields{"nonce": "abc"}

	b, err := vp.JSONBytes()
	require.NoError(t, err)

	parsed, err := verifiable.ParsePresentation(b)
	require.NoError(t, err)
	require.Equal(t, vp.ID, parsed.ID)
	require.Equal(t, vp.Holder, parsed.Holder)
	require.True(t, vp.Issued.Equal(parsed.Issued))
	require.Equal(t, verifiable.CustomFields{"nonce": "abc"}, parsed.CustomFields)

	tests := []struct {
		name string
		json string
	}{
		{"missing holder", `{"@context":["https://www.w3.org/2018/credentials/v1"],"id":"urn:uuid:1",
			"type":["VerifiablePresentation"],"issuanceDate":"2026-01-02T03:04:05Z"}`},
		{"base context not first", `{"@context":["https://example.com","https://www.w3.org/2018/credentials/v1"],
			"id":"urn:uuid:1","type":["VerifiablePresentation"],"holder":"did:example:1",
			"issuanceDate":"2026-01-02T03:04:05Z"}`},
		{"embedded credential object", `{"@context":["https://www.w3.org/2018/credentials/v1"],"id":"urn:uuid:1",
			"type":["VerifiablePresentation"],"holder":"did:example:1","issuanceDate":"2026-01-02T03:04:05Z",
			"verifiableCredential":[{"id":"urn:uuid:2"}]}`},
		{"not JSON", `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := verifiable.ParsePresentation([]byte(tc.json))
			require.ErrorIs(t, err, verifiable.ErrInvalidPresentation)
		})
	}
}

func signVPClaims(t *testing.T, bearer *bearerdid.BearerDID, claims josejwt.Claims, vp map[string]interface{}) string {
	t.Helper()

	c := &jwt.Claims{Claims: claims}
	if vp != nil {
		c.Private = map[string]interface{}{"vp": vp}
	}

	token, err := jwt.Sign(bearer, "0", c)
	require.NoError(t, err)

	return token
}

func TestSignParsePresentationJWT(t *testing.T) {
	ctx := context.Background()
	registry := vdr.New(vdr.WithVDR(vdrjwk.New()))
	issuer := newIssuer(t, crypto.Ed25519)
	holder := newIssuer(t, crypto.Secp256k1)

	vcJWT := signCredential(t, issuer, holder.DID.URI)
	issued := time.Now().UTC().Truncate(time.Second).Add(-time.Minute)
	expires := issued.Add(time.Hour)

	vp, err := verifiable.CreatePresentation(ctx, holder.DID.URI, []string{vcJWT}, registry,
		verifiable.WithIssuanceDate(issued), verifiable.WithExpirationDate(expires))
	require.NoError(t, err)

	vp.CustomFields = verifiable.CustomFields{"nonce": "n-0S6_WzA2Mj"}

	token, err := vp.SignJWT(holder, "")
	require.NoError(t, err)

	parsed, err := verifiable.ParsePresentationJWT(ctx, token, registry, true)
	require.NoError(t, err)
	require.Equal(t, vp.ID, parsed.ID)
	require.Equal(t, vp.Context, parsed.Context)
	require.Equal(t, vp.Types, parsed.Types)
	require.Equal(t, holder.DID.URI, parsed.Holder)
	require.True(t, issued.Equal(parsed.Issued))
	require.NotNil(t, parsed.Expired)
	require.True(t, expires.Equal(*parsed.Expired))
	require.Equal(t, []string{vcJWT}, parsed.Credentials)
	require.Equal(t, "n-0S6_WzA2Mj", parsed.CustomFields["nonce"])

	t.Run("holder is not the bearer DID", func(t *testing.T) {
		_, err := vp.SignJWT(issuer, "")
		require.ErrorContains(t, err, "does not match holder")
	})

	t.Run("verification method is not an authentication method", func(t *testing.T) {
		other := *holder
		doc := *holder.Document
		doc.Authentication = nil
		other.Document = &doc

		_, err := vp.SignJWT(&other, "0")
		require.ErrorContains(t, err, "is not an authentication")
	})

	t.Run("enclosed credential is expired", func(t *testing.T) {
		expired := signCredential(t, issuer, holder.DID.URI,
			verifiable.WithIssuanceDate(time.Now().AddDate(-2, 0, 0)),
			verifiable.WithExpirationDate(time.Now().AddDate(-1, 0, 0)))

		withExpired := *vp
		withExpired.Credentials = []string{vcJWT, expired}

		token, err := withExpired.SignJWT(holder, "")
		require.NoError(t, err)

		_, err = verifiable.ParsePresentationJWT(ctx, token, registry, true)
		require.ErrorIs(t, err, verifiable.ErrDataModelValidation)
		require.ErrorContains(t, err, "invalid vc jwt 1")
		require.ErrorContains(t, err, "credential expired")

		_, err = verifiable.ParsePresentationJWT(ctx, token, registry, false)
		require.NoError(t, err)
	})

	t.Run("presentation is expired", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)

		expiredVP := *vp
		expiredVP.Expired = &past

		token, err := expiredVP.SignJWT(holder, "")
		require.NoError(t, err)

		_, err = verifiable.ParsePresentationJWT(ctx, token, registry, true)
		require.ErrorIs(t, err, verifiable.ErrDataModelValidation)
		require.ErrorContains(t, err, "presentation expired")
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(token, ".")
		parts[2] = "c2lnbmF0dXJl"

		_, err := verifiable.ParsePresentationJWT(ctx, strings.Join(parts, "."), registry, true)
		require.ErrorIs(t, err, crypto.ErrVerificationFailure)
	})

	now := time.Now().Truncate(time.Second)

	registered := func() josejwt.Claims {
		return josejwt.Claims{
			Issuer:    holder.DID.URI,
			ID:        "urn:uuid:presentation",
			NotBefore: josejwt.NewNumericDate(now),
			IssuedAt:  josejwt.NewNumericDate(now),
		}
	}

	t.Run("bare vp claim is filled from registered claims", func(t *testing.T) {
		parsed, err := verifiable.ParsePresentationJWT(ctx,
			signVPClaims(t, holder, registered(), map[string]interface{}{}), registry, true)
		require.NoError(t, err)
		require.Equal(t, "urn:uuid:presentation", parsed.ID)
		require.Equal(t, holder.DID.URI, parsed.Holder)
		require.Equal(t, []string{verifiable.ContextURI}, parsed.Context)
		require.Equal(t, []string{verifiable.VPType}, parsed.Types)
		require.Empty(t, parsed.Credentials)
	})

	t.Run("claim errors", func(t *testing.T) {
		tests := []struct {
			name   string
			claims func() josejwt.Claims
			vp     map[string]interface{}
			err    error
			errMsg string
		}{
			{"vp", registered, nil, verifiable.ErrMissingClaim, "missing claim: vp"},
			{"jti", func() josejwt.Claims { c := registered(); c.ID = ""; return c },
				map[string]interface{}{}, verifiable.ErrMissingClaim, "missing claim: jti"},
			{"iss", func() josejwt.Claims { c := registered(); c.Issuer = ""; return c },
				map[string]interface{}{}, verifiable.ErrMissingClaim, "missing claim: iss"},
			{"nbf", func() josejwt.Claims { c := registered(); c.NotBefore = nil; return c },
				map[string]interface{}{}, verifiable.ErrMissingClaim, "missing claim: nbf"},
			{"id mismatch", registered, map[string]interface{}{"id": "urn:uuid:altered"},
				verifiable.ErrClaimMismatch, "claim mismatch: id"},
			{"holder mismatch", registered, map[string]interface{}{"holder": issuer.DID.URI},
				verifiable.ErrClaimMismatch, "claim mismatch: holder"},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := verifiable.ParsePresentationJWT(ctx, signVPClaims(t, holder, tc.claims(), tc.vp), registry, true)
				require.ErrorIs(t, err, tc.err)
				require.ErrorContains(t, err, tc.errMsg)
			})
		}
	})
}
