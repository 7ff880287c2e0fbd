/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
	mockvdr "github.com/trustcore/didtrust/pkg/mock/vdr"
	"github.com/trustcore/didtrust/pkg/vdr"
	vdrjwk "github.com/trustcore/didtrust/pkg/vdr/jwk"
)

const urlAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func newRegistry() *vdr.Registry {
	return vdr.New(vdr.WithVDR(vdrjwk.New()))
}

func TestHeaders(t *testing.T) {
	kid, ok := jose.Headers{"kid": "key id"}.KeyID()
	require.True(t, ok)
	require.Equal(t, "key id", kid)

	kid, ok = jose.Headers{"kid": 777}.KeyID()
	require.False(t, ok)
	require.Empty(t, kid)

	alg, ok := jose.Headers{"alg": "EdDSA"}.Algorithm()
	require.True(t, ok)
	require.Equal(t, "EdDSA", alg)

	_, ok = jose.Headers{}.Algorithm()
	require.False(t, ok)

	typ, ok := jose.Headers{"typ": "JWT"}.Type()
	require.True(t, ok)
	require.Equal(t, "JWT", typ)

	cty, ok := jose.Headers{"cty": "vc+ld+json"}.ContentType()
	require.True(t, ok)
	require.Equal(t, "vc+ld+json", cty)
}

func TestNewCompositeAlgSignatureVerifier(t *testing.T) {
	verifier := jose.NewCompositeAlgSigVerifier(jose.AlgSignatureVerifier{
		Alg: "EdDSA",
		Verifier: jose.SignatureVerifierFunc(
			func(joseHeaders jose.Headers, payload, signingInput, signature []byte) error {
				return errors.New("signature is invalid")
			},
		),
	})

	err := verifier.Verify(jose.Headers{"alg": "EdDSA"}, nil, nil, nil)
	require.EqualError(t, err, "signature is invalid")

	err = verifier.Verify(jose.Headers{}, nil, nil, nil)
	require.EqualError(t, err, "'alg' JOSE header is not present")

	err = verifier.Verify(jose.Headers{"alg": "RS256"}, nil, nil, nil)
	require.ErrorIs(t, err, jose.ErrUnsupportedAlgorithm)
	require.Contains(t, err.Error(), "no verifier found for RS256 algorithm")
}

func TestSignVerify(t *testing.T) {
	registry := newRegistry()

	for _, curve := range []crypto.Curve{crypto.Ed25519, crypto.Secp256k1} {
		t.Run(string(curve), func(t *testing.T) {
			bearer, err := vdrjwk.Create(nil, curve)
			require.NoError(t, err)

			token, err := jose.Sign(bearer, "0", jose.Headers{"typ": "JWT"}, []byte("hello world"))
			require.NoError(t, err)
			require.Len(t, strings.Split(token, "."), 3)

			parsed, err := jose.ParseCompact(token)
			require.NoError(t, err)

			alg, _ := parsed.ProtectedHeaders.Algorithm()
			wantAlg, err := curve.Algorithm()
			require.NoError(t, err)
			require.Equal(t, wantAlg, alg)

			kid, _ := parsed.ProtectedHeaders.KeyID()
			require.Equal(t, bearer.DID.URI+"#0", kid)

			typ, _ := parsed.ProtectedHeaders.Type()
			require.Equal(t, "JWT", typ)

			jws, err := jose.Verify(context.Background(), token, registry)
			require.NoError(t, err)
			require.Equal(t, []byte("hello world"), jws.Payload)

			t.Run("tampered payload", func(t *testing.T) {
				parts := strings.Split(token, ".")
				parts[1] = jwk.EncodeMember([]byte("hello world!"))

				_, err := jose.Verify(context.Background(), strings.Join(parts, "."), registry)
				require.ErrorIs(t, err, crypto.ErrVerificationFailure)
			})

			t.Run("signature segment is not canonical", func(t *testing.T) {
				parts := strings.Split(token, ".")
				sig := parts[2]

				// a 64 byte signature leaves 4 unused bits in the last character
				last := strings.IndexByte(urlAlphabet, sig[len(sig)-1])
				require.Zero(t, last&0x0f)

				for _, segment := range []string{
					sig + "==",
					sig[:len(sig)-1] + string(urlAlphabet[last|1]),
				} {
					lenient, err := base64.URLEncoding.DecodeString(strings.TrimRight(segment, "=") + "==")
					require.NoError(t, err)

					strict, err := base64.RawURLEncoding.DecodeString(sig)
					require.NoError(t, err)
					require.Equal(t, strict, lenient)

					parts[2] = segment

					_, err = jose.Verify(context.Background(), strings.Join(parts, "."), registry)
					require.ErrorIs(t, err, jose.ErrMalformed)
				}
			})

			t.Run("truncated signature", func(t *testing.T) {
				parts := strings.Split(token, ".")
				parts[2] = jwk.EncodeMember([]byte("short"))

				_, err := jose.Verify(context.Background(), strings.Join(parts, "."), registry)
				require.ErrorIs(t, err, crypto.ErrVerificationFailure)
			})
		})
	}
}

func TestVerifyRelativeVerificationMethod(t *testing.T) {
	bearer, err := vdrjwk.Create(nil, crypto.Ed25519)
	require.NoError(t, err)

	doc := *bearer.Document
	doc.VerificationMethod = []did.VerificationMethod{bearer.Document.VerificationMethod[0]}
	doc.VerificationMethod[0].ID = "#0"
	doc.AssertionMethod = []string{"#0"}
	doc.Authentication = nil
	doc.CapabilityInvocation = nil
	doc.CapabilityDelegation = nil

	resolver := &mockvdr.MockResolver{}
	resolver.Store(&doc)

	relative := &bearerdid.BearerDID{DID: bearer.DID, Document: &doc, KeyManager: bearer.KeyManager}

	token, err := jose.Sign(relative, "#0", nil, []byte("payload"))
	require.NoError(t, err)

	parsed, err := jose.ParseCompact(token)
	require.NoError(t, err)

	kid, _ := parsed.ProtectedHeaders.KeyID()
	require.Equal(t, bearer.DID.URI+"#0", kid)

	_, err = jose.Verify(context.Background(), token, resolver)
	require.NoError(t, err)
}

func TestVerifyErrors(t *testing.T) {
	registry := newRegistry()

	bearer, err := vdrjwk.Create(nil, crypto.Ed25519)
	require.NoError(t, err)

	signer, err := bearer.GetSigner("0")
	require.NoError(t, err)

	sign := func(headers jose.Headers) string {
		jws, err := jose.NewJWS(headers, []byte("payload"), signer)
		require.NoError(t, err)

		return jws.SerializeCompact()
	}

	kid := bearer.DID.URI + "#0"

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{name: "two parts", token: "a.b", err: jose.ErrIncorrectPartsLength},
		{name: "four parts", token: "a.b.c.d", err: jose.ErrIncorrectPartsLength},
		{name: "bad base64 header", token: "!!.e30.e30", err: jose.ErrMalformed},
		{name: "header not json", token: jwk.EncodeMember([]byte("nope")) + ".e30.e30", err: jose.ErrMalformed},
		{name: "header null", token: jwk.EncodeMember([]byte("null")) + ".e30.e30", err: jose.ErrMalformed},
		{name: "bad base64 payload", token: "e30.!!.e30", err: jose.ErrMalformed},
		{name: "missing kid", token: sign(jose.Headers{"alg": "EdDSA"}), err: jose.ErrMissingKeyID},
		{
			name:  "unresolvable did",
			token: sign(jose.Headers{"alg": "EdDSA", "kid": "did:nope:123#0"}),
			err:   did.MethodNotSupported,
		},
		{
			name:  "unknown verification method",
			token: sign(jose.Headers{"alg": "EdDSA", "kid": bearer.DID.URI + "#9"}),
			err:   did.ErrVerificationMethodNotFound,
		},
		{
			name:  "unsupported alg",
			token: sign(jose.Headers{"alg": "RS256", "kid": kid}),
			err:   jose.ErrUnsupportedAlgorithm,
		},
		{
			name:  "alg of another curve",
			token: sign(jose.Headers{"alg": "ES256K", "kid": kid}),
			err:   jose.ErrUnsupportedAlgorithm,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jose.Verify(context.Background(), tc.token, registry)
			require.ErrorIs(t, err, tc.err)
		})
	}

	_, err = jose.Verify(context.Background(), sign(jose.Headers{"alg": "EdDSA", "kid": "did:nope:123#0"}), registry)
	require.ErrorIs(t, err, jose.ErrResolution)

	t.Run("no alg", func(t *testing.T) {
		_, err := jose.NewJWS(jose.Headers{}, nil, signer)
		require.EqualError(t, err, "alg JWS header is not defined")
	})

	t.Run("unknown key id on sign", func(t *testing.T) {
		_, err := jose.Sign(bearer, "#9", nil, nil)
		require.ErrorIs(t, err, did.ErrVerificationMethodNotFound)
	})
}
