/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt_test

import (
	"context"
	"strings"
	"testing"
	"time"

	josejwt "github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/jose"
	"github.com/trustcore/didtrust/pkg/doc/jwt"
	"github.com/trustcore/didtrust/pkg/vdr"
	vdrjwk "github.com/trustcore/didtrust/pkg/vdr/jwk"
)

func TestSignVerify(t *testing.T) {
	bearer, err := vdrjwk.Create(nil, crypto.Ed25519)
	require.NoError(t, err)

	now := time.Unix(1724791645, 0)

	claims := &jwt.Claims{
		Claims: josejwt.Claims{
			Issuer:    bearer.DID.URI,
			Subject:   "did:example:subject",
			ID:        "urn:uuid:1234",
			NotBefore: josejwt.NewNumericDate(now),
			IssuedAt:  josejwt.NewNumericDate(now),
			Expiry:    josejwt.NewNumericDate(now.Add(time.Hour)),
		},
		Private: map[string]interface{}{"nonce": "abc"},
	}

	token, err := jwt.Sign(bearer, "0", claims)
	require.NoError(t, err)

	registry := vdr.New(vdr.WithVDR(vdrjwk.New()))

	verified, err := jwt.Verify(context.Background(), token, registry)
	require.NoError(t, err)
	require.Equal(t, jwt.TypeJWT, verified.LookupStringHeader(jose.HeaderType))
	require.Equal(t, bearer.DID.URI+"#0", verified.LookupStringHeader(jose.HeaderKeyID))
	require.Empty(t, verified.LookupStringHeader("missing"))
	require.Equal(t, token, verified.Serialize())

	decoded, err := verified.Claims()
	require.NoError(t, err)
	require.Equal(t, claims.Issuer, decoded.Issuer)
	require.Equal(t, claims.Subject, decoded.Subject)
	require.Equal(t, claims.ID, decoded.ID)
	require.Equal(t, now.Unix(), decoded.NotBefore.Time().Unix())
	require.Equal(t, now.Add(time.Hour).Unix(), decoded.Expiry.Time().Unix())
	require.Equal(t, map[string]interface{}{"nonce": "abc"}, decoded.Private)

	t.Run("decode without verification", func(t *testing.T) {
		parts := strings.Split(token, ".")
		parts[2] = "c2lnbmF0dXJl"

		tampered := strings.Join(parts, ".")

		unverified, err := jwt.Decode(tampered)
		require.NoError(t, err)
		require.Equal(t, bearer.DID.URI, unverified.Payload["iss"])

		_, err = jwt.Verify(context.Background(), tampered, registry)
		require.ErrorIs(t, err, crypto.ErrVerificationFailure)
	})
}

func TestClaimsJSON(t *testing.T) {
	c := jwt.Claims{
		Claims:  josejwt.Claims{Issuer: "did:example:issuer"},
		Private: map[string]interface{}{"iss": "shadowed", "vc": map[string]interface{}{"id": "urn:uuid:1"}},
	}

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"iss":"did:example:issuer","vc":{"id":"urn:uuid:1"}}`, string(data))

	decoded := &jwt.Claims{}
	require.NoError(t, decoded.UnmarshalJSON([]byte(`{"iss":"a","jti":"b"}`)))
	require.Equal(t, "a", decoded.Issuer)
	require.Equal(t, "b", decoded.ID)
	require.Nil(t, decoded.Private)

	require.Error(t, decoded.UnmarshalJSON([]byte(`[]`)))
}

func TestHeaderChecks(t *testing.T) {
	bearer, err := vdrjwk.Create(nil, crypto.Ed25519)
	require.NoError(t, err)

	for _, tc := range []struct {
		headers jose.Headers
		err     string
	}{
		{headers: jose.Headers{"typ": "JOSE"}, err: "typ is not JWT"},
		{headers: jose.Headers{"cty": "JWT"}, err: "nested JWT is not supported"},
	} {
		token, err := jose.Sign(bearer, "0", tc.headers, []byte(`{"iss":"x"}`))
		require.NoError(t, err)

		_, err = jwt.Decode(token)
		require.Error(t, err)
		require.Contains(t, err.Error(), tc.err)
	}

	token, err := jose.Sign(bearer, "0", nil, []byte(`"not an object"`))
	require.NoError(t, err)

	_, err = jwt.Decode(token)
	require.Error(t, err)

	_, err = jwt.Decode("a.b")
	require.ErrorIs(t, err, jose.ErrIncorrectPartsLength)
}

func TestPayloadToMap(t *testing.T) {
	m, err := jwt.PayloadToMap(map[string]interface{}{"a": 1})
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"a": 1}, m)

	m, err = jwt.PayloadToMap(`{"n":1}`)
	require.NoError(t, err)
	require.Equal(t, "1", m["n"].(interface{ String() string }).String())

	_, err = jwt.PayloadToMap(map[string]string{"a": "b"})
	require.Error(t, err)

	_, err = jwt.PayloadToMap(func() {})
	require.Error(t, err)
}
