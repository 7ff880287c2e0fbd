/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

const validDoc = `{
  "@context": ["https://www.w3.org/ns/did/v1", {"@vocab": "https://example.com#"}],
  "id": "did:web:example.com",
  "controller": "did:web:controller.example.com",
  "verificationMethod": [{
    "id": "did:web:example.com#key-0",
    "type": "JsonWebKey",
    "controller": "did:web:example.com",
    "publicKeyJwk": {"kty": "OKP", "crv": "Ed25519", "x": "11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}
  }, {
    "id": "#key-1",
    "type": "JsonWebKey",
    "controller": "did:web:example.com",
    "publicKeyJwk": {"kty": "OKP", "crv": "Ed25519", "x": "11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}
  }],
  "authentication": ["#key-0"],
  "assertionMethod": ["did:web:example.com#key-0", "did:web:example.com#key-1"],
  "service": [{"id": "#dwn", "type": "DecentralizedWebNode", "serviceEndpoint": "https://dwn.example.com"}]
}`

func TestParseDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc, err := ParseDocument([]byte(validDoc))
		require.NoError(t, err)

		require.Equal(t, Context{ContextV1}, doc.Context)
		require.Equal(t, []string{"did:web:controller.example.com"}, doc.Controller)
		require.Len(t, doc.VerificationMethod, 2)
		require.Equal(t, jwk.CurveEd25519, doc.VerificationMethod[0].PublicKeyJwk.Crv)
		require.Equal(t, ServiceEndpoint{"https://dwn.example.com"}, doc.Service[0].ServiceEndpoint)

		vm, err := doc.FindVerificationMethod("#key-1")
		require.NoError(t, err)
		require.Equal(t, "#key-1", vm.ID)

		vm, err = doc.FindVerificationMethod("did:web:example.com#key-1")
		require.NoError(t, err)
		require.Equal(t, "#key-1", vm.ID)

		require.True(t, doc.HasReference(Authentication, "did:web:example.com#key-0"))
		require.True(t, doc.HasReference(AssertionMethod, "#key-1"))
		require.False(t, doc.HasReference(CapabilityDelegation, "#key-0"))
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseDocument([]byte("not json"))
		require.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := ParseDocument([]byte(`{"id": "did:web:example.com", "verificationMethod": [{"id": "#k"}]}`))
		require.ErrorIs(t, err, ErrInvalidDocument)
		require.Contains(t, err.Error(), "did document not valid")

		_, err = ParseDocument([]byte(`{"verificationMethod": []}`))
		require.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("dangling reference", func(t *testing.T) {
		_, err := ParseDocument([]byte(`{"id": "did:web:example.com", "authentication": ["#missing"]}`))
		require.ErrorIs(t, err, ErrVerificationMethodNotFound)
	})
}

func TestDocJSON(t *testing.T) {
	doc := &Doc{
		Context: Context{ContextV1},
		ID:      "did:example:123",
		VerificationMethod: []VerificationMethod{{
			ID:           "did:example:123#0",
			Type:         JSONWebKeyType,
			Controller:   "did:example:123",
			PublicKeyJwk: jwk.JWK{Kty: jwk.KeyTypeOKP, Crv: jwk.CurveEd25519, X: "eA"},
		}},
		Service: []Service{{ID: "did:example:123#s", Type: "T", ServiceEndpoint: ServiceEndpoint{"a", "b"}}},
	}
	doc.AddReference(Authentication, "did:example:123#0")
	doc.AddReference(KeyAgreement, "did:example:123#0")

	raw, err := doc.JSONBytes()
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	require.Contains(t, m, "@context")
	require.Contains(t, m, "verificationMethod")
	require.Contains(t, m, "keyAgreement")
	require.NotContains(t, m, "assertionMethod")

	parsed, err := ParseDocument(raw)
	require.NoError(t, err)
	require.Equal(t, doc, parsed)
}

func TestFindVerificationMethod(t *testing.T) {
	doc := &Doc{ID: "did:example:123"}

	_, err := doc.FindVerificationMethod("")
	require.ErrorIs(t, err, ErrVerificationMethodNotFound)

	_, err = doc.FindVerificationMethod("#0")
	require.ErrorIs(t, err, ErrVerificationMethodNotFound)

	require.ErrorIs(t, (&Doc{}).Validate(), ErrInvalidDocument)
}

func TestLookupService(t *testing.T) {
	doc := &Doc{Service: []Service{{ID: "#a", Type: "A"}, {ID: "#b", Type: "B"}}}

	s, ok := LookupService(doc, "B")
	require.True(t, ok)
	require.Equal(t, "#b", s.ID)

	_, ok = LookupService(doc, "C")
	require.False(t, ok)
}

func TestResolutionError(t *testing.T) {
	res := NewResolutionError(NotFound)
	require.ErrorIs(t, res.Err(), NotFound)
	require.Nil(t, res.DIDDocument)

	raw, err := res.JSONBytes()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"didResolutionMetadata":{"error":"notFound"}`)

	parsed, err := ParseDocumentResolution(raw)
	require.NoError(t, err)
	require.Equal(t, NotFound, parsed.ResolutionMetadata.Error)

	ok := NewDocResolution(&Doc{ID: "did:example:123"})
	require.NoError(t, ok.Err())

	require.ErrorIs(t, (&DocResolution{}).Err(), InternalError)

	for _, e := range []ResolutionError{
		InvalidDID, NotFound, RepresentationNotSupported, MethodNotSupported,
		InvalidDIDDocument, InvalidDIDDocumentLength, InternalError, ResolutionError("other"),
	} {
		require.NotEmpty(t, e.Error())
	}
}
