/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid DIDs", func(t *testing.T) {
		tests := []struct {
			input    string
			expected DID
		}{
			{
				input:    "did:example:123456789abcdefghi",
				expected: DID{Method: "example", ID: "123456789abcdefghi"},
			},
			{
				input: "did:example:123456789abcdefghi;foo=bar;baz=qux",
				expected: DID{
					Method: "example", ID: "123456789abcdefghi",
					Params: map[string]string{"foo": "bar", "baz": "qux"},
				},
			},
			{
				input:    "did:example:123456789abcdefghi?foo=bar&baz=qux",
				expected: DID{Method: "example", ID: "123456789abcdefghi", Query: "foo=bar&baz=qux"},
			},
			{
				input:    "did:example:123456789abcdefghi#keys-1",
				expected: DID{Method: "example", ID: "123456789abcdefghi", Fragment: "keys-1"},
			},
			{
				input:    "did:example:123456789abcdefghi/path/to/resource",
				expected: DID{Method: "example", ID: "123456789abcdefghi", Path: "/path/to/resource"},
			},
			{
				input: "did:example:123;service=agent/some/path?versionId=1#key-1",
				expected: DID{
					Method: "example", ID: "123", Params: map[string]string{"service": "agent"},
					Path: "/some/path", Query: "versionId=1", Fragment: "key-1",
				},
			},
			{
				input:    "did:web:example.com%3A8080:user:alice",
				expected: DID{Method: "web", ID: "example.com%3A8080:user:alice"},
			},
			{
				input:    "did:jwk:eyJrdHkiOiJPS1AifQ",
				expected: DID{Method: "jwk", ID: "eyJrdHkiOiJPS1AifQ"},
			},
		}

		for _, tc := range tests {
			d, err := Parse(tc.input)
			require.NoError(t, err, tc.input)

			tc.expected.URI = "did:" + tc.expected.Method + ":" + tc.expected.ID
			tc.expected.URL = tc.input

			require.Equal(t, tc.expected, *d, tc.input)
			require.Equal(t, tc.input, d.String())
		}
	})

	t.Run("invalid DIDs", func(t *testing.T) {
		for _, input := range []string{
			"",
			"did:",
			"did:jwk",
			"did:uport",
			"did:uport:",
			"did:uport:1234_12313***",
			"2nQtiQG6Cgm1GYTBaaKAgr76uY7iSexUkqX",
			"did:method:%12%1",
			"did:method:%1233%Ag",
			"did:METHOD:abc",
			"did:example:a;b",
			"urn:example:abc",
		} {
			_, err := Parse(input)
			require.ErrorIs(t, err, ErrInvalidDID, input)
		}
	})
}

func TestWithoutFragment(t *testing.T) {
	require.Equal(t, "did:example:123", WithoutFragment("did:example:123#key-1"))
	require.Equal(t, "did:example:123", WithoutFragment("did:example:123"))
}

func TestGetDidMethod(t *testing.T) {
	method, err := GetDidMethod("did:web:example.com")
	require.NoError(t, err)
	require.Equal(t, "web", method)

	_, err = GetDidMethod("did:web")
	require.ErrorIs(t, err, ErrInvalidDID)

	_, err = GetDidMethod("urn:web:example.com")
	require.ErrorIs(t, err, ErrInvalidDID)
}
