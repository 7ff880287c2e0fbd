/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwt signs and verifies JSON Web Tokens secured by DID verification methods.
package jwt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-jose/go-jose/v3/json"
	"github.com/go-jose/go-jose/v3/jwt"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/doc/jose"
	"github.com/trustcore/didtrust/pkg/vdr/api"
)

// TypeJWT defines JWT type.
const TypeJWT = "JWT"

// registeredClaims are the claim names held by jwt.Claims.
var registeredClaims = []string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti"} //nolint:gochecknoglobals

// Claims defines JSON Web Token Claims (https://tools.ietf.org/html/rfc7519#section-4): the
// registered claims plus any private claims.
type Claims struct {
	jwt.Claims

	Private map[string]interface{}
}

// MarshalJSON writes registered and private claims as a single object. A private claim never
// overrides a registered one.
func (c Claims) MarshalJSON() ([]byte, error) {
	registered, err := PayloadToMap(c.Claims)
	if err != nil {
		return nil, err
	}

	out := make(map[string]interface{}, len(registered)+len(c.Private))

	for k, v := range c.Private {
		out[k] = v
	}

	for k, v := range registered {
		out[k] = v
	}

	return json.Marshal(out)
}

// UnmarshalJSON splits a claims object into registered and private claims.
func (c *Claims) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.Claims); err != nil {
		return err
	}

	all, err := PayloadToMap(data)
	if err != nil {
		return err
	}

	for _, name := range registeredClaims {
		delete(all, name)
	}

	c.Private = nil

	if len(all) > 0 {
		c.Private = all
	}

	return nil
}

// JSONWebToken defines JSON Web Token (https://tools.ietf.org/html/rfc7519)
type JSONWebToken struct {
	Headers jose.Headers

	Payload map[string]interface{}

	jws *jose.JSONWebSignature
}

// Sign signs claims with the verification method keyID of bearer and returns the compact token.
func Sign(bearer *bearerdid.BearerDID, keyID string, claims *Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal JWT claims: %w", err)
	}

	return jose.Sign(bearer, keyID, jose.Headers{jose.HeaderType: TypeJWT}, payload)
}

// Verify checks the token signature against the DID document of its kid and returns the token.
func Verify(ctx context.Context, token string, resolver api.Resolver) (*JSONWebToken, error) {
	jws, err := jose.Verify(ctx, token, resolver)
	if err != nil {
		return nil, fmt.Errorf("verify JWT: %w", err)
	}

	return mapJWSToJWT(jws)
}

// Decode parses the token without verifying its signature.
func Decode(token string) (*JSONWebToken, error) {
	jws, err := jose.ParseCompact(token)
	if err != nil {
		return nil, fmt.Errorf("parse JWT from compact JWS: %w", err)
	}

	return mapJWSToJWT(jws)
}

// Claims decodes the token payload.
func (j *JSONWebToken) Claims() (*Claims, error) {
	c := &Claims{}

	if err := j.DecodeClaims(c); err != nil {
		return nil, err
	}

	return c, nil
}

// DecodeClaims fills input c with claims of a token.
func (j *JSONWebToken) DecodeClaims(c interface{}) error {
	pBytes, err := json.Marshal(j.Payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(pBytes, c)
}

// LookupStringHeader makes look up of particular header with string value.
func (j *JSONWebToken) LookupStringHeader(name string) string {
	if headerValue, ok := j.Headers[name]; ok {
		if headerStrValue, ok := headerValue.(string); ok {
			return headerStrValue
		}
	}

	return ""
}

// Serialize makes (compact) serialization of token.
func (j *JSONWebToken) Serialize() string {
	return j.jws.SerializeCompact()
}

func mapJWSToJWT(jws *jose.JSONWebSignature) (*JSONWebToken, error) {
	headers := jws.ProtectedHeaders

	err := checkHeaders(headers)
	if err != nil {
		return nil, fmt.Errorf("check JWT headers: %w", err)
	}

	claims, err := PayloadToMap(jws.Payload)
	if err != nil {
		return nil, fmt.Errorf("read JWT claims from JWS payload: %w", err)
	}

	return &JSONWebToken{
		Headers: headers,
		Payload: claims,
		jws:     jws,
	}, nil
}

func checkHeaders(headers map[string]interface{}) error {
	if _, ok := headers[jose.HeaderAlgorithm]; !ok {
		return errors.New("alg header is not defined")
	}

	typ, ok := headers[jose.HeaderType]
	if ok && typ != TypeJWT {
		return errors.New("typ is not JWT")
	}

	cty, ok := headers[jose.HeaderContentType]
	if ok && cty == TypeJWT { // https://tools.ietf.org/html/rfc7519#section-5.2
		return errors.New("nested JWT is not supported")
	}

	return nil
}

// PayloadToMap transforms interface to map.
func PayloadToMap(i interface{}) (map[string]interface{}, error) {
	if m, ok := i.(map[string]interface{}); ok {
		return m, nil
	}

	var (
		b   []byte
		err error
	)

	switch cv := i.(type) {
	case []byte:
		b = cv
	case string:
		b = []byte(cv)
	default:
		if reflect.ValueOf(i).Kind() == reflect.Map {
			return nil, fmt.Errorf("unsupported map type %T", i)
		}

		b, err = json.Marshal(i)
		if err != nil {
			return nil, fmt.Errorf("marshal interface[%T]: %w", i, err)
		}
	}

	var m map[string]interface{}

	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()

	if err := d.Decode(&m); err != nil {
		return nil, fmt.Errorf("convert to map: %w", err)
	}

	if m == nil {
		return nil, errors.New("convert to map: not a JSON object")
	}

	return m, nil
}
