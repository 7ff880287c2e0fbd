/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jose implements compact JSON Web Signatures signed by DID verification methods.
package jose

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v3/json"
	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/common/log"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

const (
	jwsPartsCount    = 3
	jwsHeaderPart    = 0
	jwsPayloadPart   = 1
	jwsSignaturePart = 2
)

// JWS errors.
var (
	ErrIncorrectPartsLength = errors.New("compact JWS must have 3 parts")
	ErrMalformed            = errors.New("malformed JWS")
	ErrMissingKeyID         = errors.New("kid JWS header is not defined")
	ErrResolution           = errors.New("failed to resolve kid")
	ErrUnsupportedAlgorithm = errors.New("unsupported JWS algorithm")
)

var logger = log.New("didtrust/jose")

// segmentEncoding rejects padding and non-zero trailing bits, so every segment has one encoding.
var segmentEncoding = base64.RawURLEncoding.Strict() //nolint:gochecknoglobals

// JSONWebSignature is a compact JWS.
type JSONWebSignature struct {
	ProtectedHeaders Headers
	Payload          []byte
	Signature        []byte

	signingInput string
}

// NewJWS signs payload with signer. headers must carry alg.
func NewJWS(headers Headers, payload []byte, signer crypto.Signer) (*JSONWebSignature, error) {
	if _, ok := headers.Algorithm(); !ok {
		return nil, errors.New("alg JWS header is not defined")
	}

	headersBytes, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("serialize JWS headers: %w", err)
	}

	signingInput := jwk.EncodeMember(headersBytes) + "." + jwk.EncodeMember(payload)

	signature, err := signer.Sign([]byte(signingInput))
	if err != nil {
		return nil, fmt.Errorf("sign JWS verification data: %w", err)
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		Signature:        signature,
		signingInput:     signingInput,
	}, nil
}

// SerializeCompact makes JWS Compact Serialization (https://tools.ietf.org/html/rfc7515#section-7.1)
func (s *JSONWebSignature) SerializeCompact() string {
	return s.signingInput + "." + jwk.EncodeMember(s.Signature)
}

// SigningInput returns the bytes covered by the signature, "header.payload" as transmitted.
func (s *JSONWebSignature) SigningInput() []byte {
	return []byte(s.signingInput)
}

// ParseCompact parses a compact JWS without verifying it.
func ParseCompact(token string) (*JSONWebSignature, error) {
	parts := strings.Split(token, ".")
	if len(parts) != jwsPartsCount {
		return nil, errors.Wrapf(ErrIncorrectPartsLength, "got %d", len(parts))
	}

	headersBytes, err := segmentEncoding.DecodeString(parts[jwsHeaderPart])
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode base64 header: %s", err.Error())
	}

	headers, err := decodeObject(headersBytes)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "unmarshal JSON headers: %s", err.Error())
	}

	payload, err := segmentEncoding.DecodeString(parts[jwsPayloadPart])
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode base64 payload: %s", err.Error())
	}

	signature, err := segmentEncoding.DecodeString(parts[jwsSignaturePart])
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode base64 signature: %s", err.Error())
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		Signature:        signature,
		signingInput:     parts[jwsHeaderPart] + "." + parts[jwsPayloadPart],
	}, nil
}

// decodeObject decodes a JSON object keeping numbers as json.Number.
func decodeObject(data []byte) (map[string]interface{}, error) {
	obj := map[string]interface{}{}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}

	if obj == nil {
		return nil, errors.New("not a JSON object")
	}

	return obj, nil
}
