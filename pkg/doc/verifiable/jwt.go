/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	gojosejson "github.com/go-jose/go-jose/v3/json"
	gojosejwt "github.com/go-jose/go-jose/v3/jwt"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose"
	"github.com/trustcore/didtrust/pkg/doc/jwt"
	"github.com/trustcore/didtrust/pkg/vdr/api"
)

const vcClaimName = "vc"

// VC-JWT errors.
var (
	ErrMissingClaim  = errors.New("missing claim")
	ErrClaimMismatch = errors.New("claim mismatch")
)

// jwtVCClaim is the content of the "vc" claim of a VC-JWT. Every member is optional.
type jwtVCClaim struct {
	Context []string               `mapstructure:"@context"`
	ID      string                 `mapstructure:"id"`
	Types   []string               `mapstructure:"type"`
	Issuer  interface{}            `mapstructure:"issuer"`
	Issued  *time.Time             `mapstructure:"issuanceDate"`
	Expired *time.Time             `mapstructure:"expirationDate"`
	Subject map[string]interface{} `mapstructure:"credentialSubject"`
}

// SignJWT signs the credential as a VC-JWT with the verification method keyID of bearer. An empty
// keyID selects the first verification method of the document. The issuer must be the bearer DID
// and the verification method must be listed under assertionMethod.
func (vc *Credential) SignJWT(bearer *bearerdid.BearerDID, keyID string) (string, error) {
	if !strings.HasPrefix(vc.Issuer.ID, bearer.DID.URI) {
		return "", fmt.Errorf("bearer DID URI %s does not match issuer %s", bearer.DID.URI, vc.Issuer.ID)
	}

	keyID, err := signingKeyID(bearer, keyID, did.AssertionMethod)
	if err != nil {
		return "", err
	}

	// go-jose encodes the claims, so the vc claim must not carry encoding/json numbers
	var vcClaim map[string]interface{}

	if err := remarshal(vc, &vcClaim); err != nil {
		return "", fmt.Errorf("marshal vc claim: %w", err)
	}

	claims := &jwt.Claims{
		Claims: gojosejwt.Claims{
			Issuer:    vc.Issuer.ID,
			ID:        vc.ID,
			Subject:   vc.Subject.ID,
			NotBefore: gojosejwt.NewNumericDate(vc.Issued),
			IssuedAt:  gojosejwt.NewNumericDate(time.Now()),
		},
		Private: map[string]interface{}{vcClaimName: vcClaim},
	}

	if vc.Expired != nil {
		claims.Expiry = gojosejwt.NewNumericDate(*vc.Expired)
	}

	return jwt.Sign(bearer, keyID, claims)
}

// ParseJWT decodes a VC-JWT. With verify set the signature is checked against the verification
// method named by the kid header, resolved through resolver, and the decoded credential must be
// valid at the current time. The registered claims must agree with the members of the vc claim,
// and fill in the members it leaves out.
func ParseJWT(ctx context.Context, token string, resolver api.Resolver, verify bool) (*Credential, error) {
	decoded, err := jwt.Decode(token)
	if err != nil {
		return nil, err
	}

	if decoded.LookupStringHeader(jose.HeaderKeyID) == "" {
		return nil, jose.ErrMissingKeyID
	}

	if verify {
		decoded, err = jwt.Verify(ctx, token, resolver)
		if err != nil {
			return nil, err
		}
	}

	claims, err := decoded.Claims()
	if err != nil {
		return nil, fmt.Errorf("decode JWT claims: %w", err)
	}

	rawVC, ok := claims.Private[vcClaimName]
	if !ok || rawVC == nil {
		return nil, missingClaim(vcClaimName)
	}

	vcClaim, err := decodeVCClaim(rawVC)
	if err != nil {
		return nil, err
	}

	if err := checkRegisteredClaims(&claims.Claims); err != nil {
		return nil, err
	}

	vc, err := credentialFromClaims(&claims.Claims, vcClaim)
	if err != nil {
		return nil, err
	}

	if verify {
		if err := vc.validateDataModel(time.Now()); err != nil {
			return nil, err
		}
	}

	return vc, nil
}

// signingKeyID expands keyID to the absolute id of a verification method of bearer listed under
// purpose. An empty keyID selects the first verification method.
func signingKeyID(bearer *bearerdid.BearerDID, keyID string, purpose did.Purpose) (string, error) {
	if keyID == "" {
		if len(bearer.Document.VerificationMethod) == 0 {
			return "", fmt.Errorf("%w: %s", did.ErrVerificationMethodNotFound, bearer.DID.URI)
		}

		keyID = bearer.Document.VerificationMethod[0].ID
	}

	keyID = bearer.ExpandID(bearer.Document.AbsoluteID(keyID))

	if !bearer.Document.HasReference(purpose, keyID) {
		return "", fmt.Errorf("verification method %s is not an %s", keyID, purpose)
	}

	return keyID, nil
}

func checkRegisteredClaims(claims *gojosejwt.Claims) error {
	switch {
	case claims.ID == "":
		return missingClaim("jti")
	case claims.Issuer == "":
		return missingClaim("iss")
	case claims.Subject == "":
		return missingClaim("sub")
	case claims.NotBefore == nil:
		return missingClaim("nbf")
	}

	return nil
}

func credentialFromClaims(claims *gojosejwt.Claims, vcClaim *jwtVCClaim) (*Credential, error) {
	if vcClaim.ID != "" && vcClaim.ID != claims.ID {
		return nil, claimMismatch("id")
	}

	issuer := Issuer{ID: claims.Issuer}

	if vcClaim.Issuer != nil {
		var err error

		issuer, err = decodeIssuer(vcClaim.Issuer)
		if err != nil {
			return nil, err
		}

		if issuer.ID != claims.Issuer {
			return nil, claimMismatch("issuer")
		}
	}

	subject := Subject{ID: claims.Subject}

	if vcClaim.Subject != nil {
		var err error

		subject, err = decodeSubject(vcClaim.Subject)
		if err != nil {
			return nil, err
		}

		if subject.ID != claims.Subject {
			return nil, claimMismatch("subject")
		}
	}

	if vcClaim.Expired != nil {
		if claims.Expiry == nil {
			return nil, fmt.Errorf("%w: vc has expirationDate but no exp in registered claims", ErrClaimMismatch)
		}

		diff := vcClaim.Expired.Sub(claims.Expiry.Time())
		if diff < 0 {
			diff = -diff
		}

		if diff >= time.Second {
			return nil, claimMismatch("expirationDate")
		}
	}

	vc := &Credential{
		Context: orDefault(vcClaim.Context, ContextURI),
		ID:      claims.ID,
		Types:   orDefault(vcClaim.Types, VCType),
		Issuer:  issuer,
		Issued:  claims.NotBefore.Time(),
		Subject: subject,
	}

	if claims.Expiry != nil {
		exp := claims.Expiry.Time()
		vc.Expired = &exp
	}

	return vc, nil
}

// decodeVCClaim decodes the vc claim with mapstructure. A single string @context or type is
// accepted as a one element list, and dates are RFC 3339 strings.
func decodeVCClaim(raw interface{}) (*jwtVCClaim, error) {
	m, err := normalizeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: vc claim is not a JSON object", ErrMissingClaim)
	}

	vcClaim := &jwtVCClaim{}

	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           vcClaim,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToTimeHook()),
	})
	if err != nil {
		return nil, fmt.Errorf("mapstruct decoder: %w", err)
	}

	if err := d.Decode(m); err != nil {
		return nil, fmt.Errorf("decode vc claim: %w", err)
	}

	return vcClaim, nil
}

// stringToTimeHook parses RFC 3339 strings into time.Time.
func stringToTimeHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Time{}) {
			return data, nil
		}

		return time.Parse(time.RFC3339, reflect.ValueOf(data).String())
	}
}

func decodeIssuer(raw interface{}) (Issuer, error) {
	var issuer Issuer

	if err := remarshal(raw, &issuer); err != nil {
		return Issuer{}, fmt.Errorf("decode vc issuer: %w", err)
	}

	return issuer, nil
}

func decodeSubject(raw map[string]interface{}) (Subject, error) {
	if _, ok := raw["id"].(string); !ok {
		return Subject{}, fmt.Errorf("%w: credentialSubject.id", ErrMissingClaim)
	}

	var subject Subject

	if err := remarshal(raw, &subject); err != nil {
		return Subject{}, fmt.Errorf("decode vc credentialSubject: %w", err)
	}

	return subject, nil
}

// normalizeJSON converts a claim decoded by go-jose into a plain JSON object whose numbers are
// encoding/json numbers.
func normalizeJSON(raw interface{}) (map[string]interface{}, error) {
	b, err := gojosejson.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}

	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()

	if err := d.Decode(&m); err != nil {
		return nil, err
	}

	if m == nil {
		return nil, errors.New("not a JSON object")
	}

	return m, nil
}

// orDefault returns values, or a list holding only def when values is empty.
func orDefault(values []string, def string) []string {
	if len(values) == 0 {
		return []string{def}
	}

	return values
}

func remarshal(in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}

func missingClaim(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingClaim, name)
}

func claimMismatch(name string) error {
	return fmt.Errorf("%w: %s", ErrClaimMismatch, name)
}
