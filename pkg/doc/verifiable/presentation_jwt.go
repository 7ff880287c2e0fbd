/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"context"
	"fmt"
	"strings"
	"time"

	gojosejwt "github.com/go-jose/go-jose/v3/jwt"
	"github.com/mitchellh/mapstructure"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose"
	"github.com/trustcore/didtrust/pkg/doc/jwt"
	"github.com/trustcore/didtrust/pkg/vdr/api"
)

const vpClaimName = "vp"

// jwtVPClaim is the content of the "vp" claim of a VP-JWT. Members it does not name are kept as
// custom fields of the presentation.
type jwtVPClaim struct {
	Context     []string               `mapstructure:"@context"`
	ID          string                 `mapstructure:"id"`
	Types       []string               `mapstructure:"type"`
	Holder      string                 `mapstructure:"holder"`
	Issued      *time.Time             `mapstructure:"issuanceDate"`
	Expired     *time.Time             `mapstructure:"expirationDate"`
	Credentials []string               `mapstructure:"verifiableCredential"`
	Extra       map[string]interface{} `mapstructure:",remain"`
}

// SignJWT signs the presentation as a VP-JWT with the verification method keyID of bearer. An
// empty keyID selects the first verification method of the document. The holder must be the bearer
// DID and the verification method must be listed under authentication.
func (vp *Presentation) SignJWT(bearer *bearerdid.BearerDID, keyID string) (string, error) {
	if !strings.HasPrefix(vp.Holder, bearer.DID.URI) {
		return "", fmt.Errorf("bearer DID URI %s does not match holder %s", bearer.DID.URI, vp.Holder)
	}

	keyID, err := signingKeyID(bearer, keyID, did.Authentication)
	if err != nil {
		return "", err
	}

	var vpClaim map[string]interface{}

	if err := remarshal(vp, &vpClaim); err != nil {
		return "", fmt.Errorf("marshal vp claim: %w", err)
	}

	claims := &jwt.Claims{
		Claims: gojosejwt.Claims{
			Issuer:    vp.Holder,
			ID:        vp.ID,
			NotBefore: gojosejwt.NewNumericDate(vp.Issued),
			IssuedAt:  gojosejwt.NewNumericDate(time.Now()),
		},
		Private: map[string]interface{}{vpClaimName: vpClaim},
	}

	if vp.Expired != nil {
		claims.Expiry = gojosejwt.NewNumericDate(*vp.Expired)
	}

	return jwt.Sign(bearer, keyID, claims)
}

// ParsePresentationJWT decodes a VP-JWT. With verify set the signature is checked against the
// verification method named by the kid header, the presentation must be valid at the current time
// and every enclosed VC-JWT is verified with ParseJWT.
func ParsePresentationJWT(ctx context.Context, token string, resolver api.Resolver, verify bool) (*Presentation, error) {
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

	rawVP, ok := claims.Private[vpClaimName]
	if !ok || rawVP == nil {
		return nil, missingClaim(vpClaimName)
	}

	vpClaim, err := decodeVPClaim(rawVP)
	if err != nil {
		return nil, err
	}

	switch {
	case claims.ID == "":
		return nil, missingClaim("jti")
	case claims.Issuer == "":
		return nil, missingClaim("iss")
	case claims.NotBefore == nil:
		return nil, missingClaim("nbf")
	case vpClaim.ID != "" && vpClaim.ID != claims.ID:
		return nil, claimMismatch("id")
	case vpClaim.Holder != "" && vpClaim.Holder != claims.Issuer:
		return nil, claimMismatch("holder")
	}

	vp := &Presentation{
		Context:     orDefault(vpClaim.Context, ContextURI),
		ID:          claims.ID,
		Types:       orDefault(vpClaim.Types, VPType),
		Holder:      claims.Issuer,
		Issued:      claims.NotBefore.Time(),
		Credentials: vpClaim.Credentials,
	}

	if claims.Expiry != nil {
		exp := claims.Expiry.Time()
		vp.Expired = &exp
	}

	if len(vpClaim.Extra) > 0 {
		vp.CustomFields = vpClaim.Extra
	}

	if verify {
		if err := vp.validateDataModel(time.Now()); err != nil {
			return nil, err
		}

		for i, vcJWT := range vp.Credentials {
			if _, err := ParseJWT(ctx, vcJWT, resolver, true); err != nil {
				return nil, fmt.Errorf("%w: invalid vc jwt %d: %w", ErrDataModelValidation, i, err)
			}
		}
	}

	return vp, nil
}

func decodeVPClaim(raw interface{}) (*jwtVPClaim, error) {
	m, err := normalizeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: vp claim is not a JSON object", ErrMissingClaim)
	}

	vpClaim := &jwtVPClaim{}

	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           vpClaim,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToTimeHook()),
	})
	if err != nil {
		return nil, fmt.Errorf("mapstruct decoder: %w", err)
	}

	if err := d.Decode(m); err != nil {
		return nil, fmt.Errorf("decode vp claim: %w", err)
	}

	return vpClaim, nil
}
