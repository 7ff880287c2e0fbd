/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/vdr/api"
)

// VPType is the required base type of a presentation.
const VPType = "VerifiablePresentation"

// ErrInvalidPresentation is returned when a presentation cannot be created or parsed.
var ErrInvalidPresentation = errors.New("invalid presentation")

const basePresentationSchema = `
{
  "required": [
    "@context",
    "id",
    "type",
    "holder",
    "issuanceDate"
  ],
  "properties": {
    "@context": {
      "type": "array",
      "items": [
        {
          "type": "string",
          "pattern": "^https://www.w3.org/2018/credentials/v1$"
        }
      ],
      "uniqueItems": true,
      "additionalItems": {
        "type": "string"
      }
    },
    "id": {
      "type": "string",
      "minLength": 1
    },
    "type": {
      "type": "array",
      "items": [
        {
          "type": "string",
          "pattern": "^VerifiablePresentation$"
        }
      ],
      "minItems": 1,
      "additionalItems": {
        "type": "string"
      }
    },
    "holder": {
      "type": "string",
      "minLength": 1
    },
    "issuanceDate": {
      "type": "string"
    },
    "expirationDate": {
      "type": "string"
    },
    "verifiableCredential": {
      "type": "array",
      "items": {
        "type": "string"
      }
    }
  }
}
`

//nolint:gochecknoglobals
var basePresentationSchemaLoader = gojsonschema.NewStringLoader(basePresentationSchema)

// Presentation is a Verifiable Presentation: a holder DID presenting VC-JWTs.
type Presentation struct {
	Context     []string   `json:"@context"`
	ID          string     `json:"id"`
	Types       []string   `json:"type"`
	Holder      string     `json:"holder"`
	Issued      time.Time  `json:"issuanceDate"`
	Expired     *time.Time `json:"expirationDate,omitempty"`
	Credentials []string   `json:"verifiableCredential,omitempty"`

	CustomFields CustomFields `json:"-"`
}

// MarshalJSON marshals Presentation to JSON.
func (vp Presentation) MarshalJSON() ([]byte, error) {
	type Alias Presentation

	data, err := marshalWithCustomFields(Alias(vp), vp.CustomFields)
	if err != nil {
		return nil, fmt.Errorf("marshal Presentation: %w", err)
	}

	return data, nil
}

// UnmarshalJSON unmarshals Presentation from JSON.
func (vp *Presentation) UnmarshalJSON(bytes []byte) error {
	type Alias Presentation

	vp.CustomFields = make(CustomFields)

	if err := unmarshalWithCustomFields(bytes, (*Alias)(vp), vp.CustomFields); err != nil {
		return fmt.Errorf("unmarshal Presentation: %w", err)
	}

	if len(vp.CustomFields) == 0 {
		vp.CustomFields = nil
	}

	return nil
}

// JSONBytes converts the presentation to JSON.
func (vp *Presentation) JSONBytes() ([]byte, error) {
	return json.Marshal(vp)
}

// ParsePresentation decodes a presentation from JSON. The document must have the base context and
// type first and carry its VC-JWTs as strings.
func ParsePresentation(data []byte) (*Presentation, error) {
	result, err := gojsonschema.Validate(basePresentationSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPresentation, err.Error())
	}

	if !result.Valid() {
		msg := make([]string, 0, len(result.Errors()))

		for _, desc := range result.Errors() {
			msg = append(msg, desc.String())
		}

		return nil, errors.Wrap(ErrInvalidPresentation, strings.Join(msg, "; "))
	}

	vp := &Presentation{}

	if err := json.Unmarshal(data, vp); err != nil {
		return nil, errors.Wrap(ErrInvalidPresentation, err.Error())
	}

	return vp, nil
}

// CreatePresentation builds a presentation of the VC-JWTs vcJWTs by holder, which must be a DID.
// Every VC-JWT is verified through resolver first. The options are those of Create and apply to
// the presentation: the base context and type VerifiablePresentation are always listed first.
func CreatePresentation(ctx context.Context, holder string, vcJWTs []string, resolver api.Resolver,
	opts ...CreateOption) (*Presentation, error) {
	if _, err := did.Parse(holder); err != nil {
		return nil, errors.Wrap(ErrInvalidPresentation, "holder must be a valid DID URI")
	}

	for i, vcJWT := range vcJWTs {
		if _, err := ParseJWT(ctx, vcJWT, resolver, true); err != nil {
			return nil, fmt.Errorf("verifiable credential %d: %w", i, err)
		}
	}

	o := &createOpts{}

	for _, opt := range opts {
		opt(o)
	}

	id := o.id
	if id == "" {
		id = "urn:uuid:" + uuid.New().String()
	}

	issued := o.issued
	if issued.IsZero() {
		issued = time.Now()
	}

	return &Presentation{
		Context:     withBase(ContextURI, o.context),
		ID:          id,
		Types:       withBase(VPType, o.types),
		Holder:      holder,
		Issued:      issued,
		Expired:     o.expiration,
		Credentials: append([]string(nil), vcJWTs...),
	}, nil
}
