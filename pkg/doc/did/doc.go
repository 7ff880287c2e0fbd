/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

const (
	// ContextV1 is the DID Core v1 JSON-LD context.
	ContextV1 = "https://www.w3.org/ns/did/v1"

	// JSONWebKeyType is the verification method type of every method built by didtrust.
	JSONWebKeyType = "JsonWebKey"
)

// Document errors.
var (
	ErrVerificationMethodNotFound = errors.New("verification method not found")
	ErrInvalidDocument            = errors.New("invalid did document")
)

var schemaLoader = gojsonschema.NewStringLoader(documentSchema) //nolint:gochecknoglobals

// Purpose is a verification relationship of a DID document.
type Purpose string

// Verification relationships.
const (
	Authentication       Purpose = "authentication"
	AssertionMethod      Purpose = "assertionMethod"
	KeyAgreement         Purpose = "keyAgreement"
	CapabilityInvocation Purpose = "capabilityInvocation"
	CapabilityDelegation Purpose = "capabilityDelegation"
)

// Purposes lists every verification relationship in document order.
func Purposes() []Purpose {
	return []Purpose{Authentication, AssertionMethod, KeyAgreement, CapabilityInvocation, CapabilityDelegation}
}

// Doc is a DID Document. Purpose lists hold verification method id references.
type Doc struct {
	Context              Context              `json:"@context,omitempty"`
	ID                   string               `json:"id"`
	Controller           []string             `json:"controller,omitempty"`
	AlsoKnownAs          []string             `json:"alsoKnownAs,omitempty"`
	VerificationMethod   []VerificationMethod `json:"verificationMethod,omitempty"`
	Authentication       []string             `json:"authentication,omitempty"`
	AssertionMethod      []string             `json:"assertionMethod,omitempty"`
	KeyAgreement         []string             `json:"keyAgreement,omitempty"`
	CapabilityInvocation []string             `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation []string             `json:"capabilityDelegation,omitempty"`
	Service              []Service            `json:"service,omitempty"`
}

// VerificationMethod binds a public key to a DID.
type VerificationMethod struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Controller   string  `json:"controller"`
	PublicKeyJwk jwk.JWK `json:"publicKeyJwk"`
}

// Service is a DID document service entry.
type Service struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	ServiceEndpoint ServiceEndpoint `json:"serviceEndpoint"`
}

// ServiceEndpoint is a list of endpoint URIs. A single JSON string decodes to a one element list.
type ServiceEndpoint []string

// UnmarshalJSON accepts a string or an array of strings.
func (s *ServiceEndpoint) UnmarshalJSON(data []byte) error {
	return unmarshalStringOrArray(data, (*[]string)(s))
}

// Context is the @context member. A single JSON string decodes to a one element list; non string
// entries of an array are skipped.
type Context []string

// UnmarshalJSON accepts a string or an array.
func (c *Context) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = Context{single}

		return nil
	}

	var entries []interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("@context must be a string or an array: %w", err)
	}

	out := make(Context, 0, len(entries))

	for _, e := range entries {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}

	*c = out

	return nil
}

func unmarshalStringOrArray(data []byte, out *[]string) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*out = []string{single}

		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or an array of strings: %w", err)
	}

	*out = many

	return nil
}

// UnmarshalJSON accepts a controller given as a string or as an array of strings.
func (doc *Doc) UnmarshalJSON(data []byte) error {
	type rawDoc Doc

	aux := struct {
		*rawDoc
		Controller json.RawMessage `json:"controller,omitempty"`
	}{rawDoc: (*rawDoc)(doc)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	doc.Controller = nil

	if len(aux.Controller) > 0 {
		return unmarshalStringOrArray(aux.Controller, &doc.Controller)
	}

	return nil
}

// ParseDocument validates raw JSON against the DID document schema, decodes it and checks that
// every verification relationship references a verification method of the document.
func ParseDocument(data []byte) (*Doc, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	doc := &Doc{}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, err.Error())
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: validation of DID doc failed: %s", ErrInvalidDocument, err.Error())
	}

	if !result.Valid() {
		errMsg := "did document not valid:\n"
		for _, desc := range result.Errors() {
			errMsg += fmt.Sprintf("- %s\n", desc)
		}

		return fmt.Errorf("%w: %s", ErrInvalidDocument, errMsg)
	}

	return nil
}

// Validate checks the document id and that purpose references resolve to verification methods.
func (doc *Doc) Validate() error {
	if doc.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDocument)
	}

	for _, purpose := range Purposes() {
		for _, ref := range doc.References(purpose) {
			if _, err := doc.FindVerificationMethod(ref); err != nil {
				return fmt.Errorf("%s reference %s: %w", purpose, ref, err)
			}
		}
	}

	return nil
}

// References returns the verification method ids listed under the purpose.
func (doc *Doc) References(purpose Purpose) []string {
	switch purpose {
	case Authentication:
		return doc.Authentication
	case AssertionMethod:
		return doc.AssertionMethod
	case KeyAgreement:
		return doc.KeyAgreement
	case CapabilityInvocation:
		return doc.CapabilityInvocation
	case CapabilityDelegation:
		return doc.CapabilityDelegation
	default:
		return nil
	}
}

// AddReference appends a verification method id to the purpose list.
func (doc *Doc) AddReference(purpose Purpose, vmID string) {
	switch purpose {
	case Authentication:
		doc.Authentication = append(doc.Authentication, vmID)
	case AssertionMethod:
		doc.AssertionMethod = append(doc.AssertionMethod, vmID)
	case KeyAgreement:
		doc.KeyAgreement = append(doc.KeyAgreement, vmID)
	case CapabilityInvocation:
		doc.CapabilityInvocation = append(doc.CapabilityInvocation, vmID)
	case CapabilityDelegation:
		doc.CapabilityDelegation = append(doc.CapabilityDelegation, vmID)
	}
}

// HasReference reports whether vmID is listed under the purpose. Relative and absolute forms of
// the same id match.
func (doc *Doc) HasReference(purpose Purpose, vmID string) bool {
	want := doc.AbsoluteID(vmID)

	for _, ref := range doc.References(purpose) {
		if doc.AbsoluteID(ref) == want {
			return true
		}
	}

	return false
}

// AbsoluteID expands a relative "#fragment" id against the document id.
func (doc *Doc) AbsoluteID(id string) string {
	if strings.HasPrefix(id, "#") {
		return doc.ID + id
	}

	return id
}

// FindVerificationMethod returns the verification method with the given id. The id may be
// absolute ("did:x:y#k") or relative ("#k"), and so may the ids stored in the document.
func (doc *Doc) FindVerificationMethod(id string) (*VerificationMethod, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrVerificationMethodNotFound)
	}

	want := doc.AbsoluteID(id)

	for i := range doc.VerificationMethod {
		if doc.AbsoluteID(doc.VerificationMethod[i].ID) == want {
			return &doc.VerificationMethod[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrVerificationMethodNotFound, id)
}

// LookupService returns the first service of the given type.
func LookupService(didDoc *Doc, serviceType string) (*Service, bool) {
	for i := range didDoc.Service {
		if didDoc.Service[i].Type == serviceType {
			return &didDoc.Service[i], true
		}
	}

	return nil, false
}

// JSONBytes converts the document to JSON.
func (doc *Doc) JSONBytes() ([]byte, error) {
	return json.Marshal(doc)
}
