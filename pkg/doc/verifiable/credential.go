/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verifiable implements W3C Verifiable Credentials (data model 1.1) secured as JWTs
// signed by a DID verification method.
package verifiable

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/trustcore/didtrust/pkg/doc/did"
)

const (
	// ContextURI is the required base JSON-LD context of a credential.
	ContextURI = "https://www.w3.org/2018/credentials/v1"

	// VCType is the required base type of a credential.
	VCType = "VerifiableCredential"
)

// ErrInvalidCredential is returned when a credential cannot be created from the given input.
var ErrInvalidCredential = errors.New("invalid credential")

// Issuer of the Verifiable Credential: a DID given either as a string or as an object with an id
// and a name.
type Issuer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	CustomFields CustomFields `json:"-"`
}

// MarshalJSON marshals Issuer to JSON.
func (i Issuer) MarshalJSON() ([]byte, error) {
	if i.Name == "" && len(i.CustomFields) == 0 {
		// as string
		return json.Marshal(i.ID)
	}

	// as object
	type Alias Issuer

	data, err := marshalWithCustomFields(Alias(i), i.CustomFields)
	if err != nil {
		return nil, fmt.Errorf("marshal Issuer: %w", err)
	}

	return data, nil
}

// UnmarshalJSON unmarshals issuer from JSON.
func (i *Issuer) UnmarshalJSON(bytes []byte) error {
	var issuerID string

	if err := json.Unmarshal(bytes, &issuerID); err == nil {
		// as string
		*i = Issuer{ID: issuerID}

		return nil
	}

	// as object
	type Alias Issuer

	alias := (*Alias)(i)

	i.CustomFields = make(CustomFields)

	if err := unmarshalWithCustomFields(bytes, alias, i.CustomFields); err != nil {
		return fmt.Errorf("unmarshal Issuer: %w", err)
	}

	if i.ID == "" {
		return errors.New("issuer ID is not defined")
	}

	if len(i.CustomFields) == 0 {
		i.CustomFields = nil
	}

	return nil
}

func (i Issuer) validate() error {
	if i.ID == "" {
		return errors.Wrap(ErrInvalidCredential, "issuer id must not be empty")
	}

	if i.Name == "" && len(i.CustomFields) > 0 {
		return errors.Wrap(ErrInvalidCredential, "named issuer name must not be empty")
	}

	if _, err := did.Parse(i.ID); err != nil {
		return errors.Wrap(ErrInvalidCredential, "issuer must be a valid DID URI")
	}

	return nil
}

// Subject of the Verifiable Credential. Claims about the subject are kept in CustomFields.
type Subject struct {
	ID string `json:"id"`

	CustomFields CustomFields `json:"-"`
}

// MarshalJSON marshals Subject to JSON.
func (s Subject) MarshalJSON() ([]byte, error) {
	type Alias Subject

	data, err := marshalWithCustomFields(Alias(s), s.CustomFields)
	if err != nil {
		return nil, fmt.Errorf("marshal Subject: %w", err)
	}

	return data, nil
}

// UnmarshalJSON unmarshals Subject from JSON.
func (s *Subject) UnmarshalJSON(bytes []byte) error {
	type Alias Subject

	s.CustomFields = make(CustomFields)

	if err := unmarshalWithCustomFields(bytes, (*Alias)(s), s.CustomFields); err != nil {
		return fmt.Errorf("unmarshal Subject: %w", err)
	}

	if len(s.CustomFields) == 0 {
		s.CustomFields = nil
	}

	return nil
}

func (s Subject) validate() error {
	if s.ID == "" {
		return errors.Wrap(ErrInvalidCredential, "subject id must not be empty")
	}

	if _, err := did.Parse(s.ID); err != nil {
		return errors.Wrap(ErrInvalidCredential, "credential subject must be a valid DID URI")
	}

	return nil
}

// Credential is a Verifiable Credential.
type Credential struct {
	Context []string   `json:"@context"`
	ID      string     `json:"id"`
	Types   []string   `json:"type"`
	Issuer  Issuer     `json:"issuer"`
	Issued  time.Time  `json:"issuanceDate"`
	Expired *time.Time `json:"expirationDate,omitempty"`
	Subject Subject    `json:"credentialSubject"`
}

// JSONBytes converts the credential to JSON.
func (vc *Credential) JSONBytes() ([]byte, error) {
	return json.Marshal(vc)
}

// ParseCredential decodes a credential from JSON.
func ParseCredential(data []byte) (*Credential, error) {
	vc := &Credential{}

	if err := json.Unmarshal(data, vc); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	return vc, nil
}

type createOpts struct {
	context    []string
	types      []string
	id         string
	issued     time.Time
	expiration *time.Time
}

// CreateOption configures Create.
type CreateOption func(opts *createOpts)

// WithContext adds JSON-LD contexts after the base context.
func WithContext(context ...string) CreateOption {
	return func(opts *createOpts) {
		opts.context = append(opts.context, context...)
	}
}

// WithType adds credential types after the base type.
func WithType(types ...string) CreateOption {
	return func(opts *createOpts) {
		opts.types = append(opts.types, types...)
	}
}

// WithID sets the credential id instead of a generated urn:uuid.
func WithID(id string) CreateOption {
	return func(opts *createOpts) {
		opts.id = id
	}
}

// WithIssuanceDate sets the issuance date. Defaults to the current time.
func WithIssuanceDate(issued time.Time) CreateOption {
	return func(opts *createOpts) {
		opts.issued = issued
	}
}

// WithExpirationDate sets the expiration date.
func WithExpirationDate(expired time.Time) CreateOption {
	return func(opts *createOpts) {
		opts.expiration = &expired
	}
}

// Create builds a credential issued by issuer about subject. Both must be DIDs. The base context
// and type are always present and listed first.
func Create(issuer Issuer, subject Subject, opts ...CreateOption) (*Credential, error) {
	if err := issuer.validate(); err != nil {
		return nil, err
	}

	if err := subject.validate(); err != nil {
		return nil, err
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

	return &Credential{
		Context: withBase(ContextURI, o.context),
		ID:      id,
		Types:   withBase(VCType, o.types),
		Issuer:  issuer,
		Issued:  issued,
		Expired: o.expiration,
		Subject: subject,
	}, nil
}

// withBase returns values with base prepended unless it is already present.
func withBase(base string, values []string) []string {
	if slices.Contains(values, base) {
		return append([]string(nil), values...)
	}

	return append([]string{base}, values...)
}
