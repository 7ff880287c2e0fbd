/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/json"
	"fmt"
)

// ResolutionContext is the DID resolution JSON-LD context.
const ResolutionContext = "https://w3id.org/did-resolution/v1"

// ResolutionError is a DID resolution metadata error code. It implements error so a failed
// resolution can be returned or wrapped where a Go error is expected.
type ResolutionError string

// Resolution error codes.
const (
	InvalidDID                 ResolutionError = "invalidDid"
	NotFound                   ResolutionError = "notFound"
	RepresentationNotSupported ResolutionError = "representationNotSupported"
	MethodNotSupported         ResolutionError = "methodNotSupported"
	InvalidDIDDocument         ResolutionError = "invalidDidDocument"
	InvalidDIDDocumentLength   ResolutionError = "invalidDidDocumentLength"
	InternalError              ResolutionError = "internalError"
)

func (e ResolutionError) Error() string {
	switch e {
	case InvalidDID:
		return "the requested DID was not valid and resolution could not proceed"
	case NotFound:
		return "the requested DID was not found"
	case RepresentationNotSupported:
		return "the requested representation of the DID payload is not supported by the resolver"
	case MethodNotSupported:
		return "the requested DID method is not supported by the resolver"
	case InvalidDIDDocument:
		return "the DID document was found but did not represent a conformant document"
	case InvalidDIDDocumentLength:
		return "the size of the DID document was not within the method's acceptable limit"
	case InternalError:
		return "something went wrong during DID resolution"
	default:
		return fmt.Sprintf("did resolution error %s", string(e))
	}
}

// DocResolution is the result of resolving a DID. On failure ResolutionMetadata.Error is set and
// DIDDocument is nil.
type DocResolution struct {
	Context            []string           `json:"@context,omitempty"`
	ResolutionMetadata ResolutionMetadata `json:"didResolutionMetadata"`
	DIDDocument        *Doc               `json:"didDocument,omitempty"`
	DocumentMetadata   *DocumentMetadata  `json:"didDocumentMetadata,omitempty"`
}

// ResolutionMetadata describes the resolution process.
type ResolutionMetadata struct {
	Error ResolutionError `json:"error,omitempty"`
}

// DocumentMetadata describes the resolved document.
type DocumentMetadata struct {
	// VersionID is the did:dht BEP44 sequence number of the resolved document.
	VersionID string `json:"versionId,omitempty"`
	Types     []int  `json:"types,omitempty"`
}

// NewDocResolution wraps a successfully resolved document.
func NewDocResolution(doc *Doc) *DocResolution {
	return &DocResolution{Context: []string{ResolutionContext}, DIDDocument: doc}
}

// NewResolutionError returns a failed resolution carrying the error code.
func NewResolutionError(e ResolutionError) *DocResolution {
	return &DocResolution{Context: []string{ResolutionContext}, ResolutionMetadata: ResolutionMetadata{Error: e}}
}

// Err returns the resolution error, or nil when a document was resolved.
func (r *DocResolution) Err() error {
	if r.ResolutionMetadata.Error != "" {
		return r.ResolutionMetadata.Error
	}

	if r.DIDDocument == nil {
		return InternalError
	}

	return nil
}

// JSONBytes converts the resolution result to JSON.
func (r *DocResolution) JSONBytes() ([]byte, error) {
	return json.Marshal(r)
}

// ParseDocumentResolution decodes a resolution result from JSON.
func ParseDocumentResolution(data []byte) (*DocResolution, error) {
	r := &DocResolution{}

	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse did resolution: %w", err)
	}

	return r, nil
}
