/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bearerdid

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
	"github.com/trustcore/didtrust/pkg/kms"
	"github.com/trustcore/didtrust/pkg/kms/localkms"
)

// ErrInvalidPortableDID is returned when a portable DID cannot be loaded.
var ErrInvalidPortableDID = errors.New("invalid portable did")

// PortableDID is the export format of a BearerDID: the DID, its document and its private keys.
type PortableDID struct {
	URI         string    `json:"uri"`
	Document    *did.Doc  `json:"document"`
	PrivateKeys []jwk.JWK `json:"privateKeys"`
}

// ParsePortableDID decodes a portable DID from JSON.
func ParsePortableDID(data []byte) (*PortableDID, error) {
	pd := &PortableDID{}

	if err := json.Unmarshal(data, pd); err != nil {
		return nil, errors.Wrap(ErrInvalidPortableDID, err.Error())
	}

	return pd, nil
}

// JSONBytes converts the portable DID to JSON.
func (pd *PortableDID) JSONBytes() ([]byte, error) {
	return json.Marshal(pd)
}

// FromPortableDID loads the private keys of pd into a fresh in-memory key manager and binds its
// document as is, without resolving the DID.
func FromPortableDID(pd *PortableDID) (*BearerDID, error) {
	parsed, err := did.Parse(pd.URI)
	if err != nil {
		return nil, err
	}

	if pd.Document == nil {
		return nil, errors.Wrap(ErrInvalidPortableDID, "missing document")
	}

	km := localkms.New()

	for i := range pd.PrivateKeys {
		if _, err := km.ImportPrivateJWK(pd.PrivateKeys[i]); err != nil {
			return nil, errors.Wrapf(err, "import private key %d", i)
		}
	}

	return &BearerDID{DID: *parsed, Document: pd.Document, KeyManager: km}, nil
}

// ToPortableDID exports the BearerDID with the private keys of exporter. When exporter is nil the
// key manager itself is used if it can export keys.
func (b *BearerDID) ToPortableDID(exporter kms.KeyExporter) (*PortableDID, error) {
	if exporter == nil {
		e, ok := b.KeyManager.(kms.KeyExporter)
		if !ok {
			return nil, errors.New("key manager does not export keys and no exporter was given")
		}

		exporter = e
	}

	keys, err := exporter.ExportPrivateJWKs()
	if err != nil {
		return nil, errors.Wrap(err, "export private keys")
	}

	return &PortableDID{URI: b.DID.URI, Document: b.Document, PrivateKeys: keys}, nil
}
