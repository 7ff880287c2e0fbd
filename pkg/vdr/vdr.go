/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vdr dispatches DID resolution to the DID method implementations.
package vdr

import "github.com/trustcore/didtrust/pkg/doc/did"

// Method is a DID method the registry can dispatch to.
type Method int

// Supported DID methods.
const (
	MethodJWK Method = iota + 1
	MethodWeb
	MethodDHT
)

// Methods lists every supported method.
func Methods() []Method {
	return []Method{MethodJWK, MethodWeb, MethodDHT}
}

func (m Method) String() string {
	switch m {
	case MethodJWK:
		return "jwk"
	case MethodWeb:
		return "web"
	case MethodDHT:
		return "dht"
	default:
		return "unknown"
	}
}

// ParseMethod returns the Method named name.
func ParseMethod(name string) (Method, bool) {
	for _, m := range Methods() {
		if m.String() == name {
			return m, true
		}
	}

	return 0, false
}

// GetDidMethod returns the method of a DID.
func GetDidMethod(didID string) (string, error) {
	return did.GetDidMethod(didID)
}
