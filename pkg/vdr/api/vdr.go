/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package api holds the contracts shared by DID method implementations and their callers.
package api

import (
	"context"

	"github.com/trustcore/didtrust/pkg/doc/did"
)

// Resolver resolves a DID URI. Resolve never fails with a Go error: failures are reported in
// the ResolutionMetadata of the returned result.
type Resolver interface {
	Resolve(ctx context.Context, didID string) *did.DocResolution
}

// VDR verifiable data registry interface, implemented once per DID method.
//
// Read returns a resolved document or an error. An error wrapping a did.ResolutionError is
// reported with that code; any other error is reported as did.InternalError.
type VDR interface {
	Read(ctx context.Context, didID string) (*did.DocResolution, error)
	Accept(method string) bool
	Close() error
}
