/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"context"
	"sync/atomic"

	"github.com/trustcore/didtrust/pkg/doc/did"
)

// MockVDR mock implementation of vdr
// to be used only for unit tests.
type MockVDR struct {
	AcceptValue bool
	AcceptFunc  func(method string) bool
	ReadFunc    func(ctx context.Context, didID string) (*did.DocResolution, error)
	CloseErr    error

	reads int32
}

// Read did.
func (m *MockVDR) Read(ctx context.Context, didID string) (*did.DocResolution, error) {
	atomic.AddInt32(&m.reads, 1)

	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, didID)
	}

	return nil, nil
}

// Reads returns how many times Read was called.
func (m *MockVDR) Reads() int {
	return int(atomic.LoadInt32(&m.reads))
}

// Accept did.
func (m *MockVDR) Accept(method string) bool {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(method)
	}

	return m.AcceptValue
}

// Close frees resources being maintained by vdr.
func (m *MockVDR) Close() error {
	return m.CloseErr
}
