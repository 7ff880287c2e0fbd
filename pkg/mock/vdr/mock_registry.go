/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"context"
	"sync"

	"github.com/trustcore/didtrust/pkg/doc/did"
)

// MockResolver mock implementation of a resolver
// to be used only for unit tests.
type MockResolver struct {
	mutex       sync.RWMutex
	MemStore    map[string]*did.Doc
	ResolveErr  did.ResolutionError
	ResolveFunc func(ctx context.Context, didID string) *did.DocResolution
}

// Store adds a document served by Resolve.
func (m *MockResolver) Store(doc *did.Doc) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.MemStore == nil {
		m.MemStore = make(map[string]*did.Doc)
	}

	m.MemStore[doc.ID] = doc
}

// Resolve returns ResolveErr when set, otherwise the stored document or notFound.
func (m *MockResolver) Resolve(ctx context.Context, didID string) *did.DocResolution {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, didID)
	}

	if m.ResolveErr != "" {
		return did.NewResolutionError(m.ResolveErr)
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	doc, ok := m.MemStore[did.WithoutFragment(didID)]
	if !ok {
		return did.NewResolutionError(did.NotFound)
	}

	return did.NewDocResolution(doc)
}
