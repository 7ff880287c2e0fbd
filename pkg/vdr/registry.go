/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/trustcore/didtrust/pkg/common/log"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/vdr/api"
)

// DefaultConcurrency bounds the resolutions ResolveAll runs at once.
const DefaultConcurrency = 8

var logger = log.New("didtrust/vdr")

// Option is a vdr instance option.
type Option func(opts *Registry)

// Registry vdr registry.
type Registry struct {
	vdr         map[Method]api.VDR
	cache       gcache.Cache
	cacheTTL    time.Duration
	concurrency int
	group       singleflight.Group
}

// New return new instance of vdr.
func New(opts ...Option) *Registry {
	baseVDR := &Registry{
		vdr:         map[Method]api.VDR{},
		concurrency: DefaultConcurrency,
	}

	// Apply options
	for _, opt := range opts {
		opt(baseVDR)
	}

	return baseVDR
}

// WithVDR adds did method implementation for store. The VDR serves every supported method it
// accepts; a later VDR replaces an earlier one for the same method.
func WithVDR(method api.VDR) Option {
	return func(opts *Registry) {
		for _, m := range Methods() {
			if method.Accept(m.String()) {
				opts.vdr[m] = method
			}
		}
	}
}

// WithCache keeps up to size successful resolutions for ttl. A zero ttl keeps them until they
// are evicted.
func WithCache(size int, ttl time.Duration) Option {
	return func(opts *Registry) {
		if size <= 0 {
			opts.cache = nil

			return
		}

		opts.cache = gcache.New(size).LRU().Build()
		opts.cacheTTL = ttl
	}
}

// WithConcurrency bounds the resolutions ResolveAll runs at once.
func WithConcurrency(n int) Option {
	return func(opts *Registry) {
		if n > 0 {
			opts.concurrency = n
		}
	}
}

// Resolve resolves a DID. Failures are reported in the resolution metadata, never as a Go error.
func (r *Registry) Resolve(ctx context.Context, uri string) *did.DocResolution {
	parsed, err := did.Parse(uri)
	if err != nil {
		logger.Debugf("resolve %s: %v", uri, err)

		return did.NewResolutionError(did.InvalidDID)
	}

	method, err := r.resolveVDR(parsed.Method)
	if err != nil {
		logger.Debugf("resolve %s: %v", uri, err)

		return did.NewResolutionError(did.MethodNotSupported)
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(parsed.URI); err == nil {
			return cached.(*did.DocResolution) //nolint:forcetypeassert
		}
	}

	res, _, _ := r.group.Do(parsed.URI, func() (interface{}, error) {
		return r.read(ctx, method, parsed.URI), nil
	})

	return res.(*did.DocResolution) //nolint:forcetypeassert
}

// ResolveAll resolves uris concurrently. The result at index i is the resolution of uris[i].
func (r *Registry) ResolveAll(ctx context.Context, uris []string) []*did.DocResolution {
	out := make([]*did.DocResolution, len(uris))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, uri := range uris {
		i, uri := i, uri

		g.Go(func() error {
			out[i] = r.Resolve(gctx, uri)

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck

	return out
}

func (r *Registry) read(ctx context.Context, method api.VDR, uri string) *did.DocResolution {
	res, err := method.Read(ctx, uri)
	if err != nil {
		var code did.ResolutionError
		if !errors.As(err, &code) {
			code = did.InternalError
		}

		logger.Debugf("resolve %s: %s: %v", uri, code, err)

		return did.NewResolutionError(code)
	}

	if res == nil || res.DIDDocument == nil {
		logger.Warnf("resolve %s: method returned no document", uri)

		return did.NewResolutionError(did.InternalError)
	}

	if r.cache != nil {
		var cacheErr error
		if r.cacheTTL > 0 {
			cacheErr = r.cache.SetWithExpire(uri, res, r.cacheTTL)
		} else {
			cacheErr = r.cache.Set(uri, res)
		}

		if cacheErr != nil {
			logger.Warnf("cache resolution of %s: %v", uri, cacheErr)
		}
	}

	return res
}

// Close frees resources being maintained by vdr.
func (r *Registry) Close() error {
	closed := map[api.VDR]bool{}

	for _, m := range Methods() {
		v, ok := r.vdr[m]
		if !ok || closed[v] {
			continue
		}

		closed[v] = true

		if err := v.Close(); err != nil {
			return fmt.Errorf("close vdr: %w", err)
		}
	}

	return nil
}

func (r *Registry) resolveVDR(name string) (api.VDR, error) {
	m, ok := ParseMethod(name)
	if !ok {
		return nil, fmt.Errorf("did method %s not supported for vdr", name)
	}

	v, ok := r.vdr[m]
	if !ok {
		return nil, fmt.Errorf("did method %s not registered", name)
	}

	return v, nil
}
