/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didtrust wires the key manager, the DID methods and the resolution registry into a
// single framework instance.
package didtrust

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/common/log"
	"github.com/trustcore/didtrust/pkg/config"
	"github.com/trustcore/didtrust/pkg/config/lookup"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/kms"
	"github.com/trustcore/didtrust/pkg/vdr"
	"github.com/trustcore/didtrust/pkg/vdr/api"
	"github.com/trustcore/didtrust/pkg/vdr/dht"
	"github.com/trustcore/didtrust/pkg/vdr/jwk"
	"github.com/trustcore/didtrust/pkg/vdr/web"
)

var logger = log.New("didtrust/framework")

// Framework owns the shared collaborators of didtrust: the HTTP client, the key manager and the
// registry of DID methods.
type Framework struct {
	configProvider lookup.ConfigProvider
	settings       config.Settings
	webUseHTTP     *bool

	httpClient     *http.Client
	ownsHTTPClient bool
	randReader     io.Reader
	clock          func() time.Time
	km             kms.KeyManager
	extraVDRs      []api.VDR

	dht      *dht.VDR
	registry *vdr.Registry
}

// Option configures the framework.
type Option func(opts *Framework) error

// New initializes the framework. Values from WithConfig are used only for settings that no
// explicit option provides.
func New(opts ...Option) (*Framework, error) {
	frameworkOpts := &Framework{}

	for _, option := range opts {
		if err := option(frameworkOpts); err != nil {
			return nil, fmt.Errorf("error in option passed to New: %w", err)
		}
	}

	if err := defFrameworkOpts(frameworkOpts); err != nil {
		return nil, fmt.Errorf("default option initialization failed: %w", err)
	}

	createVDRs(frameworkOpts)

	return frameworkOpts, nil
}

// WithConfig reads settings from provider, see package config for the keys.
func WithConfig(provider lookup.ConfigProvider) Option {
	return func(opts *Framework) error {
		opts.configProvider = provider

		return nil
	}
}

// WithHTTPClient sets the client used by did:web and did:dht. Timeout settings do not apply to it.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Framework) error {
		opts.httpClient = client

		return nil
	}
}

// WithHTTPTimeout sets the timeout of the default HTTP client.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(opts *Framework) error {
		opts.settings.HTTPTimeout = timeout

		return nil
	}
}

// WithKeyManager sets the key manager that holds the keys of created DIDs.
func WithKeyManager(km kms.KeyManager) Option {
	return func(opts *Framework) error {
		opts.km = km

		return nil
	}
}

// WithRandReader sets the entropy source of the default key manager.
func WithRandReader(r io.Reader) Option {
	return func(opts *Framework) error {
		opts.randReader = r

		return nil
	}
}

// WithClock sets the clock did:dht derives sequence numbers from.
func WithClock(clock func() time.Time) Option {
	return func(opts *Framework) error {
		opts.clock = clock

		return nil
	}
}

// WithDHTGateway sets the did:dht gateway URL.
func WithDHTGateway(gatewayURL string) Option {
	return func(opts *Framework) error {
		opts.settings.DHTGateway = gatewayURL

		return nil
	}
}

// WithDHTSeqWidth sets the wire width of BEP44 sequence numbers.
func WithDHTSeqWidth(width int) Option {
	return func(opts *Framework) error {
		opts.settings.DHTSeqWidth = width

		return nil
	}
}

// WithResolverCache caches successful resolutions.
func WithResolverCache(size int, ttl time.Duration) Option {
	return func(opts *Framework) error {
		if size <= 0 {
			return fmt.Errorf("resolver cache size must be positive, got %d", size)
		}

		opts.settings.ResolverCacheSize = size
		opts.settings.ResolverCacheTTL = ttl

		return nil
	}
}

// WithResolverConcurrency bounds the parallel resolutions of ResolveAll.
func WithResolverConcurrency(n int) Option {
	return func(opts *Framework) error {
		opts.settings.ResolverConcurrency = n

		return nil
	}
}

// WithWebHTTP fetches did:web documents over plain http for every host.
func WithWebHTTP(useHTTP bool) Option {
	return func(opts *Framework) error {
		opts.webUseHTTP = &useHTTP

		return nil
	}
}

// WithVDR registers a DID method implementation. It replaces the built-in implementation of the
// methods it accepts.
func WithVDR(v api.VDR) Option {
	return func(opts *Framework) error {
		opts.extraVDRs = append(opts.extraVDRs, v)

		return nil
	}
}

// Registry returns the resolution registry.
func (f *Framework) Registry() *vdr.Registry {
	return f.registry
}

// KeyManager returns the key manager of created DIDs.
func (f *Framework) KeyManager() kms.KeyManager {
	return f.km
}

// DHT returns the did:dht method, for publishing.
func (f *Framework) DHT() *dht.VDR {
	return f.dht
}

// CreateDIDJWK creates a did:jwk on curve. An empty curve selects Ed25519.
func (f *Framework) CreateDIDJWK(curve crypto.Curve) (*bearerdid.BearerDID, error) {
	return jwk.Create(f.km, curve)
}

// CreateDIDWeb creates a did:web for domain. The returned document must be hosted by the caller.
func (f *Framework) CreateDIDWeb(domain string, opts ...web.CreateOption) (*bearerdid.BearerDID, error) {
	return web.Create(domain, append([]web.CreateOption{web.WithKeyManager(f.km)}, opts...)...)
}

// CreateDIDDHT creates a did:dht and, unless disabled, publishes it to the gateway.
func (f *Framework) CreateDIDDHT(ctx context.Context, opts ...dht.CreateOption) (*bearerdid.BearerDID, error) {
	return f.dht.Create(ctx, f.km, opts...)
}

// Resolve resolves a DID through the registry.
func (f *Framework) Resolve(ctx context.Context, uri string) *did.DocResolution {
	return f.registry.Resolve(ctx, uri)
}

// Close closes the registered DID methods and the idle connections of the default HTTP client. A
// client given with WithHTTPClient is left to its owner.
func (f *Framework) Close() error {
	if f.registry != nil {
		if err := f.registry.Close(); err != nil {
			return fmt.Errorf("failed to close the registry: %w", err)
		}
	}

	if f.ownsHTTPClient {
		f.httpClient.CloseIdleConnections()
	}

	return nil
}

func createVDRs(frameworkOpts *Framework) {
	s := frameworkOpts.settings

	dhtOpts := []dht.Option{
		dht.WithGatewayURL(s.DHTGateway),
		dht.WithHTTPClient(frameworkOpts.httpClient),
		dht.WithSeqWidth(s.DHTSeqWidth),
	}

	if frameworkOpts.clock != nil {
		dhtOpts = append(dhtOpts, dht.WithClock(frameworkOpts.clock))
	}

	frameworkOpts.dht = dht.New(dhtOpts...)

	regOpts := []vdr.Option{
		vdr.WithVDR(jwk.New()),
		vdr.WithVDR(web.New(web.WithHTTPClient(frameworkOpts.httpClient), web.WithHTTP(s.WebUseHTTP))),
		vdr.WithVDR(frameworkOpts.dht),
		vdr.WithConcurrency(s.ResolverConcurrency),
	}

	for _, v := range frameworkOpts.extraVDRs {
		regOpts = append(regOpts, vdr.WithVDR(v))
	}

	if s.ResolverCacheSize > 0 {
		regOpts = append(regOpts, vdr.WithCache(s.ResolverCacheSize, s.ResolverCacheTTL))
	}

	frameworkOpts.registry = vdr.New(regOpts...)

	logger.Debugf("framework initialized: dht gateway %s, seq width %d, cache size %d",
		s.DHTGateway, s.DHTSeqWidth, s.ResolverCacheSize)
}
