/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads didtrust settings with viper. Every key can be overridden by an environment
// variable named after it: "didtrust.dht.gateway" is read from DIDTRUST_DHT_GATEWAY, or from
// <PREFIX>_DIDTRUST_DHT_GATEWAY when WithEnvPrefix is given.
package config

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	errors "golang.org/x/xerrors"

	"github.com/trustcore/didtrust/pkg/config/lookup"
	"github.com/trustcore/didtrust/pkg/vdr/dht/bep44"
)

// Config keys.
const (
	KeyDHTGateway          = "didtrust.dht.gateway"
	KeyDHTSeqWidth         = "didtrust.dht.seqwidth"
	KeyHTTPTimeout         = "didtrust.http.timeout"
	KeyResolverCacheSize   = "didtrust.resolver.cache.size"
	KeyResolverCacheTTL    = "didtrust.resolver.cache.ttl"
	KeyResolverConcurrency = "didtrust.resolver.concurrency"
	KeyLogLevel            = "didtrust.log.level"
	KeyWebUseHTTP          = "didtrust.web.usehttp"
)

type options struct {
	envPrefix string
}

// Option configures the package.
type Option func(opts *options)

// WithEnvPrefix defines the prefix for environment variable overrides.
func WithEnvPrefix(prefix string) Option {
	return func(opts *options) {
		opts.envPrefix = prefix
	}
}

// FromReader loads configuration from in.
// configType can be "json" or "yaml".
func FromReader(in io.Reader, configType string, opts ...Option) lookup.ConfigProvider {
	return func() (lookup.ConfigBackend, error) {
		if configType == "" {
			return nil, errors.New("empty config type")
		}

		backend := newBackend(opts...)

		// read config from bytes array, but must set ConfigType
		// for viper to properly unmarshal the bytes array
		backend.configViper.SetConfigType(configType)

		if err := backend.configViper.MergeConfig(in); err != nil {
			return nil, errors.Errorf("viper MergeConfig failed : %w", err)
		}

		return backend, nil
	}
}

// FromFile reads from named config file.
func FromFile(name string, opts ...Option) lookup.ConfigProvider {
	return func() (lookup.ConfigBackend, error) {
		if name == "" {
			return nil, errors.New("filename is required")
		}

		backend := newBackend(opts...)
		backend.configViper.SetConfigFile(name)

		if err := backend.configViper.MergeInConfig(); err != nil {
			return nil, errors.Errorf("loading config file failed: %w", err)
		}

		return backend, nil
	}
}

// FromEnv reads configuration from environment variables only.
func FromEnv(opts ...Option) lookup.ConfigProvider {
	return func() (lookup.ConfigBackend, error) {
		return newBackend(opts...), nil
	}
}

// Settings are the tunables of the didtrust framework. Zero values mean "use the default".
type Settings struct {
	DHTGateway          string
	DHTSeqWidth         int
	HTTPTimeout         time.Duration
	ResolverCacheSize   int
	ResolverCacheTTL    time.Duration
	ResolverConcurrency int
	LogLevel            string
	WebUseHTTP          bool
}

// Load reads Settings from the backend of provider.
func Load(provider lookup.ConfigProvider) (*Settings, error) {
	backend, err := provider()
	if err != nil {
		return nil, errors.Errorf("load config backend: %w", err)
	}

	l := lookup.New(backend)

	s := &Settings{
		DHTGateway:          l.GetString(KeyDHTGateway),
		DHTSeqWidth:         l.GetInt(KeyDHTSeqWidth),
		HTTPTimeout:         l.GetDuration(KeyHTTPTimeout),
		ResolverCacheSize:   l.GetInt(KeyResolverCacheSize),
		ResolverCacheTTL:    l.GetDuration(KeyResolverCacheTTL),
		ResolverConcurrency: l.GetInt(KeyResolverConcurrency),
		LogLevel:            l.GetString(KeyLogLevel),
		WebUseHTTP:          l.GetBool(KeyWebUseHTTP),
	}

	switch s.DHTSeqWidth {
	case 0, bep44.DefaultSeqWidth, bep44.WideSeqWidth:
	default:
		return nil, errors.Errorf("%s must be %d or %d, got %d",
			KeyDHTSeqWidth, bep44.DefaultSeqWidth, bep44.WideSeqWidth, s.DHTSeqWidth)
	}

	if s.ResolverCacheSize < 0 || s.ResolverConcurrency < 0 {
		return nil, errors.New("resolver cache size and concurrency must not be negative")
	}

	return s, nil
}

// defConfigBackend represents the default config backend.
type defConfigBackend struct {
	configViper *viper.Viper
}

// Lookup gets the config item value by Key.
func (c *defConfigBackend) Lookup(key string) (interface{}, bool) {
	value := c.configViper.Get(key)
	if value == nil {
		return nil, false
	}

	return value, true
}

func newBackend(opts ...Option) *defConfigBackend {
	o := options{}

	for _, option := range opts {
		option(&o)
	}

	return &defConfigBackend{configViper: newViper(o.envPrefix)}
}

func newViper(cmdRootPrefix string) *viper.Viper {
	myViper := viper.New()

	if cmdRootPrefix != "" {
		myViper.SetEnvPrefix(cmdRootPrefix)
	}

	myViper.AutomaticEnv()
	myViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return myViper
}
