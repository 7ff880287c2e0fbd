/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didtrust

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/trustcore/didtrust/pkg/common/log"
	"github.com/trustcore/didtrust/pkg/config"
	"github.com/trustcore/didtrust/pkg/kms/localkms"
	"github.com/trustcore/didtrust/pkg/vdr/dht"
	"github.com/trustcore/didtrust/pkg/vdr/dht/bep44"
)

// DefaultHTTPTimeout bounds every request of the default HTTP client.
const DefaultHTTPTimeout = 30 * time.Second

// defFrameworkOpts fills the settings no option provided from the config provider, then from the
// defaults, and creates the default collaborators.
func defFrameworkOpts(frameworkOpts *Framework) error {
	if frameworkOpts.configProvider != nil {
		fromConfig, err := config.Load(frameworkOpts.configProvider)
		if err != nil {
			return err
		}

		mergeSettings(&frameworkOpts.settings, fromConfig)

		if frameworkOpts.webUseHTTP == nil {
			frameworkOpts.webUseHTTP = &fromConfig.WebUseHTTP
		}
	}

	mergeSettings(&frameworkOpts.settings, &config.Settings{
		DHTGateway:  dht.DefaultGatewayURL,
		DHTSeqWidth: bep44.DefaultSeqWidth,
		HTTPTimeout: DefaultHTTPTimeout,
	})

	if frameworkOpts.webUseHTTP != nil {
		frameworkOpts.settings.WebUseHTTP = *frameworkOpts.webUseHTTP
	}

	if frameworkOpts.settings.LogLevel != "" {
		level, err := log.ParseLevel(frameworkOpts.settings.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}

		log.SetDefaultLevel(level)
	}

	if frameworkOpts.httpClient == nil {
		frameworkOpts.httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   frameworkOpts.settings.HTTPTimeout,
		}

		frameworkOpts.ownsHTTPClient = true
	}

	if frameworkOpts.km == nil {
		var kmOpts []localkms.Option

		if frameworkOpts.randReader != nil {
			kmOpts = append(kmOpts, localkms.WithRandReader(frameworkOpts.randReader))
		}

		frameworkOpts.km = localkms.New(kmOpts...)
	}

	return nil
}

// mergeSettings copies into s every field of from that s leaves at its zero value.
func mergeSettings(s, from *config.Settings) {
	if s.DHTGateway == "" {
		s.DHTGateway = from.DHTGateway
	}

	if s.DHTSeqWidth == 0 {
		s.DHTSeqWidth = from.DHTSeqWidth
	}

	if s.HTTPTimeout == 0 {
		s.HTTPTimeout = from.HTTPTimeout
	}

	if s.ResolverCacheSize == 0 {
		s.ResolverCacheSize = from.ResolverCacheSize
		s.ResolverCacheTTL = from.ResolverCacheTTL
	}

	if s.ResolverConcurrency == 0 {
		s.ResolverConcurrency = from.ResolverConcurrency
	}

	if s.LogLevel == "" {
		s.LogLevel = from.LogLevel
	}
}
