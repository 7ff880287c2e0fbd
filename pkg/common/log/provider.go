/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"sync"

	"github.com/trustcore/didtrust/pkg/common/log/internal/metadata"
	"github.com/trustcore/didtrust/pkg/common/log/internal/zaplog"
	"github.com/trustcore/didtrust/spi/log"
)

// loggerProviderInstance is the logger factory singleton, access only via loggerProvider().
//
//nolint:gochecknoglobals
var (
	loggerProviderInstance log.LoggerProvider
	loggerProviderOnce     sync.Once
)

// Initialize sets a custom logging provider which takes over logging operations.
// It must be called before the first line is logged.
func Initialize(l log.LoggerProvider) {
	loggerProviderOnce.Do(func() {
		loggerProviderInstance = &modlogProvider{custom: l}
		logger := loggerProviderInstance.GetLogger(loggerModule)
		logger.Debugf("Logger provider initialized")
	})
}

func loggerProvider() log.LoggerProvider {
	loggerProviderOnce.Do(func() {
		loggerProviderInstance = &modlogProvider{}
		logger := loggerProviderInstance.GetLogger(loggerModule)
		logger.Debugf(loggerNotInitializedMsg)
	})

	return loggerProviderInstance
}

// modlogProvider wraps the custom provider, or zap when there is none, with module level filtering.
type modlogProvider struct {
	custom log.LoggerProvider
}

// GetLogger returns a level filtered logger for the module.
func (p *modlogProvider) GetLogger(module string) log.Logger {
	var logger log.Logger
	if p.custom != nil {
		logger = p.custom.GetLogger(module)
	} else {
		logger = zaplog.New(module)
	}

	return &modLog{logger: logger, module: module}
}

// modLog drops lines below the module's level before they reach the backend.
type modLog struct {
	logger log.Logger
	module string
}

func (m *modLog) Fatalf(msg string, args ...interface{}) {
	m.logger.Fatalf(msg, args...)
}

func (m *modLog) Panicf(msg string, args ...interface{}) {
	m.logger.Panicf(msg, args...)
}

func (m *modLog) Debugf(msg string, args ...interface{}) {
	if metadata.IsEnabledFor(m.module, log.DEBUG) {
		m.logger.Debugf(msg, args...)
	}
}

func (m *modLog) Infof(msg string, args ...interface{}) {
	if metadata.IsEnabledFor(m.module, log.INFO) {
		m.logger.Infof(msg, args...)
	}
}

func (m *modLog) Warnf(msg string, args ...interface{}) {
	if metadata.IsEnabledFor(m.module, log.WARNING) {
		m.logger.Warnf(msg, args...)
	}
}

func (m *modLog) Errorf(msg string, args ...interface{}) {
	if metadata.IsEnabledFor(m.module, log.ERROR) {
		m.logger.Errorf(msg, args...)
	}
}
