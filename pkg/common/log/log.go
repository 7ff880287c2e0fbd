/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package log implements a module based fmt-style logger intended for developers & debugging.
package log

import (
	"sync"

	"github.com/trustcore/didtrust/pkg/common/log/internal/metadata"
	"github.com/trustcore/didtrust/spi/log"
)

//nolint:lll
const (
	loggerNotInitializedMsg = "Default logger initialized (please call log.Initialize() if you wish to use a custom logger)"
	loggerModule            = "didtrust/common"
)

// Log encapsulates the default or custom logger to provide module and level based logging.
type Log struct {
	instance log.Logger
	module   string
	once     sync.Once
}

// New creates a Log for the given module name.
// The underlying logger is bound on first use, so a custom provider must be passed to
// Initialize() before the first line is logged.
func New(module string) *Log {
	return &Log{module: module}
}

// Fatalf calls Fatalf of the underlying logger.
func (l *Log) Fatalf(msg string, args ...interface{}) {
	l.logger().Fatalf(msg, args...)
}

// Panicf calls Panicf of the underlying logger.
func (l *Log) Panicf(msg string, args ...interface{}) {
	l.logger().Panicf(msg, args...)
}

// Debugf calls Debugf of the underlying logger.
func (l *Log) Debugf(msg string, args ...interface{}) {
	l.logger().Debugf(msg, args...)
}

// Infof calls Infof of the underlying logger.
func (l *Log) Infof(msg string, args ...interface{}) {
	l.logger().Infof(msg, args...)
}

// Warnf calls Warnf of the underlying logger.
func (l *Log) Warnf(msg string, args ...interface{}) {
	l.logger().Warnf(msg, args...)
}

// Errorf calls Errorf of the underlying logger.
func (l *Log) Errorf(msg string, args ...interface{}) {
	l.logger().Errorf(msg, args...)
}

func (l *Log) logger() log.Logger {
	l.once.Do(func() {
		l.instance = loggerProvider().GetLogger(l.module)
	})

	return l.instance
}

// SetLevel sets the log level for the given module. If not set the level is INFO.
func SetLevel(module string, level log.Level) {
	metadata.SetLevel(module, level)
}

// SetDefaultLevel sets the log level used by modules without their own level.
func SetDefaultLevel(level log.Level) {
	metadata.SetLevel("", level)
}

// GetLevel returns the log level for the given module.
func GetLevel(module string) log.Level {
	return metadata.GetLevel(module)
}

// IsEnabledFor reports whether the level is enabled for the module.
func IsEnabledFor(module string, level log.Level) bool {
	return metadata.IsEnabledFor(module, level)
}

// ParseLevel returns the log level from a string representation such as "debug".
func ParseLevel(level string) (log.Level, error) {
	return metadata.ParseLevel(level)
}
