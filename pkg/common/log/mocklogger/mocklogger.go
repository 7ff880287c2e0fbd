/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocklogger

import (
	"fmt"
	"sync"

	"github.com/trustcore/didtrust/spi/log"
)

// MockLogger records every formatted line it receives.
type MockLogger struct {
	mu      sync.Mutex
	Entries []string
}

func (l *MockLogger) record(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Entries = append(l.Entries, level+": "+fmt.Sprintf(msg, args...))
}

// Fatalf records a line.
func (l *MockLogger) Fatalf(msg string, args ...interface{}) { l.record("FATAL", msg, args...) }

// Panicf records a line.
func (l *MockLogger) Panicf(msg string, args ...interface{}) { l.record("PANIC", msg, args...) }

// Debugf records a line.
func (l *MockLogger) Debugf(msg string, args ...interface{}) { l.record("DEBUG", msg, args...) }

// Infof records a line.
func (l *MockLogger) Infof(msg string, args ...interface{}) { l.record("INFO", msg, args...) }

// Warnf records a line.
func (l *MockLogger) Warnf(msg string, args ...interface{}) { l.record("WARN", msg, args...) }

// Errorf records a line.
func (l *MockLogger) Errorf(msg string, args ...interface{}) { l.record("ERROR", msg, args...) }

// Lines returns a copy of the recorded lines.
func (l *MockLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.Entries...)
}

// Provider hands out the same MockLogger for every module.
type Provider struct {
	MockLogger *MockLogger
}

// GetLogger returns the shared mock logger.
func (p *Provider) GetLogger(string) log.Logger {
	return p.MockLogger
}
