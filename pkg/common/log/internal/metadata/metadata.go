/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metadata keeps the per-module log level table.
package metadata

import (
	"errors"
	"strings"
	"sync"

	"github.com/trustcore/didtrust/spi/log"
)

// defaultModule is the table key holding the level used by modules without their own entry.
const defaultModule = ""

//nolint:gochecknoglobals
var (
	levels   = map[string]log.Level{defaultModule: log.INFO}
	levelsMu sync.RWMutex

	levelNames = []string{"CRITICAL", "ERROR", "WARNING", "INFO", "DEBUG"}
)

// SetLevel sets the log level for the given module. An empty module sets the default level.
func SetLevel(module string, level log.Level) {
	levelsMu.Lock()
	defer levelsMu.Unlock()

	levels[module] = level
}

// GetLevel returns the log level for the given module, falling back to the default level.
func GetLevel(module string) log.Level {
	levelsMu.RLock()
	defer levelsMu.RUnlock()

	if level, ok := levels[module]; ok {
		return level
	}

	return levels[defaultModule]
}

// IsEnabledFor reports whether the given level is logged for the module.
func IsEnabledFor(module string, level log.Level) bool {
	return level <= GetLevel(module)
}

// ParseLevel returns the log level from a string representation.
func ParseLevel(level string) (log.Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(level, name) {
			return log.Level(i), nil
		}
	}

	return log.ERROR, errors.New("logger: invalid log level")
}

// ParseString returns the string representation of a log level.
func ParseString(level log.Level) string {
	if level < log.CRITICAL || int(level) >= len(levelNames) {
		return "UNKNOWN"
	}

	return levelNames[level]
}
