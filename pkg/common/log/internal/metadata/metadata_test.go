/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustcore/didtrust/spi/log"
)

func TestLevels(t *testing.T) {
	module := "sample-module-critical"
	SetLevel(module, log.CRITICAL)
	require.Equal(t, log.CRITICAL, GetLevel(module))
	verifyLevels(t, module, []log.Level{log.CRITICAL}, []log.Level{log.ERROR, log.WARNING, log.INFO, log.DEBUG})

	module = "sample-module-warning"
	SetLevel(module, log.WARNING)
	require.Equal(t, log.WARNING, GetLevel(module))
	verifyLevels(t, module, []log.Level{log.CRITICAL, log.ERROR, log.WARNING}, []log.Level{log.INFO, log.DEBUG})

	module = "sample-module-debug"
	SetLevel(module, log.DEBUG)
	require.Equal(t, log.DEBUG, GetLevel(module))
	verifyLevels(t, module, []log.Level{log.CRITICAL, log.ERROR, log.WARNING, log.INFO, log.DEBUG}, nil)
}

func TestDefaultLevel(t *testing.T) {
	require.Equal(t, log.INFO, GetLevel("sample-module-never-set"))
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"critical", "ERROR", "Warning", "info", "DEBUG"} {
		level, err := ParseLevel(name)
		require.NoError(t, err)
		require.Equal(t, level, mustParse(t, ParseString(level)))
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
	require.Equal(t, "UNKNOWN", ParseString(log.Level(42)))
}

func mustParse(t *testing.T, name string) log.Level {
	t.Helper()

	level, err := ParseLevel(name)
	require.NoError(t, err)

	return level
}

func verifyLevels(t *testing.T, module string, enabled, disabled []log.Level) {
	t.Helper()

	for _, level := range enabled {
		require.True(t, IsEnabledFor(module, level), "expected level [%s] to be enabled for module [%s]",
			ParseString(level), module)
	}

	for _, level := range disabled {
		require.False(t, IsEnabledFor(module, level), "expected level [%s] to be disabled for module [%s]",
			ParseString(level), module)
	}
}
