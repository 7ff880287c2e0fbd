/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package zaplog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZapLog(t *testing.T) {
	buf := &bytes.Buffer{}

	logger := NewWithWriter("sample-module", buf)

	logger.Infof("resolved %s", "did:jwk:abc")
	logger.Debugf("debug %d", 1)
	logger.Warnf("warn")
	logger.Errorf("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "resolved did:jwk:abc", entry["msg"])
	require.Equal(t, "sample-module", entry[moduleField])

	require.Contains(t, lines[1], `"level":"debug"`)
	require.Contains(t, lines[2], `"level":"warn"`)
	require.Contains(t, lines[3], `"level":"error"`)
}

func TestZapLogPanic(t *testing.T) {
	logger := NewWithWriter("sample-module", &bytes.Buffer{})

	require.Panics(t, func() {
		logger.Panicf("boom %d", 1)
	})
}
