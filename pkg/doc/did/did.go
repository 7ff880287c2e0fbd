/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidDID is returned when a string is not a DID URL.
var ErrInvalidDID = errors.New("invalid did")

// DID URL capture groups.
const (
	methodIndex   = 1
	methodIDIndex = 2
	paramsIndex   = 4
	pathIndex     = 6
	queryIndex    = 7
	fragmentIndex = 8
)

// didURLPattern follows the DID URL syntax in https://www.w3.org/TR/did-core/#did-url-syntax.
var didURLPattern = regexp.MustCompile(func() string { //nolint:gochecknoglobals
	const (
		pctEncoded = `(?:%[0-9a-fA-F]{2})`
		method     = `([a-z0-9]+)`
		paramChar  = `[a-zA-Z0-9_.:%-]`
		path       = `(/[^#?]*)?`
		query      = `(\?[^#]*)?`
		fragment   = `(#.*)?`
	)

	idChar := fmt.Sprintf(`(?:[a-zA-Z0-9._-]|%s)`, pctEncoded)
	methodID := fmt.Sprintf(`((?:%s*:)*(%s+))`, idChar, idChar)
	param := fmt.Sprintf(`;%s+=%s*`, paramChar, paramChar)
	params := fmt.Sprintf(`((%s)*)`, param)

	return "^did:" + method + ":" + methodID + params + path + query + fragment + "$"
}())

// DID is a parsed DID URL. URI is always "did:" + Method + ":" + ID; URL is the input as given.
// Path keeps its leading "/", Query and Fragment are stored without "?" and "#".
type DID struct {
	URI      string
	URL      string
	Method   string
	ID       string
	Params   map[string]string
	Path     string
	Query    string
	Fragment string
}

// String returns the DID URL as it was parsed.
func (d *DID) String() string {
	return d.URL
}

// Parse parses a DID URL: did:<method>:<method-specific-id>[;params][/path][?query][#fragment].
func Parse(didURL string) (*DID, error) {
	m := didURLPattern.FindStringSubmatch(didURL)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDID, didURL)
	}

	d := &DID{
		URI:    "did:" + m[methodIndex] + ":" + m[methodIDIndex],
		URL:    didURL,
		Method: m[methodIndex],
		ID:     m[methodIDIndex],
		Path:   m[pathIndex],
	}

	if p := m[paramsIndex]; p != "" {
		d.Params = map[string]string{}

		for _, kv := range strings.Split(p[1:], ";") {
			k, v, _ := strings.Cut(kv, "=")
			d.Params[k] = v
		}
	}

	if q := m[queryIndex]; q != "" {
		d.Query = q[1:]
	}

	if f := m[fragmentIndex]; f != "" {
		d.Fragment = f[1:]
	}

	return d, nil
}

// WithoutFragment returns the DID URL with any "#fragment" removed.
func WithoutFragment(didURL string) string {
	if i := strings.IndexByte(didURL, '#'); i >= 0 {
		return didURL[:i]
	}

	return didURL
}

// GetDidMethod returns the method of a DID without fully parsing it.
func GetDidMethod(didID string) (string, error) {
	const numPartsDID = 3

	didParts := strings.SplitN(didID, ":", numPartsDID)
	if len(didParts) < numPartsDID || didParts[0] != "did" || didParts[1] == "" {
		return "", fmt.Errorf("%w: wrong format did input: %s", ErrInvalidDID, didID)
	}

	return didParts[1], nil
}
