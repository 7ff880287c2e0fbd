/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/trustcore/didtrust/pkg/doc/did"
)

const (
	defaultPath  = "/.well-known/did.json"
	documentPath = "/did.json"
	portSep      = "%3A"
)

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1"
}

// parseDIDWeb consumes a did:web identifier and returns the URL location of the did Doc and the
// host it is served from.
func parseDIDWeb(id string, useHTTP bool) (string, string, error) {
	var address, host string

	parsedDID, err := did.Parse(id)
	if err != nil {
		return address, host, fmt.Errorf("invalid did, does not conform to generic did standard --> %w", err)
	}

	if parsedDID.Method != namespace {
		return address, host, fmt.Errorf("not a did:web did: %s", id)
	}

	pathComponents := strings.Split(parsedDID.ID, ":")

	pathComponents[0], err = url.PathUnescape(strings.ReplaceAll(pathComponents[0], portSep, ":"))
	if err != nil {
		return address, host, fmt.Errorf("error parsing did:web did --> %w", err)
	}

	u, err := url.Parse("http://" + pathComponents[0])
	if err != nil || u.Hostname() == "" {
		return address, host, fmt.Errorf("error parsing did:web domain %s", pathComponents[0])
	}

	host = u.Hostname()

	protocol := "https://"
	if useHTTP || isLoopback(host) {
		protocol = "http://"
	}

	switch len(pathComponents) {
	case 1:
		address = protocol + pathComponents[0] + defaultPath
	default:
		address = protocol + strings.Join(pathComponents, "/") + documentPath
	}

	return address, host, nil
}

// didFromDomain encodes a domain, optionally with a scheme, port and path, as a did:web
// identifier. Plain http is only accepted for localhost and 127.0.0.1.
func didFromDomain(domain string) (string, error) {
	normalized := domain

	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		u, err := url.Parse(domain)
		if err != nil {
			return "", fmt.Errorf("url parse failure %w", err)
		}

		if u.Scheme == "http" && !isLoopback(u.Hostname()) {
			return "", fmt.Errorf("only https is allowed except for localhost or 127.0.0.1 with http")
		}

		normalized = u.Host + u.EscapedPath()
	} else if _, err := url.Parse("https://" + domain); err != nil {
		return "", fmt.Errorf("url parse failure %w", err)
	}

	normalized = strings.TrimRight(normalized, "/")
	normalized = strings.TrimSuffix(normalized, documentPath)
	normalized = strings.TrimSuffix(normalized, "/.well-known")

	if normalized == "" {
		return "", fmt.Errorf("empty domain")
	}

	normalized = strings.ReplaceAll(normalized, ":", portSep)
	normalized = strings.ReplaceAll(normalized, "/", ":")

	return "did:" + namespace + ":" + normalized, nil
}
