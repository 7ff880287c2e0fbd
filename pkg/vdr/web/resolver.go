/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/trustcore/didtrust/pkg/doc/did"
)

// maxDocumentSize bounds the did.json body read from the host.
const maxDocumentSize = 1 << 20

// Read resolves a did:web did.
func (v *VDR) Read(ctx context.Context, didID string) (*did.DocResolution, error) {
	address, host, err := parseDIDWeb(didID, v.useHTTP)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving did:web did --> %s", did.InvalidDID, err.Error())
	}

	logger.Debugf("resolving %s from %s", didID, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving did:web did --> build request --> %s", did.InternalError, err.Error())
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving did:web did --> http request unsuccessful --> %s",
			did.InternalError, err.Error())
	}

	defer closeResponseBody(resp.Body)

	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		if err = resp.TLS.PeerCertificates[0].VerifyHostname(host); err != nil {
			return nil, fmt.Errorf("%w: error resolving did:web did --> identifier does not match TLS host --> %s",
				did.InternalError, err.Error())
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: error resolving did:web did --> %s returned status %d",
			did.NotFound, address, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving did:web did --> error reading http response body --> %s",
			did.InternalError, err.Error())
	}

	doc, err := did.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving did:web did --> error parsing did doc --> %s",
			did.RepresentationNotSupported, err.Error())
	}

	parsed, err := did.Parse(didID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", did.InvalidDID, err.Error())
	}

	if doc.ID != parsed.URI {
		return nil, fmt.Errorf("%w: document id %s does not match %s", did.InvalidDIDDocument, doc.ID, parsed.URI)
	}

	return did.NewDocResolution(doc), nil
}

func closeResponseBody(respBody io.Closer) {
	e := respBody.Close()
	if e != nil {
		logger.Errorf("Failed to close response body: %v", e)
	}
}
