/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dht

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/trustcore/didtrust/pkg/vdr/dht/bep44"
)

// maxMessageSize is one byte more than the largest valid BEP44 message, so oversized bodies
// fail to decode instead of being truncated into a valid one.
const maxMessageSize = bep44.SignatureSize + bep44.WideSeqWidth + bep44.MaxValueSize + 1

var errServerStatus = errors.New("gateway server error")

// gatewayResponse is the final status and body of a gateway request.
type gatewayResponse struct {
	status int
	body   []byte
}

func (v *VDR) endpoint(id string) string {
	return strings.TrimRight(v.gatewayURL, "/") + "/" + id
}

// send performs a gateway request. Transport errors and 5xx responses are retried when
// WithRetry is set; a 5xx response still left after the last attempt is returned, not an error.
func (v *VDR) send(ctx context.Context, method, url string, body []byte) (*gatewayResponse, error) {
	resp := &gatewayResponse{}

	op := func() error {
		resp.status = 0
		resp.body = nil

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(err)
		}

		if body != nil {
			req.Header.Set("Content-Type", "application/octet-stream")
		}

		r, err := v.client.Do(req)
		if err != nil {
			return err
		}

		defer closeResponseBody(r.Body)

		resp.status = r.StatusCode

		resp.body, err = io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
		if err != nil {
			return err
		}

		if r.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s %s returned status %d", errServerStatus, method, url, r.StatusCode)
		}

		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(v.retryInterval), v.maxRetries), ctx)

	err := backoff.RetryNotify(op, b, func(err error, _ time.Duration) {
		logger.Debugf("retrying gateway request: %v", err)
	})
	if err != nil && !errors.Is(err, errServerStatus) {
		return nil, err
	}

	return resp, nil
}

func closeResponseBody(respBody io.Closer) {
	e := respBody.Close()
	if e != nil {
		logger.Errorf("Failed to close response body: %v", e)
	}
}
