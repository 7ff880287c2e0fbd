/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package web implements the did:web method: the document is hosted as a did.json file on the
// domain named by the identifier.
package web

import (
	"net/http"

	"github.com/trustcore/didtrust/pkg/common/log"
)

const (
	namespace = "web"
)

var logger = log.New("didtrust/vdr/web")

// VDR implements the did:web method.
type VDR struct {
	client  *http.Client
	useHTTP bool
}

// Option configures the VDR.
type Option func(v *VDR)

// WithHTTPClient sets the client used to fetch documents.
func WithHTTPClient(client *http.Client) Option {
	return func(v *VDR) {
		v.client = client
	}
}

// WithHTTP fetches documents over plain http for every host, not only localhost.
func WithHTTP(useHTTP bool) Option {
	return func(v *VDR) {
		v.useHTTP = useHTTP
	}
}

// New creates a new VDR struct.
func New(opts ...Option) *VDR {
	v := &VDR{client: &http.Client{}}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Accept method of the VDR interface.
func (v *VDR) Accept(method string) bool {
	return method == namespace
}

// Close method of the VDR interface.
func (v *VDR) Close() error {
	return nil
}
