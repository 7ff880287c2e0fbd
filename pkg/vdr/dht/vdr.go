/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package dht implements the did:dht method. Documents are encoded as DNS packets, signed as
// BEP44 mutable items by the identity key and exchanged with a Mainline DHT gateway over HTTP.
package dht

import (
	"net/http"
	"sync"
	"time"

	"github.com/trustcore/didtrust/pkg/common/log"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/vdr/dht/bep44"
)

const (
	namespace = "dht"

	// DefaultGatewayURL is the gateway used when none is configured.
	DefaultGatewayURL = "https://diddht.tbddev.org"
)

var logger = log.New("didtrust/vdr/dht")

// record is the newest document this VDR has seen for a DID.
type record struct {
	seq   int64
	doc   *did.Doc
	types []int
}

// VDR implements the did:dht method against a gateway.
type VDR struct {
	gatewayURL    string
	client        *http.Client
	clock         func() time.Time
	seqWidth      int
	retryInterval time.Duration
	maxRetries    uint64

	mutex     sync.Mutex
	published map[string]int64
	latest    map[string]*record
}

// Option configures the VDR.
type Option func(v *VDR)

// WithGatewayURL sets the gateway base URL.
func WithGatewayURL(gatewayURL string) Option {
	return func(v *VDR) {
		v.gatewayURL = gatewayURL
	}
}

// WithHTTPClient sets the client used to talk to the gateway.
func WithHTTPClient(client *http.Client) Option {
	return func(v *VDR) {
		v.client = client
	}
}

// WithClock sets the time source of BEP44 sequence numbers.
func WithClock(clock func() time.Time) Option {
	return func(v *VDR) {
		v.clock = clock
	}
}

// WithSeqWidth sets the width in bytes of seq on the wire, bep44.DefaultSeqWidth or
// bep44.WideSeqWidth.
func WithSeqWidth(width int) Option {
	return func(v *VDR) {
		v.seqWidth = width
	}
}

// WithRetry retries gateway requests failing with a transport error or a 5xx status up to
// maxRetries times, interval apart. Requests are not retried by default.
func WithRetry(interval time.Duration, maxRetries uint64) Option {
	return func(v *VDR) {
		v.retryInterval = interval
		v.maxRetries = maxRetries
	}
}

// New creates a new VDR struct.
func New(opts ...Option) *VDR {
	v := &VDR{
		gatewayURL: DefaultGatewayURL,
		client:     &http.Client{},
		clock:      time.Now,
		seqWidth:   bep44.DefaultSeqWidth,
		published:  map[string]int64{},
		latest:     map[string]*record{},
	}

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

// remember stores rec unless a newer record is already known, and returns the newest record.
func (v *VDR) remember(uri string, rec *record) *record {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if cur, ok := v.latest[uri]; ok && cur.seq > rec.seq {
		logger.Warnf("ignoring %s at seq %d, already seen seq %d", uri, rec.seq, cur.seq)

		return cur
	}

	v.latest[uri] = rec

	return rec
}

// nextSeq returns a seq strictly greater than the last one published for uri and records it.
func (v *VDR) nextSeq(uri string) int64 {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	seq := v.clock().UnixMicro()

	if last, ok := v.published[uri]; ok && seq <= last {
		seq = last + 1
	}

	v.published[uri] = seq

	return seq
}
