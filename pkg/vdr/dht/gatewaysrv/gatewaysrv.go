/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package gatewaysrv is an in-memory did:dht gateway for tests and local development. It speaks
// the gateway protocol of the did:dht VDR: PUT /{id} stores a signed BEP44 message and GET /{id}
// returns it.
package gatewaysrv

import (
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/trustcore/didtrust/pkg/common/log"
	"github.com/trustcore/didtrust/pkg/vdr/dht"
	"github.com/trustcore/didtrust/pkg/vdr/dht/bep44"
)

const (
	idPathVariable = "id"
	recordEndpoint = "/{" + idPathVariable + "}"

	maxMessageSize = bep44.SignatureSize + bep44.WideSeqWidth + bep44.MaxValueSize
)

var logger = log.New("didtrust/vdr/dht/gatewaysrv")

type entry struct {
	seq int64
	raw []byte
}

// Server stores the latest BEP44 message of each did:dht identifier.
type Server struct {
	router   *mux.Router
	seqWidth int

	mutex   sync.RWMutex
	records map[string]entry
}

// Option configures the Server.
type Option func(s *Server)

// WithSeqWidth sets the seq width of the messages the server accepts and returns.
func WithSeqWidth(width int) Option {
	return func(s *Server) {
		s.seqWidth = width
	}
}

// New returns an empty gateway.
func New(opts ...Option) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		seqWidth: bep44.DefaultSeqWidth,
		records:  map[string]entry{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router.HandleFunc(recordEndpoint, s.putHandler).Methods(http.MethodPut)
	s.router.HandleFunc(recordEndpoint, s.getHandler).Methods(http.MethodGet)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(rw, req)
}

// Len returns the number of stored identifiers.
func (s *Server) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.records)
}

func (s *Server) putHandler(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)[idPathVariable]

	key, err := dht.IdentityKey(id)
	if err != nil {
		writeError(rw, http.StatusBadRequest, err)

		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxMessageSize+1))
	if err != nil {
		writeError(rw, http.StatusBadRequest, err)

		return
	}

	msg, err := bep44.Unmarshal(body, s.seqWidth)
	if err != nil {
		writeError(rw, http.StatusBadRequest, err)

		return
	}

	if err = msg.Verify(key); err != nil {
		writeError(rw, http.StatusUnauthorized, err)

		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if cur, ok := s.records[id]; ok && cur.seq > msg.Seq {
		logger.Infof("rejecting %s at seq %d, stored seq is %d", id, msg.Seq, cur.seq)
		rw.WriteHeader(http.StatusConflict)

		return
	}

	s.records[id] = entry{seq: msg.Seq, raw: body}

	logger.Debugf("stored %s at seq %d", id, msg.Seq)
	rw.WriteHeader(http.StatusOK)
}

func (s *Server) getHandler(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)[idPathVariable]

	s.mutex.RLock()
	e, ok := s.records[id]
	s.mutex.RUnlock()

	if !ok {
		rw.WriteHeader(http.StatusNotFound)

		return
	}

	rw.Header().Set("Content-Type", "application/octet-stream")

	if _, err := rw.Write(e.raw); err != nil {
		logger.Errorf("failed to write response for %s: %v", id, err)
	}
}

func writeError(rw http.ResponseWriter, status int, err error) {
	logger.Debugf("request failed with status %d: %v", status, err)
	http.Error(rw, err.Error(), status)
}
