/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dht

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/vdr/dht/bep44"
	"github.com/trustcore/didtrust/pkg/vdr/dht/dnspacket"
)

// ErrPublish is returned when the gateway does not accept a document.
var ErrPublish = errors.New("did:dht publish failed")

// Publish encodes the document of bearer as a DNS packet, signs it with the identity key and
// stores it at the gateway. The seq is the current time in microseconds, raised above the last
// seq this VDR published for the DID.
func (v *VDR) Publish(ctx context.Context, bearer *bearerdid.BearerDID, types ...int) error {
	uri := bearer.DID.URI

	if bearer.DID.Method != namespace {
		return fmt.Errorf("%w: %s is not a did:%s", did.InvalidDID, uri, namespace)
	}

	identityKey, err := IdentityKey(bearer.DID.ID)
	if err != nil {
		return err
	}

	identity, err := bearer.VerificationMethod(dnspacket.IdentityFragment)
	if err != nil {
		return errors.Wrap(err, "identity verification method")
	}

	if identity.PublicKeyJwk.X != identityKey.X || identity.PublicKeyJwk.Crv != identityKey.Crv {
		return errors.Wrapf(ErrPublish, "identity key of %s does not match the identifier", uri)
	}

	packet, err := dnspacket.Marshal(bearer.Document, types)
	if err != nil {
		return err
	}

	signer, err := bearer.GetSigner(dnspacket.IdentityFragment)
	if err != nil {
		return err
	}

	seq := v.nextSeq(uri)

	msg, err := bep44.NewMessage(packet, seq, signer)
	if err != nil {
		return err
	}

	body, err := msg.Marshal(v.seqWidth)
	if err != nil {
		return err
	}

	resp, err := v.send(ctx, http.MethodPut, v.endpoint(bearer.DID.ID), body)
	if err != nil {
		return errors.Wrap(ErrPublish, err.Error())
	}

	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		return errors.Wrapf(ErrPublish, "gateway returned status %d", resp.status)
	}

	logger.Debugf("published %s at seq %d", uri, seq)

	v.remember(uri, &record{seq: seq, doc: bearer.Document, types: types})

	return nil
}

// Read resolves a did:dht did through the gateway.
func (v *VDR) Read(ctx context.Context, didID string) (*did.DocResolution, error) {
	parsed, err := did.Parse(didID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", did.InvalidDID, err.Error())
	}

	if parsed.Method != namespace {
		return nil, fmt.Errorf("%w: method %s is not %s", did.MethodNotSupported, parsed.Method, namespace)
	}

	identityKey, err := IdentityKey(parsed.ID)
	if err != nil {
		return nil, err
	}

	resp, err := v.send(ctx, http.MethodGet, v.endpoint(parsed.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving did:dht did --> %s", did.InternalError, err.Error())
	}

	switch {
	case resp.status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s is not published", did.NotFound, parsed.URI)
	case resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("%w: error resolving did:dht did --> gateway returned status %d",
			did.InternalError, resp.status)
	}

	msg, err := bep44.Unmarshal(resp.body, v.seqWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", did.InvalidDIDDocument, err.Error())
	}

	if err = msg.Verify(identityKey); err != nil {
		return nil, fmt.Errorf("%w: %s", did.InvalidDIDDocument, err.Error())
	}

	doc, types, err := dnspacket.Unmarshal(parsed.URI, msg.V)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", did.InvalidDIDDocument, err.Error())
	}

	identity, err := doc.FindVerificationMethod("#" + dnspacket.IdentityFragment)
	if err != nil || identity.PublicKeyJwk.X != identityKey.X {
		return nil, fmt.Errorf("%w: identity key does not match the identifier", did.InvalidDIDDocument)
	}

	rec := v.remember(parsed.URI, &record{seq: msg.Seq, doc: doc, types: types})

	res := did.NewDocResolution(rec.doc)
	res.DocumentMetadata = &did.DocumentMetadata{
		VersionID: strconv.FormatInt(rec.seq, 10),
		Types:     rec.types,
	}

	return res, nil
}
