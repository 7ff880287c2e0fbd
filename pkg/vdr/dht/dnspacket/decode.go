/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dnspacket

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/dns/dnsmessage"

	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

// ToDocument rebuilds the document of didURI from a DNS message. It also returns the indexed
// types of the _typ record. Every record the root record references must be present.
func ToDocument(didURI string, msg *dnsmessage.Message) (*did.Doc, []int, error) {
	parsed, err := did.Parse(didURI)
	if err != nil {
		return nil, nil, errors.Wrap(ErrInvalidPacket, err.Error())
	}

	records := txtRecords(msg)

	rootText, ok := records[rootLabel+"."+strings.ToLower(parsed.ID)+"."]
	if !ok {
		return nil, nil, errors.Wrap(ErrInvalidPacket, "root record could not be found")
	}

	root, err := parseRData(rootText)
	if err != nil {
		return nil, nil, err
	}

	vmList, ok := root[rootVMKey]
	if !ok {
		return nil, nil, errors.Wrap(ErrInvalidPacket, "root record has no vm entry")
	}

	vmIdx, err := parseTokens(vmList, vmTokenPrefix, true)
	if err != nil {
		return nil, nil, err
	}

	doc := &did.Doc{ID: parsed.URI}
	idxToID := make(map[int]string, len(vmIdx))

	for _, idx := range vmIdx {
		text, ok := records[recordName(vmRecordFormat, idx)]
		if !ok {
			return nil, nil, errors.Wrapf(ErrInvalidPacket, "root record references missing verification method k%d", idx)
		}

		vm, err := parseVMRecord(parsed.URI, text)
		if err != nil {
			return nil, nil, err
		}

		if (idx == 0) != (vm.ID == parsed.URI+"#"+IdentityFragment) {
			return nil, nil, errors.Wrapf(ErrInvalidPacket, "identity key must be record k0 with id %s", IdentityFragment)
		}

		if idx == 0 && vm.PublicKeyJwk.Crv != jwk.CurveEd25519 {
			return nil, nil, errors.Wrap(ErrInvalidPacket, "identity key must be Ed25519")
		}

		idxToID[idx] = vm.ID
		doc.VerificationMethod = append(doc.VerificationMethod, vm)
	}

	if _, ok := idxToID[0]; !ok {
		return nil, nil, errors.Wrap(ErrInvalidPacket, "root record does not reference the identity key k0")
	}

	for _, p := range rootPurposes {
		list, ok := root[p.key]
		if !ok {
			continue
		}

		indexes, err := parseTokens(list, vmTokenPrefix, false)
		if err != nil {
			return nil, nil, err
		}

		for _, idx := range indexes {
			id, ok := idxToID[idx]
			if !ok {
				return nil, nil, errors.Wrapf(ErrInvalidPacket, "%s references unknown verification method k%d", p.key, idx)
			}

			doc.AddReference(p.purpose, id)
		}
	}

	if err := addServices(doc, parsed.URI, root, records); err != nil {
		return nil, nil, err
	}

	if text, ok := records[controllerName]; ok {
		doc.Controller = splitList(text)
	}

	if text, ok := records[alsoKnownAsName]; ok {
		doc.AlsoKnownAs = splitList(text)
	}

	types, err := parseTypes(records)
	if err != nil {
		return nil, nil, err
	}

	return doc, types, nil
}

func addServices(doc *did.Doc, didURI string, root, records map[string]string) error {
	list, ok := root[rootServiceKey]
	if !ok {
		list, ok = root[legacyServiceKey]
	}

	if !ok {
		return nil
	}

	indexes, err := parseTokens(list, srvTokenPrefix, true)
	if err != nil {
		return err
	}

	for _, idx := range indexes {
		text, ok := records[recordName(srvRecordFormat, idx)]
		if !ok {
			return errors.Wrapf(ErrInvalidPacket, "root record references missing service s%d", idx)
		}

		s, err := parseServiceRecord(didURI, text)
		if err != nil {
			return err
		}

		doc.Service = append(doc.Service, s)
	}

	return nil
}

func parseTypes(records map[string]string) ([]int, error) {
	text, ok := records[typesName]
	if !ok {
		return nil, nil
	}

	rdata, err := parseRData(text)
	if err != nil {
		return nil, err
	}

	var types []int

	for _, v := range splitList(rdata["id"]) {
		t, err := strconv.Atoi(v)
		if err != nil || t < 0 {
			return nil, errors.Wrapf(ErrInvalidPacket, "invalid type index %q", v)
		}

		types = append(types, t)
	}

	return types, nil
}

// txtRecords maps the lower cased owner name of every TXT answer to its joined text. The first
// record of a name wins.
func txtRecords(msg *dnsmessage.Message) map[string]string {
	out := make(map[string]string, len(msg.Answers))

	for _, rr := range msg.Answers {
		txt, ok := rr.Body.(*dnsmessage.TXTResource)
		if !ok {
			continue
		}

		name := strings.ToLower(rr.Header.Name.String())
		if _, dup := out[name]; dup {
			continue
		}

		out[name] = strings.Join(txt.TXT, "")
	}

	return out
}

// parseTokens parses a comma separated list of prefixed indexes such as "k0,k1".
func parseTokens(list, prefix string, unique bool) ([]int, error) {
	var out []int

	seen := map[int]bool{}

	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		n, ok := strings.CutPrefix(token, prefix)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPacket, "token %q is missing prefix %s", token, prefix)
		}

		idx, err := strconv.Atoi(n)
		if err != nil || idx < 0 {
			return nil, errors.Wrapf(ErrInvalidPacket, "token %q is not an index", token)
		}

		if unique && seen[idx] {
			return nil, errors.Wrapf(ErrInvalidPacket, "duplicate token %q", token)
		}

		seen[idx] = true
		out = append(out, idx)
	}

	return out, nil
}
