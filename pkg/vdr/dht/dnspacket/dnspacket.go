/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package dnspacket converts did:dht documents to and from DNS packets.
//
// A document is stored as TXT records in the answer section of a DNS response:
//
//	_did.<id>.    vm=k0,k1;asm=k0;inv=k0;del=k0;auth=k0;agm=k1;srv=s0
//	_k0._did.     id=0;t=0;k=<base64url public key>
//	_k1._did.     id=enc;t=1;k=<base64url compressed public key>;c=<controller>
//	_s0._did.     id=dwn;t=DecentralizedWebNode;se=https://dwn.example.com
//	_cnt._did.    did:example:controller
//	_aka._did.    did:example:alias
//	_typ._did.    id=1,7
//
// The root record lists, per verification relationship, the records that play that role.
package dnspacket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/dns/dnsmessage"

	"github.com/trustcore/didtrust/pkg/doc/did"
)

const (
	// DefaultTTL is the TTL of every record, in seconds.
	DefaultTTL = 7200

	// IdentityFragment is the fragment of the identity key verification method.
	IdentityFragment = "0"

	maxCharacterString = 255

	rootLabel        = "_did"
	controllerName   = "_cnt._did."
	alsoKnownAsName  = "_aka._did."
	typesName        = "_typ._did."
	vmRecordFormat   = "_k%d._did."
	srvRecordFormat  = "_s%d._did."
	vmTokenPrefix    = "k"
	srvTokenPrefix   = "s"
	rootVMKey        = "vm"
	rootServiceKey   = "srv"
	legacyServiceKey = "svc"
)

// Packet errors.
var (
	ErrInvalidPacket      = errors.New("invalid did:dht packet")
	ErrUnsupportedKeyType = errors.New("unsupported did:dht key type")
)

// rootPurposes is the order of the verification relationships in the root record.
var rootPurposes = []struct { //nolint:gochecknoglobals
	key     string
	purpose did.Purpose
}{
	{key: "asm", purpose: did.AssertionMethod},
	{key: "inv", purpose: did.CapabilityInvocation},
	{key: "del", purpose: did.CapabilityDelegation},
	{key: "auth", purpose: did.Authentication},
	{key: "agm", purpose: did.KeyAgreement},
}

// Marshal encodes the document and its indexed types as a compressed DNS packet.
func Marshal(doc *did.Doc, types []int) ([]byte, error) {
	msg, err := FromDocument(doc, types)
	if err != nil {
		return nil, err
	}

	b, err := msg.Pack()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPacket, err.Error())
	}

	return b, nil
}

// Unmarshal decodes the document of didURI from a DNS packet.
func Unmarshal(didURI string, b []byte) (*did.Doc, []int, error) {
	var msg dnsmessage.Message

	if err := msg.Unpack(b); err != nil {
		return nil, nil, errors.Wrap(ErrInvalidPacket, err.Error())
	}

	return ToDocument(didURI, &msg)
}

// FromDocument builds the DNS message of a document. The verification method with fragment
// IdentityFragment is written first as _k0; other verification methods and services keep their
// document order.
func FromDocument(doc *did.Doc, types []int) (*dnsmessage.Message, error) {
	parsed, err := did.Parse(doc.ID)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPacket, err.Error())
	}

	ordered, err := identityFirst(parsed.URI, doc)
	if err != nil {
		return nil, err
	}

	var answers []dnsmessage.Resource

	vmIndex := make(map[string]int, len(ordered))
	vmTokens := make([]string, 0, len(ordered))

	for i := range ordered {
		absID := doc.AbsoluteID(ordered[i].ID)

		if _, dup := vmIndex[absID]; dup {
			return nil, errors.Wrapf(ErrInvalidPacket, "duplicate verification method %s", absID)
		}

		rr, err := vmRecord(parsed.URI, absID, &ordered[i], i)
		if err != nil {
			return nil, err
		}

		answers = append(answers, rr)
		vmIndex[absID] = i
		vmTokens = append(vmTokens, vmTokenPrefix+strconv.Itoa(i))
	}

	entries := []string{rootVMKey + "=" + strings.Join(vmTokens, ",")}

	for _, p := range rootPurposes {
		refs := doc.References(p.purpose)
		if len(refs) == 0 {
			continue
		}

		tokens := make([]string, 0, len(refs))

		for _, ref := range refs {
			idx, ok := vmIndex[doc.AbsoluteID(ref)]
			if !ok {
				return nil, errors.Wrapf(ErrInvalidPacket, "%s reference %s has no verification method", p.purpose, ref)
			}

			tokens = append(tokens, vmTokenPrefix+strconv.Itoa(idx))
		}

		entries = append(entries, p.key+"="+strings.Join(tokens, ","))
	}

	if len(doc.Service) > 0 {
		srvTokens := make([]string, 0, len(doc.Service))

		for i := range doc.Service {
			rr, err := serviceRecord(parsed.URI, doc.AbsoluteID(doc.Service[i].ID), &doc.Service[i], i)
			if err != nil {
				return nil, err
			}

			answers = append(answers, rr)
			srvTokens = append(srvTokens, srvTokenPrefix+strconv.Itoa(i))
		}

		entries = append(entries, rootServiceKey+"="+strings.Join(srvTokens, ","))
	}

	root, err := txtResource(rootLabel+"."+parsed.ID+".", strings.Join(entries, ";"))
	if err != nil {
		return nil, err
	}

	answers = append([]dnsmessage.Resource{root}, answers...)

	extra, err := listRecords(doc, types)
	if err != nil {
		return nil, err
	}

	return &dnsmessage.Message{
		Header:  dnsmessage.Header{Response: true, Authoritative: true},
		Answers: append(answers, extra...),
	}, nil
}

func identityFirst(didURI string, doc *did.Doc) ([]did.VerificationMethod, error) {
	identityID := didURI + "#" + IdentityFragment
	ordered := make([]did.VerificationMethod, 0, len(doc.VerificationMethod))

	for i := range doc.VerificationMethod {
		if doc.AbsoluteID(doc.VerificationMethod[i].ID) == identityID {
			ordered = append(ordered, doc.VerificationMethod[i])
		}
	}

	if len(ordered) != 1 {
		return nil, errors.Wrapf(ErrInvalidPacket, "document must have exactly one identity key %s", identityID)
	}

	for i := range doc.VerificationMethod {
		if doc.AbsoluteID(doc.VerificationMethod[i].ID) != identityID {
			ordered = append(ordered, doc.VerificationMethod[i])
		}
	}

	return ordered, nil
}

func listRecords(doc *did.Doc, types []int) ([]dnsmessage.Resource, error) {
	var out []dnsmessage.Resource

	for _, l := range []struct {
		name   string
		values []string
	}{
		{name: controllerName, values: doc.Controller},
		{name: alsoKnownAsName, values: doc.AlsoKnownAs},
	} {
		if len(l.values) == 0 {
			continue
		}

		if err := checkListValues(l.name, l.values); err != nil {
			return nil, err
		}

		rr, err := txtResource(l.name, strings.Join(l.values, ","))
		if err != nil {
			return nil, err
		}

		out = append(out, rr)
	}

	if len(types) > 0 {
		values := make([]string, len(types))

		for i, t := range types {
			if t < 0 {
				return nil, errors.Wrapf(ErrInvalidPacket, "negative type index %d", t)
			}

			values[i] = strconv.Itoa(t)
		}

		rr, err := txtResource(typesName, "id="+strings.Join(values, ","))
		if err != nil {
			return nil, err
		}

		out = append(out, rr)
	}

	return out, nil
}

// txtResource builds a TXT record, splitting text into 255 byte character strings.
func txtResource(name, text string) (dnsmessage.Resource, error) {
	n, err := dnsmessage.NewName(name)
	if err != nil {
		return dnsmessage.Resource{}, errors.Wrapf(ErrInvalidPacket, "record name %s: %s", name, err.Error())
	}

	chunks := make([]string, 0, len(text)/maxCharacterString+1)

	for len(text) > maxCharacterString {
		chunks = append(chunks, text[:maxCharacterString])
		text = text[maxCharacterString:]
	}

	chunks = append(chunks, text)

	return dnsmessage.Resource{
		Header: dnsmessage.ResourceHeader{
			Name:  n,
			Type:  dnsmessage.TypeTXT,
			Class: dnsmessage.ClassINET,
			TTL:   DefaultTTL,
		},
		Body: &dnsmessage.TXTResource{TXT: chunks},
	}, nil
}

// fragment returns the fragment of an absolute id belonging to didURI.
func fragment(didURI, absID string) (string, error) {
	frag := strings.TrimPrefix(absID, didURI+"#")
	if frag == absID || frag == "" {
		return "", errors.Wrapf(ErrInvalidPacket, "id %s is not a fragment of %s", absID, didURI)
	}

	if err := checkValue("id", frag); err != nil {
		return "", err
	}

	return frag, nil
}

func checkValue(name, v string) error {
	if strings.Contains(v, ";") {
		return errors.Wrapf(ErrInvalidPacket, "%s value %q must not contain ';'", name, v)
	}

	return nil
}

func checkListValues(name string, values []string) error {
	for _, v := range values {
		if v == "" || strings.ContainsAny(v, ",;") {
			return errors.Wrapf(ErrInvalidPacket, "%s entry %q must be non empty and must not contain ',' or ';'",
				name, v)
		}
	}

	return nil
}

func recordName(format string, idx int) string {
	return fmt.Sprintf(format, idx)
}
