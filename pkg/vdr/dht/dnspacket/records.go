/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dnspacket

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
	"golang.org/x/net/dns/dnsmessage"

	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
)

// Key type indexes of the did:dht key type registry.
const (
	keyTypeEd25519   = "0"
	keyTypeSecp256k1 = "1"
	keyTypeX25519    = "3"

	x25519KeySize = 32
)

func vmRecord(didURI, absID string, vm *did.VerificationMethod, idx int) (dnsmessage.Resource, error) {
	frag, err := fragment(didURI, absID)
	if err != nil {
		return dnsmessage.Resource{}, err
	}

	var (
		keyType    string
		key        []byte
		defaultAlg string
	)

	switch vm.PublicKeyJwk.Crv {
	case jwk.CurveEd25519:
		pub, err := crypto.Ed25519PublicKey(vm.PublicKeyJwk)
		if err != nil {
			return dnsmessage.Resource{}, errors.Wrapf(ErrInvalidPacket, "verification method %s: %s", absID, err.Error())
		}

		keyType, key, defaultAlg = keyTypeEd25519, pub, jwk.AlgorithmEdDSA
	case jwk.CurveSecp256k1:
		pub, err := crypto.Secp256k1PublicKey(vm.PublicKeyJwk)
		if err != nil {
			return dnsmessage.Resource{}, errors.Wrapf(ErrInvalidPacket, "verification method %s: %s", absID, err.Error())
		}

		keyType, key, defaultAlg = keyTypeSecp256k1, pub.SerializeCompressed(), jwk.AlgorithmES256K
	case jwk.CurveX25519:
		pub, err := jwk.DecodeMember(vm.PublicKeyJwk.X)
		if err != nil || len(pub) != x25519KeySize {
			return dnsmessage.Resource{}, errors.Wrapf(ErrInvalidPacket, "verification method %s: invalid X25519 key", absID)
		}

		keyType, key, defaultAlg = keyTypeX25519, pub, jwk.AlgorithmECDHESA256KW
	default:
		return dnsmessage.Resource{}, errors.Wrapf(ErrUnsupportedKeyType, "curve %q of %s", vm.PublicKeyJwk.Crv, absID)
	}

	parts := []string{"id=" + frag, "t=" + keyType, "k=" + jwk.EncodeMember(key)}

	if vm.Controller != "" && vm.Controller != didURI {
		if err := checkValue("c", vm.Controller); err != nil {
			return dnsmessage.Resource{}, err
		}

		parts = append(parts, "c="+vm.Controller)
	}

	if alg := vm.PublicKeyJwk.Alg; alg != "" && alg != defaultAlg {
		if err := checkValue("a", alg); err != nil {
			return dnsmessage.Resource{}, err
		}

		parts = append(parts, "a="+alg)
	}

	return txtResource(recordName(vmRecordFormat, idx), strings.Join(parts, ";"))
}

func parseVMRecord(didURI, text string) (did.VerificationMethod, error) {
	rdata, err := parseRData(text)
	if err != nil {
		return did.VerificationMethod{}, err
	}

	id, err := required(rdata, "id")
	if err != nil {
		return did.VerificationMethod{}, err
	}

	keyType, err := required(rdata, "t")
	if err != nil {
		return did.VerificationMethod{}, err
	}

	k, err := required(rdata, "k")
	if err != nil {
		return did.VerificationMethod{}, err
	}

	raw, err := jwk.DecodeMember(k)
	if err != nil {
		return did.VerificationMethod{}, errors.Wrapf(ErrInvalidPacket, "decode k of %s: %s", id, err.Error())
	}

	var publicKey jwk.JWK

	switch keyType {
	case keyTypeEd25519:
		if len(raw) != 32 { //nolint:gomnd
			return did.VerificationMethod{}, errors.Wrapf(ErrInvalidPacket, "ed25519 key of %s has %d bytes", id, len(raw))
		}

		publicKey = crypto.Ed25519PublicJWK(raw)
	case keyTypeSecp256k1:
		pub, err := btcec.ParsePubKey(raw)
		if err != nil {
			return did.VerificationMethod{}, errors.Wrapf(ErrInvalidPacket, "secp256k1 key of %s: %s", id, err.Error())
		}

		publicKey = crypto.Secp256k1PublicJWK(pub)
	case keyTypeX25519:
		if len(raw) != x25519KeySize {
			return did.VerificationMethod{}, errors.Wrapf(ErrInvalidPacket, "X25519 key of %s has %d bytes", id, len(raw))
		}

		publicKey = jwk.JWK{
			Alg: jwk.AlgorithmECDHESA256KW,
			Kty: jwk.KeyTypeOKP,
			Crv: jwk.CurveX25519,
			X:   jwk.EncodeMember(raw),
		}
	default:
		return did.VerificationMethod{}, errors.Wrapf(ErrUnsupportedKeyType, "t=%s", keyType)
	}

	if alg, ok := rdata["a"]; ok {
		publicKey.Alg = alg
	}

	controller := didURI
	if c, ok := rdata["c"]; ok && c != "" {
		controller = c
	}

	return did.VerificationMethod{
		ID:           didURI + "#" + id,
		Type:         did.JSONWebKeyType,
		Controller:   controller,
		PublicKeyJwk: publicKey,
	}, nil
}

func serviceRecord(didURI, absID string, s *did.Service, idx int) (dnsmessage.Resource, error) {
	frag, err := fragment(didURI, absID)
	if err != nil {
		return dnsmessage.Resource{}, err
	}

	if err := checkValue("t", s.Type); err != nil {
		return dnsmessage.Resource{}, err
	}

	if len(s.ServiceEndpoint) == 0 {
		return dnsmessage.Resource{}, errors.Wrapf(ErrInvalidPacket, "service %s has no endpoint", absID)
	}

	if err := checkListValues("se", s.ServiceEndpoint); err != nil {
		return dnsmessage.Resource{}, err
	}

	text := "id=" + frag + ";t=" + s.Type + ";se=" + strings.Join(s.ServiceEndpoint, ",")

	return txtResource(recordName(srvRecordFormat, idx), text)
}

func parseServiceRecord(didURI, text string) (did.Service, error) {
	rdata, err := parseRData(text)
	if err != nil {
		return did.Service{}, err
	}

	id, err := required(rdata, "id")
	if err != nil {
		return did.Service{}, err
	}

	t, err := required(rdata, "t")
	if err != nil {
		return did.Service{}, err
	}

	se, err := required(rdata, "se")
	if err != nil {
		return did.Service{}, err
	}

	return did.Service{ID: didURI + "#" + id, Type: t, ServiceEndpoint: splitList(se)}, nil
}

// parseRData splits "k1=v1;k2=v2" into a map. Values may contain '='.
func parseRData(text string) (map[string]string, error) {
	out := map[string]string{}

	if text == "" {
		return out, nil
	}

	for _, entry := range strings.Split(text, ";") {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPacket, "malformed entry %q", entry)
		}

		k = strings.TrimSpace(k)
		if _, dup := out[k]; dup {
			return nil, errors.Wrapf(ErrInvalidPacket, "duplicate key %q", k)
		}

		out[k] = strings.TrimSpace(v)
	}

	return out, nil
}

func required(rdata map[string]string, key string) (string, error) {
	v, ok := rdata[key]
	if !ok || v == "" {
		return "", errors.Wrapf(ErrInvalidPacket, "missing %s", key)
	}

	return v, nil
}

func splitList(v string) []string {
	var out []string

	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}
