/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trustcore/didtrust/pkg/bearerdid"
	"github.com/trustcore/didtrust/pkg/crypto"
	"github.com/trustcore/didtrust/pkg/doc/did"
	"github.com/trustcore/didtrust/pkg/doc/jose/jwk"
	"github.com/trustcore/didtrust/pkg/vdr/api"
)

// Sign signs payload with the verification method keyID of bearer and returns the compact JWS.
// alg comes from the verification method JWK, falling back to the signer algorithm, and kid is the
// absolute verification method id. Other headers are copied as given.
func Sign(bearer *bearerdid.BearerDID, keyID string, headers Headers, payload []byte) (string, error) {
	vm, err := bearer.VerificationMethod(keyID)
	if err != nil {
		return "", err
	}

	signer, err := bearer.GetSigner(keyID)
	if err != nil {
		return "", err
	}

	alg := signer.Algorithm()

	if curve, err := crypto.CurveForAlgorithm(vm.PublicKeyJwk.Alg); err == nil {
		// normalizes the "Ed25519" alias some documents carry
		alg, _ = curve.Algorithm() //nolint:errcheck
	}

	h := make(Headers, len(headers)+2) //nolint:gomnd
	for k, v := range headers {
		h[k] = v
	}

	h[HeaderAlgorithm] = alg
	h[HeaderKeyID] = bearer.Document.AbsoluteID(vm.ID)

	jws, err := NewJWS(h, payload, signer)
	if err != nil {
		return "", err
	}

	return jws.SerializeCompact(), nil
}

// Verify parses a compact JWS and checks its signature against the verification method named
// by the kid header, resolving the DID with resolver.
func Verify(ctx context.Context, token string, resolver api.Resolver) (*JSONWebSignature, error) {
	jws, err := ParseCompact(token)
	if err != nil {
		return nil, err
	}

	kid, ok := jws.ProtectedHeaders.KeyID()
	if !ok || kid == "" {
		return nil, ErrMissingKeyID
	}

	didURI := did.WithoutFragment(kid)

	res := resolver.Resolve(ctx, didURI)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrResolution, didURI, err)
	}

	vm, err := res.DIDDocument.FindVerificationMethod(kid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	verifier := NewCompositeAlgSigVerifier(
		AlgSignatureVerifier{Alg: jwk.AlgorithmEdDSA, Verifier: keyVerifier(vm.PublicKeyJwk, crypto.Ed25519)},
		AlgSignatureVerifier{Alg: jwk.AlgorithmES256K, Verifier: keyVerifier(vm.PublicKeyJwk, crypto.Secp256k1)},
	)

	if err := verifier.Verify(jws.ProtectedHeaders, jws.Payload, jws.SigningInput(), jws.Signature); err != nil {
		logger.Debugf("JWS signed by %s failed verification: %v", kid, err)

		return nil, err
	}

	return jws, nil
}

// keyVerifier verifies signatures made by publicKey, which must be on curve.
func keyVerifier(publicKey jwk.JWK, curve crypto.Curve) SignatureVerifier {
	return SignatureVerifierFunc(func(joseHeaders Headers, _, signingInput, signature []byte) error {
		if crypto.Curve(publicKey.Crv) != curve {
			alg, _ := joseHeaders.Algorithm()

			return fmt.Errorf("%w: %s with a %s key", ErrUnsupportedAlgorithm, alg, publicKey.Crv)
		}

		v, err := crypto.NewVerifier(publicKey)
		if err != nil {
			return err
		}

		if err := v.Verify(signingInput, signature); err != nil {
			if errors.Is(err, crypto.ErrVerificationFailure) {
				return err
			}

			return errors.Wrap(crypto.ErrVerificationFailure, err.Error())
		}

		return nil
	})
}
