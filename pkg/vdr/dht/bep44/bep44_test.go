/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bep44

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustcore/didtrust/pkg/crypto"
)

type failingSigner struct {
	sig []byte
	err error
}

func (s *failingSigner) Sign([]byte) ([]byte, error) { return s.sig, s.err }
func (s *failingSigner) Algorithm() string { return "EdDSA" }

func TestSignableBytes(t *testing.T) {
	require.Equal(t, []byte("3:seqi42e1:v5:hello"), SignableBytes(42, []byte("hello")))
	require.Equal(t, []byte("3:seqi0e1:v0:"), SignableBytes(0, nil))
}

func TestMessage(t *testing.T) {
	privateKey, err := crypto.GenerateEd25519(nil)
	require.NoError(t, err)

	signer, err := crypto.NewSigner(privateKey)
	require.NoError(t, err)

	v := []byte("Hello World")

	msg, err := NewMessage(v, 1700000000000000, signer)
	require.NoError(t, err)
	require.NoError(t, msg.Verify(privateKey.Public()))

	for _, width := range []int{DefaultSeqWidth, WideSeqWidth} {
		b, err := msg.Marshal(width)
		require.NoError(t, err)
		require.Len(t, b, SignatureSize+width+len(v))
		require.Equal(t, msg.Sig[:], b[:SignatureSize])
		require.True(t, bytes.HasSuffix(b, v))

		decoded, err := Unmarshal(b, width)
		require.NoError(t, err)
		require.Equal(t, msg, decoded)
		require.NoError(t, decoded.Verify(privateKey.Public()))
	}

	t.Run("tampered value", func(t *testing.T) {
		tampered := *msg
		tampered.V = []byte("Hello Wurld")
		require.ErrorIs(t, tampered.Verify(privateKey.Public()), ErrInvalidSignature)

		tampered = *msg
		tampered.Seq++
		require.ErrorIs(t, tampered.Verify(privateKey.Public()), ErrInvalidSignature)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := crypto.GenerateEd25519(nil)
		require.NoError(t, err)
		require.ErrorIs(t, msg.Verify(other.Public()), ErrInvalidSignature)

		secp, err := crypto.GenerateSecp256k1(nil)
		require.NoError(t, err)
		require.ErrorIs(t, msg.Verify(secp.Public()), crypto.ErrUnsupportedCurve)
	})
}

func TestErrors(t *testing.T) {
	privateKey, err := crypto.GenerateEd25519(nil)
	require.NoError(t, err)

	signer, err := crypto.NewSigner(privateKey)
	require.NoError(t, err)

	_, err = NewMessage(make([]byte, MaxValueSize+1), 1, signer)
	require.ErrorIs(t, err, ErrValueTooLarge)

	_, err = NewMessage(make([]byte, MaxValueSize), -1, signer)
	require.ErrorIs(t, err, ErrSeqOutOfRange)

	_, err = NewMessage(nil, 1, &failingSigner{err: errors.New("boom")})
	require.EqualError(t, err, "sign bep44 message: boom")

	_, err = NewMessage(nil, 1, &failingSigner{sig: []byte{1}})
	require.ErrorIs(t, err, ErrInvalidSignature)

	msg, err := NewMessage(nil, 1, signer)
	require.NoError(t, err)

	_, err = msg.Marshal(4)
	require.ErrorIs(t, err, ErrInvalidSeqWidth)

	_, err = Unmarshal(make([]byte, 100), 12)
	require.ErrorIs(t, err, ErrInvalidSeqWidth)

	_, err = Unmarshal(make([]byte, SignatureSize+DefaultSeqWidth-1), DefaultSeqWidth)
	require.ErrorIs(t, err, ErrMessageTooShort)

	_, err = Unmarshal(make([]byte, SignatureSize+WideSeqWidth-1), WideSeqWidth)
	require.ErrorIs(t, err, ErrMessageTooShort)

	_, err = Unmarshal(make([]byte, SignatureSize+DefaultSeqWidth+MaxValueSize+1), DefaultSeqWidth)
	require.ErrorIs(t, err, ErrValueTooLarge)

	wide := make([]byte, SignatureSize+WideSeqWidth)
	wide[SignatureSize] = 1
	_, err = Unmarshal(wide, WideSeqWidth)
	require.ErrorIs(t, err, ErrSeqOutOfRange)

	narrow := make([]byte, SignatureSize+DefaultSeqWidth)
	narrow[SignatureSize] = 0x80
	_, err = Unmarshal(narrow, DefaultSeqWidth)
	require.ErrorIs(t, err, ErrSeqOutOfRange)

	empty, err := Unmarshal(make([]byte, SignatureSize+DefaultSeqWidth), DefaultSeqWidth)
	require.NoError(t, err)
	require.Empty(t, empty.V)
	require.Zero(t, empty.Seq)
}
