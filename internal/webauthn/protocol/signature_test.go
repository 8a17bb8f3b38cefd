/*
 * Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package protocol

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/asn1"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature_ES256Success(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	data := []byte("authenticator-data || client-data-hash")
	sig := signLowSFixture(t, priv, data)

	assert.NoError(t, VerifySignature(ec2KeyFixture(priv), AlgES256, data, sig))
}

func TestVerifySignature_ES256WrongData(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	sig := signLowSFixture(t, priv, []byte("original"))

	err = VerifySignature(ec2KeyFixture(priv), AlgES256, []byte("tampered"), sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_RS1Unsupported(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	err = VerifySignature(ec2KeyFixture(priv), AlgRS1, []byte("data"), []byte("sig"))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestVerifySignature_UnknownAlgorithm(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	err = VerifySignature(ec2KeyFixture(priv), COSEAlgorithmIdentifier(-99999), []byte("data"), []byte("sig"))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestVerifySignature_MalleableSignatureRejected(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	data := []byte("authenticator-data || client-data-hash")
	digest := sha256.Sum256(data)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	halfOrder := new(big.Int).Rsh(priv.Curve.Params().N, 1)
	if s.Cmp(halfOrder) <= 0 {
		s = new(big.Int).Sub(priv.Curve.Params().N, s)
	}
	sig, err := asn1.Marshal(ecdsaSignature{R: r, S: s})
	require.NoError(t, err)

	err = VerifySignature(ec2KeyFixture(priv), AlgES256, data, sig)
	assert.ErrorIs(t, err, ErrSignatureMalleable)
}

func ec2KeyFixture(priv *ecdsa.PrivateKey) *COSEKey {
	x := make([]byte, 32)
	y := make([]byte, 32)
	priv.PublicKey.X.FillBytes(x)
	priv.PublicKey.Y.FillBytes(y)
	return &COSEKey{KeyType: coseKtyEC2, Algorithm: AlgES256, Curve: coseCrvP256, X: x, Y: y}
}

func signLowSFixture(t *testing.T, priv *ecdsa.PrivateKey, data []byte) []byte {
	t.Helper()
	digest := sha256.Sum256(data)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	halfOrder := new(big.Int).Rsh(priv.Curve.Params().N, 1)
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(priv.Curve.Params().N, s)
	}

	sig, err := asn1.Marshal(ecdsaSignature{R: r, S: s})
	require.NoError(t, err)
	return sig
}
