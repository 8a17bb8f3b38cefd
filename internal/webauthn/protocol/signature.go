/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
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
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
)

// ErrUnsupportedAlgorithm is returned when a COSE algorithm identifier has no registered
// verifier, including RS1 which is recognized but rejected by policy.
var ErrUnsupportedAlgorithm = errors.New("unsupported or disallowed signature algorithm")

// ErrSignatureMalleable is returned for an ECDSA signature whose S component is not in the
// lower half of the curve order, a canonical-form requirement that also rejects the most
// common signature malleability construction.
var ErrSignatureMalleable = errors.New("ecdsa signature is not in canonical low-S form")

// ErrInvalidSignature is returned when the signature fails cryptographic verification.
var ErrInvalidSignature = errors.New("signature verification failed")

type ecdsaSignature struct {
	R, S *big.Int
}

// VerifySignature verifies sig over signedData using the given COSE public key and
// algorithm, per WebAuthn Level 3 §4.7. signedData is authenticatorData || SHA-256(clientDataJSON).
func VerifySignature(key *COSEKey, alg COSEAlgorithmIdentifier, signedData, sig []byte) error {
	pub, err := key.PublicKey()
	if err != nil {
		return fmt.Errorf("failed to materialize public key: %w", err)
	}

	switch alg {
	case AlgES256:
		return verifyECDSA(pub, signedData, sig, crypto.SHA256)
	case AlgES384:
		return verifyECDSA(pub, signedData, sig, crypto.SHA384)
	case AlgES512:
		return verifyECDSA(pub, signedData, sig, crypto.SHA512)
	case AlgEdDSA:
		return verifyEdDSA(pub, signedData, sig)
	case AlgRS256:
		return verifyRSAPKCS1v15(pub, signedData, sig, crypto.SHA256)
	case AlgRS384:
		return verifyRSAPKCS1v15(pub, signedData, sig, crypto.SHA384)
	case AlgRS512:
		return verifyRSAPKCS1v15(pub, signedData, sig, crypto.SHA512)
	case AlgPS256:
		return verifyRSAPSS(pub, signedData, sig, crypto.SHA256)
	case AlgPS384:
		return verifyRSAPSS(pub, signedData, sig, crypto.SHA384)
	case AlgPS512:
		return verifyRSAPSS(pub, signedData, sig, crypto.SHA512)
	case AlgRS1:
		return fmt.Errorf("%w: RS1", ErrUnsupportedAlgorithm)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, alg)
	}
}

func verifyECDSA(pub crypto.PublicKey, data, sig []byte, h crypto.Hash) error {
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: key is not an EC2 key", ErrUnsupportedAlgorithm)
	}

	var sigStruct ecdsaSignature
	if _, err := asn1.Unmarshal(sig, &sigStruct); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	halfOrder := new(big.Int).Rsh(ecPub.Curve.Params().N, 1)
	if sigStruct.S.Cmp(halfOrder) > 0 {
		return ErrSignatureMalleable
	}

	digest := hashData(h, data)
	if !ecdsa.Verify(ecPub, digest, sigStruct.R, sigStruct.S) {
		return ErrInvalidSignature
	}
	return nil
}

func verifyEdDSA(pub crypto.PublicKey, data, sig []byte) error {
	edPub, ok := pub.(ed25519.PublicKey)
	if !ok {
		return fmt.Errorf("%w: key is not an OKP/Ed25519 key", ErrUnsupportedAlgorithm)
	}
	if !ed25519.Verify(edPub, data, sig) {
		return ErrInvalidSignature
	}
	return nil
}

func verifyRSAPKCS1v15(pub crypto.PublicKey, data, sig []byte, h crypto.Hash) error {
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: key is not an RSA key", ErrUnsupportedAlgorithm)
	}
	digest := hashData(h, data)
	if err := rsa.VerifyPKCS1v15(rsaPub, h, digest, sig); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

func verifyRSAPSS(pub crypto.PublicKey, data, sig []byte, h crypto.Hash) error {
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: key is not an RSA key", ErrUnsupportedAlgorithm)
	}
	digest := hashData(h, data)
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: h}
	if err := rsa.VerifyPSS(rsaPub, h, digest, sig, opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

func hashData(h crypto.Hash, data []byte) []byte {
	switch h {
	case crypto.SHA256:
		sum := sha256.Sum256(data)
		return sum[:]
	case crypto.SHA384:
		sum := sha512.Sum384(data)
		return sum[:]
	case crypto.SHA512:
		sum := sha512.Sum512(data)
		return sum[:]
	default:
		sum := sha256.Sum256(data)
		return sum[:]
	}
}
