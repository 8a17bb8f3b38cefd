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
	"bytes"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrUnsupportedAttestationFormat is returned when attStmtFormat names a format with no
// registered verifier.
var ErrUnsupportedAttestationFormat = errors.New("unsupported attestation format")

// AttestationType classifies the trust relationship conveyed by a verified attestation
// statement. Trust-chain and metadata-service (MDS) validation of the attesting authority
// itself is out of scope; only the statement's internal self-consistency is checked.
type AttestationType string

// Attestation types recognized by VerifyAttestationStatement.
const (
	AttestationTypeNone     AttestationType = "None"
	AttestationTypeSelf     AttestationType = "Self"
	AttestationTypeBasic    AttestationType = "Basic"
	AttestationTypeAttCA    AttestationType = "AttCA"
	AttestationTypeAnonCA   AttestationType = "AnonCA"
)

// VerifyAttestationStatement dispatches to the format-specific verifier named by fmt, and
// returns the attestation type it established. authData is the raw (undecoded) authenticator
// data bytes and clientDataHash is SHA-256(clientDataJSON), matching the signed data layout
// used by every format below.
func VerifyAttestationStatement(
	format string,
	attStmt map[string]interface{},
	authData []byte,
	clientDataHash []byte,
	credentialKey *COSEKey,
) (AttestationType, error) {
	switch AttestationFormat(format) {
	case AttestationFormatNone:
		return verifyNone(attStmt)
	case AttestationFormatPacked:
		return verifyPacked(attStmt, authData, clientDataHash, credentialKey)
	case AttestationFormatFIDOU2F:
		return verifyFIDOU2F(attStmt, authData, clientDataHash, credentialKey)
	case AttestationFormatTPM:
		return verifyTPM(attStmt, authData, clientDataHash, credentialKey)
	case AttestationFormatAndroidKey:
		return verifyAndroidKey(attStmt, authData, clientDataHash)
	case AttestationFormatAndroidSafetyNet:
		return verifyAndroidSafetyNet(attStmt, authData, clientDataHash)
	case AttestationFormatApple:
		return verifyApple(attStmt, authData, clientDataHash)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAttestationFormat, format)
	}
}

func verifyNone(attStmt map[string]interface{}) (AttestationType, error) {
	if len(attStmt) != 0 {
		return "", errors.New("none attestation statement must be empty")
	}
	return AttestationTypeNone, nil
}

// verifyPacked implements WebAuthn Level 3 §8.2. When x5c is present the statement is
// verified against the leaf certificate's embedded public key (Basic attestation); the
// self-attestation case verifies the signature directly against the credential's own COSE key.
func verifyPacked(
	attStmt map[string]interface{}, authData, clientDataHash []byte, credentialKey *COSEKey,
) (AttestationType, error) {
	alg, sig, err := readAlgAndSig(attStmt)
	if err != nil {
		return "", err
	}
	signedData := concat(authData, clientDataHash)

	if x5c, ok := attStmt["x5c"]; ok {
		leaf, err := leafCertFromX5C(x5c)
		if err != nil {
			return "", err
		}
		if err := verifyWithCertificate(leaf, alg, signedData, sig); err != nil {
			return "", err
		}
		return AttestationTypeBasic, nil
	}

	// Self attestation: alg must match the credential's own algorithm, and the signature
	// verifies directly against the credential public key.
	if COSEAlgorithmIdentifier(alg) != credentialKey.Algorithm {
		return "", fmt.Errorf("self attestation algorithm %d does not match credential algorithm %d",
			alg, credentialKey.Algorithm)
	}
	if err := VerifySignature(credentialKey, COSEAlgorithmIdentifier(alg), signedData, sig); err != nil {
		return "", fmt.Errorf("self attestation signature invalid: %w", err)
	}
	return AttestationTypeSelf, nil
}

// verifyFIDOU2F implements WebAuthn Level 3 §8.6. It only applies to EC2/P-256 credentials
// and reconstructs the legacy U2F registration signature base.
func verifyFIDOU2F(
	attStmt map[string]interface{}, authData, clientDataHash []byte, credentialKey *COSEKey,
) (AttestationType, error) {
	if credentialKey.KeyType != coseKtyEC2 || credentialKey.Curve != coseCrvP256 {
		return "", errors.New("fido-u2f attestation requires an EC2 P-256 credential")
	}

	x5c, ok := attStmt["x5c"]
	if !ok {
		return "", errors.New("fido-u2f attestation statement missing x5c")
	}
	leaf, err := leafCertFromX5C(x5c)
	if err != nil {
		return "", err
	}

	sig, ok := attStmt["sig"].([]byte)
	if !ok {
		return "", errors.New("fido-u2f attestation statement missing sig")
	}

	ad, err := ParseAuthenticatorData(authData)
	if err != nil || ad.AttestedCredentialData == nil {
		return "", fmt.Errorf("failed to read attested credential data for fido-u2f: %w", err)
	}

	publicKeyU2F := append([]byte{0x04}, append(append([]byte{}, credentialKey.X...), credentialKey.Y...)...)
	signedData := concat(
		[]byte{0x00},
		ad.RPIDHash,
		clientDataHash,
		ad.AttestedCredentialData.CredentialID,
		publicKeyU2F,
	)

	if err := verifyWithCertificate(leaf, int64(AlgES256), signedData, sig); err != nil {
		return "", err
	}
	return AttestationTypeBasic, nil
}

// verifyAndroidKey implements WebAuthn Level 3 §8.4's signature check. Parsing of the
// key-attestation certificate extension (to bind the device's locked bootloader state and
// verified-boot status) is deliberately not implemented: that extension expresses device
// provenance, which is explicit Non-goal territory alongside trust-chain/MDS validation.
func verifyAndroidKey(attStmt map[string]interface{}, authData, clientDataHash []byte) (AttestationType, error) {
	alg, sig, err := readAlgAndSig(attStmt)
	if err != nil {
		return "", err
	}
	x5c, ok := attStmt["x5c"]
	if !ok {
		return "", errors.New("android-key attestation statement missing x5c")
	}
	leaf, err := leafCertFromX5C(x5c)
	if err != nil {
		return "", err
	}
	signedData := concat(authData, clientDataHash)
	if err := verifyWithCertificate(leaf, alg, signedData, sig); err != nil {
		return "", err
	}
	return AttestationTypeBasic, nil
}

// verifyAndroidSafetyNet implements the structural half of WebAuthn Level 3 §8.5: it parses
// the compact JWS response and verifies its signature against the embedded certificate chain.
// Validating the SafetyNet attestation's nonce, ctsProfileMatch and basicIntegrity claims
// requires reaching Google's live verdict service and is out of scope here.
func verifyAndroidSafetyNet(attStmt map[string]interface{}, authData, clientDataHash []byte) (AttestationType, error) {
	response, ok := attStmt["response"].([]byte)
	if !ok {
		return "", errors.New("android-safetynet attestation statement missing response")
	}

	parts := strings.Split(string(response), ".")
	if len(parts) != 3 {
		return "", errors.New("android-safetynet response is not a compact JWS")
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("failed to decode JWS header: %w", err)
	}
	var header struct {
		Alg string   `json:"alg"`
		X5C []string `json:"x5c"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return "", fmt.Errorf("failed to parse JWS header: %w", err)
	}
	if len(header.X5C) == 0 {
		return "", errors.New("android-safetynet JWS header missing x5c")
	}

	leafDER, err := base64.StdEncoding.DecodeString(header.X5C[0])
	if err != nil {
		return "", fmt.Errorf("failed to decode JWS leaf certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return "", fmt.Errorf("failed to parse JWS leaf certificate: %w", err)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("failed to decode JWS signature: %w", err)
	}

	alg, err := safetyNetAlgFromJWSAlg(header.Alg)
	if err != nil {
		return "", err
	}

	signedData := []byte(parts[0] + "." + parts[1])
	if err := verifyWithCertificate(leaf, alg, signedData, sig); err != nil {
		return "", err
	}

	_ = authData
	_ = clientDataHash
	return AttestationTypeBasic, nil
}

func safetyNetAlgFromJWSAlg(alg string) (int64, error) {
	switch alg {
	case "RS256":
		return int64(AlgRS256), nil
	case "ES256":
		return int64(AlgES256), nil
	default:
		return 0, fmt.Errorf("unsupported SafetyNet JWS algorithm: %s", alg)
	}
}

// appleNonceExtensionOID is the Apple anonymous attestation nonce extension, asserted to
// contain SHA-256(authData || clientDataHash) inside the leaf certificate.
var appleNonceExtensionOID = asn1.ObjectIdentifier{1, 2, 840, 113635, 100, 8, 2}

// verifyApple implements WebAuthn Level 3 §8.8: the leaf certificate's nonce extension must
// equal SHA-256(authData || clientDataHash); there is no separate "sig" to verify.
func verifyApple(attStmt map[string]interface{}, authData, clientDataHash []byte) (AttestationType, error) {
	x5c, ok := attStmt["x5c"]
	if !ok {
		return "", errors.New("apple attestation statement missing x5c")
	}
	leaf, err := leafCertFromX5C(x5c)
	if err != nil {
		return "", err
	}

	expected := sha256.Sum256(concat(authData, clientDataHash))

	for _, ext := range leaf.Extensions {
		if !ext.Id.Equal(appleNonceExtensionOID) {
			continue
		}
		var wrapper struct {
			Nonce []byte `asn1:"tag:1"`
		}
		if _, err := asn1.Unmarshal(ext.Value, &wrapper); err != nil {
			return "", fmt.Errorf("failed to parse apple nonce extension: %w", err)
		}
		if !bytes.Equal(wrapper.Nonce, expected[:]) {
			return "", errors.New("apple attestation nonce does not match authData/clientDataHash")
		}
		return AttestationTypeAnonCA, nil
	}

	return "", errors.New("apple attestation leaf certificate missing nonce extension")
}

func readAlgAndSig(attStmt map[string]interface{}) (int64, []byte, error) {
	algVal, ok := attStmt["alg"]
	if !ok {
		return 0, nil, errors.New("attestation statement missing alg")
	}
	alg, ok := toInt64(algVal)
	if !ok {
		return 0, nil, errors.New("attestation statement alg is not an integer")
	}

	sig, ok := attStmt["sig"].([]byte)
	if !ok {
		return 0, nil, errors.New("attestation statement missing sig")
	}

	return alg, sig, nil
}

func leafCertFromX5C(x5c interface{}) (*x509.Certificate, error) {
	chain, ok := x5c.([]interface{})
	if !ok || len(chain) == 0 {
		return nil, errors.New("x5c is not a non-empty array")
	}
	leafDER, ok := chain[0].([]byte)
	if !ok {
		return nil, errors.New("x5c[0] is not a byte string")
	}
	cert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaf certificate: %w", err)
	}
	return cert, nil
}

func verifyWithCertificate(cert *x509.Certificate, alg int64, signedData, sig []byte) error {
	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if ok {
		key := &COSEKey{KeyType: coseKtyEC2, Algorithm: COSEAlgorithmIdentifier(alg), X: pub.X.Bytes(), Y: pub.Y.Bytes()}
		switch pub.Curve.Params().BitSize {
		case 256:
			key.Curve = coseCrvP256
		case 384:
			key.Curve = coseCrvP384
		case 521:
			key.Curve = coseCrvP521
		}
		return VerifySignature(key, COSEAlgorithmIdentifier(alg), signedData, sig)
	}

	if rsaPub, ok := cert.PublicKey.(*rsa.PublicKey); ok {
		key := &COSEKey{
			KeyType:   coseKtyRSA,
			Algorithm: COSEAlgorithmIdentifier(alg),
			Modulus:   rsaPub.N.Bytes(),
			Exponent:  big.NewInt(int64(rsaPub.E)).Bytes(),
		}
		return VerifySignature(key, COSEAlgorithmIdentifier(alg), signedData, sig)
	}

	return fmt.Errorf("unsupported certificate public key type %T", cert.PublicKey)
}

func concat(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	return buf.Bytes()
}
