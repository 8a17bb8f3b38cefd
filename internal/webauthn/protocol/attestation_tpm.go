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
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/google/go-tpm/tpm2"
)

// verifyTPM implements the signature and public-area binding half of WebAuthn Level 3 §8.3:
// it decodes the TPMT_PUBLIC and TPMS_ATTEST structures, confirms the attested name matches
// the public area, confirms extraData equals SHA-256(authData || clientDataHash), and verifies
// the certify signature against the AIK certificate. EK certificate chain / TPM vendor
// metadata validation is out of scope alongside other attestation trust-chain checks.
func verifyTPM(
	attStmt map[string]interface{}, authData, clientDataHash []byte, credentialKey *COSEKey,
) (AttestationType, error) {
	ver, _ := attStmt["ver"].(string)
	if ver != "2.0" {
		return "", fmt.Errorf("unsupported TPM attestation version: %q", ver)
	}

	alg, sig, err := readAlgAndSig(attStmt)
	if err != nil {
		return "", err
	}

	pubAreaBytes, ok := attStmt["pubArea"].([]byte)
	if !ok {
		return "", errors.New("tpm attestation statement missing pubArea")
	}
	certInfoBytes, ok := attStmt["certInfo"].([]byte)
	if !ok {
		return "", errors.New("tpm attestation statement missing certInfo")
	}

	pubArea, err := tpm2.DecodePublic(pubAreaBytes)
	if err != nil {
		return "", fmt.Errorf("failed to decode TPM public area: %w", err)
	}
	if err := verifyTPMPublicAreaMatchesCredential(pubArea, credentialKey); err != nil {
		return "", err
	}

	attestationData, err := tpm2.DecodeAttestationData(certInfoBytes)
	if err != nil {
		return "", fmt.Errorf("failed to decode TPM attestation data: %w", err)
	}
	if attestationData.Type != tpm2.TagAttestCertify {
		return "", fmt.Errorf("unexpected TPM attestation tag: %v", attestationData.Type)
	}

	expectedExtraData := sha256.Sum256(concat(authData, clientDataHash))
	if !bytes.Equal(attestationData.ExtraData, expectedExtraData[:]) {
		return "", errors.New("tpm attestation extraData does not match authData/clientDataHash")
	}

	pubAreaName, err := pubArea.Name()
	if err != nil {
		return "", fmt.Errorf("failed to compute TPM public area name: %w", err)
	}
	if !bytes.Equal(pubAreaName.Digest.Value, attestationData.AttestedCertifyInfo.Name.Digest.Value) {
		return "", errors.New("tpm attested name does not match pubArea")
	}

	x5c, ok := attStmt["x5c"]
	if !ok {
		return "", errors.New("tpm attestation statement missing x5c")
	}
	leaf, err := leafCertFromX5C(x5c)
	if err != nil {
		return "", err
	}
	if err := verifyWithCertificate(leaf, alg, certInfoBytes, sig); err != nil {
		return "", err
	}

	return AttestationTypeAttCA, nil
}

func verifyTPMPublicAreaMatchesCredential(pubArea tpm2.Public, credentialKey *COSEKey) error {
	switch pubArea.Type {
	case tpm2.AlgECC:
		if pubArea.ECCParameters == nil || pubArea.ECCParameters.Point.XRaw == nil {
			return errors.New("tpm public area missing ECC point")
		}
		if !bytes.Equal(pubArea.ECCParameters.Point.XRaw, credentialKey.X) ||
			!bytes.Equal(pubArea.ECCParameters.Point.YRaw, credentialKey.Y) {
			return errors.New("tpm public area EC point does not match credential public key")
		}
	case tpm2.AlgRSA:
		if pubArea.RSAParameters == nil {
			return errors.New("tpm public area missing RSA parameters")
		}
		if !bytes.Equal(pubArea.RSAParameters.ModulusRaw, credentialKey.Modulus) {
			return errors.New("tpm public area modulus does not match credential public key")
		}
	default:
		return fmt.Errorf("unsupported TPM public area algorithm: %v", pubArea.Type)
	}
	return nil
}
