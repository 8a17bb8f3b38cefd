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
	"encoding/binary"
	"fmt"
)

// maxCredentialIDLength is the largest credentialIdLength this relying party accepts. A
// 10-bit length range (0-1023) is plenty for every authenticator in the wild; anything larger
// is treated as malformed input rather than a legitimately long identifier.
const maxCredentialIDLength = 1023

// ParseAuthenticatorData decodes the full authenticator data structure: the fixed 37-byte
// prefix, the optional attested credential data block (present when the AT flag is set) and
// the optional CBOR extensions map (present when the ED flag is set).
func ParseAuthenticatorData(data []byte) (*AuthenticatorData, error) {
	if len(data) < 37 {
		return nil, fmt.Errorf("authenticator data too short: got %d bytes, need at least 37", len(data))
	}

	ad := &AuthenticatorData{
		RPIDHash: append([]byte(nil), data[:32]...),
		Flags:    AuthenticatorFlags(data[32]),
		Counter:  binary.BigEndian.Uint32(data[33:37]),
	}

	offset := 37

	if ad.Flags.HasAttestedCredentialData() {
		acd, consumed, err := parseAttestedCredentialData(data[offset:])
		if err != nil {
			return nil, err
		}
		ad.AttestedCredentialData = acd
		offset += consumed
	}

	if ad.Flags.HasExtensionData() {
		if offset >= len(data) {
			return nil, fmt.Errorf("extension data flag set but no extension bytes present")
		}
		val, consumed, err := UnmarshalNext(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode extensions: %w", err)
		}
		ad.ExtensionsRaw = append([]byte(nil), data[offset:offset+consumed]...)
		offset += consumed

		ext, err := toAuthenticationExtensions(val)
		if err != nil {
			return nil, err
		}
		ad.Extensions = ext
	}

	if offset != len(data) {
		return nil, fmt.Errorf("authenticator data has %d trailing bytes after parsing", len(data)-offset)
	}

	return ad, nil
}

func parseAttestedCredentialData(data []byte) (*AttestedCredentialData, int, error) {
	const prefixLen = 16 + 2
	if len(data) < prefixLen {
		return nil, 0, fmt.Errorf("attested credential data too short for aaguid and length prefix")
	}

	aaguid := append([]byte(nil), data[:16]...)
	credIDLen := binary.BigEndian.Uint16(data[16:18])
	if credIDLen > maxCredentialIDLength {
		return nil, 0, fmt.Errorf("credentialIdLength %d exceeds maximum of %d", credIDLen, maxCredentialIDLength)
	}

	offset := prefixLen
	if len(data) < offset+int(credIDLen) {
		return nil, 0, fmt.Errorf("attested credential data too short for credential id")
	}
	credentialID := append([]byte(nil), data[offset:offset+int(credIDLen)]...)
	offset += int(credIDLen)

	_, keyLen, err := UnmarshalNext(data[offset:])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode credential public key: %w", err)
	}
	publicKey := append([]byte(nil), data[offset:offset+keyLen]...)
	offset += keyLen

	return &AttestedCredentialData{
		AAGUID:              aaguid,
		CredentialID:        credentialID,
		CredentialPublicKey: publicKey,
	}, offset, nil
}

// toAuthenticationExtensions normalizes a decoded CBOR extensions map into the string-keyed
// representation exposed to callers; non-map decoded values are rejected as malformed.
func toAuthenticationExtensions(val interface{}) (AuthenticationExtensions, error) {
	ext := make(AuthenticationExtensions)
	switch m := val.(type) {
	case map[int64]interface{}:
		for k, v := range m {
			ext[fmt.Sprintf("%d", k)] = v
		}
	case map[interface{}]interface{}:
		for k, v := range m {
			ext[fmt.Sprintf("%v", k)] = v
		}
	default:
		return nil, fmt.Errorf("extensions is not a CBOR map")
	}
	return ext, nil
}
