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
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ParseCredentialCreationResponseBytes parses the JSON registration response from the client.
func ParseCredentialCreationResponseBytes(data []byte) (*ParsedCredentialCreationData, error) {
	var rawResponse struct {
		ID       string         `json:"id"`
		RawID    string         `json:"rawId"`
		Type     CredentialType `json:"type"`
		Response struct {
			ClientDataJSON    string `json:"clientDataJSON"`
			AttestationObject string `json:"attestationObject"`
		} `json:"response"`
	}

	if err := json.Unmarshal(data, &rawResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	rawIDBytes, err := DecodeBase64(rawResponse.RawID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rawId: %w", err)
	}

	clientDataBytes, err := DecodeBase64(rawResponse.Response.ClientDataJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode clientDataJSON: %w", err)
	}

	attestationObjectBytes, err := DecodeBase64(rawResponse.Response.AttestationObject)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attestationObject: %w", err)
	}

	clientData, err := ParseClientData(clientDataBytes)
	if err != nil {
		return nil, err
	}

	var attestationObject AttestationObject
	if err := UnmarshalAttestationObject(attestationObjectBytes, &attestationObject); err != nil {
		return nil, fmt.Errorf("failed to parse attestationObject: %w", err)
	}

	return &ParsedCredentialCreationData{
		ID:    rawResponse.ID,
		RawID: rawIDBytes,
		Type:  rawResponse.Type,
		Response: ParsedCreationResponse{
			ClientDataJSON:          clientDataBytes,
			AttestationObject:       attestationObjectBytes,
			CollectedClientData:     *clientData,
			AttestationObjectParsed: attestationObject,
		},
	}, nil
}

// ParseCredentialRequestResponseBytes parses the JSON authentication response from the client.
func ParseCredentialRequestResponseBytes(data []byte) (*ParsedCredentialAssertionData, error) {
	var rawResponse struct {
		ID       string         `json:"id"`
		RawID    string         `json:"rawId"`
		Type     CredentialType `json:"type"`
		Response struct {
			ClientDataJSON    string `json:"clientDataJSON"`
			AuthenticatorData string `json:"authenticatorData"`
			Signature         string `json:"signature"`
			UserHandle        string `json:"userHandle"`
		} `json:"response"`
	}

	if err := json.Unmarshal(data, &rawResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	rawIDBytes, err := DecodeBase64(rawResponse.RawID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rawId: %w", err)
	}

	clientDataBytes, err := DecodeBase64(rawResponse.Response.ClientDataJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode clientDataJSON: %w", err)
	}

	authDataBytes, err := DecodeBase64(rawResponse.Response.AuthenticatorData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode authenticatorData: %w", err)
	}

	sigBytes, err := DecodeBase64(rawResponse.Response.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}

	var userHandleBytes []byte
	if rawResponse.Response.UserHandle != "" {
		userHandleBytes, err = DecodeBase64(rawResponse.Response.UserHandle)
		if err != nil {
			return nil, fmt.Errorf("failed to decode userHandle: %w", err)
		}
	}

	clientData, err := ParseClientData(clientDataBytes)
	if err != nil {
		return nil, err
	}

	authData, err := ParseAuthenticatorData(authDataBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authenticatorData: %w", err)
	}

	return &ParsedCredentialAssertionData{
		ParsedPublicKeyCredential: ParsedPublicKeyCredential{
			RawID: rawIDBytes,
			ParsedCredential: ParsedCredential{
				ID:   rawResponse.ID,
				Type: rawResponse.Type,
			},
		},
		Response: ParsedAssertionResponse{
			CollectedClientData: *clientData,
			AuthenticatorData:   *authData,
			Signature:           sigBytes,
			UserHandle:          userHandleBytes,
		},
		Raw: CredentialAssertionResponse{
			AssertionResponse: AuthenticatorAssertionResponse{
				AuthenticatorResponse: AuthenticatorResponse{ClientDataJSON: clientDataBytes},
				AuthenticatorData:     authDataBytes,
				Signature:             sigBytes,
				UserHandle:            userHandleBytes,
			},
		},
	}, nil
}

// DecodeBase64 decodes a wire-format Bytes field, tolerating the three base64 variants seen
// in the wild (unpadded URL-safe, standard padded, and padded URL-safe) since browsers and
// some authenticator libraries disagree on which one they emit.
func DecodeBase64(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// EncodeBase64 encodes bytes using the canonical unpadded base64url alphabet required for
// all Bytes-typed fields on the wire.
func EncodeBase64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
