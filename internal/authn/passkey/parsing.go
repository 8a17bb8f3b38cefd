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

package passkey

import (
	"fmt"

	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

// parseAssertionResponse reassembles the base64url fields the client posts to
// /login/webauthn into a parsedCredentialAssertionData ready for webauthnService.ValidateLogin
// or ValidatePasskeyLogin. An empty userHandleB64 (the resident-key-less case) yields a nil
// UserHandle rather than a zero-length slice, matching how the passkey.create() response
// encodes "no handle returned".
func parseAssertionResponse(
	credentialID, credType, clientDataB64, authDataB64, sigB64, userHandleB64 string,
) (*parsedCredentialAssertionData, error) {
	rawID, err := protocol.DecodeBase64(credentialID)
	if err != nil {
		return nil, fmt.Errorf("invalid credential id: %w", err)
	}

	clientDataJSON, err := protocol.DecodeBase64(clientDataB64)
	if err != nil {
		return nil, fmt.Errorf("invalid client data: %w", err)
	}

	authDataRaw, err := protocol.DecodeBase64(authDataB64)
	if err != nil {
		return nil, fmt.Errorf("invalid authenticator data: %w", err)
	}

	signature, err := protocol.DecodeBase64(sigB64)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	var userHandle []byte
	if userHandleB64 != "" {
		userHandle, err = protocol.DecodeBase64(userHandleB64)
		if err != nil {
			return nil, fmt.Errorf("invalid user handle: %w", err)
		}
	}

	clientData, err := protocol.ParseClientData(clientDataJSON)
	if err != nil {
		return nil, fmt.Errorf("invalid client data json: %w", err)
	}

	authData, err := protocol.ParseAuthenticatorData(authDataRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid authenticator data: %w", err)
	}

	return &parsedCredentialAssertionData{
		ParsedPublicKeyCredential: protocol.ParsedPublicKeyCredential{
			RawID: rawID,
			ParsedCredential: protocol.ParsedCredential{
				ID:   credentialID,
				Type: protocol.CredentialType(credType),
			},
		},
		Response: protocol.ParsedAssertionResponse{
			CollectedClientData: *clientData,
			AuthenticatorData:   *authData,
			Signature:           signature,
			UserHandle:          userHandle,
		},
		Raw: protocol.CredentialAssertionResponse{
			AssertionResponse: protocol.AuthenticatorAssertionResponse{
				AuthenticatorResponse: protocol.AuthenticatorResponse{ClientDataJSON: clientDataJSON},
				AuthenticatorData:     authDataRaw,
				Signature:             signature,
				UserHandle:            userHandle,
			},
		},
	}, nil
}

// parseAttestationResponse reassembles the base64url/CBOR fields the client posts to
// /webauthn/register into a parsedCredentialCreationData ready for webauthnService.CreateCredential.
func parseAttestationResponse(
	credentialID, credType, clientDataB64, attestationB64 string,
) (*parsedCredentialCreationData, error) {
	rawID, err := protocol.DecodeBase64(credentialID)
	if err != nil {
		return nil, fmt.Errorf("invalid credential id: %w", err)
	}

	clientDataJSON, err := protocol.DecodeBase64(clientDataB64)
	if err != nil {
		return nil, fmt.Errorf("invalid client data: %w", err)
	}

	attestationObjectRaw, err := protocol.DecodeBase64(attestationB64)
	if err != nil {
		return nil, fmt.Errorf("invalid attestation object: %w", err)
	}

	clientData, err := protocol.ParseClientData(clientDataJSON)
	if err != nil {
		return nil, fmt.Errorf("invalid client data json: %w", err)
	}

	var attestationObject protocol.AttestationObject
	if err := protocol.UnmarshalAttestationObject(attestationObjectRaw, &attestationObject); err != nil {
		return nil, fmt.Errorf("invalid attestation object cbor: %w", err)
	}

	return &parsedCredentialCreationData{
		ID:    credentialID,
		RawID: rawID,
		Type:  protocol.CredentialType(credType),
		Response: protocol.ParsedCreationResponse{
			ClientDataJSON:          clientDataJSON,
			AttestationObject:       attestationObjectRaw,
			CollectedClientData:     *clientData,
			AttestationObjectParsed: attestationObject,
		},
		Raw: protocol.CredentialCreationResponse{
			ID:    credentialID,
			RawID: credentialID,
			Type:  protocol.CredentialType(credType),
			Response: protocol.AuthenticatorAttestationResponse{
				ClientDataJSON:    clientDataB64,
				AttestationObject: attestationB64,
			},
		},
	}, nil
}
