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

// Package webauthn implements the relying-party half of the WebAuthn Level 3 ceremony:
// registration and authentication verification against a caller-supplied credential store.
package webauthn

import (
	"time"

	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

// User projects an application principal onto the fields the ceremony verifier needs. The
// application owns everything else about the principal; this interface stays pure per the
// "interface-for-user-entity" redesign note.
type User interface {
	WebAuthnID() []byte
	WebAuthnName() string
	WebAuthnDisplayName() string
	WebAuthnCredentials() []Credential
}

// Credential is the in-memory shape of a CredentialRecord (data model §3), the unit the
// ceremony verifier accepts from and returns to the credential store.
type Credential struct {
	ID                        []byte
	PublicKey                 []byte
	AttestationType           protocol.AttestationType
	Transports                []string
	AttestationObject         []byte
	AttestationClientDataJSON []byte
	UserHandle                []byte
	Label                     string
	Authenticator             Authenticator
	Created                   time.Time
	LastUsed                  time.Time
}

// Authenticator mirrors the per-credential authenticator state tracked across ceremonies.
type Authenticator struct {
	AAGUID         []byte
	SignCount      uint32
	UVInitialized  bool
	BackupEligible bool
	BackupState    bool
	CloneWarning   bool
	Attachment     protocol.AuthenticatorAttachment
}

// SessionData is the ceremony-scoped state persisted by the challenge store between the
// options call and the verification call (§4.8). Its lifetime is single-use: the store's
// loadAndConsume contract removes it on read regardless of verification outcome.
type SessionData struct {
	Challenge            string
	UserID               []byte
	AllowedCredentialIDs [][]byte
	UserVerification     protocol.UserVerificationRequirement
	Extensions           protocol.AuthenticationExtensions

	RelyingPartyID string
	Expires        time.Time
	CredParams     []protocol.CredentialParameter
	Mediation      protocol.CredentialMediationRequirement
}

// RegistrationOption configures a PublicKeyCredentialCreationOptions before it is returned
// to the client.
type RegistrationOption func(*protocol.CredentialCreation)

// LoginOption configures a PublicKeyCredentialRequestOptions before it is returned to the
// client.
type LoginOption func(*protocol.CredentialAssertion)
