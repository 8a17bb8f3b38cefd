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

// Package passkey adapts the generic internal/webauthn ceremony engine onto this service's
// own user/session types, the collaborator layer spec.md §1 calls out as out of scope for
// the core verifier.
package passkey

import (
	"github.com/nexusauth/webauthn-rp/internal/webauthn"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

type (
	sessionData                  = webauthn.SessionData
	webauthnCredential            = webauthn.Credential
	webauthnUserInterface         = webauthn.User
	parsedCredentialAssertionData = protocol.ParsedCredentialAssertionData
	parsedCredentialCreationData  = protocol.ParsedCredentialCreationData
)

// webauthnService is the narrow surface the HTTP handler depends on; defaultWebAuthnService
// is the only production implementation.
type webauthnService interface {
	BeginRegistration(user webauthnUserInterface, opts ...webauthn.RegistrationOption) (
		*protocol.CredentialCreation, *sessionData, error)
	CreateCredential(user webauthnUserInterface, session sessionData, response *parsedCredentialCreationData) (
		*webauthnCredential, error)
	BeginLogin(user webauthnUserInterface, opts ...webauthn.LoginOption) (
		*protocol.CredentialAssertion, *sessionData, error)
	BeginDiscoverableLogin(opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *sessionData, error)
	ValidateLogin(user webauthnUserInterface, session sessionData, response *parsedCredentialAssertionData) (
		*webauthnCredential, error)
	ValidatePasskeyLogin(
		userHandler func(rawID, userHandle []byte) (webauthnUserInterface, error),
		session sessionData,
		response *parsedCredentialAssertionData,
	) (webauthnUserInterface, *webauthnCredential, error)
}
