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
	"github.com/nexusauth/webauthn-rp/internal/webauthn"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

// defaultWebAuthnService is the production webauthnService: a thin adapter that forwards
// every call straight to the underlying ceremony engine, bound once to this relying party's
// ID, display name and allowed origins.
type defaultWebAuthnService struct {
	engine *webauthn.WebAuthn
}

// NewDefaultWebAuthnService builds the production ceremony engine for wiring from cmd/server.
// The returned value's type is deliberately unexported; callers outside this package only
// ever pass it straight into NewHandler.
func NewDefaultWebAuthnService(rpID, rpName string, origins []string) (webauthnService, error) {
	return newDefaultWebAuthnService(rpID, rpName, origins)
}

// newDefaultWebAuthnService builds the ceremony engine for one relying party. origins must
// list every scheme+host the RP accepts WebAuthn responses from (spec.md §2, RelyingPartyConfig).
func newDefaultWebAuthnService(rpID, rpName string, origins []string) (webauthnService, error) {
	engine, err := webauthn.New(&webauthn.Config{
		RPID:          rpID,
		RPDisplayName: rpName,
		RPOrigins:     origins,
	})
	if err != nil {
		return nil, err
	}

	return &defaultWebAuthnService{engine: engine}, nil
}

func (s *defaultWebAuthnService) BeginRegistration(
	user webauthnUserInterface, opts ...webauthn.RegistrationOption,
) (*protocol.CredentialCreation, *sessionData, error) {
	return s.engine.BeginRegistration(user, opts...)
}

func (s *defaultWebAuthnService) CreateCredential(
	user webauthnUserInterface, session sessionData, response *parsedCredentialCreationData,
) (*webauthnCredential, error) {
	return s.engine.CreateCredential(user, session, response)
}

func (s *defaultWebAuthnService) BeginLogin(
	user webauthnUserInterface, opts ...webauthn.LoginOption,
) (*protocol.CredentialAssertion, *sessionData, error) {
	return s.engine.BeginLogin(user, opts...)
}

func (s *defaultWebAuthnService) BeginDiscoverableLogin(
	opts ...webauthn.LoginOption,
) (*protocol.CredentialAssertion, *sessionData, error) {
	return s.engine.BeginDiscoverableLogin(opts...)
}

func (s *defaultWebAuthnService) ValidateLogin(
	user webauthnUserInterface, session sessionData, response *parsedCredentialAssertionData,
) (*webauthnCredential, error) {
	return s.engine.ValidateLogin(user, session, response)
}

func (s *defaultWebAuthnService) ValidatePasskeyLogin(
	userHandler func(rawID, userHandle []byte) (webauthnUserInterface, error),
	session sessionData,
	response *parsedCredentialAssertionData,
) (webauthnUserInterface, *webauthnCredential, error) {
	return s.engine.ValidatePasskeyLogin(userHandler, session, response)
}
