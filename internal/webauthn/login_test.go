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

package webauthn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

const loginFixtureChallenge = "login-challenge-5V8qz1nN3xQJwv7hQm"

func TestValidateLogin_HappyPath(t *testing.T) {
	engine := newTestEngine(t)
	reg := newRegistrationFixture(t, fixtureRPID, fixtureOrigin, fixtureChallenge)
	assertion := newAssertionFixture(t, reg, fixtureRPID, fixtureOrigin, loginFixtureChallenge, flagsUPUV, 1)

	user := &fixtureUser{creds: []Credential{{ID: reg.credentialID, PublicKey: reg.coseKey}}}
	session := SessionData{Challenge: loginFixtureChallenge, UserVerification: protocol.VerificationPreferred}

	credential, err := engine.ValidateLogin(user, session, assertion)
	require.NoError(t, err)
	assert.EqualValues(t, 1, credential.Authenticator.SignCount)
}

func TestValidateLogin_SignCountRegression(t *testing.T) {
	engine := newTestEngine(t)
	reg := newRegistrationFixture(t, fixtureRPID, fixtureOrigin, fixtureChallenge)
	assertion := newAssertionFixture(t, reg, fixtureRPID, fixtureOrigin, loginFixtureChallenge, flagsUPUV, 3)

	user := &fixtureUser{creds: []Credential{{
		ID: reg.credentialID, PublicKey: reg.coseKey, Authenticator: Authenticator{SignCount: 5},
	}}}
	session := SessionData{Challenge: loginFixtureChallenge, UserVerification: protocol.VerificationPreferred}

	_, err := engine.ValidateLogin(user, session, assertion)
	assert.ErrorIs(t, err, ErrSignCountRegression)
}

func TestValidateLogin_UnsupportedAlgorithm(t *testing.T) {
	engine := newTestEngine(t)
	reg := newRegistrationFixture(t, fixtureRPID, fixtureOrigin, fixtureChallenge)
	assertion := newAssertionFixture(t, reg, fixtureRPID, fixtureOrigin, loginFixtureChallenge, flagsUPUV, 1)

	// The stored COSE key claims an algorithm with no registered verifier; the assertion's
	// own signature bytes never need inspecting since dispatch fails before verification.
	unsupportedKey := buildEC2COSEKey(t, make([]byte, 32), make([]byte, 32), protocol.AlgRS1)
	user := &fixtureUser{creds: []Credential{{ID: reg.credentialID, PublicKey: unsupportedKey}}}
	session := SessionData{Challenge: loginFixtureChallenge, UserVerification: protocol.VerificationPreferred}

	_, err := engine.ValidateLogin(user, session, assertion)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestValidateLogin_UnknownCredential(t *testing.T) {
	engine := newTestEngine(t)
	reg := newRegistrationFixture(t, fixtureRPID, fixtureOrigin, fixtureChallenge)
	assertion := newAssertionFixture(t, reg, fixtureRPID, fixtureOrigin, loginFixtureChallenge, flagsUPUV, 1)

	user := &fixtureUser{} // no credentials registered
	session := SessionData{Challenge: loginFixtureChallenge, UserVerification: protocol.VerificationPreferred}

	_, err := engine.ValidateLogin(user, session, assertion)
	assert.ErrorIs(t, err, ErrUnknownCredential)
}

func TestValidateLogin_WrongChallenge(t *testing.T) {
	engine := newTestEngine(t)
	reg := newRegistrationFixture(t, fixtureRPID, fixtureOrigin, fixtureChallenge)
	assertion := newAssertionFixture(t, reg, fixtureRPID, fixtureOrigin, loginFixtureChallenge, flagsUPUV, 1)

	user := &fixtureUser{creds: []Credential{{ID: reg.credentialID, PublicKey: reg.coseKey}}}
	session := SessionData{Challenge: "a-different-challenge", UserVerification: protocol.VerificationPreferred}

	_, err := engine.ValidateLogin(user, session, assertion)
	assert.ErrorIs(t, err, ErrChallengeMismatch)
}

func TestValidateLogin_BadSignature(t *testing.T) {
	engine := newTestEngine(t)
	reg := newRegistrationFixture(t, fixtureRPID, fixtureOrigin, fixtureChallenge)
	assertion := newAssertionFixture(t, reg, fixtureRPID, fixtureOrigin, loginFixtureChallenge, flagsUPUV, 1)
	assertion.Raw.AssertionResponse.Signature[0] ^= 0xff

	user := &fixtureUser{creds: []Credential{{ID: reg.credentialID, PublicKey: reg.coseKey}}}
	session := SessionData{Challenge: loginFixtureChallenge, UserVerification: protocol.VerificationPreferred}

	_, err := engine.ValidateLogin(user, session, assertion)
	assert.ErrorIs(t, err, ErrBadSignature)
}
