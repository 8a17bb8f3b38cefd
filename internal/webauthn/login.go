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

package webauthn

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/nexusauth/webauthn-rp/internal/system/log"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

// BeginLogin implements the options generator (§4.10) for a known-user authentication
// ceremony, populating allowCredentials from the user's registered credentials.
func (w *WebAuthn) BeginLogin(user User, opts ...LoginOption) (*protocol.CredentialAssertion, *SessionData, error) {
	challenge := make([]byte, minChallengeLength*2)
	if _, err := rand.Read(challenge); err != nil {
		return nil, nil, fmt.Errorf("failed to generate challenge: %w", err)
	}

	assertion := &protocol.CredentialAssertion{
		Response: protocol.AssertionResponse{
			Challenge:        challenge,
			Timeout:          defaultTimeoutMs,
			RelyingPartyID:   w.Config.RPID,
			UserVerification: protocol.VerificationPreferred,
		},
	}

	for _, cred := range user.WebAuthnCredentials() {
		assertion.Response.AllowedCredentials = append(assertion.Response.AllowedCredentials, protocol.CredentialDescriptor{
			Type: protocol.PublicKeyCredentialType,
			ID:   cred.ID,
		})
	}

	for _, opt := range opts {
		opt(assertion)
	}

	session := &SessionData{
		Challenge:        protocol.EncodeBase64(challenge),
		UserID:           user.WebAuthnID(),
		UserVerification: assertion.Response.UserVerification,
	}
	for _, desc := range assertion.Response.AllowedCredentials {
		session.AllowedCredentialIDs = append(session.AllowedCredentialIDs, desc.ID)
	}

	return assertion, session, nil
}

// BeginDiscoverableLogin implements the options generator for a usernameless ceremony: no
// allowCredentials list, the user is resolved later from the assertion's userHandle.
func (w *WebAuthn) BeginDiscoverableLogin(opts ...LoginOption) (*protocol.CredentialAssertion, *SessionData, error) {
	challenge := make([]byte, minChallengeLength*2)
	if _, err := rand.Read(challenge); err != nil {
		return nil, nil, fmt.Errorf("failed to generate challenge: %w", err)
	}

	assertion := &protocol.CredentialAssertion{
		Response: protocol.AssertionResponse{
			Challenge:        challenge,
			Timeout:          defaultTimeoutMs,
			RelyingPartyID:   w.Config.RPID,
			UserVerification: protocol.VerificationPreferred,
		},
	}

	for _, opt := range opts {
		opt(assertion)
	}

	session := &SessionData{
		Challenge:        protocol.EncodeBase64(challenge),
		UserVerification: assertion.Response.UserVerification,
	}

	return assertion, session, nil
}

// ValidateLogin implements the authentication ceremony verifier (§4.6) for a credential
// already bound to a known user. Steps 1-4 (assertion parsing, allowCredentials/user-handle
// checks) partly depend on the caller's credential store; this method covers the full
// credential lookup against the user plus steps 5-13.
func (w *WebAuthn) ValidateLogin(
	user User, session SessionData, response *protocol.ParsedCredentialAssertionData,
) (*Credential, error) {
	var credential *Credential
	creds := user.WebAuthnCredentials()
	for i := range creds {
		if bytes.Equal(creds[i].ID, response.ParsedPublicKeyCredential.RawID) {
			credential = &creds[i]
			break
		}
	}
	if credential == nil {
		return nil, ErrUnknownCredential
	}

	if len(session.AllowedCredentialIDs) > 0 &&
		!credentialAllowed(response.ParsedPublicKeyCredential.RawID, session.AllowedCredentialIDs) {
		return nil, ErrCredentialNotAllowed
	}

	if response.Response.UserHandle != nil && !bytes.Equal(response.Response.UserHandle, credential.UserHandle) {
		return nil, ErrUserHandleMismatch
	}

	return w.verifyAssertion(session, response, credential)
}

// ValidatePasskeyLogin implements the discoverable-credential ceremony (§4.6 step 4's
// "resolve the user from the record" branch): the user is looked up via userHandler after
// the assertion identifies rawId/userHandle, then the normal assertion checks apply.
func (w *WebAuthn) ValidatePasskeyLogin(
	userHandler func(rawID, userHandle []byte) (User, error),
	session SessionData,
	response *protocol.ParsedCredentialAssertionData,
) (User, *Credential, error) {
	user, err := userHandler(response.ParsedPublicKeyCredential.RawID, response.Response.UserHandle)
	if err != nil {
		return nil, nil, ErrUnknownCredential
	}

	credential, err := w.ValidateLogin(user, session, response)
	if err != nil {
		return nil, nil, err
	}

	return user, credential, nil
}

func (w *WebAuthn) verifyAssertion(
	session SessionData, response *protocol.ParsedCredentialAssertionData, credential *Credential,
) (*Credential, error) {
	// Step 6: validate client data.
	if err := protocol.ValidateClientData(
		&response.Response.CollectedClientData,
		protocol.ClientDataTypeGet,
		session.Challenge,
		w.Config.RPOrigins,
		w.Config.AllowCrossOrigin,
	); err != nil {
		return nil, mapClientDataError(err)
	}

	authData := response.Response.AuthenticatorData

	// Step 7: RP ID hash.
	rpIDHash := sha256.Sum256([]byte(w.Config.RPID))
	if !bytes.Equal(rpIDHash[:], authData.RPIDHash) {
		return nil, ErrRpIdHashMismatch
	}

	// Step 8: presence/verification flags.
	if !authData.Flags.UserPresent() {
		return nil, ErrUserPresenceMissing
	}
	if session.UserVerification == protocol.VerificationRequired && !authData.Flags.UserVerified() {
		return nil, ErrUserVerificationRequired
	}

	// Step 9: BS implies BE.
	if authData.Flags.BackupState() && !authData.Flags.BackupEligible() {
		return nil, ErrInvalidFlagCombination
	}

	// Step 10: extension output policy.
	if w.Config.RejectUnsolicitedExtensions && len(authData.Extensions) > 0 && len(session.Extensions) == 0 {
		return nil, ErrMalformedInput
	}

	// Step 11: verify the signature over authData || clientDataHash.
	clientDataJSON := response.Raw.AssertionResponse.AuthenticatorResponse.ClientDataJSON
	clientDataHash := sha256.Sum256(clientDataJSON)
	signedData := append(append([]byte{}, response.Raw.AssertionResponse.AuthenticatorData...), clientDataHash[:]...)

	credentialKey, err := protocol.ParseCOSEKey(credential.PublicKey)
	if err != nil {
		w.logger.Warn("malformed stored COSE key", log.Error(err))
		return nil, ErrMalformedInput
	}

	if err := protocol.VerifySignature(
		credentialKey, credentialKey.Algorithm, signedData, response.Raw.AssertionResponse.Signature,
	); err != nil {
		w.logger.Warn("assertion signature verification failed", log.Error(err))
		switch {
		case errors.Is(err, protocol.ErrUnsupportedAlgorithm):
			return nil, ErrUnsupportedAlgorithm
		default:
			return nil, ErrBadSignature
		}
	}

	// Step 12: signature counter monotonicity (anti-clone guard).
	prev := credential.Authenticator.SignCount
	newCount := authData.Counter
	switch {
	case newCount > prev:
		credential.Authenticator.SignCount = newCount
	case newCount == 0 && prev == 0:
		// accepted, no update
	default:
		credential.Authenticator.CloneWarning = true
		return nil, ErrSignCountRegression
	}

	// Step 13.
	credential.LastUsed = time.Now().UTC()
	credential.Authenticator.BackupState = authData.Flags.BackupState()

	return credential, nil
}

func credentialAllowed(rawID []byte, allowed [][]byte) bool {
	for _, id := range allowed {
		if bytes.Equal(id, rawID) {
			return true
		}
	}
	return false
}
