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

	"github.com/nexusauth/webauthn-rp/internal/system/log"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

const (
	minChallengeLength = 16
	maxUserHandleBytes = 64
	defaultTimeoutMs   = 60000
)

// BeginRegistration implements the options generator (§4.10) for registration: a fresh
// challenge of at least minChallengeLength random bytes, the accepted pubKeyCredParams, and
// excludeCredentials populated from the user's existing credentials so the client blocks
// re-registering the same authenticator.
func (w *WebAuthn) BeginRegistration(user User, opts ...RegistrationOption) (*protocol.CredentialCreation, *SessionData, error) {
	if len(user.WebAuthnID()) == 0 || len(user.WebAuthnID()) > maxUserHandleBytes {
		return nil, nil, fmt.Errorf("user handle must be non-empty and at most %d bytes", maxUserHandleBytes)
	}

	challenge := make([]byte, minChallengeLength*2)
	if _, err := rand.Read(challenge); err != nil {
		return nil, nil, fmt.Errorf("failed to generate challenge: %w", err)
	}

	params := make([]protocol.CredentialParameter, 0, len(w.Config.CredentialAlgorithms))
	for _, alg := range w.Config.CredentialAlgorithms {
		params = append(params, protocol.CredentialParameter{
			Type:      protocol.PublicKeyCredentialType,
			Algorithm: int(alg),
		})
	}

	var excludeCredentials []protocol.CredentialDescriptor
	for _, cred := range user.WebAuthnCredentials() {
		excludeCredentials = append(excludeCredentials, protocol.CredentialDescriptor{
			Type: protocol.PublicKeyCredentialType,
			ID:   cred.ID,
		})
	}

	creation := &protocol.CredentialCreation{
		Response: protocol.CreationResponse{
			RelyingParty: protocol.RelyingPartyEntity{
				ID:   w.Config.RPID,
				Name: w.Config.RPDisplayName,
			},
			User: protocol.NewUserEntity(user.WebAuthnID(), user.WebAuthnName(), user.WebAuthnDisplayName()),
			Challenge:             challenge,
			Parameters:            params,
			Timeout:               defaultTimeoutMs,
			CredentialExcludeList: excludeCredentials,
			Attestation:           protocol.PreferNoAttestation,
		},
	}

	for _, opt := range opts {
		opt(creation)
	}

	userVerification := protocol.VerificationPreferred
	if creation.Response.AuthenticatorSelection.UserVerification != "" {
		userVerification = creation.Response.AuthenticatorSelection.UserVerification
	}

	session := &SessionData{
		Challenge:        protocol.EncodeBase64(challenge),
		UserID:           user.WebAuthnID(),
		UserVerification: userVerification,
		CredParams:       params,
	}

	w.logger.Debug("issued registration options", log.String("userHandle", log.MaskString(string(user.WebAuthnID()))))

	return creation, session, nil
}

// CreateCredential implements the registration ceremony verifier (§4.5). It returns one of
// the flat ServiceError kinds from errors.go on any failed step; the first failing step
// short-circuits and every later step is skipped.
func (w *WebAuthn) CreateCredential(
	user User, session SessionData, response *protocol.ParsedCredentialCreationData,
) (*Credential, error) {
	clientDataHash := sha256.Sum256(response.Response.ClientDataJSON)

	// Step 3: validate client data.
	if err := protocol.ValidateClientData(
		&response.Response.CollectedClientData,
		protocol.ClientDataTypeCreate,
		session.Challenge,
		w.Config.RPOrigins,
		w.Config.AllowCrossOrigin,
	); err != nil {
		return nil, mapClientDataError(err)
	}

	// Step 4: the attestation object is already parsed by the caller via
	// protocol.ParseCredentialCreationResponseBytes.
	attestationObject := response.Response.AttestationObjectParsed
	authData, err := protocol.ParseAuthenticatorData(attestationObject.AuthData)
	if err != nil {
		w.logger.Warn("malformed authenticator data", log.Error(err))
		return nil, ErrMalformedAuthenticatorData
	}

	// Step 5: RP ID hash.
	rpIDHash := sha256.Sum256([]byte(w.Config.RPID))
	if !bytes.Equal(rpIDHash[:], authData.RPIDHash) {
		return nil, ErrRpIdHashMismatch
	}

	// Step 6: user presence.
	if !authData.Flags.UserPresent() {
		return nil, ErrUserPresenceMissing
	}

	// Step 7: user verification, if required.
	if session.UserVerification == protocol.VerificationRequired && !authData.Flags.UserVerified() {
		return nil, ErrUserVerificationRequired
	}

	// Step 8: BS implies BE.
	if authData.Flags.BackupState() && !authData.Flags.BackupEligible() {
		return nil, ErrInvalidFlagCombination
	}

	// Step 9: attested credential data must be present during registration.
	if !authData.Flags.HasAttestedCredentialData() || authData.AttestedCredentialData == nil {
		return nil, ErrAttestedCredentialDataMissing
	}

	credentialKey, err := protocol.ParseCOSEKey(authData.AttestedCredentialData.CredentialPublicKey)
	if err != nil {
		w.logger.Warn("malformed COSE credential key", log.Error(err))
		return nil, ErrMalformedInput
	}

	// Step 10: algorithm must be one the RP requested.
	if !algorithmAccepted(credentialKey.Algorithm, session.CredParams) {
		return nil, ErrUnrequestedAlgorithm
	}

	// Step 11: extension output policy.
	if w.Config.RejectUnsolicitedExtensions && len(authData.Extensions) > 0 && len(session.Extensions) == 0 {
		return nil, ErrMalformedInput
	}

	// Step 12: verify attestation statement.
	attestationType, err := protocol.VerifyAttestationStatement(
		attestationObject.Format,
		attestationObject.AttStatement,
		attestationObject.AuthData,
		clientDataHash[:],
		credentialKey,
	)
	if err != nil {
		w.logger.Warn("attestation verification failed",
			log.String("format", attestationObject.Format), log.Error(err))
		switch {
		case errors.Is(err, protocol.ErrUnsupportedAttestationFormat):
			return nil, ErrUnsupportedAttestationFormat
		default:
			return nil, ErrAttestationVerificationFailed
		}
	}

	// Step 13 (credential-uniqueness) is enforced by the caller against its credential store,
	// which alone has visibility across all users; the verifier cannot check it from its inputs.

	w.logger.Info("registration ceremony verified",
		log.String("format", attestationObject.Format),
		log.String("attestationType", string(attestationType)))

	return &Credential{
		ID:                        authData.AttestedCredentialData.CredentialID,
		PublicKey:                 authData.AttestedCredentialData.CredentialPublicKey,
		AttestationType:           attestationType,
		AttestationObject:         response.Response.AttestationObject,
		AttestationClientDataJSON: response.Response.ClientDataJSON,
		UserHandle:                user.WebAuthnID(),
		Authenticator: Authenticator{
			AAGUID:         authData.AttestedCredentialData.AAGUID,
			SignCount:      authData.Counter,
			UVInitialized:  authData.Flags.UserVerified(),
			BackupEligible: authData.Flags.BackupEligible(),
			BackupState:    authData.Flags.BackupState(),
		},
	}, nil
}

func algorithmAccepted(alg protocol.COSEAlgorithmIdentifier, params []protocol.CredentialParameter) bool {
	for _, p := range params {
		if protocol.COSEAlgorithmIdentifier(p.Algorithm) == alg {
			return true
		}
	}
	return false
}

func mapClientDataError(err error) error {
	switch {
	case errors.Is(err, protocol.ErrInvalidClientDataType):
		return ErrInvalidClientDataType
	case errors.Is(err, protocol.ErrChallengeMismatch):
		return ErrChallengeMismatch
	case errors.Is(err, protocol.ErrOriginMismatch):
		return ErrOriginMismatch
	case errors.Is(err, protocol.ErrCrossOriginDisallowed):
		return ErrCrossOriginDisallowed
	default:
		return ErrMalformedInput
	}
}
