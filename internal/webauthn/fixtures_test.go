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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/asn1"
	"encoding/binary"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

// Fixture identity matching the "Happy-path registration" scenario's challenge.
const (
	fixtureRPID      = "example.localhost"
	fixtureOrigin    = "https://example.localhost:8443"
	fixtureChallenge = "IBQnuY1Z0K1HqBoFWCp2xlJl8-oq_aFIXzyT_F0-0GU"
)

// authenticator data flag combinations used across scenario fixtures.
const (
	flagsUPUVAT   = 0x45 // user present, user verified, attested credential data
	flagsUVAT     = 0x44 // user verified, attested credential data, no user presence
	flagsUPAT     = 0x41 // user present, attested credential data, no user verification
	flagsUPUVBSAT = 0x55 // user present, user verified, backup state, attested credential data, no backup eligible
	flagsUPUV     = 0x05 // user present, user verified (assertion, no attested credential data)
)

type fixtureUser struct {
	id    []byte
	creds []Credential
}

func (u *fixtureUser) WebAuthnID() []byte                { return u.id }
func (u *fixtureUser) WebAuthnName() string              { return "alice" }
func (u *fixtureUser) WebAuthnDisplayName() string       { return "Alice" }
func (u *fixtureUser) WebAuthnCredentials() []Credential { return u.creds }

func newTestEngine(t *testing.T, origins ...string) *WebAuthn {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{fixtureOrigin}
	}
	engine, err := New(&Config{
		RPID:                 fixtureRPID,
		RPDisplayName:        "Fixture RP",
		RPOrigins:            origins,
		CredentialAlgorithms: []protocol.COSEAlgorithmIdentifier{protocol.AlgES256},
	})
	require.NoError(t, err)
	return engine
}

// registrationFixture bundles a self-consistent registration ceremony response together
// with the signing key backing it, so a matching assertion fixture can be built from it.
type registrationFixture struct {
	response     *protocol.ParsedCredentialCreationData
	privateKey   *ecdsa.PrivateKey
	coseKey      []byte
	credentialID []byte
}

func newRegistrationFixture(t *testing.T, rpID, origin, challenge string) *registrationFixture {
	t.Helper()
	return newRegistrationFixtureWithFlags(t, rpID, origin, challenge, flagsUPUVAT, "none")
}

func newRegistrationFixtureWithFlags(t *testing.T, rpID, origin, challenge string, flags byte, format string) *registrationFixture {
	t.Helper()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	x := make([]byte, 32)
	y := make([]byte, 32)
	privateKey.PublicKey.X.FillBytes(x)
	privateKey.PublicKey.Y.FillBytes(y)
	coseKey := buildEC2COSEKey(t, x, y, protocol.AlgES256)

	credentialID := []byte("fixture-credential-id")
	var attestedCredData []byte
	if flags&0x40 != 0 {
		attestedCredData = buildAttestedCredentialData(make([]byte, 16), credentialID, coseKey)
	}

	rpIDHash := sha256.Sum256([]byte(rpID))
	authData := buildAuthData(rpIDHash[:], flags, 0, attestedCredData)

	attObjBytes, err := cbor.Marshal(protocol.AttestationObject{
		Format:       format,
		AuthData:     authData,
		AttStatement: map[string]interface{}{},
	})
	require.NoError(t, err)

	clientDataJSON, err := json.Marshal(protocol.CollectedClientData{
		Type:      string(protocol.ClientDataTypeCreate),
		Challenge: challenge,
		Origin:    origin,
	})
	require.NoError(t, err)

	parsedClientData, err := protocol.ParseClientData(clientDataJSON)
	require.NoError(t, err)

	var attestationObject protocol.AttestationObject
	require.NoError(t, protocol.UnmarshalAttestationObject(attObjBytes, &attestationObject))

	response := &protocol.ParsedCredentialCreationData{
		RawID: credentialID,
		Type:  protocol.PublicKeyCredentialType,
		Response: protocol.ParsedCreationResponse{
			ClientDataJSON:          clientDataJSON,
			AttestationObject:       attObjBytes,
			CollectedClientData:     *parsedClientData,
			AttestationObjectParsed: attestationObject,
		},
		Raw: protocol.CredentialCreationResponse{
			Response: protocol.AuthenticatorAttestationResponse{
				ClientDataJSON:    protocol.EncodeBase64(clientDataJSON),
				AttestationObject: protocol.EncodeBase64(attObjBytes),
			},
		},
	}

	return &registrationFixture{
		response:     response,
		privateKey:   privateKey,
		coseKey:      coseKey,
		credentialID: credentialID,
	}
}

// newAssertionFixture builds an authentication ceremony response signed by reg's private
// key, with the given flags and signCount.
func newAssertionFixture(
	t *testing.T, reg *registrationFixture, rpID, origin, challenge string, flags byte, counter uint32,
) *protocol.ParsedCredentialAssertionData {
	t.Helper()

	rpIDHash := sha256.Sum256([]byte(rpID))
	authData := buildAuthData(rpIDHash[:], flags, counter, nil)

	clientDataJSON, err := json.Marshal(protocol.CollectedClientData{
		Type:      string(protocol.ClientDataTypeGet),
		Challenge: challenge,
		Origin:    origin,
	})
	require.NoError(t, err)

	clientDataHash := sha256.Sum256(clientDataJSON)
	signedData := append(append([]byte{}, authData...), clientDataHash[:]...)
	sig := signLowS(t, reg.privateKey, signedData)

	parsedClientData, err := protocol.ParseClientData(clientDataJSON)
	require.NoError(t, err)

	parsedAuthData, err := protocol.ParseAuthenticatorData(authData)
	require.NoError(t, err)

	return &protocol.ParsedCredentialAssertionData{
		ParsedPublicKeyCredential: protocol.ParsedPublicKeyCredential{
			RawID: reg.credentialID,
			ParsedCredential: protocol.ParsedCredential{
				ID:   protocol.EncodeBase64(reg.credentialID),
				Type: protocol.PublicKeyCredentialType,
			},
		},
		Response: protocol.ParsedAssertionResponse{
			CollectedClientData: *parsedClientData,
			AuthenticatorData:   *parsedAuthData,
			Signature:           sig,
		},
		Raw: protocol.CredentialAssertionResponse{
			AssertionResponse: protocol.AuthenticatorAssertionResponse{
				AuthenticatorResponse: protocol.AuthenticatorResponse{ClientDataJSON: clientDataJSON},
				AuthenticatorData:     authData,
				Signature:             sig,
			},
		},
	}
}

func buildEC2COSEKey(t *testing.T, x, y []byte, alg protocol.COSEAlgorithmIdentifier) []byte {
	t.Helper()
	key, err := cbor.Marshal(map[int]interface{}{1: 2, 3: int(alg), -1: 1, -2: x, -3: y})
	require.NoError(t, err)
	return key
}

func buildAttestedCredentialData(aaguid, credentialID, coseKey []byte) []byte {
	buf := make([]byte, 0, len(aaguid)+2+len(credentialID)+len(coseKey))
	buf = append(buf, aaguid...)
	credIDLen := make([]byte, 2)
	binary.BigEndian.PutUint16(credIDLen, uint16(len(credentialID)))
	buf = append(buf, credIDLen...)
	buf = append(buf, credentialID...)
	buf = append(buf, coseKey...)
	return buf
}

func buildAuthData(rpIDHash []byte, flags byte, counter uint32, attestedCredData []byte) []byte {
	buf := make([]byte, 0, 37+len(attestedCredData))
	buf = append(buf, rpIDHash...)
	buf = append(buf, flags)
	counterBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(counterBytes, counter)
	buf = append(buf, counterBytes...)
	buf = append(buf, attestedCredData...)
	return buf
}

// signLowS signs data with priv and canonicalizes the ASN.1 signature to low-S form, the
// form every conforming authenticator emits and the only form the verifier accepts.
func signLowS(t *testing.T, priv *ecdsa.PrivateKey, data []byte) []byte {
	t.Helper()
	digest := sha256.Sum256(data)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	halfOrder := new(big.Int).Rsh(priv.Curve.Params().N, 1)
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(priv.Curve.Params().N, s)
	}

	sig, err := asn1.Marshal(struct{ R, S *big.Int }{r, s})
	require.NoError(t, err)
	return sig
}
