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

import "github.com/nexusauth/webauthn-rp/internal/system/error/serviceerror"

// Ceremony verification failure kinds, one ServiceError per kind in the flat taxonomy.
// Every kind is a client error: a failed ceremony is never the server's fault, it is either
// a malformed/forged request or a policy the caller configured.
var (
	ErrMalformedInput = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1001", Error: "Malformed input",
		ErrorDescription: "The base64url or CBOR input could not be decoded.",
	}
	ErrMalformedAuthenticatorData = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1002", Error: "Malformed authenticator data",
		ErrorDescription: "The authenticator data did not match the expected layout.",
	}
	ErrUnsupportedAttestationFormat = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1003", Error: "Unsupported attestation format",
		ErrorDescription: "The attestation statement format is not recognized.",
	}
	ErrInvalidClientDataType = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1004", Error: "Invalid client data type",
		ErrorDescription: "clientDataJSON.type did not match the expected ceremony type.",
	}
	ErrChallengeMismatch = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1005", Error: "Challenge mismatch",
		ErrorDescription: "clientDataJSON.challenge did not match the options challenge.",
	}
	ErrOriginMismatch = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1006", Error: "Origin mismatch",
		ErrorDescription: "clientDataJSON.origin is not an allowed origin.",
	}
	ErrCrossOriginDisallowed = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1007", Error: "Cross-origin disallowed",
		ErrorDescription: "clientDataJSON.crossOrigin was true but the relying party disallows it.",
	}
	ErrRpIdHashMismatch = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1008", Error: "RP ID hash mismatch",
		ErrorDescription: "authData.rpIdHash did not match SHA-256(rp.id).",
	}
	ErrUserPresenceMissing = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1009", Error: "User presence missing",
		ErrorDescription: "authData.flags.UP was not set.",
	}
	ErrUserVerificationRequired = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1010", Error: "User verification required",
		ErrorDescription: "authData.flags.UV was not set but the ceremony required it.",
	}
	ErrInvalidFlagCombination = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1011", Error: "Invalid flag combination",
		ErrorDescription: "authData.flags had BS set without BE.",
	}
	ErrAttestedCredentialDataMissing = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1012", Error: "Attested credential data missing",
		ErrorDescription: "authData.flags.AT was not set during registration.",
	}
	ErrUnrequestedAlgorithm = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1013", Error: "Unrequested algorithm",
		ErrorDescription: "The credential's COSE algorithm was not in pubKeyCredParams.",
	}
	ErrCredentialAlreadyRegistered = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1014", Error: "Credential already registered",
		ErrorDescription: "The credential ID is already registered to a user.",
	}
	ErrUnknownCredential = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1015", Error: "Unknown credential",
		ErrorDescription: "No credential record exists for the supplied rawId.",
	}
	ErrCredentialNotAllowed = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1016", Error: "Credential not allowed",
		ErrorDescription: "rawId was not in options.allowCredentials.",
	}
	ErrUserHandleMismatch = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1017", Error: "User handle mismatch",
		ErrorDescription: "response.userHandle did not match the credential record's userHandle.",
	}
	ErrBadSignature = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1018", Error: "Bad signature",
		ErrorDescription: "The assertion or attestation signature failed verification.",
	}
	ErrSignCountRegression = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1019", Error: "Sign count regression",
		ErrorDescription: "authData.signCount did not advance; the authenticator may be cloned.",
	}
	ErrUnsupportedAlgorithm = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1020", Error: "Unsupported algorithm",
		ErrorDescription: "The COSE algorithm identifier has no registered verifier.",
	}
	ErrAttestationVerificationFailed = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "WAN-1021", Error: "Attestation verification failed",
		ErrorDescription: "The attestation statement did not verify against the credential public key.",
	}
)
