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

import "github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"

// Config is the relying party's own identity and ceremony policy.
type Config struct {
	RPDisplayName string
	RPID          string
	RPOrigins     []string

	// AllowCrossOrigin permits clientDataJSON.crossOrigin == true. Default false per §4.4.
	AllowCrossOrigin bool

	// RejectUnsolicitedExtensions is the registration step 11 / authentication step 10 policy
	// flag: when set, a ceremony whose authenticator data carries extension outputs fails if
	// the session requested no extensions. Outputs are not compared one by one against the
	// requested set.
	RejectUnsolicitedExtensions bool

	// CredentialAlgorithms is the accepted, preference-ordered pubKeyCredParams list.
	// Defaults to ES256, Ed25519, RS256 per data model §3.
	CredentialAlgorithms []protocol.COSEAlgorithmIdentifier
}

// DefaultCredentialAlgorithms is the default accepted algorithm list, in preference order.
func DefaultCredentialAlgorithms() []protocol.COSEAlgorithmIdentifier {
	return []protocol.COSEAlgorithmIdentifier{
		protocol.AlgES256,
		protocol.AlgEdDSA,
		protocol.AlgRS256,
	}
}
