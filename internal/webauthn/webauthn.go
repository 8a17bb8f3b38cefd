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

import "github.com/nexusauth/webauthn-rp/internal/system/log"

// WebAuthn is the ceremony verifier's entry point: a stateless engine bound to one relying
// party configuration. Fatal misconfiguration (missing RP ID, no allowed origins) is
// surfaced here at construction time per §7's "fatal conditions" list, not deep inside a
// ceremony call.
type WebAuthn struct {
	Config *Config
	logger *log.Logger
}

// New validates config and constructs a WebAuthn engine. It refuses to start with a missing
// RP ID or an empty origin allow-list, per §7's fatal-conditions list.
func New(config *Config) (*WebAuthn, error) {
	if config.RPID == "" {
		return nil, &ErrorInvalidConfig{"RPID is required"}
	}
	if len(config.RPOrigins) == 0 {
		return nil, &ErrorInvalidConfig{"at least one RP origin is required"}
	}
	if len(config.CredentialAlgorithms) == 0 {
		config.CredentialAlgorithms = DefaultCredentialAlgorithms()
	}

	return &WebAuthn{
		Config: config,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WebAuthnEngine")),
	}, nil
}

// ErrorInvalidConfig is returned by New when the relying party configuration is incomplete.
type ErrorInvalidConfig struct {
	Message string
}

func (e *ErrorInvalidConfig) Error() string {
	return e.Message
}
