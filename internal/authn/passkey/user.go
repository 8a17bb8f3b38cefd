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
	"context"
	"fmt"

	"github.com/nexusauth/webauthn-rp/internal/webauthn/store"
)

// registeredUser projects a store.Entity plus its registered credentials onto
// webauthnUserInterface, keeping the protocol-facing user type free of any
// application-specific principal data (SPEC_FULL's re-architecture of the source's
// subclassable user interface into a pure adapter).
type registeredUser struct {
	entity      *store.Entity
	credentials []webauthnCredential
}

func (u *registeredUser) WebAuthnID() []byte                       { return u.entity.UserHandle }
func (u *registeredUser) WebAuthnName() string                     { return u.entity.Username }
func (u *registeredUser) WebAuthnDisplayName() string               { return u.entity.DisplayName }
func (u *registeredUser) WebAuthnCredentials() []webauthnCredential { return u.credentials }

// loadRegisteredUser assembles a registeredUser by joining the user-entity repository with
// the credential store, the two collaborators spec §4.9 keeps deliberately separate.
func loadRegisteredUser(
	ctx context.Context, users store.UserRepository, creds store.CredentialStore, username string,
) (*registeredUser, error) {
	entity, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	userCreds, err := creds.FindByUser(ctx, entity.UserHandle)
	if err != nil {
		return nil, fmt.Errorf("load user credentials: %w", err)
	}

	return &registeredUser{entity: entity, credentials: userCreds}, nil
}

// loadRegisteredUserByHandle resolves a user from the raw userHandle an assertion carries,
// for the discoverable-credential (usernameless) login flow.
func loadRegisteredUserByHandle(
	ctx context.Context, users store.UserRepository, creds store.CredentialStore, userHandle []byte,
) (*registeredUser, error) {
	entity, err := users.FindByUserHandle(ctx, userHandle)
	if err != nil {
		return nil, fmt.Errorf("load user by handle: %w", err)
	}

	userCreds, err := creds.FindByUser(ctx, entity.UserHandle)
	if err != nil {
		return nil, fmt.Errorf("load user credentials: %w", err)
	}

	return &registeredUser{entity: entity, credentials: userCreds}, nil
}
