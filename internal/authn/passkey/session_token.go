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
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenTTL = 5 * time.Minute

// sessionClaims is the principal carried in the redirect session token /login/webauthn
// issues on a successful authentication ceremony (spec §6's `{authenticated, redirectUrl}`).
type sessionClaims struct {
	jwt.RegisteredClaims
	UserHandle string `json:"user_handle"`
	Username   string `json:"username"`
}

// issueSessionToken signs a short-lived HS256 session token binding the authenticated
// principal to its user handle, for the caller's redirect target to consume.
func issueSessionToken(signingKey []byte, rpID string, user *registeredUser) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    rpID,
			Subject:   user.entity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
		},
		UserHandle: string(user.entity.UserHandle),
		Username:   user.entity.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("session token: signing failed: %w", err)
	}
	return signed, nil
}
