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

package store

import (
	"context"
	"errors"
	"fmt"

	dbmodel "github.com/nexusauth/webauthn-rp/internal/system/database/model"
	"github.com/nexusauth/webauthn-rp/internal/system/database/provider"
	"github.com/nexusauth/webauthn-rp/internal/system/utils"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

// ErrUserNotFound is returned when no user entity matches the lookup key.
var ErrUserNotFound = errors.New("user store: user not found")

var (
	queryUserFindByUsername = dbmodel.DBQuery{
		ID:    "webauthnUserFindByUsername",
		Query: `SELECT * FROM webauthn_users WHERE username = $1`,
	}
	queryUserFindByHandle = dbmodel.DBQuery{
		ID:    "webauthnUserFindByHandle",
		Query: `SELECT * FROM webauthn_users WHERE user_handle = $1`,
	}
	queryUserInsert = dbmodel.DBQuery{
		ID:    "webauthnUserInsert",
		Query: `INSERT INTO webauthn_users (user_handle, username, display_name) VALUES ($1, $2, $3)`,
	}
)

// Entity is the user-entity record the spec's §4.9 repository maps username to: the sole
// source of user-handle allocation, kept deliberately separate from the credential store.
type Entity struct {
	UserHandle  []byte
	Username    string
	DisplayName string
}

// UserRepository maps username <-> user entity and allocates fresh user handles.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*Entity, error)
	FindByUserHandle(ctx context.Context, userHandle []byte) (*Entity, error)
	// GetOrCreate resolves the entity for username, allocating a new UUIDv7 user handle
	// (opaque, ≤64 bytes, per §4.10) the first time the username is seen.
	GetOrCreate(ctx context.Context, username, displayName string) (*Entity, error)
}

type dbUserRepository struct {
	client provider.DBClientInterface
}

// NewDBUserRepository wraps a resolved DB client.
func NewDBUserRepository(client provider.DBClientInterface) UserRepository {
	return &dbUserRepository{client: client}
}

func (r *dbUserRepository) FindByUsername(ctx context.Context, username string) (*Entity, error) {
	rows, err := r.client.QueryContext(ctx, queryUserFindByUsername, username)
	if err != nil {
		return nil, fmt.Errorf("user store: find by username failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrUserNotFound
	}
	return rowToEntity(rows[0])
}

func (r *dbUserRepository) FindByUserHandle(ctx context.Context, userHandle []byte) (*Entity, error) {
	rows, err := r.client.QueryContext(ctx, queryUserFindByHandle, protocol.EncodeBase64(userHandle))
	if err != nil {
		return nil, fmt.Errorf("user store: find by handle failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrUserNotFound
	}
	return rowToEntity(rows[0])
}

func (r *dbUserRepository) GetOrCreate(ctx context.Context, username, displayName string) (*Entity, error) {
	existing, err := r.FindByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	handle, err := utils.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("user store: failed to allocate user handle: %w", err)
	}

	entity := &Entity{
		UserHandle:  []byte(handle),
		Username:    username,
		DisplayName: displayName,
	}

	_, err = r.client.ExecuteContext(ctx, queryUserInsert,
		protocol.EncodeBase64(entity.UserHandle), entity.Username, entity.DisplayName)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race with a concurrent registration of the same username; the
			// winner's row is authoritative.
			return r.FindByUsername(ctx, username)
		}
		return nil, fmt.Errorf("user store: insert failed: %w", err)
	}

	return entity, nil
}

func rowToEntity(row map[string]interface{}) (*Entity, error) {
	userHandle, err := protocol.DecodeBase64(stringValue(row["user_handle"]))
	if err != nil {
		return nil, fmt.Errorf("user store: malformed stored user handle: %w", err)
	}
	return &Entity{
		UserHandle:  userHandle,
		Username:    stringValue(row["username"]),
		DisplayName: stringValue(row["display_name"]),
	}, nil
}
