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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nexusauth/webauthn-rp/internal/webauthn"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

func newTestCredential() *webauthn.Credential {
	return &webauthn.Credential{
		ID:        []byte("credential-id"),
		PublicKey: []byte("public-key"),
		UserHandle: []byte("user-handle"),
		Authenticator: webauthn.Authenticator{
			SignCount: 5,
		},
	}
}

func TestDBCredentialStore_Save_InsertsWhenNotFound(t *testing.T) {
	client := newDBClientInterfaceMock(t)
	store := NewDBCredentialStore(client)
	record := newTestCredential()

	client.On("QueryContext", queryFindByID, mock.Anything).
		Return([]map[string]interface{}{}, nil).Once()
	client.On("ExecuteContext", queryInsert, mock.Anything).
		Return(int64(1), nil).Once()

	err := store.Save(context.Background(), record)
	require.NoError(t, err)
}

func TestDBCredentialStore_Save_InsertConflictReturnsAlreadyRegistered(t *testing.T) {
	client := newDBClientInterfaceMock(t)
	store := NewDBCredentialStore(client)
	record := newTestCredential()

	client.On("QueryContext", queryFindByID, mock.Anything).
		Return([]map[string]interface{}{}, nil).Once()
	client.On("ExecuteContext", queryInsert, mock.Anything).
		Return(int64(0), errors.New("pq: duplicate key value violates unique constraint")).Once()

	err := store.Save(context.Background(), record)
	assert.ErrorIs(t, err, ErrCredentialAlreadyRegistered)
}

func TestDBCredentialStore_Save_UpdatesExistingRecord(t *testing.T) {
	client := newDBClientInterfaceMock(t)
	store := NewDBCredentialStore(client)
	record := newTestCredential()

	existingRow := map[string]interface{}{
		"credential_id": protocol.EncodeBase64(record.ID),
		"public_key":    protocol.EncodeBase64(record.PublicKey),
		"user_handle":   protocol.EncodeBase64(record.UserHandle),
		"sign_count":    int64(4),
	}
	client.On("QueryContext", queryFindByID, mock.Anything).
		Return([]map[string]interface{}{existingRow}, nil).Once()
	client.On("ExecuteContext", queryUpdate, mock.Anything).
		Return(int64(1), nil).Once()

	err := store.Save(context.Background(), record)
	require.NoError(t, err)
}

func TestDBCredentialStore_Save_UpdateLostCASReturnsSignCountConflict(t *testing.T) {
	client := newDBClientInterfaceMock(t)
	store := NewDBCredentialStore(client)
	record := newTestCredential()

	existingRow := map[string]interface{}{
		"credential_id": protocol.EncodeBase64(record.ID),
		"public_key":    protocol.EncodeBase64(record.PublicKey),
		"user_handle":   protocol.EncodeBase64(record.UserHandle),
		"sign_count":    int64(4),
	}
	client.On("QueryContext", queryFindByID, mock.Anything).
		Return([]map[string]interface{}{existingRow}, nil).Once()
	client.On("ExecuteContext", queryUpdate, mock.Anything).
		Return(int64(0), nil).Once()

	err := store.Save(context.Background(), record)
	assert.ErrorIs(t, err, ErrSignCountConflict)
}

func TestDBCredentialStore_FindByID_NotFound(t *testing.T) {
	client := newDBClientInterfaceMock(t)
	store := NewDBCredentialStore(client)

	client.On("QueryContext", queryFindByID, mock.Anything).
		Return([]map[string]interface{}{}, nil).Once()

	_, err := store.FindByID(context.Background(), []byte("missing"))
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestDBCredentialStore_FindByUser_ReturnsAllRows(t *testing.T) {
	client := newDBClientInterfaceMock(t)
	store := NewDBCredentialStore(client)

	rows := []map[string]interface{}{
		{
			"credential_id": protocol.EncodeBase64([]byte("cred-a")),
			"public_key":    protocol.EncodeBase64([]byte("key-a")),
			"user_handle":   protocol.EncodeBase64([]byte("user")),
			"sign_count":    int64(1),
		},
		{
			"credential_id": protocol.EncodeBase64([]byte("cred-b")),
			"public_key":    protocol.EncodeBase64([]byte("key-b")),
			"user_handle":   protocol.EncodeBase64([]byte("user")),
			"sign_count":    int64(2),
		},
	}
	client.On("QueryContext", queryFindByUser, mock.Anything).
		Return(rows, nil).Once()

	creds, err := store.FindByUser(context.Background(), []byte("user"))
	require.NoError(t, err)
	assert.Len(t, creds, 2)
}
