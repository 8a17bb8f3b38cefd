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

package provider

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodel "github.com/nexusauth/webauthn-rp/internal/system/database/model"
)

func TestSQLClient_QueryContext_TranslatesPlaceholdersForSQLite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &sqlClient{db: db, translatePlaceholders: true}
	query := dbmodel.DBQuery{ID: "findByID", Query: "SELECT credential_id, sign_count FROM webauthn_credentials WHERE credential_id = $1"}

	mock.ExpectQuery("SELECT credential_id, sign_count FROM webauthn_credentials WHERE credential_id = \\?").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"credential_id", "sign_count"}).AddRow("abc", int64(3)))

	rows, err := client.QueryContext(context.Background(), query, "abc")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "abc", rows[0]["credential_id"])
	assert.Equal(t, int64(3), rows[0]["sign_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLClient_QueryContext_LeavesPostgresPlaceholdersUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &sqlClient{db: db, translatePlaceholders: false}
	query := dbmodel.DBQuery{ID: "findByID", Query: "SELECT credential_id FROM webauthn_credentials WHERE credential_id = $1"}

	mock.ExpectQuery("SELECT credential_id FROM webauthn_credentials WHERE credential_id = \\$1").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"credential_id"}).AddRow("abc"))

	rows, err := client.QueryContext(context.Background(), query, "abc")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLClient_QueryContext_NormalizesByteColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &sqlClient{db: db}
	query := dbmodel.DBQuery{ID: "findByID", Query: "SELECT public_key FROM webauthn_credentials"}

	mock.ExpectQuery("SELECT public_key FROM webauthn_credentials").
		WillReturnRows(sqlmock.NewRows([]string{"public_key"}).AddRow([]byte("raw-bytes")))

	rows, err := client.QueryContext(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "raw-bytes", rows[0]["public_key"])
}

func TestSQLClient_ExecuteContext_ReturnsRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &sqlClient{db: db, translatePlaceholders: true}
	query := dbmodel.DBQuery{ID: "updateSignCount", Query: "UPDATE webauthn_credentials SET sign_count = $1 WHERE credential_id = $2 AND sign_count <= $3"}

	mock.ExpectExec("UPDATE webauthn_credentials SET sign_count = \\? WHERE credential_id = \\? AND sign_count <= \\?").
		WithArgs(int64(5), "abc", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := client.ExecuteContext(context.Background(), query, int64(5), "abc", int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestSQLClient_ExecuteContext_ZeroRowsOnLostCASRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &sqlClient{db: db, translatePlaceholders: true}
	query := dbmodel.DBQuery{ID: "updateSignCount", Query: "UPDATE webauthn_credentials SET sign_count = $1 WHERE credential_id = $2 AND sign_count <= $3"}

	mock.ExpectExec("UPDATE webauthn_credentials SET sign_count = \\? WHERE credential_id = \\? AND sign_count <= \\?").
		WithArgs(int64(5), "abc", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := client.ExecuteContext(context.Background(), query, int64(5), "abc", int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}
