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
	"strconv"
	"strings"
	"time"

	"github.com/nexusauth/webauthn-rp/internal/system/log"

	dbmodel "github.com/nexusauth/webauthn-rp/internal/system/database/model"
	"github.com/nexusauth/webauthn-rp/internal/system/database/provider"
	"github.com/nexusauth/webauthn-rp/internal/webauthn"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
)

const timeLayout = time.RFC3339Nano

var (
	// ErrCredentialNotFound is returned by FindByID when no record matches the id.
	ErrCredentialNotFound = errors.New("credential store: credential not found")
	// ErrCredentialAlreadyRegistered is returned by Save on a duplicate credentialId insert,
	// the race spec §5 calls out as relying on the table's unique index.
	ErrCredentialAlreadyRegistered = errors.New("credential store: credential already registered")
	// ErrSignCountConflict is returned by Save when a concurrent authentication already
	// advanced the stored signCount past the value this call is trying to persist.
	ErrSignCountConflict = errors.New("credential store: concurrent sign count update lost")
)

var (
	queryFindByID = dbmodel.DBQuery{
		ID:    "webauthnCredentialFindByID",
		Query: `SELECT * FROM webauthn_credentials WHERE credential_id = $1`,
	}
	queryFindByUser = dbmodel.DBQuery{
		ID:    "webauthnCredentialFindByUser",
		Query: `SELECT * FROM webauthn_credentials WHERE user_handle = $1 ORDER BY created_at ASC`,
	}
	queryInsert = dbmodel.DBQuery{
		ID: "webauthnCredentialInsert",
		Query: `INSERT INTO webauthn_credentials (
			credential_id, user_handle, public_key, attestation_type, transports,
			attestation_object, attestation_client_data_json, label, aaguid, attachment,
			sign_count, uv_initialized, backup_eligible, backup_state, created_at, last_used_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
	}
	queryUpdate = dbmodel.DBQuery{
		ID: "webauthnCredentialUpdate",
		Query: `UPDATE webauthn_credentials SET
			sign_count = $1, backup_eligible = $2, backup_state = $3, last_used_at = $4,
			label = $5
			WHERE credential_id = $6 AND sign_count <= $7`,
	}
	queryDelete = dbmodel.DBQuery{
		ID:    "webauthnCredentialDelete",
		Query: `DELETE FROM webauthn_credentials WHERE credential_id = $1`,
	}
)

// CredentialStore is the credential record repository required by spec §4.9.
type CredentialStore interface {
	FindByID(ctx context.Context, credentialID []byte) (*webauthn.Credential, error)
	FindByUser(ctx context.Context, userHandle []byte) ([]webauthn.Credential, error)
	Save(ctx context.Context, record *webauthn.Credential) error
	Delete(ctx context.Context, credentialID []byte) error
}

// dbCredentialStore persists credential records through the configured SQL backend
// (Postgres or embedded SQLite, see internal/system/database/provider).
type dbCredentialStore struct {
	client provider.DBClientInterface
	logger *log.Logger
}

// NewDBCredentialStore wraps a resolved DB client.
func NewDBCredentialStore(client provider.DBClientInterface) CredentialStore {
	return &dbCredentialStore{
		client: client,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "CredentialStore")),
	}
}

// FindByID looks up a single credential record by its id.
func (s *dbCredentialStore) FindByID(ctx context.Context, credentialID []byte) (*webauthn.Credential, error) {
	rows, err := s.client.QueryContext(ctx, queryFindByID, protocol.EncodeBase64(credentialID))
	if err != nil {
		return nil, fmt.Errorf("credential store: find by id failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrCredentialNotFound
	}
	return rowToCredential(rows[0])
}

// FindByUser lists every credential registered to the given user handle.
func (s *dbCredentialStore) FindByUser(ctx context.Context, userHandle []byte) ([]webauthn.Credential, error) {
	rows, err := s.client.QueryContext(ctx, queryFindByUser, protocol.EncodeBase64(userHandle))
	if err != nil {
		return nil, fmt.Errorf("credential store: find by user failed: %w", err)
	}

	creds := make([]webauthn.Credential, 0, len(rows))
	for _, row := range rows {
		cred, err := rowToCredential(row)
		if err != nil {
			return nil, err
		}
		creds = append(creds, *cred)
	}
	return creds, nil
}

// Save creates a new credential record or, for an existing one, advances its mutable fields
// (signCount, backup state, label, lastUsed). The update is a compare-and-swap on
// (credentialId, signCount) so a lost update from a concurrent authentication can never
// regress the stored counter, per §5's anti-clone discipline.
func (s *dbCredentialStore) Save(ctx context.Context, record *webauthn.Credential) error {
	_, err := s.FindByID(ctx, record.ID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return s.insert(ctx, record)
		}
		return err
	}
	return s.update(ctx, record)
}

func (s *dbCredentialStore) insert(ctx context.Context, record *webauthn.Credential) error {
	now := record.Created
	if now.IsZero() {
		now = time.Now().UTC()
	}
	lastUsed := record.LastUsed
	if lastUsed.IsZero() {
		lastUsed = now
	}

	_, err := s.client.ExecuteContext(ctx, queryInsert,
		protocol.EncodeBase64(record.ID),
		protocol.EncodeBase64(record.UserHandle),
		protocol.EncodeBase64(record.PublicKey),
		string(record.AttestationType),
		strings.Join(record.Transports, ","),
		protocol.EncodeBase64(record.AttestationObject),
		protocol.EncodeBase64(record.AttestationClientDataJSON),
		record.Label,
		protocol.EncodeBase64(record.Authenticator.AAGUID),
		string(record.Authenticator.Attachment),
		record.Authenticator.SignCount,
		record.Authenticator.UVInitialized,
		record.Authenticator.BackupEligible,
		record.Authenticator.BackupState,
		now.Format(timeLayout),
		lastUsed.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCredentialAlreadyRegistered
		}
		return fmt.Errorf("credential store: insert failed: %w", err)
	}

	s.logger.Info("registered new credential", log.String("credentialId", protocol.EncodeBase64(record.ID)))
	return nil
}

func (s *dbCredentialStore) update(ctx context.Context, record *webauthn.Credential) error {
	lastUsed := record.LastUsed
	if lastUsed.IsZero() {
		lastUsed = time.Now().UTC()
	}

	rows, err := s.client.ExecuteContext(ctx, queryUpdate,
		record.Authenticator.SignCount,
		record.Authenticator.BackupEligible,
		record.Authenticator.BackupState,
		lastUsed.Format(timeLayout),
		record.Label,
		protocol.EncodeBase64(record.ID),
		record.Authenticator.SignCount,
	)
	if err != nil {
		return fmt.Errorf("credential store: update failed: %w", err)
	}
	if rows == 0 {
		return ErrSignCountConflict
	}
	return nil
}

// Delete removes a credential record.
func (s *dbCredentialStore) Delete(ctx context.Context, credentialID []byte) error {
	_, err := s.client.ExecuteContext(ctx, queryDelete, protocol.EncodeBase64(credentialID))
	if err != nil {
		return fmt.Errorf("credential store: delete failed: %w", err)
	}
	return nil
}

func rowToCredential(row map[string]interface{}) (*webauthn.Credential, error) {
	credentialID, err := protocol.DecodeBase64(stringValue(row["credential_id"]))
	if err != nil {
		return nil, fmt.Errorf("credential store: malformed stored credential id: %w", err)
	}
	publicKey, err := protocol.DecodeBase64(stringValue(row["public_key"]))
	if err != nil {
		return nil, fmt.Errorf("credential store: malformed stored public key: %w", err)
	}
	userHandle, _ := protocol.DecodeBase64(stringValue(row["user_handle"]))
	attestationObject, _ := protocol.DecodeBase64(stringValue(row["attestation_object"]))
	attestationClientData, _ := protocol.DecodeBase64(stringValue(row["attestation_client_data_json"]))
	aaguid, _ := protocol.DecodeBase64(stringValue(row["aaguid"]))

	var transports []string
	if raw := stringValue(row["transports"]); raw != "" {
		transports = strings.Split(raw, ",")
	}

	return &webauthn.Credential{
		ID:                        credentialID,
		PublicKey:                 publicKey,
		AttestationType:           protocol.AttestationType(stringValue(row["attestation_type"])),
		Transports:                transports,
		AttestationObject:         attestationObject,
		AttestationClientDataJSON: attestationClientData,
		UserHandle:                userHandle,
		Label:                     stringValue(row["label"]),
		Authenticator: webauthn.Authenticator{
			AAGUID:         aaguid,
			SignCount:      uint32(intValue(row["sign_count"])),
			UVInitialized:  boolValue(row["uv_initialized"]),
			BackupEligible: boolValue(row["backup_eligible"]),
			BackupState:    boolValue(row["backup_state"]),
			Attachment:     protocol.AuthenticatorAttachment(stringValue(row["attachment"])),
		},
		Created:  parseTime(stringValue(row["created_at"])),
		LastUsed: parseTime(stringValue(row["last_used_at"])),
	}, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func intValue(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

func boolValue(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case string:
		return t == "1" || strings.EqualFold(t, "true")
	default:
		return false
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
