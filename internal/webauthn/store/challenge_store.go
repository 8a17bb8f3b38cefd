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

// Package store provides the collaborator stores the ceremony verifier depends on but does
// not itself implement: the single-use challenge store, the credential record store, and the
// user repository.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexusauth/webauthn-rp/internal/system/log"
	"github.com/nexusauth/webauthn-rp/internal/webauthn"
)

const challengeKeyPrefix = "webauthn:challenge:"

// ErrChallengeNotFound is returned by LoadAndConsume when the session key has no pending
// challenge, either because it was never saved, already consumed, or expired.
var ErrChallengeNotFound = errors.New("challenge store: no pending challenge for session")

// ChallengeStore is the single-use, TTL-expiring options store required by spec §4.8.
type ChallengeStore interface {
	Save(ctx context.Context, sessionKey string, session webauthn.SessionData) error
	LoadAndConsume(ctx context.Context, sessionKey string) (*webauthn.SessionData, error)
}

// redisChallengeStore backs the challenge store with Redis: GETDEL gives the atomic
// load-and-delete that single-use consumption requires without a client-side transaction,
// and the key TTL provides the default 5-minute expiry.
type redisChallengeStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisChallengeStore wraps an already-connected Redis client. ttl is applied to every
// saved entry; pass 0 to fall back to the spec's default of 5 minutes.
func NewRedisChallengeStore(client *redis.Client, ttl time.Duration) ChallengeStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisChallengeStore{
		client: client,
		ttl:    ttl,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ChallengeStore")),
	}
}

// Save idempotently overwrites the session's pending challenge.
func (s *redisChallengeStore) Save(ctx context.Context, sessionKey string, session webauthn.SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("challenge store: failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sessionKey), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("challenge store: failed to save session: %w", err)
	}

	s.logger.Debug("saved challenge", log.String("sessionKey", log.MaskString(sessionKey)))
	return nil
}

// LoadAndConsume atomically reads and deletes the session's pending challenge so it can be
// used at most once, regardless of how the caller's verification turns out.
func (s *redisChallengeStore) LoadAndConsume(ctx context.Context, sessionKey string) (*webauthn.SessionData, error) {
	data, err := s.client.GetDel(ctx, s.key(sessionKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("challenge store: failed to load session: %w", err)
	}

	var session webauthn.SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("challenge store: failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (s *redisChallengeStore) key(sessionKey string) string {
	return challengeKeyPrefix + sessionKey
}
