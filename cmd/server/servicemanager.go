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

// Package main is the relying party server's entrypoint.
package main

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexusauth/webauthn-rp/internal/authn/passkey"
	"github.com/nexusauth/webauthn-rp/internal/system/config"
	"github.com/nexusauth/webauthn-rp/internal/system/database/provider"
	"github.com/nexusauth/webauthn-rp/internal/system/log"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/store"
)

// redisClient is held at package scope so unregisterServices can close it on shutdown.
var redisClient *redis.Client

// registerServices wires the relying party's collaborators and mounts its HTTP endpoints.
func registerServices(mux *http.ServeMux) {
	logger := log.GetLogger()
	cfg := config.GetThunderRuntime().Config

	dbClient, err := provider.GetDBProvider().GetConfigDBClient()
	if err != nil {
		logger.Fatal("Failed to initialize database client", log.Error(err))
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Address,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})

	challengeTTL := time.Duration(cfg.WebAuthn.ChallengeTTLSeconds) * time.Second
	challengeStore := store.NewRedisChallengeStore(redisClient, challengeTTL)
	credentialStore := store.NewDBCredentialStore(dbClient)
	userRepository := store.NewDBUserRepository(dbClient)

	webauthnService, err := passkey.NewDefaultWebAuthnService(
		cfg.WebAuthn.RPID, cfg.WebAuthn.RPDisplayName, cfg.WebAuthn.RPOrigins)
	if err != nil {
		logger.Fatal("Failed to initialize WebAuthn service", log.Error(err))
	}

	passkeyHandler := passkey.NewHandler(
		webauthnService, challengeStore, credentialStore, userRepository,
		cfg.WebAuthn.RPID, []byte(cfg.Session.SigningKey),
		cfg.Session.SuccessRedirectURL, cfg.Session.ErrorRedirectURL,
	)
	passkeyHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// unregisterServices releases resources acquired by registerServices during shutdown.
func unregisterServices() {
	logger := log.GetLogger()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis client", log.Error(err))
		}
	}
}
