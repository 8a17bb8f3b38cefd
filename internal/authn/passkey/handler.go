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
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nexusauth/webauthn-rp/internal/system/log"
	sysutils "github.com/nexusauth/webauthn-rp/internal/system/utils"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/protocol"
	"github.com/nexusauth/webauthn-rp/internal/webauthn/store"
)

const handlerLoggerComponentName = "PasskeyHandler"

// Handler exposes the four HTTP endpoints spec §6 names as the relying party's collaborator
// surface. The ceremony verification itself lives entirely in webauthnService; this type's
// job is request parsing, session-key correlation through the challenge store, and mapping
// verification failures to the generic client-facing shapes §7 requires.
type Handler struct {
	service     webauthnService
	challenges  store.ChallengeStore
	credentials store.CredentialStore
	users       store.UserRepository

	rpID               string
	sessionSigningKey  []byte
	successRedirectURL string
	errorRedirectURL   string
}

// NewHandler wires the ceremony engine to its collaborator stores.
func NewHandler(
	service webauthnService,
	challenges store.ChallengeStore,
	credentials store.CredentialStore,
	users store.UserRepository,
	rpID string,
	sessionSigningKey []byte,
	successRedirectURL, errorRedirectURL string,
) *Handler {
	return &Handler{
		service:             service,
		challenges:          challenges,
		credentials:         credentials,
		users:               users,
		rpID:                rpID,
		sessionSigningKey:   sessionSigningKey,
		successRedirectURL:  successRedirectURL,
		errorRedirectURL:    errorRedirectURL,
	}
}

// RegisterRoutes mounts the handler's endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webauthn/register/options", h.HandleRegisterOptions)
	mux.HandleFunc("POST /webauthn/register", h.HandleRegister)
	mux.HandleFunc("POST /webauthn/authenticate/options", h.HandleAuthenticateOptions)
	mux.HandleFunc("POST /login/webauthn", h.HandleLoginWebAuthn)
}

type registerOptionsRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type registerOptionsResponse struct {
	PublicKey  protocol.CreationResponse `json:"publicKey"`
	SessionKey string                    `json:"sessionKey"`
}

// HandleRegisterOptions issues PublicKeyCredentialCreationOptionsJSON for a new or
// re-registering user and parks the expected challenge in the challenge store.
func (h *Handler) HandleRegisterOptions(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))
	ctx := r.Context()

	req, err := sysutils.DecodeJSONBody[registerOptionsRequest](r)
	if err != nil || req.Username == "" {
		writeGenericBadRequest(w)
		return
	}
	username := sysutils.SanitizeString(req.Username)
	displayName := sysutils.SanitizeString(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	entity, err := h.users.GetOrCreate(ctx, username, displayName)
	if err != nil {
		logger.Error("failed to resolve user entity", log.Error(err))
		writeGenericServerError(w)
		return
	}

	existingCreds, err := h.credentials.FindByUser(ctx, entity.UserHandle)
	if err != nil {
		logger.Error("failed to list existing credentials", log.Error(err))
		writeGenericServerError(w)
		return
	}

	user := &registeredUser{entity: entity, credentials: existingCreds}
	options, session, err := h.service.BeginRegistration(user)
	if err != nil {
		logger.Error("failed to begin registration", log.Error(err))
		writeGenericServerError(w)
		return
	}

	sessionKey, err := sysutils.GenerateUUIDv7()
	if err != nil {
		logger.Error("failed to allocate session key", log.Error(err))
		writeGenericServerError(w)
		return
	}
	if err := h.challenges.Save(ctx, sessionKey, *session); err != nil {
		logger.Error("failed to persist challenge", log.Error(err))
		writeGenericServerError(w)
		return
	}

	sysutils.WriteSuccessResponse(w, http.StatusOK, registerOptionsResponse{
		PublicKey:  options.Response,
		SessionKey: sessionKey,
	})
}

type registerRequest struct {
	SessionKey string `json:"sessionKey"`
	PublicKey  struct {
		Credential json.RawMessage `json:"credential"`
		Label      string          `json:"label"`
	} `json:"publicKey"`
}

type verifiedResponse struct {
	Verified bool `json:"verified"`
}

// HandleRegister verifies a registration ceremony response and persists the new credential.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))
	ctx := r.Context()

	req, err := sysutils.DecodeJSONBody[registerRequest](r)
	if err != nil || req.SessionKey == "" {
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	}

	parsed, err := protocol.ParseCredentialCreationResponseBytes(req.PublicKey.Credential)
	if err != nil {
		logger.Warn("malformed registration response", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	}

	session, err := h.challenges.LoadAndConsume(ctx, req.SessionKey)
	if err != nil {
		logger.Warn("no pending challenge for session", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	}

	entity, err := h.users.FindByUserHandle(ctx, session.UserID)
	if err != nil {
		logger.Error("failed to resolve session user", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	}
	user := &registeredUser{entity: entity}

	credential, err := h.service.CreateCredential(user, *session, parsed)
	if err != nil {
		// §7: the client only ever sees a generic {verified: false}; the failure kind is
		// logged server-side with whatever credential/session identity is known.
		logger.Warn("registration ceremony failed",
			log.String("sessionKey", log.MaskString(req.SessionKey)), log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	}
	credential.Label = req.PublicKey.Label

	// A credential ID may be registered only once, to any user.
	if _, err := h.credentials.FindByID(ctx, credential.ID); err == nil {
		logger.Warn("registration ceremony failed",
			log.String("sessionKey", log.MaskString(req.SessionKey)),
			log.Error(store.ErrCredentialAlreadyRegistered))
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	} else if !errors.Is(err, store.ErrCredentialNotFound) {
		logger.Error("failed to check credential uniqueness", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	}

	if err := h.credentials.Save(ctx, credential); err != nil {
		logger.Error("failed to persist credential", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: false})
		return
	}

	sysutils.WriteSuccessResponse(w, http.StatusOK, verifiedResponse{Verified: true})
}

type authenticateOptionsResponse struct {
	PublicKey  protocol.AssertionResponse `json:"publicKey"`
	SessionKey string                     `json:"sessionKey"`
}

// HandleAuthenticateOptions issues PublicKeyCredentialRequestOptionsJSON for a usernameless,
// discoverable-credential authentication ceremony.
func (h *Handler) HandleAuthenticateOptions(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))
	ctx := r.Context()

	options, session, err := h.service.BeginDiscoverableLogin()
	if err != nil {
		logger.Error("failed to begin discoverable login", log.Error(err))
		writeGenericServerError(w)
		return
	}

	sessionKey, err := sysutils.GenerateUUIDv7()
	if err != nil {
		logger.Error("failed to allocate session key", log.Error(err))
		writeGenericServerError(w)
		return
	}
	if err := h.challenges.Save(ctx, sessionKey, *session); err != nil {
		logger.Error("failed to persist challenge", log.Error(err))
		writeGenericServerError(w)
		return
	}

	sysutils.WriteSuccessResponse(w, http.StatusOK, authenticateOptionsResponse{
		PublicKey:  options.Response,
		SessionKey: sessionKey,
	})
}

type loginResponse struct {
	Authenticated bool   `json:"authenticated,omitempty"`
	RedirectURL   string `json:"redirectUrl,omitempty"`
	ErrorURL      string `json:"errorUrl,omitempty"`
}

// HandleLoginWebAuthn verifies the assertion response and redirects to the configured
// success or error target. The session key correlating this request to its options call
// travels as a query parameter, since the assertion body itself is the bare WebAuthn
// response per spec §6.
func (h *Handler) HandleLoginWebAuthn(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))
	ctx := r.Context()

	sessionKey := r.URL.Query().Get("sessionKey")
	if sessionKey == "" {
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	parsedResponse, err := protocol.ParseCredentialRequestResponseBytes(body)
	if err != nil {
		logger.Warn("malformed assertion response", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	session, err := h.challenges.LoadAndConsume(ctx, sessionKey)
	if err != nil {
		logger.Warn("no pending challenge for session", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	userHandler := func(rawID, userHandle []byte) (webauthnUserInterface, error) {
		if len(userHandle) > 0 {
			return loadRegisteredUserByHandle(ctx, h.users, h.credentials, userHandle)
		}
		cred, err := h.credentials.FindByID(ctx, rawID)
		if err != nil {
			return nil, err
		}
		return loadRegisteredUserByHandle(ctx, h.users, h.credentials, cred.UserHandle)
	}

	user, credential, err := h.service.ValidatePasskeyLogin(userHandler, *session, parsedResponse)
	if err != nil {
		logger.Warn("authentication ceremony failed",
			log.String("sessionKey", log.MaskString(sessionKey)), log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	regUser, ok := user.(*registeredUser)
	if !ok {
		logger.Error("authenticated principal was not a registeredUser", log.Error(errors.New("type assertion failed")))
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	if err := h.credentials.Save(ctx, credential); err != nil {
		logger.Error("failed to persist updated credential state", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	token, err := issueSessionToken(h.sessionSigningKey, h.rpID, regUser)
	if err != nil {
		logger.Error("failed to issue session token", log.Error(err))
		sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{ErrorURL: h.errorRedirectURL})
		return
	}

	sysutils.WriteSuccessResponse(w, http.StatusOK, loginResponse{
		Authenticated: true,
		RedirectURL:   h.successRedirectURL + "?token=" + token,
	})
}

func writeGenericBadRequest(w http.ResponseWriter) {
	sysutils.WriteErrorResponse(w, http.StatusBadRequest, map[string]string{
		"code":    "WAN-4000",
		"message": "invalid request",
	})
}

func writeGenericServerError(w http.ResponseWriter) {
	sysutils.WriteErrorResponse(w, http.StatusInternalServerError, map[string]string{
		"code":    "WAN-5000",
		"message": "internal server error",
	})
}
