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

package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	serverconst "github.com/nexusauth/webauthn-rp/internal/system/constants"
)

// DecodeJSONBody decodes the JSON request body into T. The caller owns closing the request body.
func DecodeJSONBody[T any](r *http.Request) (*T, error) {
	var v T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteSuccessResponse writes a JSON response body with the given status code.
func WriteSuccessResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set(serverconst.ContentTypeHeaderName, serverconst.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteErrorResponse writes a JSON error response body with the given status code.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp interface{}) {
	w.Header().Set(serverconst.ContentTypeHeaderName, serverconst.ContentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errResp)
}

// SanitizeString trims surrounding whitespace from untrusted input fields.
func SanitizeString(s string) string {
	return strings.TrimSpace(s)
}
