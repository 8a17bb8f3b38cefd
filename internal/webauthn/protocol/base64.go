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

package protocol

import (
	"encoding/base64"
	"encoding/json"
)

// URLEncodedBase64 is a byte slice that marshals to and from JSON as unpadded, URL-safe
// base64 (spec §6: "All Bytes-typed fields travel as URL-safe base64 without padding"),
// rather than encoding/json's default standard-padded base64 for []byte.
type URLEncodedBase64 []byte

// MarshalJSON encodes the bytes as an unpadded base64url string.
func (b URLEncodedBase64) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(base64.RawURLEncoding.EncodeToString(b))
}

// UnmarshalJSON decodes a base64url (or, tolerantly, standard base64) string.
func (b *URLEncodedBase64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*b = nil
		return nil
	}
	decoded, err := DecodeBase64(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
