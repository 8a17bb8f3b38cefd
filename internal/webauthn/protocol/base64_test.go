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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xff, 0x7e, 'h', 'i'}
	encoded := EncodeBase64(data)
	decoded, err := DecodeBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestDecodeBase64_TolerantOfStandardEncoding(t *testing.T) {
	data := []byte("variant-tolerance-check")

	decoded, err := DecodeBase64(base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.Equal(t, data, decoded)

	decoded, err = DecodeBase64(base64.URLEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestURLEncodedBase64_JSONRoundTrip(t *testing.T) {
	var b URLEncodedBase64 = []byte{0xde, 0xad, 0xbe, 0xef}

	encoded, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded URLEncodedBase64
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, []byte(b), []byte(decoded))
}

func TestURLEncodedBase64_NilMarshalsToNull(t *testing.T) {
	var b URLEncodedBase64
	encoded, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, "null", string(encoded))
}
