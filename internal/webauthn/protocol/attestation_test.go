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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyAttestationStatement_NoneSuccess(t *testing.T) {
	typ, err := VerifyAttestationStatement("none", map[string]interface{}{}, nil, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, AttestationTypeNone, typ)
}

func TestVerifyAttestationStatement_NoneRejectsNonEmptyStatement(t *testing.T) {
	_, err := VerifyAttestationStatement("none", map[string]interface{}{"x": 1}, nil, nil, nil)
	assert.Error(t, err)
}

func TestVerifyAttestationStatement_UnsupportedFormat(t *testing.T) {
	_, err := VerifyAttestationStatement("unheard-of-format", map[string]interface{}{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedAttestationFormat)
}
