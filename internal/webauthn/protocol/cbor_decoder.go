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

// Package protocol implements WebAuthn wire structures, COSE/CBOR decoding and the
// per-ceremony parsing and validation helpers used by the relying party engine.
package protocol

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborDecMode = mustDecMode()

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{
		// Attestation objects and COSE keys are bounded, fixed-shape documents; duplicate
		// map keys are a sign of a malformed or adversarial encoding.
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxMapPairs:      64,
		MaxArrayElements: 64,
	}
	mode, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("protocol: invalid cbor decode options: %v", err))
	}
	return mode
}

// UnmarshalAttestationObject decodes a CBOR-encoded attestation object into dst.
func UnmarshalAttestationObject(data []byte, dst *AttestationObject) error {
	if err := cborDecMode.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode attestation object: %w", err)
	}
	return nil
}

// UnmarshalNext decodes the first CBOR data item from data and reports how many bytes it
// consumed, so callers can locate the COSE public key that follows the credential ID inside
// authenticator data.
func UnmarshalNext(data []byte) (interface{}, int, error) {
	var v interface{}
	rest, err := cborDecMode.UnmarshalFirst(data, &v)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode cbor value: %w", err)
	}
	consumed := len(data) - len(rest)
	return normalizeCBORValue(v), consumed, nil
}

// normalizeCBORValue recursively converts cbor's map[interface{}]interface{} decoding of
// CBOR maps into map[int64]interface{} when every key is integral, matching the label-keyed
// shape COSE and extension maps use. Values that aren't maps, or maps with non-integer keys,
// are returned unchanged.
func normalizeCBORValue(v interface{}) interface{} {
	m, ok := v.(map[interface{}]interface{})
	if !ok {
		return v
	}

	intKeyed := make(map[int64]interface{}, len(m))
	allInt := true
	for k, val := range m {
		ik, ok := toCBORInt64(k)
		if !ok {
			allInt = false
			break
		}
		intKeyed[ik] = normalizeCBORValue(val)
	}
	if allInt {
		return intKeyed
	}
	return m
}

func toCBORInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
