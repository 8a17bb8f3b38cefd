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

import "github.com/stretchr/testify/mock"

// webauthnUserInterfaceMock is a hand-rolled stand-in for a mockery-generated mock of
// webauthnUserInterface, kept local since the interface lives behind a type alias rather
// than a name mockery's generator can resolve across packages.
type webauthnUserInterfaceMock struct {
	mock.Mock
}

func newWebauthnUserInterfaceMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *webauthnUserInterfaceMock {
	m := &webauthnUserInterfaceMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *webauthnUserInterfaceMock) WebAuthnID() []byte {
	ret := m.Called()

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0
}

func (m *webauthnUserInterfaceMock) WebAuthnName() string {
	return m.Called().String(0)
}

func (m *webauthnUserInterfaceMock) WebAuthnDisplayName() string {
	return m.Called().String(0)
}

func (m *webauthnUserInterfaceMock) WebAuthnCredentials() []webauthnCredential {
	ret := m.Called()

	var r0 []webauthnCredential
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]webauthnCredential)
	}
	return r0
}
