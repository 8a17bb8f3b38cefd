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

	"github.com/stretchr/testify/mock"

	dbmodel "github.com/nexusauth/webauthn-rp/internal/system/database/model"
)

type dbClientInterfaceMock struct {
	mock.Mock
}

func newDBClientInterfaceMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *dbClientInterfaceMock {
	m := &dbClientInterfaceMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *dbClientInterfaceMock) QueryContext(
	ctx context.Context, query dbmodel.DBQuery, args ...interface{},
) ([]map[string]interface{}, error) {
	ret := m.Called(query, args)
	var rows []map[string]interface{}
	if v := ret.Get(0); v != nil {
		rows = v.([]map[string]interface{})
	}
	return rows, ret.Error(1)
}

func (m *dbClientInterfaceMock) ExecuteContext(
	ctx context.Context, query dbmodel.DBQuery, args ...interface{},
) (int64, error) {
	ret := m.Called(query, args)
	return ret.Get(0).(int64), ret.Error(1)
}
