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

// Package provider wires the configured SQL backend (Postgres or embedded SQLite) behind a
// single DBClient contract used by the storage layer.
package provider

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	_ "github.com/lib/pq" // postgres driver
	_ "modernc.org/sqlite" // embedded sqlite driver

	"github.com/nexusauth/webauthn-rp/internal/system/config"
	dbmodel "github.com/nexusauth/webauthn-rp/internal/system/database/model"
)

// DBClientInterface is the minimal surface the store layer needs from a SQL backend.
type DBClientInterface interface {
	QueryContext(ctx context.Context, query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	ExecuteContext(ctx context.Context, query dbmodel.DBQuery, args ...interface{}) (int64, error)
}

// DBProviderInterface resolves the configured database client.
type DBProviderInterface interface {
	GetConfigDBClient() (DBClientInterface, error)
}

type dbProvider struct {
	mu     sync.Mutex
	client DBClientInterface
}

var (
	once     sync.Once
	provider *dbProvider
)

// GetDBProvider returns the process-wide database provider singleton.
func GetDBProvider() DBProviderInterface {
	once.Do(func() {
		provider = &dbProvider{}
	})
	return provider
}

// GetConfigDBClient lazily opens the SQL connection pool described by the runtime configuration.
func (p *dbProvider) GetConfigDBClient() (DBClientInterface, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	cfg := config.GetThunderRuntime().Config.Database

	driverName := "sqlite"
	if cfg.Driver == "postgres" {
		driverName = "postgres"
	}

	conn, err := sql.Open(driverName, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p.client = &sqlClient{db: conn, translatePlaceholders: driverName == "sqlite"}
	return p.client, nil
}

var dollarPlaceholder = regexp.MustCompile(`\$\d+`)

// sqlClient adapts database/sql to DBClientInterface, translating $N placeholders to "?"
// when the underlying driver does not support positional dollar parameters.
type sqlClient struct {
	db                    *sql.DB
	translatePlaceholders bool
}

func (c *sqlClient) rewrite(query string) string {
	if !c.translatePlaceholders {
		return query
	}
	return dollarPlaceholder.ReplaceAllString(query, "?")
}

// QueryContext executes a SELECT and returns each row as a column-name-keyed map.
func (c *sqlClient) QueryContext(
	ctx context.Context, query dbmodel.DBQuery, args ...interface{},
) ([]map[string]interface{}, error) {
	rows, err := c.db.QueryContext(ctx, c.rewrite(query.Query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.ID, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s: failed to read columns: %w", query.ID, err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("query %s: failed to scan row: %w", query.ID, err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: row iteration error: %w", query.ID, err)
	}

	return results, nil
}

// ExecuteContext executes an INSERT/UPDATE/DELETE and returns the number of affected rows.
func (c *sqlClient) ExecuteContext(
	ctx context.Context, query dbmodel.DBQuery, args ...interface{},
) (int64, error) {
	result, err := c.db.ExecContext(ctx, c.rewrite(query.Query), args...)
	if err != nil {
		return 0, fmt.Errorf("exec %s failed: %w", query.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec %s: failed to read rows affected: %w", query.ID, err)
	}
	return rows, nil
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
