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

// Package config loads and exposes the runtime configuration for the relying party server.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Runtime holds the process-wide configuration and derived paths.
type Runtime struct {
	Home   string
	Config Config
}

// Config is the top level runtime configuration document, loaded from a YAML file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	WebAuthn WebAuthnConfig `yaml:"webauthn"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Session  SessionConfig  `yaml:"session"`
}

// ServerConfig carries server identity and listener settings.
type ServerConfig struct {
	Identifier string `yaml:"identifier"`
	Hostname   string `yaml:"hostname"`
	Port       int    `yaml:"port"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// WebAuthnConfig configures the relying party identity and ceremony policy.
type WebAuthnConfig struct {
	RPID                    string   `yaml:"rp_id"`
	RPDisplayName           string   `yaml:"rp_display_name"`
	RPOrigins               []string `yaml:"rp_origins"`
	AttestationPreference   string   `yaml:"attestation_preference"`
	ChallengeTTLSeconds     int      `yaml:"challenge_ttl_seconds"`
	RejectUnsolicitedExtras bool     `yaml:"reject_unsolicited_extensions"`
}

// DatabaseConfig selects and configures the credential/user store backend.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // "postgres" or "sqlite"
	ConnectionString string `yaml:"connection_string"`
}

// CacheConfig configures the challenge store's Redis backend.
type CacheConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SessionConfig configures the post-authentication redirect session token.
type SessionConfig struct {
	SigningKey         string `yaml:"signing_key"`
	SuccessRedirectURL string `yaml:"success_redirect_url"`
	ErrorRedirectURL    string `yaml:"error_redirect_url"`
}

var (
	once    sync.Once
	runtime *Runtime
)

// Load reads the YAML configuration file at path and stores it as the process-wide runtime.
// Safe to call once during startup; subsequent calls are no-ops.
func Load(path string) (*Runtime, error) {
	var loadErr error
	once.Do(func() {
		runtime, loadErr = loadFromFile(path)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return runtime, nil
}

func loadFromFile(path string) (*Runtime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	home, err := os.Getwd()
	if err != nil {
		home = "."
	}

	return &Runtime{Home: home, Config: cfg}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.WebAuthn.AttestationPreference == "" {
		cfg.WebAuthn.AttestationPreference = "none"
	}
	if cfg.WebAuthn.ChallengeTTLSeconds == 0 {
		cfg.WebAuthn.ChallengeTTLSeconds = 300
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
}

// GetThunderRuntime returns the process-wide runtime configuration. Panics if Load has not
// been called, mirroring the fail-fast startup contract of the server.
func GetThunderRuntime() *Runtime {
	if runtime == nil {
		panic("config: runtime accessed before Load")
	}
	return runtime
}
