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

// Package log provides the structured logging facade used across the module.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/nexusauth/webauthn-rp/internal/system/constants"
)

// LoggerKeyComponentName is the structured attribute key used to tag the emitting component.
const LoggerKeyComponentName = "component"

var (
	once        sync.Once
	rootLogger  *Logger
	initMutex   sync.Mutex
	initialized bool
)

// Logger wraps slog.Logger to provide the fluent, attribute-oriented API used throughout the module.
type Logger struct {
	inner *slog.Logger
}

// Field is a structured logging attribute.
type Field = slog.Attr

// String creates a string-valued field.
func String(key, value string) Field {
	return slog.String(key, value)
}

// Int creates an int-valued field.
func Int(key string, value int) Field {
	return slog.Int(key, value)
}

// Bool creates a bool-valued field.
func Bool(key string, value bool) Field {
	return slog.Bool(key, value)
}

// Any creates a field from an arbitrary value.
func Any(key string, value interface{}) Field {
	return slog.Any(key, value)
}

// Error creates an error-valued field under the conventional "error" key.
func Error(err error) Field {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// MaskString redacts all but the first and last character of a string, for logging sensitive values.
func MaskString(s string) string {
	if len(s) <= 2 {
		return strings.Repeat("*", len(s))
	}
	return string(s[0]) + strings.Repeat("*", len(s)-2) + string(s[len(s)-1])
}

// Init initializes the root logger according to the configured log level. Safe to call multiple times;
// only the first call takes effect.
func Init(level string) {
	initMutex.Lock()
	defer initMutex.Unlock()
	if initialized {
		return
	}
	rootLogger = newLogger(level)
	initialized = true
}

func newLogger(level string) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{inner: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger returns the process-wide root logger, lazily initializing it from the
// LOG_LEVEL environment variable on first use.
func GetLogger() *Logger {
	once.Do(func() {
		if !initialized {
			level := os.Getenv(constants.LogLevelEnvironmentVariable)
			if level == "" {
				level = constants.DefaultLogLevel
			}
			rootLogger = newLogger(level)
		}
	})
	return rootLogger
}

// With returns a child logger carrying the given fields on every subsequent record.
func (l *Logger) With(fields ...Field) *Logger {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs a debug-level record.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelDebug, msg, fields...)
}

// Info logs an info-level record.
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelInfo, msg, fields...)
}

// Warn logs a warn-level record.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelWarn, msg, fields...)
}

// Error logs an error-level record.
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelError, msg, fields...)
}

// Fatal logs an error-level record and terminates the process.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelError, msg, fields...)
	os.Exit(1)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, fields ...Field) {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	l.inner.Log(ctx, level, msg, args...)
}
