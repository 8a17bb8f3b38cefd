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

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexusauth/webauthn-rp/internal/system/config"
	"github.com/nexusauth/webauthn-rp/internal/system/log"
	"github.com/nexusauth/webauthn-rp/internal/system/observability"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the server configuration file")
	flag.Parse()

	runtime, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(runtime.Config.Log.Level)
	logger := log.GetLogger()

	shutdownTracing, err := observability.InitTracerProvider(runtime.Config.Server.Identifier)
	if err != nil {
		logger.Fatal("Failed to initialize tracer provider", log.Error(err))
	}

	mux := http.NewServeMux()
	registerServices(mux)

	server := createHTTPServer(logger, runtime.Config, mux)

	go func() {
		logger.Info("Starting relying party server", log.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", log.Error(err))
		}
	}()

	waitForShutdownSignal()

	logger.Info("Shutting down relying party server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", log.Error(err))
	}

	unregisterServices()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error shutting down tracer provider", log.Error(err))
	}
}

func createHTTPServer(logger *log.Logger, cfg config.Config, mux *http.ServeMux) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	logger.Debug("Configured HTTP server address", log.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

func waitForShutdownSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
