// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/marketplace/auth"
	"github.com/sage-x-project/marketplace/config"
	"github.com/sage-x-project/marketplace/observability"
	"github.com/sage-x-project/marketplace/observability/health"
	"github.com/sage-x-project/marketplace/protocol"
	httpserver "github.com/sage-x-project/marketplace/server/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the marketplace gateway",
	Long: `Start the HTTP server that exposes the marketplace: agent
registration, action execution, the log journal, and health checks.

Configuration can be provided via:
  - config.yaml file (default: ./config.yaml)
  - MARKETPLACE_ prefixed environment variables
  - Command-line flags (highest priority)

Example:
  marketplaced serve
  marketplaced serve --config my-config.yaml
  marketplaced serve --port 9000 --host 0.0.0.0`,
	RunE: runServe,
}

var (
	serveConfig string
	servePort   int
	serveHost   string
)

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "config.yaml", "Path to configuration file")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Server port (0 = use config value)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Server host (empty = use config value)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	log.Printf("starting marketplace gateway")
	log.Printf("config: %s", serveConfig)
	log.Printf("address: http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("storage: %s", cfg.Storage.Type)

	backend, err := newBackend(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer backend.Close()

	obsCfg := observability.DefaultConfig()
	obsCfg.Logging.Level = cfg.Logging.Level
	obsCfg.Metrics.Enabled = cfg.Metrics.Enabled
	obsCfg.Metrics.Port = cfg.Metrics.Port
	obsCfg.Metrics.Path = cfg.Metrics.Path

	manager, err := observability.NewManager(&observability.ManagerConfig{
		AgentID: "marketplace-gateway",
		Config:  obsCfg,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	manager.ReadinessChecker().AddCheck(health.NewStorageHealthCheck(backend))

	server := httpserver.NewServer(cfg.Server, cfg.Search, cfg.RateLimit, httpserver.Deps{
		Backend:       backend,
		Protocol:      protocol.NewDefault(),
		Tokens:        auth.NewTokenService(backend.Participants()),
		IDAllocator:   auth.NewIDAllocator(backend.Participants()),
		Observability: manager,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-sigChan:
		log.Println("shutdown signal received, stopping gateway")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	if err := server.Shutdown(context.Background(), cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("failed to stop gateway gracefully: %w", err)
	}

	log.Println("gateway stopped")
	return nil
}

// loadConfig loads configuration from path, falling back to defaults
// when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("config file not found: %s, using defaults", path)
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	log.Printf("configuration loaded from %s", path)
	return cfg, nil
}
