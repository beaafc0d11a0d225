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
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sage-x-project/marketplace/client"
	"github.com/sage-x-project/marketplace/core/agent"
	"github.com/sage-x-project/marketplace/launcher"
	"github.com/sage-x-project/marketplace/observability/logging"
	"github.com/sage-x-project/marketplace/pkg/types"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run an agent against a marketplace",
}

var agentRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Register an agent and drive its lifecycle loop",
	Long: `Register an agent with a marketplace and run its lifecycle loop
(register, on_started, repeated step, on_will_stop, on_stopped) until
interrupted.

With no custom policy wired in, the agent runs a basic echo: it polls
for new messages and replies to each sender with "Echo: <content>".

Example:
  marketplaced agent run --id biz-1 --marketplace-url http://localhost:8080
  marketplaced agent run --config agent-config.yaml --profile profile.yaml`,
	RunE: runAgent,
}

var (
	agentConfigPath  string
	agentID          string
	agentMarketplace string
	agentProfilePath string
	agentPollMillis  int
)

func init() {
	agentCmd.AddCommand(agentRunCmd)

	agentRunCmd.Flags().StringVarP(&agentConfigPath, "config", "c", "config.yaml", "Path to configuration file")
	agentRunCmd.Flags().StringVar(&agentID, "id", "", "Agent id (overrides config)")
	agentRunCmd.Flags().StringVar(&agentMarketplace, "marketplace-url", "", "Marketplace base URL (overrides config)")
	agentRunCmd.Flags().StringVar(&agentProfilePath, "profile", "", "Path to a YAML file of participant metadata (overrides config)")
	agentRunCmd.Flags().IntVar(&agentPollMillis, "poll-interval-ms", 1000, "Echo policy's poll interval between fetch_messages calls")
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(agentConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if agentID != "" {
		cfg.Agent.ID = agentID
	}
	if agentMarketplace != "" {
		cfg.Agent.MarketplaceURL = agentMarketplace
	}
	if agentProfilePath != "" {
		cfg.Agent.ProfilePath = agentProfilePath
	}
	if cfg.Agent.MarketplaceURL == "" {
		return fmt.Errorf("marketplace URL required (set agent.marketplace_url or --marketplace-url)")
	}

	metadata, err := loadProfile(cfg.Agent.ProfilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	c, err := client.NewClient(cfg.Agent.MarketplaceURL,
		client.WithTimeout(cfg.Agent.RequestTimeout),
		client.WithRetry(cfg.Agent.MaxRetries, cfg.Agent.RetryInitial, cfg.Agent.RetryMax, cfg.Agent.RetryJitter),
	)
	if err != nil {
		return fmt.Errorf("failed to create marketplace client: %w", err)
	}
	defer c.Close()

	logger := logging.NewStructuredLogger(logging.LevelInfo)
	dual := agent.NewDualLogger(logger, c, cfg.Agent.ID)

	rt, err := agent.NewBuilder(types.Participant{ID: cfg.Agent.ID, Metadata: metadata}).
		WithClient(c).
		WithPolicy(newEchoPolicy(time.Duration(agentPollMillis) * time.Millisecond)).
		WithLogger(dual).
		WithErrorBackoff(cfg.Agent.ErrorBackoff).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build agent runtime: %w", err)
	}

	log.Printf("starting agent %q against %s", cfg.Agent.ID, cfg.Agent.MarketplaceURL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigChan
		log.Println("shutdown signal received, stopping agent")
		rt.Shutdown()
	}()

	agentLauncher := launcher.NewAgentLauncher()
	if err := agentLauncher.Run(ctx, rt); err != nil {
		return fmt.Errorf("agent exited with error: %w", err)
	}

	log.Println("agent stopped")
	return nil
}

// loadProfile reads a YAML file of participant metadata. An empty path
// is valid and yields no metadata.
func loadProfile(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var metadata map[string]interface{}
	if err := yaml.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return metadata, nil
}
