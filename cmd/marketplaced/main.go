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

// Command marketplaced runs the marketplace gateway and its agent
// runtimes: `marketplaced serve` starts the HTTP gateway, `marketplaced
// agent run` drives a single agent against one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marketplaced",
	Short: "Marketplace gateway and agent runtime",
	Long: `marketplaced runs the marketplace's HTTP gateway and the agent
runtimes that register and act against it.

Configuration can be provided via:
  - config.yaml file (default: ./config.yaml)
  - MARKETPLACE_ prefixed environment variables
  - Command-line flags (highest priority)`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
