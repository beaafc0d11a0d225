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

// Package observability provides metrics, logging, and health-check
// capabilities for the marketplace gateway and agent runtime.
//
// # Overview
//
// This package enables comprehensive observability through:
//   - Metrics collection (Prometheus)
//   - Structured logging
//   - Tracing configuration (validated only; see Tracing below)
//   - Health checks
//
// # Metrics
//
// Collect and expose metrics for monitoring:
//
//	collector := metrics.NewPrometheusCollector()
//	marketMetrics := metrics.NewMarketplaceMetrics(collector)
//
//	// Record a dispatched action
//	marketMetrics.RecordAction("send_message", false, 0.003)
//
//	// Expose metrics
//	http.Handle("/metrics", collector.Handler())
//
// # Logging
//
// Structured logging with context propagation:
//
//	logger := logging.NewStructuredLogger(logging.LevelInfo)
//
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logger.Info(ctx, "message handled",
//	    logging.String("agent_id", "agent-1"),
//	    logging.Int("duration_ms", 42),
//	)
//
// # Tracing
//
// Config carries a TracingConfig, and Config.Validate checks its endpoint
// and sampling rate when tracing is enabled. There is no tracer in this
// module: nothing reads TracingConfig beyond validation, and no spans are
// recorded.
//
// # Health Checks
//
// Liveness, readiness, and startup probes:
//
//	liveness := health.NewLivenessChecker()
//	readiness := health.NewReadinessChecker(startupChecker)
//	readiness.AddCheck(health.NewStorageHealthCheck(backend))
//
//	http.Handle("/health/live", health.Handler(liveness))
//	http.Handle("/health/ready", health.Handler(readiness))
//
// # Integration
//
//	manager, err := observability.NewManager(&observability.ManagerConfig{
//	    AgentID: "gateway",
//	    Config:  observability.DefaultConfig(),
//	})
//	defer manager.Shutdown(ctx)
package observability
