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

package metrics

const (
	// HTTP request metrics
	MetricRequestsTotal   = "marketplace_http_requests_total"
	MetricRequestDuration = "marketplace_http_request_duration_seconds"
	MetricErrorsTotal     = "marketplace_http_errors_total"

	// Action dispatch metrics
	MetricActionsTotal    = "marketplace_actions_total"
	MetricActionDuration  = "marketplace_action_duration_seconds"
	MetricActionErrors    = "marketplace_action_errors_total"

	// Search metrics, broken out by algorithm since cost varies widely
	// between simple/filtered/lexical/optimal.
	MetricSearchDuration = "marketplace_search_duration_seconds"
	MetricSearchResults  = "marketplace_search_results_count"

	// Fetch-messages metrics
	MetricFetchDuration = "marketplace_fetch_messages_duration_seconds"

	// Agent runtime metrics
	MetricAgentStatus      = "marketplace_agent_status"
	MetricAgentStepErrors  = "marketplace_agent_step_errors_total"
)

// MarketplaceMetrics provides the marketplace gateway and agent runtime's
// domain metrics.
type MarketplaceMetrics struct {
	collector Collector
}

// NewMarketplaceMetrics creates a new marketplace metrics recorder.
func NewMarketplaceMetrics(collector Collector) *MarketplaceMetrics {
	return &MarketplaceMetrics{collector: collector}
}

// RecordRequest records one HTTP request with its route and duration.
func (m *MarketplaceMetrics) RecordRequest(route, method string, status int, duration float64) {
	labels := NewLabels("route", route, "method", method, "status", statusClass(status))
	m.collector.IncrementCounter(MetricRequestsTotal, labels)
	m.collector.ObserveHistogram(MetricRequestDuration, duration, labels)
	if status >= 400 {
		m.collector.IncrementCounter(MetricErrorsTotal, labels)
	}
}

// RecordAction records one dispatched protocol action.
func (m *MarketplaceMetrics) RecordAction(action string, isError bool, duration float64) {
	labels := NewLabels("action", action)
	m.collector.IncrementCounter(MetricActionsTotal, labels)
	m.collector.ObserveHistogram(MetricActionDuration, duration, labels)
	if isError {
		m.collector.IncrementCounter(MetricActionErrors, labels)
	}
}

// RecordSearch records one search request's algorithm, duration, and
// result-page size.
func (m *MarketplaceMetrics) RecordSearch(algorithm string, duration float64, results int) {
	labels := NewLabels("algorithm", algorithm)
	m.collector.ObserveHistogram(MetricSearchDuration, duration, labels)
	m.collector.SetGauge(MetricSearchResults, float64(results), labels)
}

// RecordFetch records one fetch_messages request's duration.
func (m *MarketplaceMetrics) RecordFetch(duration float64) {
	m.collector.ObserveHistogram(MetricFetchDuration, duration, NoLabels())
}

// SetAgentStatus sets an agent runtime's status (1=running, 0=stopped).
func (m *MarketplaceMetrics) SetAgentStatus(agentID string, status float64) {
	m.collector.SetGauge(MetricAgentStatus, status, NewLabels("agent_id", agentID))
}

// RecordAgentStepError records one failed agent.Policy.Step call.
func (m *MarketplaceMetrics) RecordAgentStepError(agentID string) {
	m.collector.IncrementCounter(MetricAgentStepErrors, NewLabels("agent_id", agentID))
}

// statusClass buckets an HTTP status code into its class (2xx, 4xx, ...)
// to keep the status label's cardinality bounded.
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
