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

package agent

import (
	"context"
	"time"

	"github.com/sage-x-project/marketplace/client"
	"github.com/sage-x-project/marketplace/observability/logging"
	"github.com/sage-x-project/marketplace/pkg/types"
)

const remoteLogTimeout = 5 * time.Second

// DualLogger writes every entry to a local logging.Logger and also
// forwards it, best-effort and out of band, to the marketplace's log
// journal through client.Logs.Create. A remote write failure is dropped,
// not retried -- local logging remains the source of truth.
type DualLogger struct {
	local  logging.Logger
	remote *client.Client
	name   string
	fields []logging.Field
}

// NewDualLogger builds a DualLogger that names every forwarded entry
// agentName.
func NewDualLogger(local logging.Logger, remote *client.Client, agentName string) *DualLogger {
	return &DualLogger{local: local, remote: remote, name: agentName}
}

func (d *DualLogger) Debug(ctx context.Context, msg string, fields ...logging.Field) {
	d.local.Debug(ctx, msg, fields...)
	d.forward(types.LogLevelDebug, msg, fields)
}

func (d *DualLogger) Info(ctx context.Context, msg string, fields ...logging.Field) {
	d.local.Info(ctx, msg, fields...)
	d.forward(types.LogLevelInfo, msg, fields)
}

func (d *DualLogger) Warn(ctx context.Context, msg string, fields ...logging.Field) {
	d.local.Warn(ctx, msg, fields...)
	d.forward(types.LogLevelWarning, msg, fields)
}

func (d *DualLogger) Error(ctx context.Context, msg string, fields ...logging.Field) {
	d.local.Error(ctx, msg, fields...)
	d.forward(types.LogLevelError, msg, fields)
}

func (d *DualLogger) Fatal(ctx context.Context, msg string, fields ...logging.Field) {
	d.forward(types.LogLevelError, msg, fields)
	d.local.Fatal(ctx, msg, fields...)
}

// With returns a child DualLogger carrying fields on every subsequent
// call, local and remote alike.
func (d *DualLogger) With(fields ...logging.Field) logging.Logger {
	merged := make([]logging.Field, 0, len(d.fields)+len(fields))
	merged = append(merged, d.fields...)
	merged = append(merged, fields...)
	return &DualLogger{
		local:  d.local.With(fields...),
		remote: d.remote,
		name:   d.name,
		fields: merged,
	}
}

func (d *DualLogger) SetLevel(level logging.Level) {
	d.local.SetLevel(level)
}

func (d *DualLogger) SetSamplingRate(rate float64) {
	d.local.SetSamplingRate(rate)
}

// forward ships one entry to the marketplace log journal on its own
// goroutine and timeout, detached from the caller's context so a
// cancelled request (including one made during shutdown) does not drop
// the log.
func (d *DualLogger) forward(level types.LogLevel, msg string, fields []logging.Field) {
	if d.remote == nil {
		return
	}

	data := make(map[string]interface{}, len(d.fields)+len(fields))
	for _, f := range d.fields {
		data[f.Key] = f.Value
	}
	for _, f := range fields {
		data[f.Key] = f.Value
	}

	entry := types.Log{Level: level, Name: d.name, Message: msg, Data: data}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteLogTimeout)
		defer cancel()
		_, _ = d.remote.Logs.Create(ctx, entry)
	}()
}
