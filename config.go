// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package endaoment

import (
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/endaoment/event"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	eventBus     *event.EventBus
	dataDir      string
	// Trace exporter output for stdout tracing, os.Stdout when nil
	tracingWriter   io.Writer
	tracing         bool
	tracingStdout   bool
	shutdownTimeout time.Duration
}

// ConfigOptionFunc is a type that represents functions that modify the Treasury config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new treasury config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

// WithDataDir specifies the directory holding the event journal. The journal
// is kept in memory when no directory is given
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPromRegistry specifies a prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithEventBus specifies an existing event bus to publish committed events
// on. The caller remains responsible for stopping it
func WithEventBus(eventBus *event.EventBus) ConfigOptionFunc {
	return func(c *Config) {
		c.eventBus = eventBus
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies how long Close waits for buffered spans to be exported. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
