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
	"context"
	"fmt"
	"os"

	"github.com/blinklabs-io/endaoment/internal/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const tracingServiceName = "endaoment"

func (t *Treasury) setupTracing() error {
	var exporter sdktrace.SpanExporter
	var err error
	if t.config.tracingStdout {
		writer := t.config.tracingWriter
		if writer == nil {
			writer = os.Stdout
		}
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(writer),
			stdouttrace.WithPrettyPrint(),
		)
	} else {
		exporter, err = otlptracehttp.New(context.Background())
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", tracingServiceName),
		attribute.String("service.version", version.GetVersionString()),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	t.shutdownFuncs = append(t.shutdownFuncs, tp.Shutdown)
	t.config.logger.Debug(
		"tracing enabled",
		"component", "treasury",
		"stdout", t.config.tracingStdout,
	)
	return nil
}
