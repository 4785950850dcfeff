// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceName: "test-service", ExporterType: "grpc"})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording(), "disabled telemetry installs a noop tracer")
	span.End()

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "zipkin"})
	require.Error(t, err)
	assert.Equal(t, "unsupported exporter type: zipkin (supported: grpc, http)", err.Error())
}

func TestNewProvider_RecordsSpansWithAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := newProvider(context.Background(),
		Config{Enabled: true, ServiceName: "vidresolve", ServiceVersion: "test", SamplingRate: 1},
		sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	_, span := Tracer("test").Start(context.Background(), "resolve")
	span.SetAttributes(ResolutionAttributes("youtube", "dQw4w9WgXcQ", true)...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "resolve", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String(VideoProviderKey, "youtube"))
	assert.Contains(t, spans[0].Attributes, attribute.String(VideoCanonicalIDKey, "dQw4w9WgXcQ"))

	svc, ok := spans[0].Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "vidresolve", svc.AsString())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestAttributes(t *testing.T) {
	attrs := ResolutionAttributes("generic", "", true)
	assert.Len(t, attrs, 2, "empty canonical id is omitted")

	attrs = PlaybackAttributes("sess", 3, "loading", "")
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(SessionIDKey, "sess"),
		attribute.Int64(GenerationKey, 3),
		attribute.String(PlaybackStateKey, "loading"),
	}, attrs)

	assert.Equal(t, []attribute.KeyValue{
		attribute.String(ListIdentityKey, "abc"),
		attribute.Int(ListSizeKey, 2),
	}, ListAttributes("abc", 2))

	assert.Contains(t, ErrorAttributes("not_found"), attribute.String(ErrorTypeKey, "not_found"))
}
