package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/config"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sr),
		sdktrace.WithResource(resource.Empty()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), &config.TracingConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = InitTracing(context.Background(), nil, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_HTTP(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// HTTP avoids dialing a gRPC connection in tests; no spans are created.
	cfg := &config.TracingConfig{
		Enabled:     true,
		ServiceName: "coursechat-test",
		Protocol:    "http",
		Insecure:    true,
		SamplerRate: 2.5,
		Environment: "dev",
		Headers:     map[string]string{"x-test": "1"},
	}

	shutdown, err := InitTracing(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_UnknownProtocol(t *testing.T) {
	_, err := InitTracing(context.Background(), &config.TracingConfig{Enabled: true, Protocol: "udp"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported tracing protocol")
}

func TestClampRate(t *testing.T) {
	assert.Equal(t, 0.0, clampRate(-1))
	assert.Equal(t, 0.5, clampRate(0.5))
	assert.Equal(t, 1.0, clampRate(3))
}

func TestSpanScope(t *testing.T) {
	sr := installRecorder(t)

	scope := Tracer("trace-test").Start(context.Background(), "op")
	scope.WithAttrs(attribute.String("k", "v")).Fail(errors.New("boom"))
	scope.Fail(nil)
	scope.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "op", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("k", "v"))
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}

func TestSpanScope_NilSafe(t *testing.T) {
	var s *SpanScope
	assert.Nil(t, s.WithAttrs(attribute.Int("n", 1)))
	s.Fail(errors.New("x"))
	s.End()
}
