package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := Tracer
	Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")
	t.Cleanup(func() { Tracer = prev })
	return rec
}

func TestStartQuerySpan(t *testing.T) {
	rec := recordSpans(t)

	_, span := StartQuerySpan(context.Background(), "postgres", "profiles", "UpdateStreak")
	SpanError(span, errors.New("lock timeout"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "db.profiles.UpdateStreak", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("db.system", "postgres"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("db.sql.table", "profiles"))
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "lock timeout", ended[0].Status().Description)
}

func TestStartCacheSpan_NilErrorKeepsStatus(t *testing.T) {
	rec := recordSpans(t)

	_, span := StartCacheSpan(context.Background(), "get")
	SpanError(span, nil)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "redis.get", ended[0].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Empty(t, ended[0].Events())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Contains(t, sampler(0.25).Description(), "ParentBased")
	assert.Contains(t, sampler(0.25).Description(), "0.25")
}

func TestInitTracing(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"})
	assert.ErrorContains(t, err, `unknown TRACING_EXPORTER "zipkin"`)
}
