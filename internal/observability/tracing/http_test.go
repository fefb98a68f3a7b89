package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestWrapHTTPClientPropagatesTraceContext(t *testing.T) {
	SetPropagator()
	provider := sdktrace.NewTracerProvider()
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(orig)

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx, span := provider.Tracer("test").Start(context.Background(), "parent")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := WrapHTTPClient(nil, UpstreamStripe).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestWrapHTTPClientNamesUpstreamAndFlagsRateLimits(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(orig)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v4/orders/cs_secret_session", nil)
	require.NoError(t, err)
	resp, err := WrapHTTPClient(nil, UpstreamGelato).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, req.Header.Get("traceparent"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "gelato POST", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "gelato rate limited", span.Status().Description)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "gelato", attrs[AttrUpstream].AsString())
	assert.Equal(t, int64(429), attrs["http.status_code"].AsInt64())
	assert.Equal(t, "3", attrs["http.retry_after"].AsString())
	for _, kv := range span.Attributes() {
		assert.NotContains(t, kv.Value.Emit(), "cs_secret_session")
	}
}

func TestSafeAttributesDropsSecrets(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.method", "POST"),
		attribute.String("gelato.api_key", "k"),
		attribute.String("stripe.webhook_secret", "s"),
	)
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.method"), attrs[0].Key)
}
