package tracing

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Upstreams called during a delivery.
const (
	UpstreamStripe = "stripe"
	UpstreamGelato = "gelato"
)

// AttrUpstream names the third-party API a client span talks to.
const AttrUpstream = attribute.Key("storefront.upstream")

// WrapHTTPClient returns a copy of client whose requests carry trace context
// and produce one client span per call to upstream.
//
// URL paths are left off spans: Stripe paths embed checkout session ids.
func WrapHTTPClient(client *http.Client, upstream string) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}
	clone := *client
	base := clone.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	upstream = strings.TrimSpace(upstream)
	if upstream == "" {
		upstream = "http"
	}
	clone.Transport = &upstreamTransport{
		base:     base,
		upstream: upstream,
		tracer:   otel.Tracer(TracerName + "/" + upstream),
	}
	return &clone
}

type upstreamTransport struct {
	base     http.RoundTripper
	upstream string
	tracer   trace.Tracer
}

func (t *upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	method := strings.ToUpper(req.Method)
	ctx, span := t.tracer.Start(req.Context(), t.upstream+" "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrUpstream.String(t.upstream), attribute.String("http.method", method)),
	)
	defer span.End()

	req = req.Clone(ctx)
	InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		if safeErr := SafeError(err); safeErr != nil {
			span.RecordError(safeErr)
		}
		span.SetStatus(codes.Error, t.upstream+" unreachable")
		return resp, err
	}

	span.SetAttributes(SafeAttributes(
		attribute.String("http.host", req.URL.Host),
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int64("http.client_duration_ms", time.Since(start).Milliseconds()),
	)...)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if retry := resp.Header.Get("Retry-After"); retry != "" {
			span.SetAttributes(attribute.String("http.retry_after", retry))
		}
		span.SetStatus(codes.Error, t.upstream+" rate limited")
	case resp.StatusCode >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, t.upstream+" server error")
	}
	return resp, nil
}
