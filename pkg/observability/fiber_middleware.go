package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Alijeyrad/salon_storefront/pkg/observability"

// FiberMiddleware opens a server span per page request and records request
// count and latency by route.
func FiberMiddleware() fiber.Handler {
	tracer := otel.Tracer(tracerName)
	meter := otel.Meter(tracerName)

	requestCounter, _ := meter.Int64Counter(
		"storefront_http_requests_total",
		metric.WithDescription("Total number of page and form requests"),
		metric.WithUnit("{request}"),
	)
	requestDuration, _ := meter.Float64Histogram(
		"storefront_http_request_duration_ms",
		metric.WithDescription("Page render duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return func(c fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(
			c.Context(),
			propagation.HeaderCarrier(c.GetReqHeaders()),
		)

		route := c.Route().Path
		ctx, span := tracer.Start(ctx, c.Method()+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.route", route),
				attribute.String("http.user_agent", c.Get("User-Agent")),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		c.SetContext(ctx)
		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		start := time.Now()
		err := c.Next()
		elapsed := float64(time.Since(start).Microseconds()) / 1000

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))

		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		requestCounter.Add(ctx, 1, attrs)
		requestDuration.Record(ctx, elapsed, attrs)

		if status >= 500 {
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
			if err != nil {
				span.RecordError(err)
			}
		}

		return err
	}
}
