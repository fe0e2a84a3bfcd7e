package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shrek82/jsql/core"
)

const instrumentationName = "github.com/shrek82/jsql/middleware"

// TracingBuilder builds a middleware opening one span per command execution.
type TracingBuilder struct {
	Tracer trace.Tracer
}

func (b *TracingBuilder) Build() core.Middleware {
	if b.Tracer == nil {
		b.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next core.ExecFunc) core.ExecFunc {
		return func(ctx context.Context, info *core.ExecInfo) *core.ExecResult {
			ctx, span := b.Tracer.Start(ctx, "jsql."+info.Kind)
			defer span.End()

			span.SetAttributes(attribute.String("db.statement", info.Description))
			span.SetAttributes(attribute.String("jsql.kind", info.Kind))

			res := next(ctx, info)

			if res.Err != nil {
				span.RecordError(res.Err)
				span.SetStatus(codes.Error, res.Err.Error())
			}
			return res
		}
	}
}
