package oql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
)

// Context carries the per-compilation tracing state. Compilation itself is
// synchronous and pure; the context only feeds observability.
type Context struct {
	context.Context
	id     uuid.UUID
	tracer opentracing.Tracer
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithTracer sets the tracer used for compilation spans.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// NewContext creates a compilation context. By default it has a noop tracer
// and a fresh compilation id.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		id:      uuid.NewV4(),
		tracer:  opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a default context with default values.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// ID returns the compilation id.
func (c *Context) ID() uuid.UUID { return c.id }

// Span creates a new tracing span wrapping the given operation and returns a
// context whose inner context carries it as the active span.
func (c *Context) Span(opName string, opts ...opentracing.StartSpanOption) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, &Context{Context: ctx, id: c.id, tracer: c.tracer}
}
