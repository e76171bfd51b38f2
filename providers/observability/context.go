package observability

import "context"

// spanKey is the private context key under which pipeline spans travel.
type spanKey struct{}

// ContextWithSpan returns a child of ctx carrying span. The pipeline attaches
// each stage span this way so logging and nested work inside the stage can
// reach it.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanKey{}, span)
}

// SpanFromContext returns the span ctx carries, or nil when there is none.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(Span)
	return span
}
