// Package observability defines the instrumentation surface the pipeline
// emits into: tracing spans per normalization stage, counters and histograms
// for outcomes, and structured logging. The [Provider] interface bundles the
// three concerns; the slog subpackage ships a standard-library-only
// implementation suitable for development and small deployments.
//
// The core pipeline treats the provider as optional: with none attached, no
// instrumentation code runs at all.
package observability
