// Package trace provides a tracing subsystem for modelfmt runs.
//
// Tracing shows where time goes when a large tree of model files is
// formatted, and which file a slow or failing run was working on.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	modelfmt --trace=- --trace-level=detail ./models
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelPhase: Driver and stage boundaries (collect, format)
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeStage, "collect", parentID)
//	defer span.End("")
package trace
