package capture

import "context"

type contextKey int

const (
	workerContextKey contextKey = iota
	jobIDContextKey
)

// WithWorker annotates a context with the worker index that owns it.
func WithWorker(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, workerContextKey, index)
}

// WorkerFromContext extracts the owning worker index, if any.
func WorkerFromContext(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(workerContextKey).(int)
	return index, ok
}

// WithJobID annotates a context with the queue job being processed.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDContextKey, id)
}

// JobIDFromContext extracts the queue job id, if any.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(jobIDContextKey).(int64)
	return id, ok
}
