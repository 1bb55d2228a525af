package common

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID  contextKey = "run_id"
	ContextKeyFileID contextKey = "file_id"
)

// WithRunID adds a batch run ID to the context
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the batch run ID from context
func RunIDFromContext(ctx context.Context) uuid.UUID {
	if runID, ok := ctx.Value(ContextKeyRunID).(uuid.UUID); ok {
		return runID
	}
	return uuid.Nil
}

// WithFileID adds a per-file trace ID to the context
func WithFileID(ctx context.Context, fileID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyFileID, fileID)
}

// FileIDFromContext extracts the per-file trace ID from context
func FileIDFromContext(ctx context.Context) uuid.UUID {
	if fileID, ok := ctx.Value(ContextKeyFileID).(uuid.UUID); ok {
		return fileID
	}
	return uuid.Nil
}

// WithTimeout creates a context with the specified timeout
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
