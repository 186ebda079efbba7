package errors

import (
	"context"

	"github.com/google/uuid"
)

// ctxKey is unexported so only this package can attach request IDs.
type ctxKey struct{}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// GetRequestID returns the request ID carried by ctx, or "" if none is set.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// RequestIDOrGenerate returns the request ID from ctx, minting a fresh one
// when the context carries none. Handlers use this so error responses always
// include a correlatable ID even when the middleware did not run.
func RequestIDOrGenerate(ctx context.Context) string {
	if id := GetRequestID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}
