package utils

import (
	"context"

	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func CtxWithRqID(ctx context.Context, rqID string) context.Context {
	return context.WithValue(ctx, rqIDKey{}, rqID)
}

// CreateCtxWithRqID is used by background jobs that have no incoming request.
func CreateCtxWithRqID(ctx context.Context) context.Context {
	return CtxWithRqID(ctx, uuid.NewString())
}
