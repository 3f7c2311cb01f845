package types

import (
	"context"
)

type ContextKey string

const (
	CtxTenantID  ContextKey = "ctx_tenant_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxRequestID ContextKey = "ctx_request_id"
)

// DefaultTenantID is used when no tenant is attached to the request,
// e.g. webhook and cron invocations.
const DefaultTenantID = "00000000-0000-0000-0000-000000000000"

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// GetTenantID returns the tenant ID from the context, falling back to
// the default tenant when unset.
func GetTenantID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxTenantID).(string); ok && id != "" {
		return id
	}
	return DefaultTenantID
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxUserID).(string); ok {
		return id
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxRequestID).(string); ok {
		return id
	}
	return ""
}
