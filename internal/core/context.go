package core

import "context"

type contextKey string

const ctxKeyIPAddress contextKey = "requester_ip"

// ContextWithIPAddress records the requester's IP for the import batch.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// GetIPAddressFromContext extracts the requester's IP from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
