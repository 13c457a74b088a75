// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; handlers and services read them:
//
//	tabID := requestcontext.TabID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Tests inject them directly:
//
//	ctx = requestcontext.WithTabID(ctx, id.NewTabID())
package requestcontext

import (
	"context"

	id "milsabores/pkg/domain"
)

type (
	tabIDKey     struct{}
	requestIDKey struct{}
	clientIPKey  struct{}
	deviceKey    struct{}
)

var (
	ContextKeyTabID     = tabIDKey{}
	ContextKeyRequestID = requestIDKey{}
	ContextKeyClientIP  = clientIPKey{}
	ContextKeyDevice    = deviceKey{}
)

// TabID retrieves the storefront tab the request acts on.
// Returns the zero value (nil UUID) if not set.
func TabID(ctx context.Context) id.TabID {
	if tabID, ok := ctx.Value(ContextKeyTabID).(id.TabID); ok {
		return tabID
	}
	return id.TabID{}
}

func WithTabID(ctx context.Context, tabID id.TabID) context.Context {
	return context.WithValue(ctx, ContextKeyTabID, tabID)
}

func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// Device is the display name of the client's browser and OS, such as
// "Chrome on Windows 10".
func Device(ctx context.Context) string {
	if device, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return device
	}
	return ""
}

func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ContextKeyDevice, device)
}
