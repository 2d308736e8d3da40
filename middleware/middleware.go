// Package middleware provides HTTP authorization middleware for Gatehouse.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/gatehouse"
)

// RequireCapability allows the request only if the authenticated user
// holds the given (resource, action) capability. Unauthenticated
// requests are denied.
func RequireCapability(eng *gatehouse.Engine, resource, action string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := actorID(eng, ctx)
			allowed, err := eng.HasCapability(ctx.Context(), userID, resource, action)
			if err != nil || !allowed {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAdminAccess allows the request only if the authenticated user
// holds an administrative role.
func RequireAdminAccess(eng *gatehouse.Engine) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := actorID(eng, ctx)
			ok, err := eng.HasAdminAccess(ctx.Context(), userID)
			if err != nil || !ok {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireSuperAdmin allows the request only if the authenticated user
// holds the super-admin role.
func RequireSuperAdmin(eng *gatehouse.Engine) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := actorID(eng, ctx)
			ok, err := eng.IsSuperAdmin(ctx.Context(), userID)
			if err != nil || !ok {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// actorID resolves the acting user: the authenticated Forge user first,
// then the engine's identity resolver if one is configured.
func actorID(eng *gatehouse.Engine, ctx forge.Context) string {
	if id := forge.UserIDFromContext(ctx.Context()); id != "" {
		return id
	}
	ident, err := eng.ResolveIdentity(ctx.Context())
	if err != nil || ident == nil {
		return ""
	}
	return ident.ID
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
