package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/gatehouse"
	"github.com/xraph/gatehouse/assignment"
	"github.com/xraph/gatehouse/auditlog"
	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/role"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, gatehouse.ErrInvalidInput) || errors.Is(err, gatehouse.ErrDuplicateName) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, gatehouse.ErrNotAuthorized) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gatehouse.ErrNotFound) ||
		errors.Is(err, role.ErrNotFound) ||
		errors.Is(err, permission.ErrNotFound) ||
		errors.Is(err, assignment.ErrNotFound) ||
		errors.Is(err, auditlog.ErrNotFound)
}

// callerID resolves the acting user from the request context. It
// prefers the authenticated Forge user, then falls back to an actor
// placed with [gatehouse.WithActor]. An empty string means the request
// is unauthenticated.
func callerID(ctx forge.Context) string {
	if id := forge.UserIDFromContext(ctx.Context()); id != "" {
		return id
	}
	return gatehouse.ActorFromContext(ctx.Context())
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
