package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) registerAuthzRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Capability check"),
		forge.WithDescription("Evaluates whether the user can perform the action on the resource."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce capability"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.Resource == "" || req.Action == "" {
		return nil, forge.BadRequest("resource and action are required")
	}

	allowed, err := a.eng.HasCapability(ctx.Context(), req.UserID, req.Resource, req.Action)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &CheckResponse{Allowed: allowed}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.Resource == "" || req.Action == "" {
		return nil, forge.BadRequest("resource and action are required")
	}

	allowed, err := a.eng.HasCapability(ctx.Context(), req.UserID, req.Resource, req.Action)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &CheckResponse{Allowed: allowed}
	if !allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
