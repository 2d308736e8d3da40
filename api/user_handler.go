package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/gatehouse"
	"github.com/xraph/gatehouse/permission"
)

func (a *API) registerUserRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("users"))

	if err := g.POST("/users/:userId/roles", a.assignRole,
		forge.WithSummary("Assign role"),
		forge.WithDescription("Grants a role to a user. Requires admin access."),
		forge.WithOperationID("assignRole"),
		forge.WithRequestSchema(AssignRoleRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/users/:userId/roles/:roleName", a.revokeRole,
		forge.WithSummary("Revoke role"),
		forge.WithDescription("Removes a role from a user. Requires admin access."),
		forge.WithOperationID("revokeRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId/roles", a.getUserRoles,
		forge.WithSummary("Get user role summary"),
		forge.WithDescription("Returns the user's roles sorted by display precedence."),
		forge.WithOperationID("getUserRoles"),
		forge.WithResponseSchema(http.StatusOK, "Role summary", &gatehouse.RoleSummary{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId/permissions", a.getUserPermissions,
		forge.WithSummary("Get effective permissions"),
		forge.WithDescription("Returns the union of permissions across the user's roles."),
		forge.WithOperationID("getUserPermissions"),
		forge.WithResponseSchema(http.StatusOK, "Permission list", []*permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/users/:userId/promote", a.promoteSuperAdmin,
		forge.WithSummary("Promote to super admin"),
		forge.WithDescription("Grants the super-admin role. Only a super admin may do this."),
		forge.WithOperationID("promoteSuperAdmin"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) assignRole(ctx forge.Context, req *AssignRoleRequest) (*struct{}, error) {
	if req.RoleName == "" {
		return nil, forge.BadRequest("role_name is required")
	}

	err := a.eng.AssignRole(ctx.Context(), callerID(ctx), ctx.Param("userId"), req.RoleName)
	if err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) revokeRole(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	err := a.eng.RevokeRole(ctx.Context(), callerID(ctx), ctx.Param("userId"), ctx.Param("roleName"))
	if err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) getUserRoles(ctx forge.Context, _ *GetUserRequest) (*gatehouse.RoleSummary, error) {
	summary, err := a.eng.Summary(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}

	return summary, ctx.JSON(http.StatusOK, summary)
}

func (a *API) getUserPermissions(ctx forge.Context, _ *GetUserRequest) ([]*permission.Permission, error) {
	perms, err := a.eng.EffectivePermissions(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}

	return perms, ctx.JSON(http.StatusOK, perms)
}

func (a *API) promoteSuperAdmin(ctx forge.Context, _ *GetUserRequest) (*struct{}, error) {
	err := a.eng.PromoteToSuperAdmin(ctx.Context(), callerID(ctx), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
