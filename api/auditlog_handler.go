package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/gatehouse/auditlog"
)

func (a *API) registerAuditLogRoutes(router forge.Router) error {
	return router.Group("/v1", forge.WithGroupTags("audit")).GET("/audit-logs", a.listAuditLogs,
		forge.WithSummary("Query audit log"),
		forge.WithDescription("Lists audit log entries, newest first."),
		forge.WithOperationID("listAuditLogs"),
		forge.WithRequestSchema(ListAuditLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Audit log entries", ListResponse[*auditlog.Entry]{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listAuditLogs(ctx forge.Context, req *ListAuditLogsRequest) (*ListResponse[*auditlog.Entry], error) {
	filter := &auditlog.QueryFilter{
		EventTypePrefix: req.EventType,
		UserID:          req.UserID,
		Limit:           defaultLimit(req.Limit),
		Offset:          req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid after timestamp: %v", err))
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid before timestamp: %v", err))
		}
		filter.Before = &t
	}

	entries, err := a.eng.AuditLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	total, err := a.eng.CountAuditLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*auditlog.Entry]{
		Items:  entries,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
