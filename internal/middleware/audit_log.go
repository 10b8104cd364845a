package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/service"
)

// Audit action types recorded by the handlers.
const (
	ActionCheckout         = "checkout"
	ActionProcessCaseBreak = "process_case_break"
	ActionProductCreate    = "product_create"
	ActionProductUpdate    = "product_update"
	ActionPurchaseStatus   = "purchase_status"
)

// AuditLog records a state-changing action, e.g. a checkout or a processed break-case request.
func AuditLog(loggingService service.LoggingService, c *gin.Context, actionType string, message string, fields map[string]interface{}) {
	if loggingService == nil {
		return
	}

	entry := newLogEntry(c, "info", message).WithFields(fields)
	entry.ActionType = actionType
	persistLog(loggingService, entry)
}

// AuditLogError records a failed state-changing action.
func AuditLogError(loggingService service.LoggingService, c *gin.Context, actionType string, message string, err error, fields map[string]interface{}) {
	if loggingService == nil {
		return
	}

	entry := newLogEntry(c, "error", message).WithFields(fields)
	entry.ActionType = actionType
	if err != nil {
		entry.Error = err.Error()
	}
	persistLog(loggingService, entry)
}
