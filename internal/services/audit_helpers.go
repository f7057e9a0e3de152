package services

import (
	"go.uber.org/zap"

	"github.com/charlesng35/teamforge/pkg/logger"
)

// AuditEntry describes a relationship change worth keeping in the audit trail.
type AuditEntry struct {
	Action   string
	Actor    string
	Resource string
	Result   string
	Metadata map[string]any
}

// recordAudit writes entry to the audit log stream.
func recordAudit(entry AuditEntry) {
	fields := []zap.Field{
		zap.String("action", entry.Action),
		zap.String("actor", entry.Actor),
		zap.String("resource", entry.Resource),
		zap.String("result", entry.Result),
	}
	if len(entry.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", entry.Metadata))
	}
	logger.WithModule("audit").Info("audit", fields...)
}
