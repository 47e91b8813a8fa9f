package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dangerclosesec/dealroom/internal/audit"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/repository"
)

// AuditLogService reads back the access audit trail.
type AuditLogService struct {
	repo repository.AuditLogRepositoryIface
}

func NewAuditLogService(repo repository.AuditLogRepositoryIface) *AuditLogService {
	return &AuditLogService{repo: repo}
}

// AuditLogPage is one page of audit entries plus the unpaged total.
type AuditLogPage struct {
	Logs   []model.AccessAuditLog `json:"logs"`
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

const maxAuditPageSize = 500

func (s *AuditLogService) Query(ctx context.Context, params repository.AuditQueryParams) (*AuditLogPage, error) {
	if params.Limit <= 0 {
		params.Limit = 100
	}
	if params.Limit > maxAuditPageSize {
		params.Limit = maxAuditPageSize
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	logs, total, err := s.repo.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.AccessAuditLog{}
	}
	return &AuditLogPage{Logs: logs, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

// recordAudit writes an audit entry. The change it describes has already been
// committed, so a failure is logged rather than returned.
func recordAudit(ctx context.Context, recorder audit.Recorder, entry audit.Entry) {
	if err := recorder.Record(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		slog.WarnContext(ctx, "failed to record access audit entry", "error", err, "action", entry.Action, "entityID", entry.EntityID)
	}
}
