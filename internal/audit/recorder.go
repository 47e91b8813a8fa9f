package audit

import (
	"context"
	"net/http"
	"strings"

	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/repository"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=./recorder.go -destination=../mocks/mock_audit_recorder.go -package=mocks Recorder

// Entry describes one change to who can see what.
type Entry struct {
	Action     string
	ActorID    uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Context    map[string]interface{}
}

// Recorder defines the interface for access auditing
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type requestInfoKey struct{}

// RequestInfo is the part of the originating request kept with each entry.
type RequestInfo struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

// WithRequest stores the request details that Record attaches to entries.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, RequestInfo{
		RequestID: chimw.GetReqID(r.Context()),
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	})
}

func RequestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 && !strings.HasSuffix(addr, "]") {
		addr = addr[:i]
	}
	return strings.Trim(addr, "[]")
}

// RepositoryRecorder writes entries to the access_audit_logs table.
type RepositoryRecorder struct {
	repo repository.AuditLogRepositoryIface
}

func NewRepositoryRecorder(repo repository.AuditLogRepositoryIface) *RepositoryRecorder {
	return &RepositoryRecorder{repo: repo}
}

func (r *RepositoryRecorder) Record(ctx context.Context, entry Entry) error {
	info := RequestInfoFrom(ctx)

	log := &model.AccessAuditLog{
		ActionType: entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID.String(),
		Context:    model.JSONMap(entry.Context),
		RequestID:  info.RequestID,
		ClientIP:   info.ClientIP,
		UserAgent:  info.UserAgent,
	}
	if entry.ActorID != uuid.Nil {
		actor := entry.ActorID
		log.ActorID = &actor
	}

	return r.repo.Create(ctx, log)
}

// NoOpRecorder is a recorder that does nothing
type NoOpRecorder struct{}

func (NoOpRecorder) Record(ctx context.Context, entry Entry) error {
	return nil
}
