package middleware

import (
	"context"
	"net/http"

	"github.com/dangerclosesec/dealroom/internal/audit"
)

// AuditContext attaches the request id, client address and user agent to the
// context so audit entries recorded while serving r carry them.
func AuditContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(withAuditRequest(r.Context(), r)))
	})
}

func withAuditRequest(ctx context.Context, r *http.Request) context.Context {
	if audit.RequestInfoFrom(ctx).RequestID != "" {
		return ctx
	}
	return audit.WithRequest(ctx, r)
}
