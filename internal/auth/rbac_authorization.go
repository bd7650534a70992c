package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/transport"
)

type PermissionAuthorizer interface {
	AllowedCtx(ctx context.Context, role Role, op Operation) (bool, error)
}

// RBACAuthorization guards routes with the role policy. The pass service
// repeats the same checks, so a route that forgets its middleware still fails
// closed.
type RBACAuthorization struct {
	authorizer PermissionAuthorizer
	base       *transport.BaseHandler
	logger     *slog.Logger
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &RBACAuthorization{
		authorizer: authorizer,
		base:       transport.NewBaseHandler(logger),
		logger:     logger,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, op Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user == nil {
			ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context")
			ra.base.HandleServiceError(w, internal.ErrMissingToken)
			return
		}

		allowed, err := ra.authorizer.AllowedCtx(r.Context(), user.Role, op)
		if err != nil {
			ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", user.ID, "operation", op)
			ra.base.HandleServiceError(w, internal.NewInternalError("authorization check failed", err))
			return
		}

		if !allowed {
			ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
				"user_id", user.ID,
				"role", user.Role,
				"operation", op)
			ra.base.HandleServiceError(w, internal.ErrAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, op)
	}
}
