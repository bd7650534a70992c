package pass

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/auth"
	"github.com/frahmantamala/pass-management/internal/transport"
	"github.com/frahmantamala/pass-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreatePass(ctx context.Context, actor *auth.User, dto CreatePassDTO) (*Pass, error)
	ListOwnPasses(ctx context.Context, actor *auth.User) ([]*Pass, error)
	GetPass(ctx context.Context, actor *auth.User, id int64) (*Pass, error)
	ListAllPasses(ctx context.Context, actor *auth.User, filter StatusFilter) ([]*Pass, error)
	Summary(ctx context.Context, actor *auth.User) (Summary, error)
	ApprovePass(ctx context.Context, actor *auth.User, id int64) (*Pass, error)
	RejectPass(ctx context.Context, actor *auth.User, id int64, reason string) (*Pass, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// actor returns the authenticated user, or nil. The service answers a nil
// actor with an authentication error.
func actor(r *http.Request) *auth.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

// CreatePass handles POST /passes
func (h *Handler) CreatePass(w http.ResponseWriter, r *http.Request) {
	var dto CreatePassDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	p, err := h.Service.CreatePass(r.Context(), actor(r), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

// ListMyPasses handles GET /passes/my-passes
func (h *Handler) ListMyPasses(w http.ResponseWriter, r *http.Request) {
	passes, err := h.Service.ListOwnPasses(r.Context(), actor(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, nonNil(passes))
}

// GetPass handles GET /passes/{id}
func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	id, ok := h.passID(w, r)
	if !ok {
		return
	}

	p, err := h.Service.GetPass(r.Context(), actor(r), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// ListAllPasses handles GET /passes/admin/all?status=
func (h *Handler) ListAllPasses(w http.ResponseWriter, r *http.Request) {
	filter, appErr := ParseStatusFilter(r.URL.Query().Get("status"))
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	passes, err := h.Service.ListAllPasses(r.Context(), actor(r), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, nonNil(passes))
}

// ListPendingPasses handles GET /passes/admin/pending
func (h *Handler) ListPendingPasses(w http.ResponseWriter, r *http.Request) {
	passes, err := h.Service.ListAllPasses(r.Context(), actor(r), StatusFilter(StatusPending))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, nonNil(passes))
}

// GetSummary handles GET /passes/admin/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), actor(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

// ApprovePass handles PUT /passes/admin/{id}/approve
func (h *Handler) ApprovePass(w http.ResponseWriter, r *http.Request) {
	id, ok := h.passID(w, r)
	if !ok {
		return
	}

	p, err := h.Service.ApprovePass(r.Context(), actor(r), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// RejectPass handles PUT /passes/admin/{id}/reject?reason=
// The reason falls back to a JSON body when the query parameter is absent.
func (h *Handler) RejectPass(w http.ResponseWriter, r *http.Request) {
	id, ok := h.passID(w, r)
	if !ok {
		return
	}

	reason := r.URL.Query().Get("reason")
	if reason == "" {
		var dto RejectDTO
		if !h.DecodeOptionalJSON(w, r, &dto) {
			return
		}
		reason = dto.Reason
	}

	p, err := h.Service.RejectPass(r.Context(), actor(r), id, reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) passID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.HandleServiceError(w, internal.NewValidationFieldError("id", "id must be a positive integer", internal.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func nonNil(passes []*Pass) []*Pass {
	if passes == nil {
		return []*Pass{}
	}
	return passes
}
