package pass

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/auth"
	"github.com/frahmantamala/pass-management/internal/core/events"
)

// Repository is the pass request store.
type Repository interface {
	Create(ctx context.Context, p *Pass) error
	GetByID(ctx context.Context, id int64) (*Pass, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Pass, error)
	ListAll(ctx context.Context) ([]*Pass, error)
	// Decide applies d only if the pass is still PENDING. It returns
	// ErrPassNotFound or ErrInvalidPassStatus otherwise.
	Decide(ctx context.Context, d Decision) (*Pass, error)
}

// Service enforces the pass request lifecycle and who may drive it.
type Service struct {
	repo         Repository
	checker      auth.PermissionChecker
	ownership    auth.OwnershipPolicy
	publisher    events.Publisher
	reasonMaxLen int
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(*Service)

// WithPublisher publishes lifecycle events to p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRejectionReasonMaxLength overrides the default reason limit.
func WithRejectionReasonMaxLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.reasonMaxLen = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, checker auth.PermissionChecker, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:         repo,
		checker:      checker,
		reasonMaxLen: internal.DefaultRejectionReasonMaxLength,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) authorize(actor *auth.User, op auth.Operation) error {
	if actor == nil {
		return internal.ErrMissingToken
	}
	if !s.checker.Allowed(actor.Role, op) {
		s.logger.Warn("operation denied", "user_id", actor.ID, "role", actor.Role, "operation", op)
		return internal.ErrAdminRequired
	}
	return nil
}

// CreatePass files a new PENDING request owned by actor.
func (s *Service) CreatePass(ctx context.Context, actor *auth.User, dto CreatePassDTO) (*Pass, error) {
	if err := s.authorize(actor, auth.OpCreatePass); err != nil {
		return nil, err
	}

	draft, appErr := dto.Validate()
	if appErr != nil {
		s.logger.Warn("pass validation failed", "user_id", actor.ID, "error", appErr.GetDetailedMessage())
		return nil, appErr
	}

	p := NewPass(actor.ID, *draft, s.now().UTC())
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create pass", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create pass", err)
	}
	p.UserName = actor.FullName
	p.UserEmail = actor.Email
	p.Department = actor.Department

	s.logger.Info("pass requested",
		"pass_id", p.ID,
		"user_id", actor.ID,
		"type", p.Type)
	s.publish(ctx, events.NewPassCreatedEvent(p.ID, p.UserID, string(p.Type)))

	return p, nil
}

// ListOwnPasses returns the caller's passes, newest first.
func (s *Service) ListOwnPasses(ctx context.Context, actor *auth.User) ([]*Pass, error) {
	if err := s.authorize(actor, auth.OpListOwnPass); err != nil {
		return nil, err
	}

	passes, err := s.repo.ListByOwner(ctx, actor.ID)
	if err != nil {
		s.logger.Error("failed to list passes", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list passes", err)
	}
	return passes, nil
}

// GetPass returns a single pass visible to its owner and to administrators.
func (s *Service) GetPass(ctx context.Context, actor *auth.User, id int64) (*Pass, error) {
	if err := s.authorize(actor, auth.OpViewPass); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ownership.CanView(actor, p.UserID) {
		s.logger.Warn("pass access denied", "pass_id", id, "user_id", actor.ID, "owner_id", p.UserID)
		return nil, internal.ErrPassAccessDenied
	}
	return p, nil
}

// ListAllPasses returns every pass, newest first, narrowed by filter.
func (s *Service) ListAllPasses(ctx context.Context, actor *auth.User, filter StatusFilter) ([]*Pass, error) {
	if err := s.authorize(actor, auth.OpListAllPass); err != nil {
		return nil, err
	}

	passes, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list all passes", "error", err)
		return nil, internal.NewInternalError("failed to list passes", err)
	}
	return FilterByStatus(passes, filter), nil
}

// Summary counts every pass per status.
func (s *Service) Summary(ctx context.Context, actor *auth.User) (Summary, error) {
	if err := s.authorize(actor, auth.OpPassSummary); err != nil {
		return Summary{}, err
	}

	passes, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to summarize passes", "error", err)
		return Summary{}, internal.NewInternalError("failed to summarize passes", err)
	}
	return Summarize(passes), nil
}

func (s *Service) ApprovePass(ctx context.Context, actor *auth.User, id int64) (*Pass, error) {
	if err := s.authorize(actor, auth.OpApprovePass); err != nil {
		return nil, err
	}

	return s.decide(ctx, Decision{
		PassID:    id,
		Status:    StatusApproved,
		DecidedBy: actor.ID,
		DecidedAt: s.now().UTC(),
	})
}

func (s *Service) RejectPass(ctx context.Context, actor *auth.User, id int64, reason string) (*Pass, error) {
	if err := s.authorize(actor, auth.OpRejectPass); err != nil {
		return nil, err
	}
	if appErr := ValidateReason(reason, s.reasonMaxLen); appErr != nil {
		return nil, appErr
	}

	return s.decide(ctx, Decision{
		PassID:    id,
		Status:    StatusRejected,
		DecidedBy: actor.ID,
		DecidedAt: s.now().UTC(),
		Reason:    reason,
	})
}

func (s *Service) decide(ctx context.Context, d Decision) (*Pass, error) {
	p, err := s.repo.Decide(ctx, d)
	if err != nil {
		if errors.Is(err, internal.ErrPassNotFound) || errors.Is(err, internal.ErrInvalidPassStatus) {
			s.logger.Warn("pass decision refused", "pass_id", d.PassID, "status", d.Status, "error", err)
			return nil, err
		}
		s.logger.Error("failed to decide pass", "pass_id", d.PassID, "error", err)
		return nil, internal.NewInternalError("failed to update pass", err)
	}

	s.logger.Info("pass decided",
		"pass_id", p.ID,
		"status", p.Status,
		"decided_by", d.DecidedBy)
	s.publish(ctx, events.NewPassDecidedEvent(p.ID, p.UserID, d.DecidedBy, string(p.Status), d.Reason))

	return p, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Pass, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrPassNotFound) {
			return nil, internal.ErrPassNotFound
		}
		s.logger.Error("failed to load pass", "pass_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load pass", err)
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
