package clocks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/policy"
)

// UserFinder is the identity collaborator: it returns an apperror
// NotFoundError for unknown ids.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// Publisher is told about every committed toggle. *live.Hub satisfies it.
type Publisher interface {
	PublishClock(e domain.ClockEvent)
}

// ClockService implements toggle and list.
type ClockService struct {
	store  Store
	users  UserFinder
	notify Publisher
	log    *zap.Logger
	now    func() time.Time
}

// NewClockService creates a ClockService. notify may be nil.
func NewClockService(store Store, users UserFinder, notify Publisher, log *zap.Logger) *ClockService {
	return &ClockService{store: store, users: users, notify: notify, log: log, now: time.Now}
}

// Toggle appends the opposite of the user's last status, or "in" when the
// user has never clocked. Order of checks: policy, then user existence.
func (s *ClockService) Toggle(ctx context.Context, requester domain.Requester, userID int64) (*domain.ClockEvent, error) {
	if err := policy.Authorize(requester, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	var created *domain.ClockEvent
	err := s.store.Serialize(ctx, userID, func(tx Store) error {
		last, err := tx.Last(ctx, userID)
		if err != nil {
			return err
		}
		next := last == nil || !last.Status

		// PostgreSQL keeps microseconds; truncating here makes the
		// returned event equal to what a later read sees.
		at := s.now().UTC().Truncate(time.Microsecond)
		created, err = tx.Append(ctx, userID, next, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("clock toggled",
		zap.Int64("user_id", userID),
		zap.Bool("status", created.Status),
		zap.Int64("by", requester.ID),
	)
	if s.notify != nil {
		s.notify.PublishClock(*created)
	}
	return created, nil
}

// List returns the user's events in w, oldest first.
func (s *ClockService) List(ctx context.Context, requester domain.Requester, userID int64, w Window) ([]domain.ClockEvent, error) {
	if err := policy.Authorize(requester, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	events, err := s.store.Query(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.ClockEvent{}
	}
	return events, nil
}
