package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/observability"
)

// MemberLister returns the current membership of a workspace.
// *workspaces.Store satisfies it.
type MemberLister interface {
	Members(ctx context.Context, workspaceID string) ([]events.MemberRef, error)
}

// Realtime pushes a persisted notification to connected clients
type Realtime interface {
	Push(ctx context.Context, n *Notification) error
}

// Service creates notifications from domain events and serves them to
// their recipients
type Service struct {
	store    *Store
	members  MemberLister
	realtime Realtime
	logger   *observability.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewService creates a notification service. realtime and metrics may be
// nil.
func NewService(store *Store, members MemberLister, realtime Realtime, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		store:    store,
		members:  members,
		realtime: realtime,
		logger:   logger,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Handle is the dispatcher subscriber
func (s *Service) Handle(ctx context.Context, evt events.Event) error {
	_, err := s.FanOut(ctx, evt)
	return err
}

// FanOut persists one notification per recipient of evt and returns them.
// An event with no recipients is a no-op.
func (s *Service) FanOut(ctx context.Context, evt events.Event) ([]*Notification, error) {
	ns, err := s.fanOut(ctx, evt)
	if err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFanoutErrors.WithLabelValues(string(evt.Type())).Inc()
		}
		return nil, err
	}
	return ns, nil
}

func (s *Service) fanOut(ctx context.Context, evt events.Event) ([]*Notification, error) {
	var members []events.MemberRef
	if needsMembers(evt) {
		var err error
		members, err = s.members.Members(ctx, evt.Workspace())
		if err != nil {
			return nil, err
		}
	}

	deliveries := plan(evt, members)
	if len(deliveries) == 0 {
		return []*Notification{}, nil
	}

	now := s.now()
	ns := make([]*Notification, 0, len(deliveries))
	for _, d := range deliveries {
		ns = append(ns, &Notification{
			ID:          uuid.NewString(),
			UserID:      d.userID,
			WorkspaceID: evt.Workspace(),
			ActorID:     evt.Actor(),
			Type:        evt.Type(),
			Payload:     d.payload,
			CreatedAt:   now,
		})
	}
	if err := s.store.Insert(ctx, ns); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.NotificationsCreated.WithLabelValues(string(evt.Type())).Add(float64(len(ns)))
	}
	observability.FromContext(ctx, s.logger).
		WithField("event_type", string(evt.Type())).
		WithField("recipients", len(ns)).
		Debug("notifications created")

	s.push(ctx, ns)
	return ns, nil
}

func (s *Service) push(ctx context.Context, ns []*Notification) {
	if s.realtime == nil {
		return
	}
	for _, n := range ns {
		if err := s.realtime.Push(ctx, n); err != nil {
			if s.metrics != nil {
				s.metrics.RealtimePublishErrors.Inc()
			}
			observability.FromContext(ctx, s.logger).
				WithField("notification_id", n.ID).
				WithError(err).
				Warn("failed to push notification")
		}
	}
}

// List returns the caller's notifications, newest first
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]*Notification, error) {
	return s.store.List(ctx, userID, opts.normalize())
}

// UnreadCount returns how many of the caller's notifications are unread
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

// MarkAsRead marks a notification addressed to the caller read. Marking it
// again is a no-op.
func (s *Service) MarkAsRead(ctx context.Context, userID, notificationID string) (*Notification, error) {
	if _, err := s.store.Get(ctx, userID, notificationID); err != nil {
		return nil, err
	}
	if err := s.store.MarkAsRead(ctx, userID, notificationID, s.now()); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, userID, notificationID)
}

// MarkAllAsRead marks every unread notification of the caller read and
// returns how many changed
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	return s.store.MarkAllAsRead(ctx, userID, s.now())
}
