package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	notificationQueueSize = 256
	defaultListLimit      = 50
	maxListLimit          = 200
)

var ErrNotificationNotFound = apperror.New(apperror.KindNotFound, "NOTIFICATION_NOT_FOUND", "notification not found or already read")

// Mailer sends the e-mail copy of an invitation.
type Mailer interface {
	IsConfigured() bool
	SendTeamInvitation(to, teamName, message, respondURL string) error
}

type delivery struct {
	userID  uuid.UUID
	kind    string
	payload any
	at      time.Time
}

// NotificationService persists in-app notifications and fans them out to the
// hub and, for invitations, to e-mail. Notify never blocks the caller: work
// is queued and handled by Run.
type NotificationService struct {
	lookup
	broadcaster Broadcaster
	mailer      Mailer
	baseURL     string
	queue       chan delivery
	log         *zap.Logger
	now         Clock
}

func NewNotificationService(stores Stores, broadcaster Broadcaster, mailer Mailer, baseURL string, log *zap.Logger) *NotificationService {
	return &NotificationService{
		lookup:      lookup{stores: stores},
		broadcaster: orNopBroadcaster(broadcaster),
		mailer:      mailer,
		baseURL:     baseURL,
		queue:       make(chan delivery, notificationQueueSize),
		log:         orNop(log).Named("notifications"),
		now:         systemClock,
	}
}

// Notify queues a notification. When the queue is full the notification is
// dropped and logged.
func (s *NotificationService) Notify(userID uuid.UUID, kind string, payload any) {
	d := delivery{userID: userID, kind: kind, payload: payload, at: s.now()}
	select {
	case s.queue <- d:
	default:
		s.log.Warn("notification queue full, dropping",
			zap.String("user_id", userID.String()),
			zap.String("kind", kind))
	}
}

// Run drains the queue until ctx is cancelled.
func (s *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.queue:
			if err := s.deliver(ctx, d); err != nil {
				s.log.Error("notification delivery failed",
					zap.String("user_id", d.userID.String()),
					zap.String("kind", d.kind),
					zap.Error(err))
			}
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, d delivery) error {
	raw, err := json.Marshal(d.payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	n := &models.Notification{UserID: d.userID, Kind: d.kind, Payload: raw, CreatedAt: d.at}
	if err := s.stores.Notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	s.broadcaster.Broadcast([]uuid.UUID{d.userID}, hub.EventNotification, n)

	if d.kind == models.NotifyInvitation {
		s.mailInvitation(ctx, d)
	}
	return nil
}

func (s *NotificationService) mailInvitation(ctx context.Context, d delivery) {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return
	}
	u, err := s.user(ctx, d.userID)
	if err != nil {
		s.log.Warn("invitation e-mail skipped", zap.String("user_id", d.userID.String()), zap.Error(err))
		return
	}

	fields, _ := d.payload.(map[string]any)
	teamName, _ := fields["team_name"].(string)
	message, _ := fields["message"].(string)

	if err := s.mailer.SendTeamInvitation(u.Email, teamName, message, s.baseURL+"/requests/incoming"); err != nil {
		s.log.Warn("failed to send invitation e-mail", zap.String("user_id", d.userID.String()), zap.Error(err))
	}
}

// List returns the newest notifications of userID. limit is clamped to
// [1, 200]; zero selects the default page size.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	list, err := s.stores.Notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.stores.Notifications.MarkRead(ctx, userID, notificationID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
