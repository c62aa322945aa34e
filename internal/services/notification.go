package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

const notificationListLimit = 50

// Event describes an action that may notify the recipient.
type Event struct {
	Type        models.NotificationType
	RecipientID string
	ActorID     string
	PostID      string
	LikeID      string
	RepostID    string
	FollowID    string
}

// PostSummary is the slice of a post shown next to a notification.
type PostSummary struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type NotificationView struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
	Actor     models.ProfileCompact   `json:"actor"`
	Post      *PostSummary            `json:"post,omitempty"`
}

type NotificationService struct {
	identity      *IdentityResolver
	profiles      repositories.ProfileRepository
	notifications repositories.NotificationRepository
	settings      repositories.NotificationSettingsRepository
	metrics       *observability.Metrics
}

func NewNotificationService(
	identity *IdentityResolver,
	profiles repositories.ProfileRepository,
	notifications repositories.NotificationRepository,
	settings repositories.NotificationSettingsRepository,
	metrics *observability.Metrics,
) *NotificationService {
	return &NotificationService{
		identity:      identity,
		profiles:      profiles,
		notifications: notifications,
		settings:      settings,
		metrics:       metrics,
	}
}

// Emit records ev unless the actor is the recipient or the recipient turned
// this notification type off. It reports whether a row was written.
func (s *NotificationService) Emit(ctx context.Context, ev Event) (bool, error) {
	if ev.ActorID == ev.RecipientID {
		return false, nil
	}
	recipient, err := s.profiles.GetProfileByID(ctx, ev.RecipientID)
	if err != nil {
		return false, notFound(err, "recipient")
	}
	settings, err := s.settings.Find(ctx, recipient.ExternalID)
	if err != nil {
		return false, err
	}
	if !settings.Allows(ev.Type) {
		return false, nil
	}

	n := &models.Notification{
		Type:        ev.Type,
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		PostID:      optional(ev.PostID),
		LikeID:      optional(ev.LikeID),
		RepostID:    optional(ev.RepostID),
		FollowID:    optional(ev.FollowID),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return false, err
	}
	s.metrics.NotificationCreated(string(ev.Type))
	return true, nil
}

// emitLogged is Emit for callers whose own write already succeeded.
func (s *NotificationService) emitLogged(ctx context.Context, ev Event) {
	if _, err := s.Emit(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to create notification",
			"type", ev.Type, "recipient_id", ev.RecipientID, "actor_id", ev.ActorID, "error", err)
	}
}

// List returns the caller's newest notifications.
func (s *NotificationService) List(ctx context.Context, recipientExternalID string) ([]NotificationView, error) {
	me, err := s.identity.RequireProfile(ctx, recipientExternalID)
	if err != nil {
		return nil, err
	}
	rows, err := s.notifications.GetByRecipientID(ctx, me.ID, notificationListLimit)
	if err != nil {
		return nil, err
	}
	views := make([]NotificationView, 0, len(rows))
	for i := range rows {
		n := &rows[i]
		v := NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
			Actor:     n.Actor.ToCompact(),
		}
		if n.Post != nil {
			v.Post = &PostSummary{ID: n.Post.ID, Content: n.Post.Content}
		}
		views = append(views, v)
	}
	return views, nil
}

// MarkRead marks one of the caller's notifications read. Notifications of
// other recipients are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, recipientExternalID, notificationID string) error {
	me, err := s.identity.RequireProfile(ctx, recipientExternalID)
	if err != nil {
		return err
	}
	n, err := s.notifications.GetForRecipient(ctx, notificationID, me.ID)
	if err != nil {
		return notFound(err, "notification")
	}
	if n.Read {
		return nil
	}
	return s.notifications.MarkAsRead(ctx, n.ID)
}

// MarkAllRead marks every unread notification of the caller and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientExternalID string) (int64, error) {
	me, err := s.identity.RequireProfile(ctx, recipientExternalID)
	if err != nil {
		return 0, err
	}
	return s.notifications.MarkAllAsRead(ctx, me.ID)
}

// UnreadCount is zero for anonymous callers and identities without a profile.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientExternalID string) (int64, error) {
	me, err := s.identity.ResolveViewer(ctx, recipientExternalID)
	if err != nil || me == nil {
		return 0, err
	}
	return s.notifications.GetUnreadCount(ctx, me.ID)
}

// Settings returns the caller's settings, creating the all-enabled row on first access.
func (s *NotificationService) Settings(ctx context.Context, externalID string) (*models.NotificationSettings, error) {
	if externalID == "" {
		return nil, ErrUnauthorized
	}
	return s.settings.GetOrCreate(ctx, externalID)
}

// UpdateSettings applies the supplied flags and leaves the others unchanged.
func (s *NotificationService) UpdateSettings(ctx context.Context, externalID string, patch models.UpdateNotificationSettingsRequest) (*models.NotificationSettings, error) {
	if externalID == "" {
		return nil, ErrUnauthorized
	}
	fields := make(map[string]interface{})
	if patch.OnFollow != nil {
		fields["on_follow"] = *patch.OnFollow
	}
	if patch.OnLike != nil {
		fields["on_like"] = *patch.OnLike
	}
	if patch.OnRepost != nil {
		fields["on_repost"] = *patch.OnRepost
	}
	if patch.OnReply != nil {
		fields["on_reply"] = *patch.OnReply
	}
	return s.settings.Update(ctx, externalID, fields)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
