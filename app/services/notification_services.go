package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
)

// NotificationService reads the signed-in user's notifications.
type NotificationService struct {
	api     NotificationAPI
	session Session
	cache   *cache.Cache
}

func NewNotificationService(api NotificationAPI, s Session, c *cache.Cache) *NotificationService {
	return &NotificationService{api: api, session: s, cache: c}
}

func (s *NotificationService) userID() (models.ID, error) {
	u := s.session.User()
	if u == nil || !s.session.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	return u.ID, nil
}

func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	out, err := cache.Remember(ctx, s.cache, cache.Key("notifications", uid, "list"), func(ctx context.Context) ([]models.Notification, error) {
		return s.api.ByUser(ctx, uid)
	})
	if err != nil {
		return nil, fmt.Errorf("notifications: list: %w", err)
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	uid, err := s.userID()
	if err != nil {
		return 0, err
	}
	n, err := cache.Remember(ctx, s.cache, cache.Key("notifications", uid, "unread"), func(ctx context.Context) (int, error) {
		return s.api.UnreadCount(ctx, uid)
	})
	if err != nil {
		return 0, fmt.Errorf("notifications: unread count: %w", err)
	}
	return n, nil
}

// MarkRead marks one notification read and drops the user's cached list
// and count.
func (s *NotificationService) MarkRead(ctx context.Context, id models.ID) error {
	uid, err := s.userID()
	if err != nil {
		return err
	}
	if err := s.api.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("notifications: mark %s read: %w", id, err)
	}
	s.cache.Invalidate(cache.Prefix("notifications", uid))
	return nil
}
