package repositories

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// NotificationRepository covers /notifications/*.
type NotificationRepository struct {
	api *http.Client
}

func NewNotificationRepository(api *http.Client) *NotificationRepository {
	return &NotificationRepository{api: api}
}

func (r *NotificationRepository) ByUser(ctx context.Context, userID models.ID) ([]models.Notification, error) {
	var out list[models.Notification, *models.Notification]
	err := decode(ctx, r.api.Get("/notifications/user/%s", url.PathEscape(userID.String())), &out)
	return out, err
}

type unreadCount struct {
	Count int `json:"count"`
}

func (c *unreadCount) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("%w: unread count %d", models.ErrMalformedResponse, c.Count)
	}
	return nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID models.ID) (int, error) {
	var out unreadCount
	err := decode(ctx, r.api.Get("/notifications/user/%s/unread-count", url.PathEscape(userID.String())), &out)
	return out.Count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id models.ID) error {
	var out Message
	return decode(ctx, r.api.Patch("/notifications/%s/read", url.PathEscape(id.String())), &out)
}
