package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/pkg/kvstore"
	"github.com/shashiranjanraj/vendordesk/pkg/session"
)

func TestUnreadCountInvalidatedByMarkRead(t *testing.T) {
	api := &fakeNotifications{unread: 2}
	svc := services.NewNotificationService(api, signedIn(), newCache())

	n, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, _ = svc.UnreadCount(ctx)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, api.calls)

	require.NoError(t, svc.MarkRead(ctx, "n1"))
	n, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, api.calls)
}

func TestNotificationsRequireSession(t *testing.T) {
	svc := services.NewNotificationService(&fakeNotifications{}, session.NewStore(kvstore.NewMemory()), newCache())
	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)
}
