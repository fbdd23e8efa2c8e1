package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type recordingPusher struct {
	mu     sync.Mutex
	pushed map[uint][]domain.Notification
}

func (p *recordingPusher) Push(userID uint, n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushed == nil {
		p.pushed = map[uint][]domain.Notification{}
	}
	p.pushed[userID] = append(p.pushed[userID], n)
}

func TestNotificationService_Notify(t *testing.T) {
	repo := &fakeNotifications{}
	pusher := &recordingPusher{}
	svc := NewNotificationService(repo, pusher)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, 7, domain.NotificationQrBatchReady, map[string]interface{}{"qr_batch_id": 1}))

	require.Len(t, repo.items, 1)
	assert.Len(t, repo.items[0].ID, 36)
	require.Len(t, pusher.pushed[7], 1)
	assert.Equal(t, repo.items[0].ID, pusher.pushed[7][0].ID)
}

func TestNotificationService_FeedAndRead(t *testing.T) {
	repo := &fakeNotifications{}
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, svc.Notify(ctx, 7, domain.NotificationQrBatchReady, map[string]interface{}{"n": i}))
	}
	require.NoError(t, svc.Notify(ctx, 8, domain.NotificationQrBatchReady, nil))

	feed, err := svc.Feed(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, feed.Notifications, 20)
	assert.EqualValues(t, 25, feed.UnreadCount)

	poll, err := svc.Poll(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, poll.Notifications, 10)

	id := feed.Notifications[0].ID
	require.NoError(t, svc.MarkRead(ctx, id, 7))
	require.NoError(t, svc.MarkRead(ctx, id, 7))
	assert.ErrorIs(t, svc.MarkRead(ctx, id, 8), ErrNotificationForbidden)
	assert.ErrorIs(t, svc.MarkRead(ctx, "missing", 7), ErrNotificationNotFound)

	feed, err = svc.Feed(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 24, feed.UnreadCount)

	require.NoError(t, svc.MarkAllRead(ctx, 7))
	poll, err = svc.Poll(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, poll.Notifications)
	assert.Zero(t, poll.UnreadCount)

	other, err := svc.Feed(ctx, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 1, other.UnreadCount)
}
