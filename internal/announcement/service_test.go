package announcement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	announcements []Announcement
	reads         map[string]bool // announcementID|accountID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reads: make(map[string]bool)}
}

func (f *fakeRepo) Insert(_ context.Context, a Announcement) (Announcement, error) {
	a.ID = "ann-" + string(rune('0'+len(f.announcements)+1))
	f.announcements = append(f.announcements, a)
	return a, nil
}

func (f *fakeRepo) ListVisible(_ context.Context, accountID string, admin bool) ([]View, error) {
	var views []View
	for _, a := range f.announcements {
		views = append(views, View{
			Announcement: a,
			IsRead:       f.reads[a.ID+"|"+accountID],
		})
	}
	return views, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, announcementID, accountID string) error {
	found := false
	for _, a := range f.announcements {
		if a.ID == announcementID {
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	f.reads[announcementID+"|"+accountID] = true
	return nil
}

func (f *fakeRepo) MarkAllRead(_ context.Context, accountID string, admin bool) error {
	for _, a := range f.announcements {
		f.reads[a.ID+"|"+accountID] = true
	}
	return nil
}

func TestCreateDefaultsPriority(t *testing.T) {
	svc := NewService(newFakeRepo())

	a, err := svc.Create(context.Background(), Announcement{Title: "Exam", Content: "Friday"})
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, a.Priority)

	b, err := svc.Create(context.Background(), Announcement{Title: "Fire drill", Content: "Now", Priority: PriorityUrgent})
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, b.Priority)
}

func TestFeedUnreadCount(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	first, err := svc.Create(ctx, Announcement{Title: "One", Content: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Announcement{Title: "Two", Content: "b"})
	require.NoError(t, err)

	feed, err := svc.FeedFor(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, 2, feed.UnreadCount)

	require.NoError(t, svc.MarkRead(ctx, first.ID, "alice"))
	feed, err = svc.FeedFor(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.UnreadCount)

	// Read state is per account.
	feed, err = svc.FeedFor(ctx, "bob", false)
	require.NoError(t, err)
	assert.Equal(t, 2, feed.UnreadCount)
}

func TestMarkReadIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	a, err := svc.Create(ctx, Announcement{Title: "One", Content: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, a.ID, "alice"))
	require.NoError(t, svc.MarkRead(ctx, a.ID, "alice"))

	feed, err := svc.FeedFor(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, 0, feed.UnreadCount)
}

func TestMarkReadUnknownAnnouncement(t *testing.T) {
	svc := NewService(newFakeRepo())
	err := svc.MarkRead(context.Background(), "missing", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	_, err := svc.Create(ctx, Announcement{Title: "One", Content: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Announcement{Title: "Two", Content: "b"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkAllRead(ctx, "alice", false))
	feed, err := svc.FeedFor(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, 0, feed.UnreadCount)
}
