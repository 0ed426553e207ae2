package announcement

import "context"

// Repository persists announcements and per-account read marks.
type Repository interface {
	Insert(ctx context.Context, a Announcement) (Announcement, error)
	// ListVisible returns the announcements an account can see, newest
	// first, with read state joined in. Admins see everything; students see
	// general announcements plus those scoped to their enrolled courses.
	ListVisible(ctx context.Context, accountID string, admin bool) ([]View, error)
	// MarkRead records that an account read an announcement. Re-marking is
	// a no-op, not an error; an unknown announcement is ErrNotFound.
	MarkRead(ctx context.Context, announcementID, accountID string) error
	// MarkAllRead records reads for every visible unread announcement.
	MarkAllRead(ctx context.Context, accountID string, admin bool) error
}

// Service manages the announcement feed.
type Service struct {
	repo Repository
}

// NewService creates an announcement service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create posts a new announcement.
func (svc *Service) Create(ctx context.Context, a Announcement) (Announcement, error) {
	if a.Priority == "" {
		a.Priority = PriorityNormal
	}
	return svc.repo.Insert(ctx, a)
}

// FeedFor returns an account's announcement feed with the unread count.
func (svc *Service) FeedFor(ctx context.Context, accountID string, admin bool) (Feed, error) {
	views, err := svc.repo.ListVisible(ctx, accountID, admin)
	if err != nil {
		return Feed{}, err
	}
	feed := Feed{Announcements: views}
	for _, v := range views {
		if !v.IsRead {
			feed.UnreadCount++
		}
	}
	return feed, nil
}

// MarkRead marks one announcement read. Marking twice is a silent no-op;
// this is deliberately looser than attendance marking, which hard-fails on
// duplicates.
func (svc *Service) MarkRead(ctx context.Context, announcementID, accountID string) error {
	return svc.repo.MarkRead(ctx, announcementID, accountID)
}

// MarkAllRead marks every visible announcement read.
func (svc *Service) MarkAllRead(ctx context.Context, accountID string, admin bool) error {
	return svc.repo.MarkAllRead(ctx, accountID, admin)
}
