package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	sessions map[string]Session
	infos    []Info
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]Session)}
}

func (f *fakeRepo) InsertSession(_ context.Context, s Session) (Session, error) {
	s.ID = "sess-1"
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeRepo) GetSession(_ context.Context, id string) (Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) UpdateSession(_ context.Context, s Session) (Session, error) {
	if _, ok := f.sessions[s.ID]; !ok {
		return Session{}, ErrNotFound
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeRepo) DeleteSession(_ context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeRepo) ListSessions(_ context.Context) ([]Info, error) {
	return f.infos, nil
}

func (f *fakeRepo) ListUpcoming(_ context.Context, accountID string, from time.Time, limit int) ([]Info, error) {
	if limit < len(f.infos) {
		return f.infos[:limit], nil
	}
	return f.infos, nil
}

func (f *fakeRepo) ListOnDate(_ context.Context, date time.Time) ([]Info, error) {
	return f.infos, nil
}

func TestCreateValidatesWindow(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(ctx, Session{CourseID: "c1", Date: date, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "scheduled", created.Status)

	_, err = svc.Create(ctx, Session{CourseID: "c1", Date: date, StartTime: "22:00", EndTime: "01:00"})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = svc.Create(ctx, Session{CourseID: "c1", Date: date, StartTime: "nine", EndTime: "10:00"})
	assert.Error(t, err)
}

func TestUpdateValidatesWindow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(ctx, Session{CourseID: "c1", Date: date, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	created.StartTime = "11:00"
	created.EndTime = "10:00"
	_, err = svc.Update(ctx, created)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestListAnnotatesWindowState(t *testing.T) {
	repo := newFakeRepo()
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	repo.infos = []Info{
		{Session: Session{ID: "s1", Date: date, StartTime: "08:00", EndTime: "08:30"}},
		{Session: Session{ID: "s2", Date: date, StartTime: "09:00", EndTime: "10:00"}},
		{Session: Session{ID: "s3", Date: date, StartTime: "11:00", EndTime: "12:00"}},
	}
	svc := NewService(repo)

	now := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	infos, err := svc.List(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, StateClosed, infos[0].Window)
	assert.Equal(t, StateActive, infos[1].Window)
	assert.Equal(t, StateUpcoming, infos[2].Window)
}
