package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/session"
)

// fakeRepo is an in-memory Repository for exercising the service logic.
type fakeRepo struct {
	sessions map[string]session.Session
	enrolled map[string]bool // accountID|courseID
	records  []Record
	roster   []RosterEntry
	recent   []SessionRecord
	tally    Tally

	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[string]session.Session),
		enrolled: make(map[string]bool),
	}
}

func (f *fakeRepo) GetSession(_ context.Context, sessionID string) (session.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return session.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeRepo) CourseHeader(_ context.Context, courseID string) (string, string, error) {
	return "CSC101", "Intro to Computing", nil
}

func (f *fakeRepo) IsEnrolled(_ context.Context, accountID, courseID string) (bool, error) {
	return f.enrolled[accountID+"|"+courseID], nil
}

func (f *fakeRepo) HasRecord(_ context.Context, accountID, sessionID string) (bool, error) {
	for _, r := range f.records {
		if r.AccountID == accountID && r.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) InsertRecord(_ context.Context, rec Record) (Record, error) {
	if f.insertErr != nil {
		return Record{}, f.insertErr
	}
	rec.ID = "rec-1"
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeRepo) GetRecord(_ context.Context, id string) (Record, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrSessionNotFound
}

func (f *fakeRepo) Roster(_ context.Context, sessionID, courseID string) ([]RosterEntry, error) {
	return f.roster, nil
}

func (f *fakeRepo) CountRecords(_ context.Context, accountID, courseID string) (Tally, error) {
	return f.tally, nil
}

func (f *fakeRepo) RecentWithSessions(_ context.Context, accountID, courseID string, limit int) ([]SessionRecord, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeRepo) ListRecent(_ context.Context, limit int) ([]SessionRecord, error) {
	return f.recent, nil
}

func activeSession(id, courseID string) session.Session {
	return session.Session{
		ID:        id,
		CourseID:  courseID,
		Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "10:00",
	}
}

// during is an instant inside the 09:00-10:00 window of activeSession.
var during = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

func TestMark(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sessions["s1"] = activeSession("s1", "c1")
		repo.enrolled["alice|c1"] = true
		svc := NewService(repo)

		rec, err := svc.Mark(ctx, "alice", "s1", during, ProvenanceStudent)
		require.NoError(t, err)
		assert.Equal(t, "alice", rec.AccountID)
		assert.Equal(t, "c1", rec.CourseID)
		assert.Equal(t, StatusPresent, rec.Status)
		assert.Equal(t, ProvenanceStudent, rec.MarkedBy)
		assert.Equal(t, during, rec.MarkedAt)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc := NewService(newFakeRepo())
		_, err := svc.Mark(ctx, "alice", "missing", during, ProvenanceStudent)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("before window opens", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sessions["s1"] = activeSession("s1", "c1")
		repo.enrolled["alice|c1"] = true
		svc := NewService(repo)

		early := time.Date(2024, 1, 10, 8, 59, 0, 0, time.UTC)
		_, err := svc.Mark(ctx, "alice", "s1", early, ProvenanceStudent)
		assert.ErrorIs(t, err, ErrSessionNotActive)
	})

	t.Run("after window closes", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sessions["s1"] = activeSession("s1", "c1")
		repo.enrolled["alice|c1"] = true
		svc := NewService(repo)

		late := time.Date(2024, 1, 10, 10, 1, 0, 0, time.UTC)
		_, err := svc.Mark(ctx, "alice", "s1", late, ProvenanceStudent)
		assert.ErrorIs(t, err, ErrSessionNotActive)
	})

	t.Run("not enrolled outranks duplicate check", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sessions["s1"] = activeSession("s1", "c1")
		svc := NewService(repo)

		_, err := svc.Mark(ctx, "stranger", "s1", during, ProvenanceStudent)
		assert.ErrorIs(t, err, ErrNotEnrolled)
	})

	t.Run("double mark", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sessions["s1"] = activeSession("s1", "c1")
		repo.enrolled["alice|c1"] = true
		svc := NewService(repo)

		_, err := svc.Mark(ctx, "alice", "s1", during, ProvenanceStudent)
		require.NoError(t, err)
		_, err = svc.Mark(ctx, "alice", "s1", during, ProvenanceStudent)
		assert.ErrorIs(t, err, ErrAlreadyMarked)
		assert.Len(t, repo.records, 1)
	})

	t.Run("insert race surfaces as already marked", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sessions["s1"] = activeSession("s1", "c1")
		repo.enrolled["alice|c1"] = true
		repo.insertErr = ErrAlreadyMarked
		svc := NewService(repo)

		_, err := svc.Mark(ctx, "alice", "s1", during, ProvenanceStudent)
		assert.ErrorIs(t, err, ErrAlreadyMarked)
	})

	t.Run("admin provenance recorded", func(t *testing.T) {
		repo := newFakeRepo()
		repo.sessions["s1"] = activeSession("s1", "c1")
		repo.enrolled["alice|c1"] = true
		svc := NewService(repo)

		rec, err := svc.Mark(ctx, "alice", "s1", during, ProvenanceAdmin)
		require.NoError(t, err)
		assert.Equal(t, ProvenanceAdmin, rec.MarkedBy)
	})
}

func TestLiveDerivesAbsence(t *testing.T) {
	repo := newFakeRepo()
	repo.sessions["s1"] = activeSession("s1", "c1")
	repo.roster = []RosterEntry{
		{AccountID: "a1", FullName: "Alice", MatricNo: "CSC/001", Present: true},
		{AccountID: "a2", FullName: "Bob", MatricNo: "CSC/002", Present: false},
		{AccountID: "a3", FullName: "Carol", MatricNo: "CSC/003", Present: false},
	}
	svc := NewService(repo)

	report, err := svc.Live(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalEnrolled)
	assert.Equal(t, 1, report.PresentCount)
	require.Len(t, report.Students, 3)
	assert.Equal(t, StatusPresent, report.Students[0].Status)
	assert.Equal(t, StatusAbsent, report.Students[1].Status)
	assert.Equal(t, StatusAbsent, report.Students[2].Status)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name  string
		tally Tally
		want  float64
	}{
		{name: "no records", tally: Tally{}, want: 0},
		{name: "two of three", tally: Tally{Total: 3, Present: 2}, want: 66.7},
		{name: "all present", tally: Tally{Total: 4, Present: 4}, want: 100},
		{name: "none present", tally: Tally{Total: 5, Present: 0}, want: 0},
		{name: "one of eight", tally: Tally{Total: 8, Present: 1}, want: 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.tally = tt.tally
			svc := NewService(repo)

			got, err := svc.CoursePercentage(context.Background(), "alice", "c1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			overall, err := svc.Overall(context.Background(), "alice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, overall)
		})
	}
}

func TestWeekly(t *testing.T) {
	ctx := context.Background()

	rec := func(date time.Time) SessionRecord {
		return SessionRecord{
			Record: Record{
				Status:   StatusPresent,
				MarkedAt: date.Add(9*time.Hour + 5*time.Minute),
			},
			SessionDate: date,
			StartTime:   "09:00",
			EndTime:     "10:00",
		}
	}

	t.Run("groups one week into one bucket", func(t *testing.T) {
		repo := newFakeRepo()
		// Wed Jan 10 and Fri Jan 12 2024 share the week of Mon Jan 8.
		repo.recent = []SessionRecord{
			rec(time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)),
			rec(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
		}
		svc := NewService(repo)

		buckets, err := svc.Weekly(ctx, "alice", "c1", 4)
		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Equal(t, "2024-W02", buckets[0].Key)
		assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), buckets[0].WeekStart)
		assert.Len(t, buckets[0].Records, 2)
		assert.Equal(t, "09:05", buckets[0].Records[0].Time)
		assert.Equal(t, "09:00 - 10:00", buckets[0].Records[0].SessionTime)
	})

	t.Run("buckets ordered newest first", func(t *testing.T) {
		repo := newFakeRepo()
		repo.recent = []SessionRecord{
			rec(time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)),
			rec(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
			rec(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		}
		svc := NewService(repo)

		buckets, err := svc.Weekly(ctx, "alice", "c1", 4)
		require.NoError(t, err)
		require.Len(t, buckets, 3)
		assert.Equal(t, "2024-W03", buckets[0].Key)
		assert.Equal(t, "2024-W02", buckets[1].Key)
		assert.Equal(t, "2024-W01", buckets[2].Key)
	})

	t.Run("caps at maxWeeks after grouping", func(t *testing.T) {
		repo := newFakeRepo()
		for w := 0; w < 5; w++ {
			repo.recent = append(repo.recent, rec(time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -7*w)))
		}
		svc := NewService(repo)

		buckets, err := svc.Weekly(ctx, "alice", "c1", 3)
		require.NoError(t, err)
		assert.Len(t, buckets, 3)
		assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), buckets[0].WeekStart)
	})

	t.Run("fetch limit trims the oldest week before grouping", func(t *testing.T) {
		// The repo is asked for at most maxWeeks*7 rows, newest first. A
		// dense recent week uses up part of that limit, so an older week
		// can come back partially filled rather than the grouping being
		// capped after the fact.
		repo := newFakeRepo()
		newest := []time.Time{ // week of Mon Jan 8 2024
			time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		}
		prior := []time.Time{ // week of Mon Jan 1 2024
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		for _, d := range newest { // two sessions per day
			repo.recent = append(repo.recent, rec(d), rec(d))
		}
		for _, d := range prior {
			repo.recent = append(repo.recent, rec(d), rec(d))
		}
		svc := NewService(repo)

		// maxWeeks=2 fetches 14 rows: all 10 of the newest week and
		// only the 4 newest of the prior week.
		buckets, err := svc.Weekly(ctx, "alice", "c1", 2)
		require.NoError(t, err)
		require.Len(t, buckets, 2)
		assert.Equal(t, "2024-W02", buckets[0].Key)
		assert.Len(t, buckets[0].Records, 10)
		assert.Equal(t, "2024-W01", buckets[1].Key)
		assert.Len(t, buckets[1].Records, 4)
	})

	t.Run("sunday belongs to preceding monday", func(t *testing.T) {
		repo := newFakeRepo()
		repo.recent = []SessionRecord{
			rec(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)), // Sunday
		}
		svc := NewService(repo)

		buckets, err := svc.Weekly(ctx, "alice", "c1", 4)
		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), buckets[0].WeekStart)
	})

	t.Run("zero maxWeeks falls back to default", func(t *testing.T) {
		repo := newFakeRepo()
		repo.recent = []SessionRecord{rec(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))}
		svc := NewService(repo)

		buckets, err := svc.Weekly(ctx, "alice", "c1", 0)
		require.NoError(t, err)
		assert.Len(t, buckets, 1)
	})
}
