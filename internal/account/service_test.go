package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byID     map[string]Account
	byMatric map[string]Account
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:     make(map[string]Account),
		byMatric: make(map[string]Account),
	}
}

func (f *fakeRepo) CreateAccount(_ context.Context, a Account) (Account, error) {
	if _, exists := f.byMatric[a.MatricNo]; exists {
		return Account{}, ErrMatricExists
	}
	f.nextID++
	a.ID = "acct-" + string(rune('0'+f.nextID))
	f.byID[a.ID] = a
	f.byMatric[a.MatricNo] = a
	return a, nil
}

func (f *fakeRepo) GetAccount(_ context.Context, id string) (Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) GetByMatric(_ context.Context, matricNo string) (Account, error) {
	a, ok := f.byMatric[matricNo]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) UpdateAccount(_ context.Context, a Account) (Account, error) {
	if _, ok := f.byID[a.ID]; !ok {
		return Account{}, ErrNotFound
	}
	f.byID[a.ID] = a
	f.byMatric[a.MatricNo] = a
	return a, nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	a, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = hash
	f.byID[id] = a
	f.byMatric[a.MatricNo] = a
	return nil
}

func (f *fakeRepo) SetAvatar(_ context.Context, id, url string) error {
	a, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.AvatarURL = url
	f.byID[id] = a
	return nil
}

func (f *fakeRepo) DeleteAccount(_ context.Context, id string) error {
	a, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	delete(f.byMatric, a.MatricNo)
	return nil
}

func (f *fakeRepo) ListStudents(_ context.Context, courseID string) ([]StudentSummary, error) {
	return nil, nil
}

func (f *fakeRepo) CountStudents(_ context.Context) (int, error) {
	return len(f.byID), nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	acct, err := svc.Register(ctx, "  Alice Ade  ", "csc/2024/001", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "Alice Ade", acct.FullName)
	assert.Equal(t, "CSC/2024/001", acct.MatricNo)
	assert.Equal(t, RoleStudent, acct.Role)
	assert.NotEmpty(t, acct.PasswordHash)
	assert.NotEqual(t, "hunter2secret", acct.PasswordHash)
	assert.True(t, acct.CheckPassword("hunter2secret"))
	assert.False(t, acct.CheckPassword("wrong"))
}

func TestRegisterDuplicateMatric(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	_, err := svc.Register(ctx, "Alice", "CSC/2024/001", "hunter2secret")
	require.NoError(t, err)

	// Same matric differing only in case still collides.
	_, err = svc.Register(ctx, "Bob", "csc/2024/001", "hunter2secret")
	assert.ErrorIs(t, err, ErrMatricExists)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	_, err := svc.Register(ctx, "Alice", "CSC/2024/001", "hunter2secret")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		acct, err := svc.Authenticate(ctx, " csc/2024/001 ", "hunter2secret")
		require.NoError(t, err)
		assert.Equal(t, "CSC/2024/001", acct.MatricNo)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "CSC/2024/001", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown matric maps to invalid credentials", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "CSC/2024/999", "hunter2secret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	acct, err := svc.Register(ctx, "Alice", "CSC/2024/001", "hunter2secret")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, acct.ID, "wrong", "newsecret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, acct.ID, "hunter2secret", "newsecret123"))

	_, err = svc.Authenticate(ctx, "CSC/2024/001", "hunter2secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "CSC/2024/001", "newsecret123")
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	acct, err := svc.Register(ctx, "Alice", "CSC/2024/001", "hunter2secret")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, acct.ID, "adminset12345"))
	_, err = svc.Authenticate(ctx, "CSC/2024/001", "adminset12345")
	assert.NoError(t, err)

	err = svc.ResetPassword(ctx, "missing", "whatever12345")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	acct, err := svc.Register(ctx, "Alice", "CSC/2024/001", "hunter2secret")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, acct.ID, "Alice A.", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.FullName)
	assert.Equal(t, "CSC/2024/001", updated.MatricNo)
}
