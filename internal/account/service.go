package account

import (
	"context"
	"errors"
	"strings"
)

// Repository persists accounts.
type Repository interface {
	// CreateAccount writes a new account; a duplicate matric number is
	// returned as ErrMatricExists.
	CreateAccount(ctx context.Context, a Account) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	GetByMatric(ctx context.Context, matricNo string) (Account, error)
	UpdateAccount(ctx context.Context, a Account) (Account, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	SetAvatar(ctx context.Context, id, url string) error
	// DeleteAccount removes an account; enrollments, attendance records and
	// announcement reads cascade at the storage layer.
	DeleteAccount(ctx context.Context, id string) error
	// ListStudents returns students, optionally restricted to one course.
	ListStudents(ctx context.Context, courseID string) ([]StudentSummary, error)
	CountStudents(ctx context.Context) (int, error)
}

// Service manages identities and credentials.
type Service struct {
	repo Repository
}

// NewService creates an account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a student account with a hashed credential.
func (svc *Service) Register(ctx context.Context, fullName, matricNo, password string) (Account, error) {
	acct := Account{
		MatricNo: normalizeMatric(matricNo),
		FullName: strings.TrimSpace(fullName),
		Role:     RoleStudent,
	}
	if err := acct.SetPassword(password); err != nil {
		return Account{}, err
	}
	return svc.repo.CreateAccount(ctx, acct)
}

// CreateStudent is the admin path: like Register but the caller supplies the
// initial password and the account may be enrolled immediately afterwards.
func (svc *Service) CreateStudent(ctx context.Context, fullName, matricNo, password string) (Account, error) {
	return svc.Register(ctx, fullName, matricNo, password)
}

// Authenticate verifies credentials and returns the account. Both an unknown
// matric number and a wrong password yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, matricNo, password string) (Account, error) {
	acct, err := svc.repo.GetByMatric(ctx, normalizeMatric(matricNo))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if !acct.CheckPassword(password) {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// Get returns one account.
func (svc *Service) Get(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccount(ctx, id)
}

// Update edits name and matric number.
func (svc *Service) Update(ctx context.Context, id, fullName, matricNo string) (Account, error) {
	acct, err := svc.repo.GetAccount(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if fullName != "" {
		acct.FullName = strings.TrimSpace(fullName)
	}
	if matricNo != "" {
		acct.MatricNo = normalizeMatric(matricNo)
	}
	return svc.repo.UpdateAccount(ctx, acct)
}

// ChangePassword rotates a credential after verifying the current one.
func (svc *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	acct, err := svc.repo.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if !acct.CheckPassword(current) {
		return ErrInvalidCredentials
	}
	if err := acct.SetPassword(next); err != nil {
		return err
	}
	return svc.repo.UpdatePassword(ctx, id, acct.PasswordHash)
}

// ResetPassword is the admin path: sets a new credential without the old one.
func (svc *Service) ResetPassword(ctx context.Context, id, next string) error {
	acct, err := svc.repo.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if err := acct.SetPassword(next); err != nil {
		return err
	}
	return svc.repo.UpdatePassword(ctx, id, acct.PasswordHash)
}

// SetAvatar stores the account's profile picture URL.
func (svc *Service) SetAvatar(ctx context.Context, id, url string) error {
	return svc.repo.SetAvatar(ctx, id, url)
}

// Delete removes an account and all dependent rows.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAccount(ctx, id)
}

// ListStudents returns students, optionally those enrolled in one course.
func (svc *Service) ListStudents(ctx context.Context, courseID string) ([]StudentSummary, error) {
	return svc.repo.ListStudents(ctx, courseID)
}

// CountStudents returns the student total for the admin dashboard.
func (svc *Service) CountStudents(ctx context.Context) (int, error) {
	return svc.repo.CountStudents(ctx)
}

func normalizeMatric(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
