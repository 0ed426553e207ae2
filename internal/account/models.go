package account

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role separates the two kinds of accounts.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrMatricExists       = errors.New("an account with this matric number already exists")
	ErrInvalidCredentials = errors.New("invalid matric number or password")
)

// Account is a student or administrator identity.
type Account struct {
	ID           string    `json:"id"`
	MatricNo     string    `json:"matric_no"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SetPassword hashes and stores the given plaintext password.
func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// StudentSummary is a student row for admin listings.
type StudentSummary struct {
	Account
	EnrollmentCount int `json:"enrollment_count"`
}
