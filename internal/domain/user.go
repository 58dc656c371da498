package domain

import (
	"regexp"
	"strings"
	"time"
)

// Password length limits. bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLength = 3
	MaxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User represents a registered user of the task manager.
// A user creates tasks and may be assigned as the executor of tasks.
type User struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration/updates
	PasswordDigest string    `json:"-"` // Never expose the digest in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given names, email and password.
// Returns an error if validation fails.
//
// NOTE: the plaintext password must be hashed by the caller before the user is stored.
func NewUser(firstName, lastName, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// All invalid fields are reported together.
func (u *User) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(u.FirstName) == "" {
		errs.Add("first_name", "is required", ErrEmptyName)
	}
	if strings.TrimSpace(u.LastName) == "" {
		errs.Add("last_name", "is required", ErrEmptyName)
	}

	switch {
	case u.Email == "":
		errs.Add("email", "is required", ErrInvalidEmail)
	case !emailPattern.MatchString(u.Email):
		errs.Add("email", "has invalid format", ErrInvalidEmail)
	}

	// A plaintext password is only present during registration or a password change;
	// stored users carry the digest instead.
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			errs.Add("password", "is too short", ErrInvalidPassword)
		} else if len(u.Password) > MaxPasswordLength {
			errs.Add("password", "is too long", ErrInvalidPassword)
		}
	} else if u.PasswordDigest == "" {
		errs.Add("password", "is required", ErrInvalidPassword)
	}

	return errs.Err()
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
