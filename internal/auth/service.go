package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/database/users"
	"github.com/bookbrief/bookbrief/internal/entities"
)

var (
	ErrUserNotFound         = users.ErrUserNotFound
	ErrUserExists           = users.ErrUserExists
	ErrAuthRequired         = errors.New("authentication required")
	ErrInvalidRole          = errors.New("invalid role")
	ErrNameRequired         = errors.New("name is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrPasswordRequired     = errors.New("password is required")
	ErrEmailInvalid         = errors.New("invalid email format")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrNotAdmin             = errors.New("invalid admin credentials")
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrAccountLocked        = errors.New("account is locked due to too many failed login attempts")
)

// UserStore is the persistence the auth service needs. users.Repository
// implements it.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uint) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id uint, update users.ProfileUpdate) (*entities.User, error)
	SetPasswordHash(ctx context.Context, id uint, hash string) error
	RecordLogin(ctx context.Context, id uint, at time.Time) error
	RecordFailedLogin(ctx context.Context, id uint, maxAttempts int, lockout time.Duration) (int, error)
	Count(ctx context.Context) (total, admins int64, err error)
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entities.User
}

// Service handles authentication and user management.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
	config config.Auth
}

// NewService creates a new authentication service. cfg.JWTSecret must be
// set; the caller generates one when the environment does not provide it.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  store,
		tokens: NewTokenIssuer(cfg.JWTSecret, cfg.TokenExpiry),
		config: cfg,
	}
}

// Signup registers a regular user.
func (s *Service) Signup(ctx context.Context, name, email, password, passwordConfirm string) (*entities.User, error) {
	if password != passwordConfirm {
		return nil, ErrPasswordMismatch
	}
	return s.CreateUser(ctx, name, email, password, entities.UserRoleUser)
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(ctx context.Context, name, email, password string, role entities.UserRole) (*entities.User, error) {
	name = strings.TrimSpace(name)
	email = users.NormalizeEmail(email)

	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateEmail checks the address is a bare RFC 5322 address within the
// RFC 5321 length limit.
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return ErrEmailInvalid
	}
	return nil
}

// Authenticate validates credentials and returns the user.
// Implements account lockout after too many failed attempts. Unknown emails
// and wrong passwords both come back as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if _, recErr := s.users.RecordFailedLogin(ctx, user.ID, s.maxLoginAttempts(), s.lockoutDuration()); recErr != nil {
			return nil, fmt.Errorf("failed to record login attempt: %w", recErr)
		}
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil

	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// AdminLogin is Login restricted to admins. Non-admins get the same error
// as bad credentials.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return s.issue(user)
}

func (s *Service) issue(user *entities.User) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateToken checks a bearer token and returns the live user it names.
// A token for a deleted user is invalid.
func (s *Service) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	userID, _, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes the caller's own name, age or avatar.
func (s *Service) UpdateProfile(ctx context.Context, id uint, update users.ProfileUpdate) (*entities.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		update.Name = &name
	}
	return s.users.UpdateProfile(ctx, id, update)
}

// ChangePassword updates a user's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return ErrCurrentPasswordWrong
		}
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, userID, newHash)
}

// HashPassword hashes with the configured cost. Admin user management uses
// it to rehash passwords it sets on behalf of others.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.config.BcryptCost)
}

// HasAdmins reports whether at least one admin account exists.
func (s *Service) HasAdmins(ctx context.Context) (bool, error) {
	_, admins, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return admins > 0, nil
}

func (s *Service) maxLoginAttempts() int {
	if s.config.MaxLoginAttempts > 0 {
		return s.config.MaxLoginAttempts
	}
	return 5
}

func (s *Service) lockoutDuration() time.Duration {
	if s.config.LockoutDuration > 0 {
		return s.config.LockoutDuration
	}
	return 30 * time.Minute
}
