package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookbot/internal/auth"
	"bookbot/internal/contextutil"
	"bookbot/internal/service"
	"bookbot/internal/storage"
	"bookbot/internal/vectorstore"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = service.NewError(service.ErrConflict, "username is already taken")
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = service.NewError(service.ErrConflict, "email is already registered")
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = service.NewError(service.ErrUnauthorized, "invalid credentials")
	// ErrAccountInactive is returned when a deactivated account logs in or uses a token.
	ErrAccountInactive = service.NewError(service.ErrInactiveAccount, "account is deactivated")
	// ErrWrongPassword is returned when the current password given to ChangePassword does not match.
	ErrWrongPassword = service.NewError(service.ErrUnauthorized, "current password is incorrect")
)

// Tokens issues and verifies session tokens.
type Tokens interface {
	Issue(userID, username string) (string, error)
	Verify(token string) (*auth.Claims, error)
	TTL() time.Duration
}

// RegisterResult describes a newly created user.
type RegisterResult struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// LoginResult carries the token issued on login.
type LoginResult struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	ExpiresIn string `json:"expires_in"`
}

// Identity is the caller behind a valid token.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type user struct {
	id           string
	username     string
	email        string
	passwordHash string
	active       bool
}

var userFields = []string{"username", "email", "password_hash", "is_active"}

// Service registers users, logs them in and resolves their tokens.
// User state is always re-read from the store; token claims never override it.
type Service struct {
	store  vectorstore.Store
	tokens Tokens
	ledger storage.KeyLedger
	newID  func() string
	now    func() time.Time
}

// NewService creates a new identity service. ledger may be nil.
func NewService(store vectorstore.Store, tokens Tokens, ledger storage.KeyLedger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		ledger: ledger,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		return service.NewValidationError(field, "password must be at least 6 characters")
	}
	return nil
}

// Register creates an active user.
func (s *Service) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(username) < minUsernameLength {
		return nil, service.NewValidationError("username", "username must be at least 3 characters")
	}
	if !strings.Contains(email, "@") {
		return nil, service.NewValidationError("email", "invalid email")
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}

	if u, err := s.findUser(ctx, "username", username); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrUsernameTaken
	}
	if u, err := s.findUser(ctx, "email", email); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrEmailTaken
	}

	userID := s.newID()
	if err := s.reserve(ctx, storage.NamespaceUser, username, userID, ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.reserve(ctx, storage.NamespaceEmail, email, userID, ErrEmailTaken); err != nil {
		s.release(ctx, storage.NamespaceUser, username)
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.releaseAll(ctx, username, email)
		return nil, service.WrapError(err, "hash password")
	}

	err = s.store.Create(ctx, vectorstore.KindUser, userID, vectorstore.Fields{
		"username":      username,
		"email":         email,
		"password_hash": hash,
		"is_active":     true,
	})
	if err != nil {
		s.releaseAll(ctx, username, email)
		if errors.Is(err, vectorstore.ErrUniqueViolation) {
			return nil, s.conflictFor(ctx, username)
		}
		return nil, service.StoreError(err, "create user")
	}

	logger.InfoContext(ctx, "user registered", "username", username, "user_id", userID)
	return &RegisterResult{UserID: userID, Username: username}, nil
}

// conflictFor tells which unique field a store constraint violation hit.
func (s *Service) conflictFor(ctx context.Context, username string) error {
	if u, err := s.findUser(ctx, "username", username); err == nil && u != nil {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// Login checks the credentials and issues a token. An unknown user and a
// wrong password fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if username == "" || password == "" {
		return nil, service.NewValidationError("credentials", "username and password are required")
	}

	u, err := s.findUser(ctx, "username", username)
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.VerifyPassword(password, u.passwordHash) {
		logger.InfoContext(ctx, "login failed", "username", username)
		return nil, ErrInvalidCredentials
	}
	if !u.active {
		logger.InfoContext(ctx, "login of inactive account", "username", username)
		return nil, ErrAccountInactive
	}

	token, err := s.tokens.Issue(u.id, u.username)
	if err != nil {
		return nil, service.WrapError(err, "issue token")
	}

	return &LoginResult{
		Token:     token,
		UserID:    u.id,
		Username:  u.username,
		ExpiresIn: formatTTL(s.tokens.TTL()),
	}, nil
}

func formatTTL(d time.Duration) string {
	if d%time.Hour == 0 {
		return strings.TrimSuffix(d.String(), "0m0s")
	}
	return d.String()
}

// Resolve verifies token and returns the current state of its user.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	u, err := s.resolveUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: u.id, Username: u.username, Email: u.email}, nil
}

func (s *Service) resolveUser(ctx context.Context, token string) (*user, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.findUser(ctx, "username", claims.Username)
	if err != nil {
		return nil, err
	}
	if u == nil || u.id != claims.UserID {
		return nil, auth.ErrInvalidToken
	}
	if !u.active {
		return nil, ErrAccountInactive
	}
	return u, nil
}

// Deactivate disables the caller's account. There is no way back.
func (s *Service) Deactivate(ctx context.Context, token string) error {
	u, err := s.resolveUser(ctx, token)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, vectorstore.KindUser, u.id, vectorstore.Fields{"is_active": false}); err != nil {
		return service.StoreError(err, "deactivate user")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "user deactivated", "username", u.username, "user_id", u.id)
	return nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	if err := validatePassword("new_password", newPassword); err != nil {
		return err
	}
	u, err := s.resolveUser(ctx, token)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(oldPassword, u.passwordHash) {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return service.WrapError(err, "hash password")
	}
	if err := s.store.Update(ctx, vectorstore.KindUser, u.id, vectorstore.Fields{"password_hash": hash}); err != nil {
		return service.StoreError(err, "update password")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "password changed", "username", u.username)
	return nil
}

func (s *Service) findUser(ctx context.Context, field, value string) (*user, error) {
	filter := vectorstore.Equal(field, value)
	records, err := s.store.Get(ctx, vectorstore.KindUser, userFields, &filter, 1)
	if err != nil {
		return nil, service.StoreError(err, "lookup user")
	}
	if len(records) == 0 {
		return nil, nil
	}
	r := records[0]
	return &user{
		id:           r.ID,
		username:     r.String("username"),
		email:        r.String("email"),
		passwordHash: r.String("password_hash"),
		active:       r.Bool("is_active"),
	}, nil
}

func (s *Service) reserve(ctx context.Context, namespace, key, owner string, conflict error) error {
	if s.ledger == nil {
		return nil
	}
	err := storage.Claim(ctx, s.ledger, namespace, key, owner, s.userExists, s.now())
	if errors.Is(err, storage.ErrAlreadyReserved) {
		return conflict
	}
	if err != nil {
		return service.WrapError(err, "reserve "+namespace)
	}
	return nil
}

// userExists reports whether a user record with id is stored.
func (s *Service) userExists(ctx context.Context, id string) (bool, error) {
	filter := vectorstore.Equal(vectorstore.IDPath, id)
	records, err := s.store.Get(ctx, vectorstore.KindUser, nil, &filter, 1)
	if err != nil {
		return false, service.StoreError(err, "lookup reservation owner")
	}
	return len(records) > 0, nil
}

func (s *Service) release(ctx context.Context, namespace, key string) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Release(ctx, namespace, key); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to release key", "namespace", namespace, "error", err)
	}
}

func (s *Service) releaseAll(ctx context.Context, username, email string) {
	s.release(ctx, storage.NamespaceUser, username)
	s.release(ctx, storage.NamespaceEmail, email)
}
