package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/shelf/internal/auth"
	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/telemetry"
	"github.com/go-playground/validator/v10"
)

// SessionTokenLength is the number of random bytes in a session token.
const SessionTokenLength = 32

// AuthService signs users up, in and out, and resolves session tokens.
type AuthService interface {
	// SignUp creates the account with its profile and opens a session.
	SignUp(ctx context.Context, params SignUpParams) (*domain.Session, error)

	// SignIn checks credentials and opens a session.
	SignIn(ctx context.Context, params SignInParams) (*domain.Session, error)

	// SignOut ends the session. Unknown tokens are not an error.
	SignOut(ctx context.Context, token string) error

	// GetSession resolves a token. Unknown or expired tokens are EUNAUTHORIZED.
	GetSession(ctx context.Context, token string) (*domain.Session, error)

	// SweepExpiredSessions deletes expired sessions and returns how many.
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// SignUpParams contains the fields of the sign-up form.
type SignUpParams struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	UserName string `json:"user_name" validate:"notblank,max=100"`
}

// SignInParams contains the fields of the sign-in form.
type SignInParams struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authService struct {
	users    domain.UserStore
	profiles domain.ProfileStore
	hasher   PasswordHasher
	ttl      time.Duration
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService. Sessions live for ttl.
func NewAuthService(users domain.UserStore, profiles domain.ProfileStore, hasher PasswordHasher, ttl time.Duration, logger *slog.Logger) AuthService {
	return &authService{
		users:    users,
		profiles: profiles,
		hasher:   hasher,
		ttl:      ttl,
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, params SignUpParams) (*domain.Session, error) {
	const op = "auth.sign_up"

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.UserName = strings.TrimSpace(params.UserName)

	if err := s.validateSignUp(op, params); err != nil {
		telemetry.Business.Signup(telemetry.OutcomeRejected)
		return nil, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		telemetry.Business.Signup(telemetry.OutcomeFailed)
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	user, err := s.users.CreateUser(ctx, params.Email, hash, params.UserName)
	if err != nil {
		if domain.IsCode(err, domain.ECONFLICT) {
			telemetry.Business.Signup(telemetry.OutcomeRejected)
			return nil, &domain.Error{Code: domain.ECONFLICT, Op: op, Message: "An account with this email already exists"}
		}
		telemetry.Business.Signup(telemetry.OutcomeFailed)
		return nil, err
	}

	name := params.UserName
	if _, err := s.profiles.UpsertProfile(ctx, domain.UpsertProfileParams{UserID: user.ID, UserName: &name}); err != nil {
		// The account exists; the profile falls back to defaults.
		s.logger.WarnContext(ctx, "failed to create profile for new user",
			"user_id", user.ID,
			"error", err,
		)
	}

	telemetry.Business.Signup(telemetry.OutcomeSuccess)
	return s.openSession(ctx, op, user)
}

func (s *authService) validateSignUp(op string, params SignUpParams) error {
	err := validateStruct(s.validate, op, params)

	var msg string
	switch pwErr := auth.ValidatePassword(params.Password); {
	case params.Password == "":
	case errors.Is(pwErr, auth.ErrPasswordTooShort):
		msg = MsgPasswordTooShort
	case errors.Is(pwErr, auth.ErrPasswordTooLong):
		msg = MsgPasswordTooLong
	}
	if msg != "" {
		if err == nil {
			return domain.NewValidationError(op, "password", msg)
		}
		return domain.AddFieldError(err, "password", msg)
	}
	return err
}

func (s *authService) SignIn(ctx context.Context, params SignInParams) (*domain.Session, error) {
	const op = "auth.sign_in"

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if err := validateStruct(s.validate, op, params); err != nil {
		telemetry.Business.Login(telemetry.OutcomeRejected)
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			telemetry.Business.Login(telemetry.OutcomeRejected)
			return nil, ErrInvalidCredentials
		}
		telemetry.Business.Login(telemetry.OutcomeFailed)
		return nil, err
	}

	if err := s.hasher.Verify(params.Password, user.PasswordHash); err != nil {
		telemetry.Business.Login(telemetry.OutcomeRejected)
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		s.logger.WarnContext(ctx, "password verification failed", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}

	telemetry.Business.Login(telemetry.OutcomeSuccess)
	return s.openSession(ctx, op, user)
}

func (s *authService) openSession(ctx context.Context, op string, user *domain.User) (*domain.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate session token")
	}

	expiresAt := s.now().Add(s.ttl)
	if err := s.users.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}
	telemetry.Business.SessionEvent("created", 1)

	return &domain.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.users.DeleteSession(ctx, token); err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil
		}
		return err
	}
	telemetry.Business.SessionEvent("signed_out", 1)
	return nil
}

func (s *authService) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	const op = "auth.get_session"
	if token == "" {
		return nil, requireSession(nil, op)
	}

	session, err := s.users.GetSession(ctx, token)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, requireSession(nil, op)
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, requireSession(nil, op)
	}
	return session, nil
}

func (s *authService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.users.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	telemetry.Business.SessionEvent("swept", n)
	return n, nil
}

// generateSessionToken returns a URL-safe random token.
func generateSessionToken() (string, error) {
	b := make([]byte, SessionTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
