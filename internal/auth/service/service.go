package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"angebot_backend/internal/auth/repository"
	"angebot_backend/internal/auth/transport"
	"angebot_backend/internal/email"
	"angebot_backend/platform/apperr"
	"angebot_backend/platform/logger"
)

const accessTokenType = "access"

// Store is the persistence surface the service needs. Implemented by
// *repository.Repository; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, user *repository.User) error
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.User, error)
	List(ctx context.Context) ([]repository.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	CountActiveAdmins(ctx context.Context) (int, error)
}

// Config is the configuration slice the auth service needs.
type Config interface {
	GetJWTAccessSecret() string
	GetAccessTokenTTL() time.Duration
	GetAppBaseURL() string
}

type Service struct {
	store  Store
	cfg    Config
	mailer email.Sender
	log    *logger.Logger
}

func New(store Store, cfg Config, mailer email.Sender, log *logger.Logger) *Service {
	if mailer == nil {
		mailer = email.NoopSender{}
	}
	return &Service{store: store, cfg: cfg, mailer: mailer, log: log}
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords return the same error so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (*transport.LoginResponse, error) {
	user, err := s.store.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !user.Active {
		s.log.AuthEvent("login", req.Email, false, "account deactivated")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return nil, apperr.Unauthorized("invalid credentials")
	}

	ttl := s.cfg.GetAccessTokenTTL()
	token, err := s.signAccessToken(user, ttl)
	if err != nil {
		return nil, err
	}
	s.log.AuthEvent("login", user.Email, true, "")

	return &transport.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(ttl.Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func (s *Service) signAccessToken(user *repository.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"name":  user.DisplayName,
		"email": user.Email,
		"role":  user.Role,
		"type":  accessTokenType,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

// Me returns the account behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*transport.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// CreateUser provisions a new account and sends the welcome mail. Mail
// failures are logged, not returned: the account exists either way.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (*transport.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	loginURL := strings.TrimSuffix(s.cfg.GetAppBaseURL(), "/") + "/login"
	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.DisplayName, loginURL); err != nil {
		s.log.Warn("welcome email failed", "userId", user.ID, "error", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.UserResponse, len(users))
	for i := range users {
		responses[i] = toUserResponse(&users[i])
	}
	return responses, nil
}

// UpdateRole changes an account's role. Demoting the last active admin is
// rejected so the portal cannot lock itself out.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == role {
		return nil
	}

	if user.Role == "admin" && user.Active {
		admins, err := s.store.CountActiveAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.Conflict("cannot demote the last active admin")
		}
	}

	return s.store.UpdateRole(ctx, id, role)
}

// DeactivateUser disables the account. The last active admin cannot be
// deactivated.
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.Active {
		return nil
	}

	if user.Role == "admin" {
		admins, err := s.store.CountActiveAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.Conflict("cannot deactivate the last active admin")
		}
	}

	return s.store.Deactivate(ctx, id)
}

// ChangePassword lets an authenticated user rotate their own password.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req transport.ChangePasswordRequest) error {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return apperr.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, userID, string(hash))
}

func toUserResponse(u *repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}
