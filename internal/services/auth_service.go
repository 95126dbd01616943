package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/models"
	"github.com/example/foodcatalog/internal/repositories"
	"github.com/example/foodcatalog/internal/utils"
	"github.com/example/foodcatalog/internal/validation"
)

const authTokenName = "auth_token"

// ErrUnauthenticated is returned for a missing, invalid, expired or revoked token.
var ErrUnauthenticated = errors.New("unauthenticated")

// LoginInput is the login request body.
type LoginInput struct {
	Login    string `json:"login" form:"login" validate:"required,max=191"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterInput is the admin registration request body.
type RegisterInput struct {
	Login                string `json:"login" form:"login" validate:"required,max=191"`
	Password             string `json:"password" form:"password" validate:"required,min=8,max=255"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
	Phone                string `json:"phone" form:"phone" validate:"omitempty,max=32"`
}

// AuthService issues, checks and revokes bearer tokens.
type AuthService struct {
	users    *repositories.UserRepository
	secret   string
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(users *repositories.UserRepository, secret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks the credentials and issues a new token. Every failure is
// reported with the same message so logins cannot be probed.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	in.Login = strings.TrimSpace(in.Login)
	if errs := validation.Struct(in); !errs.Empty() {
		return nil, "", errs
	}

	user, err := s.users.FindByLogin(ctx, in.Login)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", errors.Wrap(err, "find user")
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, in.Password) {
		return nil, "", validation.Single("login", "The provided credentials are incorrect.")
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Register creates an admin account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Login = strings.TrimSpace(in.Login)
	in.Phone = strings.TrimSpace(in.Phone)

	errs := validation.Struct(in)
	if !errs.Has("login") {
		exists, err := s.users.LoginExists(ctx, in.Login)
		if err != nil {
			return nil, errors.Wrap(err, "check login")
		}
		if exists {
			errs.Add("login", "The login has already been taken.")
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return s.createUser(ctx, in.Login, in.Password, in.Phone, models.RoleAdmin)
}

// Logout revokes only the token the request was authenticated with.
func (s *AuthService) Logout(ctx context.Context, token *models.AccessToken) error {
	if token == nil {
		return ErrUnauthenticated
	}
	if err := s.users.DeleteToken(ctx, token.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUnauthenticated
		}
		return errors.Wrap(err, "revoke token")
	}
	return nil
}

// LogoutAll revokes every token of user, the current one included.
func (s *AuthService) LogoutAll(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if err := s.users.DeleteTokens(ctx, user.ID); err != nil {
		return errors.Wrap(err, "revoke tokens")
	}
	return nil
}

// Authenticate resolves a raw bearer token to its user and token row and
// records the use.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, *models.AccessToken, error) {
	claims, err := utils.ParseToken(s.secret, raw)
	if err != nil {
		return nil, nil, ErrUnauthenticated
	}

	token, err := s.users.FindToken(ctx, claims.TokenID, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "find token")
	}

	now := s.now()
	if !token.ExpiresAt.After(now) {
		return nil, nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "find user")
	}

	if err := s.users.TouchToken(ctx, token.ID, now); err != nil {
		s.logger.Warn("token last_used_at update failed", zap.Error(err))
	}
	token.LastUsedAt = &now

	return user, token, nil
}

// EnsureAdmin creates the bootstrap admin account when login is set and not
// taken yet. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, login, password, phone string) (bool, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return false, nil
	}

	exists, err := s.users.LoginExists(ctx, login)
	if err != nil {
		return false, errors.Wrap(err, "check admin login")
	}
	if exists {
		return false, nil
	}

	if _, err := s.createUser(ctx, login, password, phone, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, login, password, phone, role string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{
		Login:        login,
		PasswordHash: hash,
		Phone:        phone,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateLogin) {
			return nil, validation.Single("login", "The login has already been taken.")
		}
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User) (string, error) {
	row := &models.AccessToken{
		BaseModel: models.BaseModel{ID: uuid.New()},
		UserID:    user.ID,
		Name:      authTokenName,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.users.CreateToken(ctx, row); err != nil {
		return "", errors.Wrap(err, "store token")
	}

	token, err := utils.GenerateToken(s.secret, user.ID, row.ID, s.tokenTTL)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}
