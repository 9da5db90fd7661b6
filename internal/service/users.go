package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/geocoder89/bloghub/internal/security"
)

var (
	ErrInvalidAdminToken  = errors.New("invalid admin token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Keep these interfaces small so tests can fake them easily.
type UserStore interface {
	Create(ctx context.Context, u user.User) error
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type UserService struct {
	users      UserStore
	jwt        *auth.Manager
	adminToken string
	log        *slog.Logger
}

func NewUserService(users UserStore, jwt *auth.Manager, adminToken string, log *slog.Logger) *UserService {
	return &UserService{
		users:      users,
		jwt:        jwt,
		adminToken: adminToken,
		log:        log,
	}
}

// Signup registers a new account. Role defaults to USER; a request for
// ADMIN must carry the configured promotion secret.
func (s *UserService) Signup(ctx context.Context, req user.SignupRequest) (user.User, error) {
	_, err := s.users.GetByUsername(ctx, req.Username)

	if err == nil {
		return user.User{}, postgres.ErrUsernameTaken
	}

	if !errors.Is(err, postgres.ErrUserNotFound) {
		return user.User{}, err
	}

	role := user.RoleUser

	if req.Role == string(user.RoleAdmin) {
		if subtle.ConstantTimeCompare([]byte(req.AdminToken), []byte(s.adminToken)) != 1 {
			return user.User{}, ErrInvalidAdminToken
		}
		role = user.RoleAdmin
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		return user.User{}, err
	}

	u := user.New(req.Username, hash, role)

	err = s.users.Create(ctx, u)

	if err != nil {
		// a concurrent signup can still lose the race to the unique index
		return user.User{}, err
	}

	s.log.Info("user signed up", "username", u.Username, "role", u.Role)

	return u, nil
}

// Login verifies credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, req user.LoginRequest) (string, user.User, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)

	if err != nil {
		return "", user.User{}, err
	}

	err = security.CheckPassword(u.PasswordHash, req.Password)

	if err != nil {
		return "", user.User{}, ErrInvalidCredentials
	}

	token, err := s.jwt.Issue(u.Username, u.Role)

	if err != nil {
		return "", user.User{}, err
	}

	return token, u, nil
}
