package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"zipfit/internal/model"
	"zipfit/internal/pkg/jwtutil"
)

var (
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrRegisterClosed    = errors.New("registration is closed")
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int64, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	TouchLogin(ctx context.Context, id uint, at time.Time) error
}

// AuthService manages the operator accounts allowed to ingest. The first
// account becomes admin and can always be created; later accounts are
// editors and need registration to be open.
type AuthService struct {
	users         UserStore
	jwtSecret     string
	jwtExpiration time.Duration
	allowRegister bool
	now           func() time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(users UserStore, jwtSecret string, jwtExpiration time.Duration, allowRegister bool) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		allowRegister: allowRegister,
		now:           time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if username == "" || email == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existing, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	role := model.RoleEditor
	if existing == 0 {
		role = model.RoleAdmin
	} else if !s.allowRegister {
		return nil, ErrRegisterClosed
	}

	byName, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if byName != nil {
		return nil, ErrUsernameExists
	}
	byEmail, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if byEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	at := s.now()
	if err := s.users.TouchLogin(ctx, user.ID, at); err != nil {
		log.Printf("auth record login failed: %v", err)
	} else {
		user.LastLoginAt = &at
	}
	return s.issue(user)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
