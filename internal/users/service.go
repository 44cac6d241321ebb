// Package users handles registration, login and profiles.
package users

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/auth"
	"dkstore_back_end/internal/models"
)

const minPasswordLength = 6

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cpfRe   = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$|^\d{11}$`)
	phoneRe = regexp.MustCompile(`^\(\d{2}\)\s\d{4,5}-\d{4}$|^\d{10,11}$`)
)

type Service struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	log    *slog.Logger
}

func NewService(db *gorm.DB, tokens *auth.TokenManager) *Service {
	return &Service{db: db, tokens: tokens, log: slog.Default().With("component", "users")}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	CPF      string `json:"cpf"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.CPF = strings.TrimSpace(in.CPF)
}

func (in RegisterInput) validate() error {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Phone == "" || in.CPF == "" {
		return apperr.Validation("all fields are required")
	}
	switch {
	case !emailRe.MatchString(in.Email):
		return apperr.Validation("invalid email format")
	case len(in.Password) < minPasswordLength:
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	case !cpfRe.MatchString(in.CPF):
		return apperr.Validation("invalid CPF format")
	case !phoneRe.MatchString(in.Phone):
		return apperr.Validation("invalid phone format")
	}
	return nil
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&n).Error; err != nil {
		return nil, apperr.Internal(err, "failed to check email")
	}
	if n > 0 {
		return nil, apperr.Duplicate("email already registered")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("cpf = ?", in.CPF).Count(&n).Error; err != nil {
		return nil, apperr.Internal(err, "failed to check CPF")
	}
	if n > 0 {
		return nil, apperr.Duplicate("CPF already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Phone:    in.Phone,
		CPF:      in.CPF,
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Duplicate("email or CPF already registered")
		}
		return nil, apperr.Internal(err, "failed to create user")
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &user, nil
}

type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login checks credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("account is inactive")
	}

	ok, err := auth.VerifyPassword(password, user.Password)
	if err != nil {
		s.log.WarnContext(ctx, "stored password hash unusable", "user_id", user.ID, "error", err)
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !ok {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err, "failed to issue token")
	}
	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Profile returns the user's own account.
func (s *Service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}
	return &user, nil
}
