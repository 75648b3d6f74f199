package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Authenticate accepts either the username or the email as login.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		u   *User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.repo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		u, err = s.repo.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Register validates the form and stores a new customer. Validation errors
// are returned as validator.ValidationErrors.
func (s *Service) Register(ctx context.Context, in SignUp) (*User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash error: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		FirstName:    strings.TrimSpace(in.FirstName),
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}
