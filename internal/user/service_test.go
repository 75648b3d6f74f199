package user

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	byID map[string]*User
}

func newMemRepo() *memRepo { return &memRepo{byID: map[string]*User{}} }

func (m *memRepo) Create(_ context.Context, u *User) error {
	for _, x := range m.byID {
		if x.Email == u.Email || x.Username == u.Username {
			return ErrAlreadyExist
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func validSignUp() SignUp {
	return SignUp{
		Username:  "wanjiru",
		FirstName: "Wanjiru",
		Email:     "Wanjiru@Example.com",
		Password:  "s3cret-pass",
		Password2: "s3cret-pass",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, validSignUp())
	require.NoError(t, err)
	assert.Equal(t, "wanjiru@example.com", u.Email)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "wanjiru", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = svc.Authenticate(ctx, "WANJIRU@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, validSignUp())
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "wanjiru", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "ghost", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(newMemRepo())

	in := validSignUp()
	in.Password2 = "different"
	_, err := svc.Register(context.Background(), in)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Password2", verrs[0].Field())
}

func TestRegister_Duplicate(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, validSignUp())
	require.NoError(t, err)
	_, err = svc.Register(ctx, validSignUp())
	assert.ErrorIs(t, err, ErrAlreadyExist)
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("pw-123456")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "pw-123456"))
	assert.False(t, CheckPassword(h, "pw-1234567"))
}
