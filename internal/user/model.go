package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName is what templates greet the customer with.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// SignUp is the registration form.
type SignUp struct {
	Username  string `form:"username" validate:"required,min=3,max=150,alphanum"`
	FirstName string `form:"first_name" validate:"max=150"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}
