package domain

import (
	"time"
)

type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username" gorm:"uniqueIndex"`
	Email    string `json:"email,omitempty" gorm:"uniqueIndex"`
	Bio      string `json:"bio,omitempty"`
	Profile  string `json:"profile,omitempty"`

	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// UserService is a set of methods to manipulate and work with the User model.
// It also covers the database half of the authentication system: password
// checks and remember token lookups. The http package deals with cookies.
type UserService interface {
	Authenticate(email, password string) (*User, error)
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByRemember(token string) (*User, error)
	Create(user *User) error
	Update(user *User) error
}
