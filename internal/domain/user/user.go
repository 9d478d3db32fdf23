package user

import (
	"errors"
	"fmt"
)

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Merge copies the mutable fields of src onto u. The ID is never touched.
func (u *User) Merge(src User) {
	u.Name = src.Name
	u.Password = src.Password
	u.Email = src.Email
}

var ErrNotFound = errors.New("user not found")

// NotFoundError reports the id that had no stored record.
// errors.Is(err, ErrNotFound) holds for it.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// create and patch share the same full payload; every field must be present and non-blank.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

func (r CreateUserRequest) ToUser() User {
	return User{Name: r.Name, Email: r.Email, Password: r.Password}
}

func (r UpdateUserRequest) ToUser() User {
	return User{Name: r.Name, Email: r.Email, Password: r.Password}
}
