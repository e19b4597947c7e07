package model

// UserId defines a user id.
type UserId int64

// User defines a registered account. The password hash never
// leaves the service.
type User struct {
	Id           UserId `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
