package entity

// User is an account keyed by its normalized email address.
type User struct {
	Base
	Email      string `db:"email"`
	IsVerified bool   `db:"is_verified"`
}

// UserWithRegistration is the admin listing row.
type UserWithRegistration struct {
	User
	Registration *Registration
}
