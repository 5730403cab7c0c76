package types

import "time"

// User represents a student account in the system.
// It contains identity, contact, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// StudentNumber is the unique campus identifier chosen at
	// registration. It is immutable after creation.
	StudentNumber string `json:"studentNumber" db:"student_number"`

	// Email is the user's contact email address. Optional.
	Email string `json:"email" db:"email"`

	// Phone is the user's contact phone number. Optional.
	Phone string `json:"phone" db:"phone"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
