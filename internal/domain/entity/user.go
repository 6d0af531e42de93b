package entity

import "time"

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never the plaintext.
// Username is unique across all accounts; ID is immutable after creation.
type User struct {
	ID          string
	Username    string
	Email       string
	Password    string
	Bio         string
	AvatarURL   string
	Website     string
	IsStaff     bool
	IsSuperuser bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
