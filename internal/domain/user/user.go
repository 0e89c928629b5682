package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account. The password hash never leaves the
// persistence layer in API responses.
type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"`
	FullName       string    `json:"full_name" gorm:"index"`
	IsAdmin        bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate sets a UUID before creating the record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// NewUser creates a new user with a hashed password already computed.
func NewUser(email, hashedPassword, fullName string) *User {
	return &User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashedPassword,
		FullName:       fullName,
	}
}
