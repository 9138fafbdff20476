package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via
// gen_random_uuid(). Password and refresh-token columns hold hashes only;
// both are nullable because social accounts start without a password and the
// refresh slot is cleared on logout.
type UserModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string     `gorm:"type:varchar(100);not null"`
	Email            string     `gorm:"type:varchar(255);unique;not null"`
	PasswordHash     *string    `gorm:"column:password_hash;type:varchar(255)"`
	RefreshTokenHash *string    `gorm:"column:refresh_token_hash;type:varchar(255)"`
	Role             string     `gorm:"type:varchar(16);not null;default:user"`
	LastLogin        *time.Time `gorm:"column:last_login"`
	Provider         *string    `gorm:"type:varchar(32)"`
	ProviderID       *string    `gorm:"column:provider_id;type:varchar(255)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
