package crowdfund

import (
	"time"

	"github.com/crowdstake/crowdstake-server/database/models"
)

// User is a registered account. Password hashes never leave the server.
type User struct {
	UserID       int64      `gorm:"column:user_id;primary_key;AUTO_INCREMENT;not null" json:"user_id"`
	Username     string     `gorm:"column:username;type:varchar(64);not null" json:"username"`
	Email        string     `gorm:"column:email;type:varchar(255);not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	FirstName    *string    `gorm:"column:first_name;type:varchar(128)" json:"first_name"`
	LastName     *string    `gorm:"column:last_name;type:varchar(128)" json:"last_name"`
	AvatarURL    *string    `gorm:"column:avatar_url;type:text" json:"avatar_url"`
	Bio          *string    `gorm:"column:bio;type:text" json:"bio"`
	Role         string     `gorm:"column:role;type:varchar(32);not null;default:'user'" json:"role"`
	LastLogin    *time.Time `gorm:"column:last_login;type:timestamp with time zone" json:"last_login,omitempty"`

	models.Base
}

// TableName avoids the reserved word "user".
func (*User) TableName() string {
	return "users"
}

// DisplayName is "first last" when either is set, otherwise the username.
func (u *User) DisplayName() string {
	name := ""
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// ForeignKeyConstraints create foreign key constraints.
func (*User) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*User) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{Name: "email_unique_idx", Unique: true, Fields: []string{"email"}},
		{Name: "username_unique_idx", Unique: true, Fields: []string{"username"}},
	}
}
