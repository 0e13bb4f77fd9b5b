package db

import (
	"fmt"
	"time"

	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"gorm.io/gorm"
)

type UserDAO struct{}

func (*UserDAO) CreateUser(db *gorm.DB, u *crowdfund.User) error {
	if err := db.Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", u.Username, err)
	}
	return nil
}

// GetUser returns nil when the user doesn't exist.
func (*UserDAO) GetUser(db *gorm.DB, userID int64) (*crowdfund.User, error) {
	var u crowdfund.User
	ok, err := first(db.Where("user_id = ?", userID), &u)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByEmail returns nil when the email isn't registered.
func (*UserDAO) GetUserByEmail(db *gorm.DB, email string) (*crowdfund.User, error) {
	var u crowdfund.User
	ok, err := first(db.Where("email = ?", email), &u)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (*UserDAO) UserExists(db *gorm.DB, username, email string) (bool, error) {
	var n int64
	err := db.Model(&crowdfund.User{}).Where("username = ? OR email = ?", username, email).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return n > 0, nil
}

func (*UserDAO) TouchLastLogin(db *gorm.DB, userID int64, ts time.Time) error {
	err := db.Model(&crowdfund.User{}).Where("user_id = ?", userID).UpdateColumn("last_login", ts).Error
	if err != nil {
		return fmt.Errorf("failed to update last_login of %d: %w", userID, err)
	}
	return nil
}
