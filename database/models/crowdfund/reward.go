package crowdfund

import (
	"time"

	"github.com/crowdstake/crowdstake-server/database/models"
	"github.com/shopspring/decimal"
)

// UserReward is the running reward points total of a donor email.
type UserReward struct {
	Email        string          `gorm:"column:email;primary_key;type:varchar(255);not null" json:"email"`
	RewardPoints decimal.Decimal `gorm:"column:reward_points;type:decimal(38,18);not null;default:0" json:"reward_points"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*UserReward) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*UserReward) Indexes() []models.CustomIndex {
	return nil
}

// UserCampaignReward splits reward points per campaign.
type UserCampaignReward struct {
	UserEmail    string          `gorm:"column:user_email;primary_key;type:varchar(255);not null" json:"user_email"`
	CampaignID   int64           `gorm:"column:campaign_id;primary_key;type:bigint;not null" json:"campaign_id"`
	RewardPoints decimal.Decimal `gorm:"column:reward_points;type:decimal(38,18);not null;default:0" json:"reward_points"`
	LastUpdated  time.Time       `gorm:"column:last_updated;type:timestamp with time zone;not null" json:"last_updated"`
}

// ForeignKeyConstraints create foreign key constraints.
func (*UserCampaignReward) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "campaign_id",
			Dest:     "\"campaign\"(campaign_id)",
			OnDelete: "CASCADE",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*UserCampaignReward) Indexes() []models.CustomIndex {
	return nil
}
