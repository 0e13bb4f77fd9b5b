package crowdfund

import (
	"time"

	"github.com/crowdstake/crowdstake-server/database/models"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/shopspring/decimal"
)

// Campaign is a fundraising target. AmountRaised only moves through donations.
type Campaign struct {
	CampaignID       int64                `gorm:"column:campaign_id;primary_key;AUTO_INCREMENT;not null" json:"campaign_id"`
	Title            string               `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description      string               `gorm:"column:description;type:text;not null" json:"description"`
	ShortDescription *string              `gorm:"column:short_description;type:text" json:"short_description"`
	GoalAmount       decimal.Decimal      `gorm:"column:goal_amount;type:decimal(38,18);not null" json:"goal_amount"`
	AmountRaised     decimal.Decimal      `gorm:"column:amount_raised;type:decimal(38,18);not null;default:0" json:"amount_raised"`
	CreatorID        int64                `gorm:"column:creator_id;type:bigint;not null" json:"creator_id"`
	Category         string               `gorm:"column:category;type:varchar(64);not null" json:"category"`
	MainImageURL     *string              `gorm:"column:main_image_url;type:text" json:"main_image_url"`
	EndDate          time.Time            `gorm:"column:end_date;type:timestamp with time zone;not null" json:"end_date"`
	Status           types.CampaignStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Campaign) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "creator_id",
			Dest:     "\"users\"(user_id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*Campaign) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{Name: "creator_idx", Fields: []string{"creator_id"}},
	}
}
