package db

import (
	"fmt"
	"time"

	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRewardView is a per campaign reward row with the campaign title.
type CampaignRewardView struct {
	crowdfund.UserCampaignReward
	CampaignTitle string `gorm:"column:campaign_title"`
}

type RewardDAO struct{}

// AddRewardPoints increments both the total and the per campaign points of email.
func (*RewardDAO) AddRewardPoints(
	db *gorm.DB, email string, campaignID int64, points decimal.Decimal, now time.Time,
) error {
	total := &crowdfund.UserReward{Email: email, RewardPoints: points}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reward_points": gorm.Expr("user_reward.reward_points + EXCLUDED.reward_points"),
			"updated_at":    now,
		}),
	}).Create(total).Error; err != nil {
		return fmt.Errorf("failed to add reward points: %w", err)
	}

	perCampaign := &crowdfund.UserCampaignReward{
		UserEmail:    email,
		CampaignID:   campaignID,
		RewardPoints: points,
		LastUpdated:  now,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_email"}, {Name: "campaign_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reward_points": gorm.Expr("user_campaign_reward.reward_points + EXCLUDED.reward_points"),
			"last_updated":  now,
		}),
	}).Create(perCampaign).Error; err != nil {
		return fmt.Errorf("failed to add campaign reward points of %d: %w", campaignID, err)
	}
	return nil
}

// GetRewardPoints returns zero for an unknown email.
func (*RewardDAO) GetRewardPoints(db *gorm.DB, email string) (decimal.Decimal, error) {
	var r crowdfund.UserReward
	ok, err := first(db.Where("email = ?", email), &r)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get reward points: %w", err)
	}
	if !ok {
		return decimal.Zero, nil
	}
	return r.RewardPoints, nil
}

func (*RewardDAO) ListCampaignRewards(db *gorm.DB, email string) ([]*CampaignRewardView, error) {
	var rows []*CampaignRewardView
	err := db.Table("user_campaign_reward").
		Select("user_campaign_reward.*, campaign.title AS campaign_title").
		Joins("JOIN campaign ON campaign.campaign_id = user_campaign_reward.campaign_id").
		Where("user_campaign_reward.user_email = ?", email).
		Order("user_campaign_reward.last_updated desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign rewards: %w", err)
	}
	return rows, nil
}
