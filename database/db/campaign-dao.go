package db

import (
	"fmt"
	"time"

	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignView is a campaign joined with its creator's names.
type CampaignView struct {
	crowdfund.Campaign
	CreatorUsername  string  `gorm:"column:creator_username"`
	CreatorFirstName *string `gorm:"column:creator_first_name"`
	CreatorLastName  *string `gorm:"column:creator_last_name"`
}

// CampaignTotal pairs the stored total of a campaign with the sum of its donations.
type CampaignTotal struct {
	CampaignID   int64           `gorm:"column:campaign_id"`
	AmountRaised decimal.Decimal `gorm:"column:amount_raised"`
	DonationSum  decimal.Decimal `gorm:"column:donation_sum"`
}

type CampaignDAO struct{}

const campaignViewColumns = `campaign.*, users.username AS creator_username, ` +
	`users.first_name AS creator_first_name, users.last_name AS creator_last_name`

func (*CampaignDAO) CreateCampaign(db *gorm.DB, c *crowdfund.Campaign) error {
	if err := db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create campaign %q: %w", c.Title, err)
	}
	return nil
}

// GetCampaign returns nil when the campaign doesn't exist.
func (*CampaignDAO) GetCampaign(db *gorm.DB, campaignID int64) (*CampaignView, error) {
	var rows []*CampaignView
	err := db.Table("campaign").
		Select(campaignViewColumns).
		Joins(`LEFT JOIN "users" ON users.user_id = campaign.creator_id`).
		Where("campaign.campaign_id = ?", campaignID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign %d: %w", campaignID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListCampaigns returns every campaign not archived, newest first.
func (*CampaignDAO) ListCampaigns(db *gorm.DB) ([]*CampaignView, error) {
	var rows []*CampaignView
	err := db.Table("campaign").
		Select(campaignViewColumns).
		Joins(`LEFT JOIN "users" ON users.user_id = campaign.creator_id`).
		Where("campaign.status <> ?", types.CampaignArchived).
		Order("campaign.created_at desc, campaign.campaign_id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return rows, nil
}

// IncrementAmountRaised adds amount in place and returns the new total. found is false
// when no campaign matched.
func (*CampaignDAO) IncrementAmountRaised(
	db *gorm.DB, campaignID int64, amount decimal.Decimal,
) (total decimal.Decimal, found bool, err error) {
	res := db.Model(&crowdfund.Campaign{}).
		Where("campaign_id = ?", campaignID).
		UpdateColumns(map[string]interface{}{
			"amount_raised": gorm.Expr("amount_raised + ?", amount),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return decimal.Zero, false, fmt.Errorf("failed to increase amount_raised of %d: %w", campaignID, res.Error)
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, false, nil
	}
	var c crowdfund.Campaign
	if err := db.Select("amount_raised").Where("campaign_id = ?", campaignID).First(&c).Error; err != nil {
		return decimal.Zero, true, fmt.Errorf("failed to read amount_raised of %d: %w", campaignID, err)
	}
	return c.AmountRaised, true, nil
}

// CampaignTotals returns every campaign with the sum of its donations, ordered by id.
func (*CampaignDAO) CampaignTotals(db *gorm.DB) ([]*CampaignTotal, error) {
	var rows []*CampaignTotal
	err := db.Table("campaign").
		Select("campaign.campaign_id, campaign.amount_raised, COALESCE(SUM(donation.amount), 0) AS donation_sum").
		Joins("LEFT JOIN donation ON donation.campaign_id = campaign.campaign_id").
		Group("campaign.campaign_id, campaign.amount_raised").
		Order("campaign.campaign_id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum donations: %w", err)
	}
	return rows, nil
}
