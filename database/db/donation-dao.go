package db

import (
	"fmt"

	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"gorm.io/gorm"
)

// DonationView is a donation with the title of its campaign.
type DonationView struct {
	crowdfund.Donation
	CampaignTitle string `gorm:"column:campaign_title"`
}

type DonationDAO struct{}

func (*DonationDAO) CreateDonation(db *gorm.DB, d *crowdfund.Donation) error {
	if err := db.Create(d).Error; err != nil {
		return fmt.Errorf("failed to create donation to %d: %w", d.CampaignID, err)
	}
	return nil
}

// ListDonationsByEmail returns the donations made with email, newest first.
func (*DonationDAO) ListDonationsByEmail(db *gorm.DB, email string) ([]*DonationView, error) {
	var rows []*DonationView
	err := db.Table("donation").
		Select("donation.*, campaign.title AS campaign_title").
		Joins("JOIN campaign ON campaign.campaign_id = donation.campaign_id").
		Where("donation.donor_email = ?", email).
		Order("donation.transaction_date desc, donation.id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list donations by email: %w", err)
	}
	return rows, nil
}

// ListDonationsReceived returns donations to every campaign created by creatorID.
func (*DonationDAO) ListDonationsReceived(db *gorm.DB, creatorID int64) ([]*DonationView, error) {
	var rows []*DonationView
	err := db.Table("donation").
		Select("donation.*, campaign.title AS campaign_title").
		Joins("JOIN campaign ON campaign.campaign_id = donation.campaign_id").
		Where("campaign.creator_id = ?", creatorID).
		Order("donation.transaction_date desc, donation.id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list donations received by %d: %w", creatorID, err)
	}
	return rows, nil
}
