package crowdfund

import (
	"time"

	"github.com/crowdstake/crowdstake-server/database/models"
	"github.com/shopspring/decimal"
)

// Donation records one contribution to a campaign.
type Donation struct {
	ID              int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	CampaignID      int64           `gorm:"column:campaign_id;type:bigint;not null" json:"campaign_id"`
	DonorID         *int64          `gorm:"column:donor_id;type:bigint" json:"donor_id"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(38,18);not null" json:"amount"`
	IsAnonymous     bool            `gorm:"column:is_anonymous;not null;default:false" json:"is_anonymous"`
	DonorName       *string         `gorm:"column:donor_name;type:varchar(255)" json:"donor_name"`
	DonorEmail      *string         `gorm:"column:donor_email;type:varchar(255)" json:"donor_email"`
	WalletAddress   *string         `gorm:"column:wallet_address;type:varchar(64)" json:"wallet_address"`
	TransactionDate time.Time       `gorm:"column:transaction_date;type:timestamp with time zone;not null" json:"transaction_date"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Donation) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "campaign_id",
			Dest:     "\"campaign\"(campaign_id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*Donation) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{Name: "campaign_idx", Fields: []string{"campaign_id"}},
		{Name: "donor_email_idx", Fields: []string{"donor_email"}, Condition: "WHERE donor_email IS NOT NULL"},
	}
}
