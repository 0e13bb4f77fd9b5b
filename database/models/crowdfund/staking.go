package crowdfund

import (
	"time"

	"github.com/crowdstake/crowdstake-server/database/models"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/shopspring/decimal"
)

// Pool is a staking offer. APY is a percentage, snapshotted on every stake.
type Pool struct {
	ID        int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	TokenID   string          `gorm:"column:token_id;type:varchar(64);not null" json:"token_id"`
	Name      string          `gorm:"column:name;type:varchar(128);not null" json:"name"`
	APY       decimal.Decimal `gorm:"column:apy;type:decimal(38,18);not null" json:"apy"`
	MinAmount decimal.Decimal `gorm:"column:min_amount;type:decimal(38,18);not null;default:0" json:"min_amount"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Pool) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*Pool) Indexes() []models.CustomIndex {
	return nil
}

// Wallet holds the spendable balance of one user in one token.
type Wallet struct {
	ID      int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	UserID  int64           `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	TokenID string          `gorm:"column:token_id;type:varchar(64);not null" json:"token_id"`
	Balance decimal.Decimal `gorm:"column:balance;type:decimal(38,18);not null;default:0" json:"balance"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Wallet) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*Wallet) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{Name: "user_token_unique_idx", Unique: true, Fields: []string{"user_id", "token_id"}},
	}
}

// Stake locks principal in a pool until EndTs.
type Stake struct {
	ID           int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	UserID       int64           `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	PoolID       int64           `gorm:"column:pool_id;type:bigint;not null" json:"pool_id"`
	CampaignID   *int64          `gorm:"column:campaign_id;type:bigint" json:"campaign_id"`
	TokenID      string          `gorm:"column:token_id;type:varchar(64);not null" json:"token_id"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(38,18);not null" json:"amount"`
	APY          decimal.Decimal `gorm:"column:apy;type:decimal(38,18);not null" json:"apy"`
	PeriodMonths int             `gorm:"column:period_months;not null" json:"period_months"`
	StartTs      time.Time       `gorm:"column:start_ts;type:timestamp with time zone;not null" json:"start_ts"`
	EndTs        time.Time       `gorm:"column:end_ts;type:timestamp with time zone;not null" json:"end_ts"`
	Withdrawn    bool            `gorm:"column:withdrawn;not null;default:false" json:"withdrawn"`
	WithdrawnTs  *time.Time      `gorm:"column:withdrawn_ts;type:timestamp with time zone" json:"withdrawn_ts"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Stake) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "pool_id",
			Dest:     "\"pool\"(id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*Stake) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{Name: "user_start_idx", Fields: []string{"user_id", "start_ts"}},
	}
}

// WalletTransaction is the append-only log of wallet movements.
type WalletTransaction struct {
	ID      int64              `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	UserID  int64              `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	Type    types.WalletTxType `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Amount  decimal.Decimal    `gorm:"column:amount;type:decimal(38,18);not null" json:"amount"`
	TokenID string             `gorm:"column:token_id;type:varchar(64);not null" json:"token_id"`
	Meta    string             `gorm:"column:meta;type:text" json:"meta"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*WalletTransaction) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*WalletTransaction) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{Name: "user_idx", Fields: []string{"user_id"}},
	}
}
