package staking

import (
	"strings"

	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/shopspring/decimal"
)

// StakeRequest opens a stake.
type StakeRequest struct {
	UserID       int64           `json:"userId"`
	PoolID       int64           `json:"poolId"`
	Amount       decimal.Decimal `json:"amount"`
	PeriodMonths int             `json:"periodMonths"`
	CampaignID   *int64          `json:"campaignId,omitempty"`
}

func (r *StakeRequest) Validate() error {
	if r.UserID <= 0 || r.PoolID <= 0 {
		return cerrors.Validation("userId and poolId are required.")
	}
	if !r.Amount.IsPositive() {
		return cerrors.Validation("amount must be positive.")
	}
	if r.PeriodMonths <= 0 || r.PeriodMonths > MaxPeriodMonths {
		return cerrors.Validation("periodMonths must be between 1 and %d.", MaxPeriodMonths)
	}
	if r.CampaignID != nil && *r.CampaignID <= 0 {
		return cerrors.Validation("campaignId must be positive.")
	}
	return nil
}

// WithdrawRequest returns the principal of a matured stake.
type WithdrawRequest struct {
	StakeID int64 `json:"stakeId"`
	UserID  int64 `json:"userId"`
}

func (r *WithdrawRequest) Validate() error {
	if r.StakeID <= 0 || r.UserID <= 0 {
		return cerrors.Validation("stakeId and userId are required.")
	}
	return nil
}

// PoolRequest creates a pool.
type PoolRequest struct {
	TokenID   string          `json:"token_id"`
	Name      string          `json:"name"`
	APY       decimal.Decimal `json:"apy"`
	MinAmount decimal.Decimal `json:"min_amount"`
}

func (r *PoolRequest) Validate() error {
	r.TokenID = strings.TrimSpace(r.TokenID)
	r.Name = strings.TrimSpace(r.Name)
	if r.TokenID == "" || r.Name == "" {
		return cerrors.Validation("token_id and name are required.")
	}
	if r.APY.IsNegative() || r.MinAmount.IsNegative() {
		return cerrors.Validation("apy and min_amount must not be negative.")
	}
	return nil
}

// DepositRequest funds a wallet.
type DepositRequest struct {
	UserID  int64           `json:"userId"`
	TokenID string          `json:"tokenId"`
	Amount  decimal.Decimal `json:"amount"`
}

func (r *DepositRequest) Validate() error {
	r.TokenID = strings.TrimSpace(r.TokenID)
	if r.UserID <= 0 || r.TokenID == "" {
		return cerrors.Validation("userId and tokenId are required.")
	}
	if !r.Amount.IsPositive() {
		return cerrors.Validation("amount must be positive.")
	}
	return nil
}
