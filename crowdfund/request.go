package crowdfund

import (
	"strings"

	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/shopspring/decimal"
)

// CampaignRequest opens a campaign.
type CampaignRequest struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Goal             decimal.Decimal `json:"goal"`
	CreatorID        int64           `json:"creator_id"`
	ShortDescription *string         `json:"short_description"`
	Category         string          `json:"category"`
	MainImageURL     *string         `json:"main_image_url"`
}

func (r *CampaignRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	if r.Title == "" || r.Description == "" || r.Goal.IsZero() || r.CreatorID <= 0 {
		return cerrors.Validation("title, description, goal, creator_id are required")
	}
	if !r.Goal.IsPositive() {
		return cerrors.Validation("goal must be a positive number")
	}
	return nil
}

// DonateRequest records a donation. Donor fields accept both their short and
// donor_ prefixed names.
type DonateRequest struct {
	CampaignID    int64           `json:"campaign_id"`
	Amount        decimal.Decimal `json:"amount"`
	IsAnonymous   bool            `json:"is_anonymous"`
	UserID        *int64          `json:"user_id"`
	DonorID       *int64          `json:"donor_id"`
	Name          *string         `json:"name"`
	DonorName     *string         `json:"donor_name"`
	Email         *string         `json:"email"`
	DonorEmail    *string         `json:"donor_email"`
	Wallet        *string         `json:"wallet"`
	WalletAddress *string         `json:"wallet_address"`
}

func (r *DonateRequest) Validate() error {
	if r.CampaignID <= 0 {
		return cerrors.Validation("campaign_id is required.")
	}
	if !r.Amount.IsPositive() {
		return cerrors.Validation("amount must be a positive number.")
	}
	if r.UserID == nil {
		r.UserID = r.DonorID
	}
	if r.UserID != nil && *r.UserID <= 0 {
		r.UserID = nil
	}
	r.Name = coalesce(r.Name, r.DonorName)
	r.Email = coalesce(r.Email, r.DonorEmail)
	if r.Email != nil {
		email := strings.ToLower(*r.Email)
		r.Email = &email
	}
	r.Wallet = coalesce(r.Wallet, r.WalletAddress)
	return nil
}

// coalesce returns the first non blank value, trimmed.
func coalesce(values ...*string) *string {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(*v); s != "" {
			return &s
		}
	}
	return nil
}
