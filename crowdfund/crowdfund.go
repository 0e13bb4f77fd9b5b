package crowdfund

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crowdstake/crowdstake-server/common/config"
	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/common/metrics"
	"github.com/crowdstake/crowdstake-server/database/db"
	dbmodels "github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	campaignDuration     = 30 * 24 * time.Hour
	defaultRewardTimeout = 2 * time.Minute
)

var ErrCampaignNotFound = cerrors.NotFound("Campaign not found")

// Rewarder pays a donor on chain.
type Rewarder interface {
	SendReward(ctx context.Context, wallet string, donation decimal.Decimal) (common.Hash, error)
}

// Notifier is told about every committed donation.
type Notifier interface {
	NotifyDonation(campaignID int64, newAmountRaised decimal.Decimal)
}

// Campaign is a campaign with the display name of its creator.
type Campaign struct {
	*dbmodels.Campaign
	CreatorName string `json:"creator_name"`
}

// DonationRecord is one line of a donation history.
type DonationRecord struct {
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	CampaignTitle   string          `json:"campaign_title"`
	DonorName       string          `json:"donor_name,omitempty"`
}

// CampaignReward is the share of reward points earned on one campaign.
type CampaignReward struct {
	CampaignID    int64           `json:"campaign_id"`
	CampaignTitle string          `json:"campaign_title"`
	RewardPoints  decimal.Decimal `json:"reward_points"`
}

// Option configures a Service.
type Option func(*Service)

// WithRewarder enables on-chain donation rewards.
func WithRewarder(r Rewarder) Option {
	return func(s *Service) { s.rewarder = r }
}

// WithNotifier subscribes n to committed donations.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service manages campaigns, donations and reward points.
type Service struct {
	db            *gorm.DB
	dao           *db.DAO
	rewardPercent decimal.Decimal
	rewarder      Rewarder
	rewardTimeout time.Duration
	rewards       sync.WaitGroup
	notifier      Notifier
	now           func() time.Time
	logger        logging.Logger
}

func NewService(handle *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:            handle,
		dao:           db.NewDAO(),
		rewardPercent: config.GetDecimal("DONATION_REWARD_PERCENT", decimal.NewFromInt(1)),
		rewardTimeout: config.GetDuration("DONATION_REWARD_TIMEOUT", defaultRewardTimeout),
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logging.NewLoggerTag("crowdfund"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func creatorName(v *db.CampaignView) string {
	parts := make([]string, 0, 2)
	if v.CreatorFirstName != nil {
		parts = append(parts, *v.CreatorFirstName)
	}
	if v.CreatorLastName != nil {
		parts = append(parts, *v.CreatorLastName)
	}
	if name := strings.TrimSpace(strings.Join(parts, " ")); name != "" {
		return name
	}
	return v.CreatorUsername
}

func toCampaign(v *db.CampaignView) *Campaign {
	return &Campaign{Campaign: &v.Campaign, CreatorName: creatorName(v)}
}

// ListCampaigns returns the campaigns not archived, newest first.
func (s *Service) ListCampaigns(ctx context.Context) ([]*Campaign, error) {
	rows, err := s.dao.ListCampaigns(s.db.WithContext(ctx))
	if err != nil {
		return nil, cerrors.Persistence("list campaigns", err)
	}
	out := make([]*Campaign, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCampaign(r))
	}
	return out, nil
}

func (s *Service) GetCampaign(ctx context.Context, campaignID int64) (*Campaign, error) {
	if campaignID <= 0 {
		return nil, cerrors.Validation("Invalid campaign id.")
	}
	v, err := s.dao.GetCampaign(s.db.WithContext(ctx), campaignID)
	if err != nil {
		return nil, cerrors.Persistence("get campaign", err)
	}
	if v == nil {
		return nil, ErrCampaignNotFound
	}
	return toCampaign(v), nil
}

// CreateCampaign opens an active campaign ending 30 days from now.
func (s *Service) CreateCampaign(ctx context.Context, req *CampaignRequest) (*dbmodels.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	category := req.Category
	if category == "" {
		category = types.DefaultCategory
	}
	c := &dbmodels.Campaign{
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		GoalAmount:       req.Goal,
		AmountRaised:     decimal.Zero,
		CreatorID:        req.CreatorID,
		Category:         category,
		MainImageURL:     req.MainImageURL,
		EndDate:          s.now().Add(campaignDuration),
		Status:           types.CampaignActive,
	}
	handle := s.db.WithContext(ctx)
	creator, err := s.dao.GetUser(handle, req.CreatorID)
	if err != nil {
		return nil, cerrors.Persistence("create campaign", err)
	}
	if creator == nil {
		return nil, cerrors.NotFound("User not found")
	}
	if err := s.dao.CreateCampaign(handle, c); err != nil {
		return nil, cerrors.Persistence("create campaign", err)
	}
	s.logger.Info("campaign %d created by %d: %s", c.CampaignID, c.CreatorID, c.Title)
	return c, nil
}

// RewardPoints is the loyalty credit for a donation of amount.
func (s *Service) RewardPoints(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(s.rewardPercent).Div(decimal.NewFromInt(100))
}

// Donate records a donation, raises the campaign total and credits reward points in
// one transaction, then notifies subscribers and starts the optional ETH reward in the
// background. Neither follow-up can fail or delay a committed donation. Returns the new
// campaign total.
func (s *Service) Donate(ctx context.Context, req *DonateRequest) (total decimal.Decimal, err error) {
	defer func() { metrics.RecordLedgerOperation("donation", err) }()
	if err = req.Validate(); err != nil {
		return decimal.Zero, err
	}

	now := s.now()
	err = db.Transaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		err := s.dao.CreateDonation(tx, &dbmodels.Donation{
			CampaignID:      req.CampaignID,
			DonorID:         req.UserID,
			Amount:          req.Amount,
			IsAnonymous:     req.IsAnonymous,
			DonorName:       req.Name,
			DonorEmail:      req.Email,
			WalletAddress:   req.Wallet,
			TransactionDate: now,
		})
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrCampaignNotFound
			}
			return err
		}
		var found bool
		total, found, err = s.dao.IncrementAmountRaised(tx, req.CampaignID, req.Amount)
		if err != nil {
			return err
		}
		if !found {
			return ErrCampaignNotFound
		}
		if req.Email == nil {
			return nil
		}
		return s.dao.AddRewardPoints(tx, *req.Email, req.CampaignID, s.RewardPoints(req.Amount), now)
	})
	if err != nil {
		return decimal.Zero, cerrors.Persistence("donate", err)
	}
	s.logger.Info("donation of %s to campaign %d, raised %s", req.Amount, req.CampaignID, total)

	if s.notifier != nil {
		s.notifier.NotifyDonation(req.CampaignID, total)
	}
	if s.rewarder != nil && req.Wallet != nil {
		s.payReward(ctx, *req.Wallet, req.Amount)
	}
	return total, nil
}

// payReward sends the ETH reward on its own goroutine. The send outlives the request
// but is bounded by rewardTimeout.
func (s *Service) payReward(ctx context.Context, wallet string, amount decimal.Decimal) {
	s.rewards.Add(1)
	go func() {
		defer s.rewards.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.rewardTimeout)
		defer cancel()
		_, err := s.rewarder.SendReward(ctx, wallet, amount)
		metrics.RecordRewardTransfer(err)
		if err != nil {
			s.logger.Warn("skipping ETH reward to %s: %v", wallet, err)
		}
	}()
}

// Wait blocks until every pending ETH reward has finished.
func (s *Service) Wait() {
	s.rewards.Wait()
}

// UserRewardPoints returns the total reward points of email, zero when none.
func (s *Service) UserRewardPoints(ctx context.Context, email string) (decimal.Decimal, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return decimal.Zero, err
	}
	points, err := s.dao.GetRewardPoints(s.db.WithContext(ctx), email)
	return points, cerrors.Persistence("user rewards", err)
}

// UserRewardsDetail returns the total and per campaign reward points of email.
func (s *Service) UserRewardsDetail(ctx context.Context, email string) (decimal.Decimal, []*CampaignReward, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return decimal.Zero, nil, err
	}
	handle := s.db.WithContext(ctx)
	total, err := s.dao.GetRewardPoints(handle, email)
	if err != nil {
		return decimal.Zero, nil, cerrors.Persistence("user rewards detail", err)
	}
	rows, err := s.dao.ListCampaignRewards(handle, email)
	if err != nil {
		return decimal.Zero, nil, cerrors.Persistence("user rewards detail", err)
	}
	out := make([]*CampaignReward, 0, len(rows))
	for _, r := range rows {
		out = append(out, &CampaignReward{
			CampaignID:    r.CampaignID,
			CampaignTitle: r.CampaignTitle,
			RewardPoints:  r.RewardPoints,
		})
	}
	return total, out, nil
}

// DonationHistory lists the donations made with email.
func (s *Service) DonationHistory(ctx context.Context, email string) ([]*DonationRecord, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	rows, err := s.dao.ListDonationsByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, cerrors.Persistence("donation history", err)
	}
	out := make([]*DonationRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, &DonationRecord{
			Amount:          r.Amount,
			TransactionDate: r.TransactionDate,
			CampaignTitle:   r.CampaignTitle,
		})
	}
	return out, nil
}

// DonationsReceived lists donations to the campaigns created by userID.
func (s *Service) DonationsReceived(ctx context.Context, userID int64) ([]*DonationRecord, error) {
	if userID <= 0 {
		return nil, cerrors.Validation("user_id is required.")
	}
	rows, err := s.dao.ListDonationsReceived(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, cerrors.Persistence("donations received", err)
	}
	out := make([]*DonationRecord, 0, len(rows))
	for _, r := range rows {
		name := "Anonymous"
		if r.DonorName != nil && !r.IsAnonymous {
			name = *r.DonorName
		}
		out = append(out, &DonationRecord{
			Amount:          r.Amount,
			TransactionDate: r.TransactionDate,
			CampaignTitle:   r.CampaignTitle,
			DonorName:       name,
		})
	}
	return out, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", cerrors.Validation("Email is required.")
	}
	return email, nil
}
