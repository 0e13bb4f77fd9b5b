package crowdfund

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crowdstake/crowdstake-server/common/config"
	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/crowdstake/crowdstake-server/database/db"
	dbmodels "github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func strp(s string) *string { return &s }

func TestDonateRequestAliases(t *testing.T) {
	id := int64(4)
	r := &DonateRequest{
		CampaignID:    1,
		Amount:        decimal.NewFromInt(5),
		DonorID:       &id,
		DonorName:     strp(" Bob "),
		Email:         strp("  "),
		DonorEmail:    strp("Bob@Example.com"),
		WalletAddress: strp("0xabc"),
	}
	require.NoError(t, r.Validate())
	require.Equal(t, int64(4), *r.UserID)
	require.Equal(t, "Bob", *r.Name)
	require.Equal(t, "bob@example.com", *r.Email)
	require.Equal(t, "0xabc", *r.Wallet)

	require.Error(t, (&DonateRequest{Amount: decimal.NewFromInt(1)}).Validate())
	require.Error(t, (&DonateRequest{CampaignID: 1, Amount: decimal.NewFromInt(-1)}).Validate())
}

func TestCampaignRequestValidation(t *testing.T) {
	ok := &CampaignRequest{Title: "t", Description: "d", Goal: decimal.NewFromInt(10), CreatorID: 1}
	require.NoError(t, ok.Validate())

	err := (&CampaignRequest{Title: "t", Description: "d", Goal: decimal.NewFromInt(-10), CreatorID: 1}).Validate()
	require.EqualError(t, err, "goal must be a positive number")
	require.Error(t, (&CampaignRequest{Description: "d", Goal: decimal.NewFromInt(10), CreatorID: 1}).Validate())
}

func TestCreatorName(t *testing.T) {
	v := &db.CampaignView{CreatorUsername: "ada"}
	require.Equal(t, "ada", creatorName(v))
	v.CreatorFirstName = strp("Ada")
	require.Equal(t, "Ada", creatorName(v))
	v.CreatorLastName = strp("Lovelace")
	require.Equal(t, "Ada Lovelace", creatorName(v))
}

type fakeRewarder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeRewarder) SendReward(_ context.Context, wallet string, _ decimal.Decimal) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, wallet)
	return common.Hash{}, f.err
}

type blockingRewarder struct {
	started chan struct{}
	release chan struct{}
	result  chan error
}

func newBlockingRewarder() *blockingRewarder {
	return &blockingRewarder{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  make(chan error, 1),
	}
}

func (b *blockingRewarder) SendReward(ctx context.Context, _ string, _ decimal.Decimal) (common.Hash, error) {
	close(b.started)
	var err error
	select {
	case <-b.release:
	case <-ctx.Done():
		err = ctx.Err()
	}
	b.result <- err
	return common.Hash{}, err
}

func TestPayRewardOutlivesRequest(t *testing.T) {
	rewarder := newBlockingRewarder()
	svc := NewService(nil, WithRewarder(rewarder))
	svc.rewardTimeout = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	svc.payReward(ctx, "0x8a2cF0BcD4E0a7c6B5c7B56a0F4fE4d6a8bE3d1C", decimal.NewFromInt(10))
	<-rewarder.started
	cancel()
	svc.Wait()

	require.ErrorIs(t, <-rewarder.result, context.DeadlineExceeded)
}

type fakeNotifier struct {
	mu      sync.Mutex
	updates map[int64]decimal.Decimal
}

func (f *fakeNotifier) NotifyDonation(campaignID int64, total decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[campaignID] = total
}

type CrowdfundTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	svc      *Service
	rewarder *fakeRewarder
	notifier *fakeNotifier
	creator  *dbmodels.User
}

func (s *CrowdfundTestSuite) SetupSuite() {
	if config.GetString("DB_ARGS", "") == "" {
		s.T().Skip("DB_ARGS not set")
	}
	db.Initialize()
	s.db = db.GetDB()
	s.ctx = context.Background()
}

func (s *CrowdfundTestSuite) TearDownSuite() {
	db.Finalize()
}

func (s *CrowdfundTestSuite) SetupTest() {
	s.Require().NoError(db.Reset(s.db, types.Crowdfund, true))
	s.rewarder = &fakeRewarder{}
	s.notifier = &fakeNotifier{updates: make(map[int64]decimal.Decimal)}
	s.svc = NewService(s.db, WithRewarder(s.rewarder), WithNotifier(s.notifier))

	s.creator = &dbmodels.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x", Role: "user", FirstName: strp("Ada")}
	s.Require().NoError(db.NewDAO().CreateUser(s.db, s.creator))
}

func (s *CrowdfundTestSuite) newCampaign() *dbmodels.Campaign {
	c, err := s.svc.CreateCampaign(s.ctx, &CampaignRequest{
		Title: "wells", Description: "clean water", Goal: decimal.NewFromInt(1000), CreatorID: s.creator.UserID,
	})
	s.Require().NoError(err)
	return c
}

func (s *CrowdfundTestSuite) TestCreateAndList() {
	c := s.newCampaign()
	s.Require().Equal(types.DefaultCategory, c.Category)
	s.Require().Equal(types.CampaignActive, c.Status)
	s.Require().WithinDuration(time.Now().Add(campaignDuration), c.EndDate, time.Minute)

	list, err := s.svc.ListCampaigns(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().Equal("Ada", list[0].CreatorName)

	_, err = s.svc.GetCampaign(s.ctx, c.CampaignID+1)
	s.Require().ErrorIs(err, ErrCampaignNotFound)

	_, err = s.svc.CreateCampaign(s.ctx, &CampaignRequest{
		Title: "x", Description: "y", Goal: decimal.NewFromInt(1), CreatorID: s.creator.UserID + 10,
	})
	s.Require().Equal(cerrors.KindNotFound, cerrors.As(err).Kind)
}

func (s *CrowdfundTestSuite) TestDonate() {
	c := s.newCampaign()
	total, err := s.svc.Donate(s.ctx, &DonateRequest{
		CampaignID: c.CampaignID,
		Amount:     decimal.NewFromInt(200),
		Name:       strp("Bob"),
		Email:      strp("bob@example.com"),
		Wallet:     strp("0x8a2cF0BcD4E0a7c6B5c7B56a0F4fE4d6a8bE3d1C"),
	})
	s.Require().NoError(err)
	s.Require().True(total.Equal(decimal.NewFromInt(200)))
	s.svc.Wait()
	s.Require().Len(s.rewarder.calls, 1)
	s.Require().True(s.notifier.updates[c.CampaignID].Equal(decimal.NewFromInt(200)))

	s.rewarder.err = errors.New("node down")
	total, err = s.svc.Donate(s.ctx, &DonateRequest{
		CampaignID: c.CampaignID,
		Amount:     decimal.NewFromInt(100),
		Email:      strp("bob@example.com"),
		Wallet:     strp("0x8a2cF0BcD4E0a7c6B5c7B56a0F4fE4d6a8bE3d1C"),
	})
	s.Require().NoError(err)
	s.Require().True(total.Equal(decimal.NewFromInt(300)))
	s.svc.Wait()
	s.Require().Len(s.rewarder.calls, 2)

	points, err := s.svc.UserRewardPoints(s.ctx, "BOB@example.com")
	s.Require().NoError(err)
	s.Require().True(points.Equal(decimal.NewFromInt(3)), points.String())

	sum, detail, err := s.svc.UserRewardsDetail(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.Require().True(sum.Equal(decimal.NewFromInt(3)))
	s.Require().Len(detail, 1)
	s.Require().Equal("wells", detail[0].CampaignTitle)

	history, err := s.svc.DonationHistory(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.Require().Len(history, 2)

	received, err := s.svc.DonationsReceived(s.ctx, s.creator.UserID)
	s.Require().NoError(err)
	s.Require().Len(received, 2)
	names := []string{received[0].DonorName, received[1].DonorName}
	s.Require().ElementsMatch([]string{"Bob", "Anonymous"}, names)
}

func (s *CrowdfundTestSuite) TestDonateDoesNotWaitForReward() {
	c := s.newCampaign()
	rewarder := newBlockingRewarder()
	svc := NewService(s.db, WithRewarder(rewarder), WithNotifier(s.notifier))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Donate(s.ctx, &DonateRequest{
			CampaignID: c.CampaignID,
			Amount:     decimal.NewFromInt(50),
			Wallet:     strp("0x8a2cF0BcD4E0a7c6B5c7B56a0F4fE4d6a8bE3d1C"),
		})
		done <- err
	}()

	select {
	case err := <-done:
		s.Require().NoError(err)
	case <-time.After(10 * time.Second):
		s.FailNow("donation blocked on the ETH reward")
	}
	<-rewarder.started
	s.Require().True(s.notifier.updates[c.CampaignID].Equal(decimal.NewFromInt(50)))

	close(rewarder.release)
	svc.Wait()
	s.Require().NoError(<-rewarder.result)
}

func (s *CrowdfundTestSuite) TestDonateUnknownCampaignRollsBack() {
	_, err := s.svc.Donate(s.ctx, &DonateRequest{
		CampaignID: 999, Amount: decimal.NewFromInt(5), Email: strp("bob@example.com"),
	})
	s.Require().ErrorIs(err, ErrCampaignNotFound)
	s.Require().Empty(s.notifier.updates)

	history, err := s.svc.DonationHistory(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.Require().Empty(history)
	points, err := s.svc.UserRewardPoints(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.Require().True(points.IsZero())
}

func (s *CrowdfundTestSuite) TestConcurrentDonations() {
	c := s.newCampaign()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Donate(s.ctx, &DonateRequest{CampaignID: c.CampaignID, Amount: decimal.RequireFromString("1.5")})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.svc.GetCampaign(s.ctx, c.CampaignID)
	s.Require().NoError(err)
	s.Require().True(got.AmountRaised.Equal(decimal.NewFromInt(15)), got.AmountRaised.String())
}

func TestCrowdfund(t *testing.T) {
	suite.Run(t, new(CrowdfundTestSuite))
}
