package db

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crowdstake/crowdstake-server/common/config"
	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type DatabaseTestSuite struct {
	suite.Suite
	db  *gorm.DB
	dao *DAO
}

func (s *DatabaseTestSuite) SetupSuite() {
	if config.GetString("DB_ARGS", "") == "" {
		s.T().Skip("DB_ARGS not set")
	}
	Initialize()
	s.db = GetDB()
	s.dao = NewDAO()
}

func (s *DatabaseTestSuite) SetupTest() {
	s.Require().NoError(Reset(s.db, types.Crowdfund, true))
}

func (s *DatabaseTestSuite) TearDownSuite() {
	Finalize()
}

func (s *DatabaseTestSuite) createCampaign() *crowdfund.Campaign {
	u := &crowdfund.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: "user"}
	s.Require().NoError(s.dao.CreateUser(s.db, u))
	c := &crowdfund.Campaign{
		Title:        "wells",
		Description:  "clean water",
		GoalAmount:   decimal.NewFromInt(1000),
		AmountRaised: decimal.Zero,
		CreatorID:    u.UserID,
		Category:     types.DefaultCategory,
		EndDate:      time.Now().Add(24 * time.Hour),
		Status:       types.CampaignActive,
	}
	s.Require().NoError(s.dao.CreateCampaign(s.db, c))
	return c
}

func (s *DatabaseTestSuite) TestSchemaVersion() {
	v, err := SchemaVersion(s.db)
	s.Require().NoError(err)
	s.Require().Greater(v, 0)

	s.Require().NoError(Reset(s.db, types.Crowdfund, true))
	next, err := SchemaVersion(s.db)
	s.Require().NoError(err)
	s.Require().Equal(v+1, next)
}

func (s *DatabaseTestSuite) TestResetRefusesNonEmpty() {
	s.Require().Error(Reset(s.db, types.Crowdfund, false))
}

func (s *DatabaseTestSuite) TestTransactionRollback() {
	err := Transaction(s.db, func(tx *gorm.DB) error {
		s.Require().NoError(s.dao.CreatePool(tx, &crowdfund.Pool{TokenID: "MCB", Name: "p", APY: decimal.NewFromInt(5)}))
		return errors.New("boom")
	})
	s.Require().EqualError(err, "boom")

	s.Require().Panics(func() {
		_ = Transaction(s.db, func(tx *gorm.DB) error {
			s.Require().NoError(s.dao.CreatePool(tx, &crowdfund.Pool{TokenID: "MCB", Name: "p", APY: decimal.NewFromInt(5)}))
			panic("boom")
		})
	})

	pools, err := s.dao.ListPools(s.db)
	s.Require().NoError(err)
	s.Require().Empty(pools)
}

func (s *DatabaseTestSuite) TestIncrementAmountRaised() {
	c := s.createCampaign()

	_, found, err := s.dao.IncrementAmountRaised(s.db, c.CampaignID+100, decimal.NewFromInt(1))
	s.Require().NoError(err)
	s.Require().False(found)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.dao.IncrementAmountRaised(s.db, c.CampaignID, decimal.RequireFromString("12.5"))
			s.NoError(err)
		}()
	}
	wg.Wait()

	view, err := s.dao.GetCampaign(s.db, c.CampaignID)
	s.Require().NoError(err)
	s.Require().True(view.AmountRaised.Equal(decimal.NewFromInt(100)), view.AmountRaised.String())
	s.Require().Equal("alice", view.CreatorUsername)
}

func (s *DatabaseTestSuite) TestCampaignTotals() {
	c := s.createCampaign()
	s.Require().NoError(s.dao.CreateDonation(s.db, &crowdfund.Donation{
		CampaignID: c.CampaignID, Amount: decimal.NewFromInt(40), TransactionDate: time.Now(),
	}))
	_, _, err := s.dao.IncrementAmountRaised(s.db, c.CampaignID, decimal.NewFromInt(40))
	s.Require().NoError(err)

	totals, err := s.dao.CampaignTotals(s.db)
	s.Require().NoError(err)
	s.Require().Len(totals, 1)
	s.Require().True(totals[0].DonationSum.Equal(totals[0].AmountRaised))
}

func (s *DatabaseTestSuite) TestAddRewardPoints() {
	c := s.createCampaign()
	now := time.Now().UTC()
	s.Require().NoError(s.dao.AddRewardPoints(s.db, "bob@example.com", c.CampaignID, decimal.NewFromInt(2), now))
	s.Require().NoError(s.dao.AddRewardPoints(s.db, "bob@example.com", c.CampaignID, decimal.NewFromInt(3), now))

	total, err := s.dao.GetRewardPoints(s.db, "bob@example.com")
	s.Require().NoError(err)
	s.Require().True(total.Equal(decimal.NewFromInt(5)))

	detail, err := s.dao.ListCampaignRewards(s.db, "bob@example.com")
	s.Require().NoError(err)
	s.Require().Len(detail, 1)
	s.Require().Equal("wells", detail[0].CampaignTitle)
	s.Require().True(detail[0].RewardPoints.Equal(decimal.NewFromInt(5)))

	none, err := s.dao.GetRewardPoints(s.db, "nobody@example.com")
	s.Require().NoError(err)
	s.Require().True(none.IsZero())
}

func (s *DatabaseTestSuite) TestWalletDepositAndLock() {
	w, err := s.dao.Deposit(s.db, 7, "MCB", decimal.NewFromInt(10))
	s.Require().NoError(err)
	s.Require().True(w.Balance.Equal(decimal.NewFromInt(10)))
	w, err = s.dao.Deposit(s.db, 7, "MCB", decimal.NewFromInt(5))
	s.Require().NoError(err)
	s.Require().True(w.Balance.Equal(decimal.NewFromInt(15)))

	err = Transaction(s.db, func(tx *gorm.DB) error {
		locked, err := s.dao.LockWallet(tx, 7, "MCB")
		s.Require().NoError(err)
		s.Require().NotNil(locked)
		return s.dao.AddBalance(tx, locked.ID, decimal.NewFromInt(-15))
	})
	s.Require().NoError(err)

	missing, err := s.dao.LockWallet(s.db, 7, "ETH")
	s.Require().NoError(err)
	s.Require().Nil(missing)

	wallets, err := s.dao.ListWallets(s.db, 7)
	s.Require().NoError(err)
	s.Require().Len(wallets, 1)
	s.Require().True(wallets[0].Balance.IsZero())
}

func (s *DatabaseTestSuite) TestUniqueUser() {
	s.createCampaign()
	err := s.dao.CreateUser(s.db, &crowdfund.User{Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: "user"})
	s.Require().True(IsUniqueViolation(err), "%v", err)
	s.Require().False(IsForeignKeyViolation(err))
}

func (s *DatabaseTestSuite) TestDonationToMissingCampaign() {
	err := s.dao.CreateDonation(s.db, &crowdfund.Donation{
		CampaignID: 4242, Amount: decimal.NewFromInt(1), TransactionDate: time.Now(),
	})
	s.Require().True(IsForeignKeyViolation(err), "%v", err)
	s.Require().False(IsUniqueViolation(err))
}

func TestDatabase(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}
