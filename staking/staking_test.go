package staking

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/crowdstake/crowdstake-server/common/config"
	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/crowdstake/crowdstake-server/database/db"
	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/types"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type StakingTestSuite struct {
	suite.Suite
	db      *gorm.DB
	svc     *Service
	ctx     context.Context
	current time.Time
	pool    *crowdfund.Pool
}

func (s *StakingTestSuite) SetupSuite() {
	if config.GetString("DB_ARGS", "") == "" {
		s.T().Skip("DB_ARGS not set")
	}
	db.Initialize()
	s.db = db.GetDB()
	s.ctx = context.Background()
}

func (s *StakingTestSuite) TearDownSuite() {
	db.Finalize()
}

func (s *StakingTestSuite) SetupTest() {
	s.Require().NoError(db.Reset(s.db, types.Crowdfund, true))
	s.svc = NewService(s.db)
	s.current = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.svc.now = func() time.Time { return s.current }

	var err error
	s.pool, err = s.svc.CreatePool(s.ctx, &PoolRequest{TokenID: "MCB", Name: "flex", APY: d("12"), MinAmount: d("10")})
	s.Require().NoError(err)
	_, err = s.svc.Deposit(s.ctx, &DepositRequest{UserID: 1, TokenID: "MCB", Amount: d("1000")})
	s.Require().NoError(err)
}

func (s *StakingTestSuite) balance(userID int64) string {
	wallets, err := s.svc.ListWallets(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(wallets, 1)
	return wallets[0].Balance.String()
}

func (s *StakingTestSuite) TestStakeDebitsWallet() {
	stake, err := s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID, Amount: d("400"), PeriodMonths: 3})
	s.Require().NoError(err)
	s.Require().False(stake.Withdrawn)
	s.Require().True(stake.APY.Equal(d("12")))
	s.Require().Equal(s.current.AddDate(0, 3, 0), stake.EndTs)
	s.Require().Equal("600", s.balance(1))

	views, err := s.svc.ListStakes(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Require().True(views[0].ProjectedRewards.Equal(d("12")))
	s.Require().Equal(0, views[0].TimeElapsedPct)
	s.Require().False(views[0].Withdrawable)
}

func (s *StakingTestSuite) TestStakeRules() {
	_, err := s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID, Amount: d("1001"), PeriodMonths: 3})
	s.Require().ErrorIs(err, ErrInsufficientBalance)

	_, err = s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID, Amount: d("5"), PeriodMonths: 3})
	s.Require().ErrorIs(err, ErrBelowMinimum)

	_, err = s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID + 99, Amount: d("50"), PeriodMonths: 3})
	s.Require().ErrorIs(err, ErrPoolNotFound)

	_, err = s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 2, PoolID: s.pool.ID, Amount: d("50"), PeriodMonths: 3})
	s.Require().ErrorIs(err, ErrWalletNotFound)

	_, err = s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID, Amount: d("50")})
	s.Require().Equal(cerrors.KindValidation, cerrors.As(err).Kind)

	s.Require().Equal("1000", s.balance(1))
}

func (s *StakingTestSuite) TestWithdrawLifecycle() {
	stake, err := s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID, Amount: d("400"), PeriodMonths: 1})
	s.Require().NoError(err)

	err = s.svc.Withdraw(s.ctx, &WithdrawRequest{StakeID: stake.ID, UserID: 2})
	s.Require().ErrorIs(err, ErrStakeNotFound)

	s.current = stake.EndTs.Add(-time.Second)
	err = s.svc.Withdraw(s.ctx, &WithdrawRequest{StakeID: stake.ID, UserID: 1})
	s.Require().ErrorIs(err, ErrNotMatured)
	s.Require().Equal("600", s.balance(1))

	s.current = stake.EndTs
	s.Require().NoError(s.svc.Withdraw(s.ctx, &WithdrawRequest{StakeID: stake.ID, UserID: 1}))
	s.Require().Equal("1000", s.balance(1))

	err = s.svc.Withdraw(s.ctx, &WithdrawRequest{StakeID: stake.ID, UserID: 1})
	s.Require().ErrorIs(err, ErrAlreadyWithdrawn)
	s.Require().Equal("1000", s.balance(1))

	views, err := s.svc.ListStakes(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().True(views[0].Withdrawn)
	s.Require().NotNil(views[0].WithdrawnTs)
	s.Require().False(views[0].Withdrawable)

	txs, err := db.NewDAO().ListWalletTransactions(s.db, 1)
	s.Require().NoError(err)
	s.Require().Len(txs, 3)
	s.Require().Equal(types.WalletTxWithdraw, txs[0].Type)
	s.Require().JSONEq(`{"stakeId":`+strconv.FormatInt(stake.ID, 10)+`}`, txs[0].Meta)
}

func (s *StakingTestSuite) TestConcurrentStakesNeverOverdraw() {
	const n = 10
	amount := d("150")
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID, Amount: amount, PeriodMonths: 6})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Require().ErrorIs(err, ErrInsufficientBalance)
	}
	s.Require().Equal(6, succeeded)
	s.Require().Equal("100", s.balance(1))

	stakes, err := s.svc.ListStakes(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(stakes, succeeded)
}

func (s *StakingTestSuite) TestConcurrentWithdrawPaysOnce() {
	stake, err := s.svc.CreateStake(s.ctx, &StakeRequest{UserID: 1, PoolID: s.pool.ID, Amount: d("400"), PeriodMonths: 1})
	s.Require().NoError(err)
	s.current = stake.EndTs

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.svc.Withdraw(s.ctx, &WithdrawRequest{StakeID: stake.ID, UserID: 1})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Require().ErrorIs(err, ErrAlreadyWithdrawn)
	}
	s.Require().Equal(1, succeeded)
	s.Require().Equal("1000", s.balance(1))

	txs, err := db.NewDAO().ListWalletTransactions(s.db, 1)
	s.Require().NoError(err)
	withdrawals := 0
	for _, tx := range txs {
		if tx.Type == types.WalletTxWithdraw {
			withdrawals++
		}
	}
	s.Require().Equal(1, withdrawals)
}

func TestStaking(t *testing.T) {
	suite.Run(t, new(StakingTestSuite))
}
