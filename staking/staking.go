package staking

import (
	"context"
	"encoding/json"
	"time"

	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/common/metrics"
	"github.com/crowdstake/crowdstake-server/database/db"
	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/types"
	"gorm.io/gorm"
)

var (
	ErrPoolNotFound        = cerrors.NotFound("Pool not found.")
	ErrWalletNotFound      = cerrors.NotFound("Wallet not found.")
	ErrStakeNotFound       = cerrors.NotFound("Stake not found.")
	ErrBelowMinimum        = cerrors.Rule("Amount is below the pool minimum.")
	ErrInsufficientBalance = cerrors.Rule("Insufficient balance.")
	ErrAlreadyWithdrawn    = cerrors.Rule("Stake already withdrawn.")
	ErrNotMatured          = cerrors.Rule("Stake has not matured yet.")
)

// Service runs the pool, wallet and stake operations on an injected handle.
type Service struct {
	db     *gorm.DB
	dao    *db.DAO
	now    func() time.Time
	logger logging.Logger
}

func NewService(handle *gorm.DB) *Service {
	return &Service{
		db:     handle,
		dao:    db.NewDAO(),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logging.NewLoggerTag("staking"),
	}
}

func (s *Service) ListPools(ctx context.Context) ([]*crowdfund.Pool, error) {
	pools, err := s.dao.ListPools(s.db.WithContext(ctx))
	return pools, cerrors.Persistence("list pools", err)
}

func (s *Service) CreatePool(ctx context.Context, req *PoolRequest) (*crowdfund.Pool, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &crowdfund.Pool{
		TokenID:   req.TokenID,
		Name:      req.Name,
		APY:       req.APY,
		MinAmount: req.MinAmount,
	}
	if err := s.dao.CreatePool(s.db.WithContext(ctx), p); err != nil {
		return nil, cerrors.Persistence("create pool", err)
	}
	s.logger.Info("pool %d created: %s %s apy=%s", p.ID, p.Name, p.TokenID, p.APY)
	return p, nil
}

func (s *Service) ListWallets(ctx context.Context, userID int64) ([]*crowdfund.Wallet, error) {
	if userID <= 0 {
		return nil, cerrors.Validation("userId is required.")
	}
	wallets, err := s.dao.ListWallets(s.db.WithContext(ctx), userID)
	return wallets, cerrors.Persistence("list wallets", err)
}

// Deposit credits a wallet, creating it when missing, and logs a deposit transaction.
func (s *Service) Deposit(ctx context.Context, req *DepositRequest) (w *crowdfund.Wallet, err error) {
	defer func() { metrics.RecordLedgerOperation("deposit", err) }()
	if err = req.Validate(); err != nil {
		return nil, err
	}
	err = db.Transaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var e error
		if w, e = s.dao.Deposit(tx, req.UserID, req.TokenID, req.Amount); e != nil {
			return e
		}
		return s.dao.CreateWalletTransaction(tx, &crowdfund.WalletTransaction{
			UserID:  req.UserID,
			Type:    types.WalletTxDeposit,
			Amount:  req.Amount,
			TokenID: req.TokenID,
			Meta:    "{}",
		})
	})
	if err != nil {
		return nil, cerrors.Persistence("deposit", err)
	}
	return w, nil
}

// CreateStake debits the wallet of the pool's token and opens a stake with the pool's
// current APY. The wallet row is locked for the whole transaction.
func (s *Service) CreateStake(ctx context.Context, req *StakeRequest) (stake *crowdfund.Stake, err error) {
	defer func() { metrics.RecordLedgerOperation("stake", err) }()
	if err = req.Validate(); err != nil {
		return nil, err
	}

	err = db.Transaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		pool, err := s.dao.GetPool(tx, req.PoolID)
		if err != nil {
			return err
		}
		if pool == nil {
			return ErrPoolNotFound
		}
		if req.Amount.LessThan(pool.MinAmount) {
			return ErrBelowMinimum
		}

		wallet, err := s.dao.LockWallet(tx, req.UserID, pool.TokenID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return ErrWalletNotFound
		}
		if wallet.Balance.LessThan(req.Amount) {
			return ErrInsufficientBalance
		}
		if err := s.dao.AddBalance(tx, wallet.ID, req.Amount.Neg()); err != nil {
			return err
		}

		start := s.now()
		stake = &crowdfund.Stake{
			UserID:       req.UserID,
			PoolID:       pool.ID,
			CampaignID:   req.CampaignID,
			TokenID:      pool.TokenID,
			Amount:       req.Amount,
			APY:          pool.APY,
			PeriodMonths: req.PeriodMonths,
			StartTs:      start,
			EndTs:        MaturityDate(start, req.PeriodMonths),
		}
		if err := s.dao.CreateStake(tx, stake); err != nil {
			return err
		}
		meta, err := json.Marshal(map[string]interface{}{"stakeId": stake.ID, "poolId": pool.ID})
		if err != nil {
			return err
		}
		return s.dao.CreateWalletTransaction(tx, &crowdfund.WalletTransaction{
			UserID:  req.UserID,
			Type:    types.WalletTxStake,
			Amount:  req.Amount,
			TokenID: pool.TokenID,
			Meta:    string(meta),
		})
	})
	if err != nil {
		stake = nil
		err = cerrors.Persistence("create stake", err)
		return
	}
	s.logger.Info("stake %d opened: user=%d pool=%d amount=%s months=%d",
		stake.ID, stake.UserID, stake.PoolID, stake.Amount, stake.PeriodMonths)
	return stake, nil
}

// ListStakes returns the stakes of a user, newest first, projected at the current time.
func (s *Service) ListStakes(ctx context.Context, userID int64) ([]*StakeView, error) {
	if userID <= 0 {
		return nil, cerrors.Validation("userId is required.")
	}
	stakes, err := s.dao.ListStakes(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, cerrors.Persistence("list stakes", err)
	}
	now := s.now()
	views := make([]*StakeView, 0, len(stakes))
	for _, st := range stakes {
		views = append(views, View(st, now))
	}
	return views, nil
}

// Withdraw returns the principal of a matured stake to its wallet. The stake row is
// locked so a stake is paid out at most once.
func (s *Service) Withdraw(ctx context.Context, req *WithdrawRequest) (err error) {
	defer func() { metrics.RecordLedgerOperation("withdraw", err) }()
	if err = req.Validate(); err != nil {
		return err
	}

	var stake *crowdfund.Stake
	err = db.Transaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var err error
		if stake, err = s.dao.LockStake(tx, req.StakeID, req.UserID); err != nil {
			return err
		}
		if stake == nil {
			return ErrStakeNotFound
		}
		if stake.Withdrawn {
			return ErrAlreadyWithdrawn
		}
		now := s.now()
		if now.Before(stake.EndTs) {
			return ErrNotMatured
		}

		if err := s.dao.MarkWithdrawn(tx, stake.ID, now); err != nil {
			return err
		}
		wallet, err := s.dao.LockWallet(tx, stake.UserID, stake.TokenID)
		if err != nil {
			return err
		}
		if wallet == nil {
			if _, err := s.dao.Deposit(tx, stake.UserID, stake.TokenID, stake.Amount); err != nil {
				return err
			}
		} else if err := s.dao.AddBalance(tx, wallet.ID, stake.Amount); err != nil {
			return err
		}
		meta, err := json.Marshal(map[string]int64{"stakeId": stake.ID})
		if err != nil {
			return err
		}
		return s.dao.CreateWalletTransaction(tx, &crowdfund.WalletTransaction{
			UserID:  stake.UserID,
			Type:    types.WalletTxWithdraw,
			Amount:  stake.Amount,
			TokenID: stake.TokenID,
			Meta:    string(meta),
		})
	})
	if err != nil {
		return cerrors.Persistence("withdraw", err)
	}
	s.logger.Info("stake %d withdrawn: user=%d amount=%s", stake.ID, stake.UserID, stake.Amount)
	return nil
}
