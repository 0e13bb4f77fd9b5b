package db

import (
	"fmt"
	"time"

	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PoolDAO struct{}

func (*PoolDAO) ListPools(db *gorm.DB) ([]*crowdfund.Pool, error) {
	var pools []*crowdfund.Pool
	if err := db.Order("id asc").Find(&pools).Error; err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	return pools, nil
}

// GetPool returns nil when the pool doesn't exist.
func (*PoolDAO) GetPool(db *gorm.DB, poolID int64) (*crowdfund.Pool, error) {
	var p crowdfund.Pool
	ok, err := first(db.Where("id = ?", poolID), &p)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (*PoolDAO) CreatePool(db *gorm.DB, p *crowdfund.Pool) error {
	if err := db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create pool %q: %w", p.Name, err)
	}
	return nil
}

type WalletDAO struct{}

func (*WalletDAO) ListWallets(db *gorm.DB, userID int64) ([]*crowdfund.Wallet, error) {
	var wallets []*crowdfund.Wallet
	if err := db.Where("user_id = ?", userID).Order("token_id asc").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets of %d: %w", userID, err)
	}
	return wallets, nil
}

// LockWallet selects the wallet FOR UPDATE. Returns nil when it doesn't exist.
func (*WalletDAO) LockWallet(db *gorm.DB, userID int64, tokenID string) (*crowdfund.Wallet, error) {
	var w crowdfund.Wallet
	ok, err := first(db.Clauses(forUpdate).Where("user_id = ? AND token_id = ?", userID, tokenID), &w)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet %d/%s: %w", userID, tokenID, err)
	}
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// AddBalance adds delta (may be negative) to an existing wallet.
func (*WalletDAO) AddBalance(db *gorm.DB, walletID int64, delta decimal.Decimal) error {
	err := db.Model(&crowdfund.Wallet{}).
		Where("id = ?", walletID).
		UpdateColumns(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update wallet %d: %w", walletID, err)
	}
	return nil
}

// Deposit credits amount, creating the wallet on first use. Returns the updated wallet.
func (*WalletDAO) Deposit(db *gorm.DB, userID int64, tokenID string, amount decimal.Decimal) (*crowdfund.Wallet, error) {
	w := &crowdfund.Wallet{UserID: userID, TokenID: tokenID, Balance: amount}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "token_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("wallet.balance + EXCLUDED.balance"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(w).Error
	if err != nil {
		return nil, fmt.Errorf("failed to deposit into wallet %d/%s: %w", userID, tokenID, err)
	}
	var out crowdfund.Wallet
	if err := db.Where("user_id = ? AND token_id = ?", userID, tokenID).First(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to read wallet %d/%s: %w", userID, tokenID, err)
	}
	return &out, nil
}

type StakeDAO struct{}

func (*StakeDAO) CreateStake(db *gorm.DB, s *crowdfund.Stake) error {
	if err := db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to create stake of %d: %w", s.UserID, err)
	}
	return nil
}

// ListStakes returns the stakes of userID, newest first.
func (*StakeDAO) ListStakes(db *gorm.DB, userID int64) ([]*crowdfund.Stake, error) {
	var stakes []*crowdfund.Stake
	if err := db.Where("user_id = ?", userID).Order("start_ts desc, id desc").Find(&stakes).Error; err != nil {
		return nil, fmt.Errorf("failed to list stakes of %d: %w", userID, err)
	}
	return stakes, nil
}

// LockStake selects the stake owned by userID FOR UPDATE. Returns nil when no such stake.
func (*StakeDAO) LockStake(db *gorm.DB, stakeID, userID int64) (*crowdfund.Stake, error) {
	var s crowdfund.Stake
	ok, err := first(db.Clauses(forUpdate).Where("id = ? AND user_id = ?", stakeID, userID), &s)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stake %d: %w", stakeID, err)
	}
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (*StakeDAO) MarkWithdrawn(db *gorm.DB, stakeID int64, ts time.Time) error {
	err := db.Model(&crowdfund.Stake{}).
		Where("id = ?", stakeID).
		UpdateColumns(map[string]interface{}{
			"withdrawn":    true,
			"withdrawn_ts": ts,
			"updated_at":   ts,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark stake %d withdrawn: %w", stakeID, err)
	}
	return nil
}

type WalletTransactionDAO struct{}

func (*WalletTransactionDAO) CreateWalletTransaction(db *gorm.DB, t *crowdfund.WalletTransaction) error {
	if err := db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to log %s transaction of %d: %w", t.Type, t.UserID, err)
	}
	return nil
}

func (*WalletTransactionDAO) ListWalletTransactions(db *gorm.DB, userID int64) ([]*crowdfund.WalletTransaction, error) {
	var txs []*crowdfund.WalletTransaction
	if err := db.Where("user_id = ?", userID).Order("id desc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions of %d: %w", userID, err)
	}
	return txs, nil
}
