package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/crowdstake/crowdstake-server/cache/cacher"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

const (
	transferGasLimit = 21000
	callTimeout      = 30 * time.Second
)

var weiPerEther = decimal.New(1, 18)

// Backend is the subset of the node API a rewarder needs. *ethclient.Client implements it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Rewarder pays donors a share of their donation in ETH from a treasury account.
type Rewarder struct {
	backend *cacher.Const[Backend]
	chainID *cacher.Const[*big.Int]
	key     *ecdsa.PrivateKey
	from    common.Address
	percent decimal.Decimal
	logger  logging.Logger

	mu sync.Mutex
}

// NewRewarder dials rpcURL lazily on the first reward. percent is the share of the
// donation paid out, e.g. 1 for 1%.
func NewRewarder(rpcURL, treasuryKey string, percent decimal.Decimal) (*Rewarder, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpcURL is empty")
	}
	return newRewarder(func() (Backend, error) {
		return ethclient.Dial(rpcURL)
	}, treasuryKey, percent)
}

// NewRewarderWithBackend uses an already connected backend.
func NewRewarderWithBackend(backend Backend, treasuryKey string, percent decimal.Decimal) (*Rewarder, error) {
	return newRewarder(func() (Backend, error) { return backend, nil }, treasuryKey, percent)
}

func newRewarder(dial func() (Backend, error), treasuryKey string, percent decimal.Decimal) (*Rewarder, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(treasuryKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid treasury key: %w", err)
	}
	r := &Rewarder{
		backend: cacher.NewConst(dial),
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		percent: percent,
		logger:  logging.NewLoggerTag("ethereum"),
	}
	r.chainID = cacher.NewConst(func() (*big.Int, error) {
		b, err := r.backend.Get()
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		id, err := b.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("fail to get chain id err=%w", err)
		}
		return id, nil
	})
	r.logger.Info("treasury %s pays %s%% of donations", r.from.Hex(), percent)
	return r, nil
}

// Treasury is the paying address.
func (r *Rewarder) Treasury() common.Address {
	return r.from
}

// RewardWei converts the reward share of a donation to wei.
func (r *Rewarder) RewardWei(donation decimal.Decimal) *big.Int {
	return donation.Mul(r.percent).Div(decimal.NewFromInt(100)).Mul(weiPerEther).Truncate(0).BigInt()
}

// SendReward transfers the reward for donation to wallet and returns the tx hash.
// Sends are serialized so pending nonces don't collide.
func (r *Rewarder) SendReward(ctx context.Context, wallet string, donation decimal.Decimal) (common.Hash, error) {
	if !common.IsHexAddress(wallet) {
		return common.Hash{}, fmt.Errorf("invalid wallet address %q", wallet)
	}
	value := r.RewardWei(donation)
	if value.Sign() <= 0 {
		return common.Hash{}, fmt.Errorf("reward of %s rounds to zero", donation)
	}
	backend, err := r.backend.Get()
	if err != nil {
		return common.Hash{}, fmt.Errorf("dial: %w", err)
	}
	chainID, err := r.chainID.Get()
	if err != nil {
		return common.Hash{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	nonce, err := backend.PendingNonceAt(ctx, r.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fail to get nonce err=%w", err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fail to get gas price err=%w", err)
	}
	tx := types.NewTransaction(nonce, common.HexToAddress(wallet), value, transferGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), r.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fail to sign err=%w", err)
	}
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("fail to send err=%w", err)
	}
	r.logger.Info("reward %s wei sent to %s tx=%s", value, wallet, signed.Hash().Hex())
	return signed.Hash(), nil
}
