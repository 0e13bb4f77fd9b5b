package validator

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"time"

	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/common/metrics"
	"github.com/crowdstake/crowdstake-server/common/utils"
	"github.com/crowdstake/crowdstake-server/database/db"
	"go.uber.org/atomic"
	"gorm.io/gorm"
)

// Result is the outcome of one consistency round.
type Result struct {
	// Mismatched maps a replica index to the campaigns whose amount_raised differs from
	// the sum of their donations.
	Mismatched   map[int][]int64
	DigestsMatch bool
}

func (r *Result) OK() bool {
	return r.DigestsMatch && len(r.Mismatched) == 0
}

// Validator checks that campaign totals agree with donations on every replica and that
// replicas agree with each other.
type Validator struct {
	OnOK       func(context.Context, *Result) error
	OnConflict func(context.Context, *Result) error

	config      *Config
	replicas    []*gorm.DB
	owned       bool
	dao         *db.DAO
	lastChecked *atomic.Time
	logger      logging.Logger
}

// NewValidator dials every configured replica.
func NewValidator(config *Config, logger logging.Logger) (*Validator, error) {
	replicas := make([]*gorm.DB, len(config.DatabaseURLs))
	for i, u := range config.DatabaseURLs {
		handle, err := db.NewDB(u)
		if err != nil {
			for _, r := range replicas[:i] {
				db.Close(r)
			}
			return nil, fmt.Errorf("replica %d: %w", i, err)
		}
		replicas[i] = handle
	}
	v := NewValidatorWithDB(config, logger, replicas...)
	v.owned = true
	return v, nil
}

// NewValidatorWithDB checks already opened handles. The caller keeps ownership.
func NewValidatorWithDB(config *Config, logger logging.Logger, replicas ...*gorm.DB) *Validator {
	return &Validator{
		config:      config,
		replicas:    replicas,
		dao:         db.NewDAO(),
		lastChecked: atomic.NewTime(time.Time{}),
		logger:      logger,
	}
}

// Close releases handles opened by NewValidator.
func (v *Validator) Close() {
	if !v.owned {
		return
	}
	for _, r := range v.replicas {
		db.Close(r)
	}
}

// LastChecked is the time of the last round that passed.
func (v *Validator) LastChecked() time.Time {
	return v.lastChecked.Load()
}

// Run checks once per round interval until ctx is done.
func (v *Validator) Run(ctx context.Context) error {
	interval := v.config.RoundInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		v.round(ctx)
		select {
		case <-ctx.Done():
			v.logger.Info("validator receives shutdown signal.")
			return nil
		case <-ticker.C:
		}
	}
}

func (v *Validator) round(ctx context.Context) {
	now := time.Now().UTC()
	res, err := v.Check(ctx)
	if err != nil {
		v.logger.Warn("error occurs while checking ledger at %s: %v", now.Format(utils.TimeFormat), err)
		return
	}
	metrics.RecordValidatorRound(res.OK())
	if res.OK() {
		v.lastChecked.Store(now)
		v.onOK(ctx, res)
	} else {
		v.onConflict(ctx, res)
	}
}

// Check runs one round.
func (v *Validator) Check(ctx context.Context) (*Result, error) {
	if len(v.replicas) == 0 {
		return nil, errors.New("no replicas")
	}
	res := &Result{Mismatched: make(map[int][]int64), DigestsMatch: true}
	var expect []byte
	for i, replica := range v.replicas {
		totals, err := v.dao.CampaignTotals(replica.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("replica %d: %w", i, err)
		}
		h := md5.New()
		for _, t := range totals {
			if !t.AmountRaised.Equal(t.DonationSum) {
				res.Mismatched[i] = append(res.Mismatched[i], t.CampaignID)
			}
			if _, err := fmt.Fprintf(h, "%d:%s;", t.CampaignID, t.AmountRaised.String()); err != nil {
				return nil, err
			}
		}
		digest := h.Sum(nil)
		if i == 0 {
			expect = digest
		} else if !bytes.Equal(digest, expect) {
			res.DigestsMatch = false
		}
	}
	return res, nil
}

func (v *Validator) onOK(ctx context.Context, res *Result) {
	if v.OnOK != nil {
		if err := v.OnOK(ctx, res); err != nil {
			v.logger.Warn("OnOK hook: %v", err)
		}
	}
	v.logger.Info("all campaign totals verified on %d replicas", len(v.replicas))
}

func (v *Validator) onConflict(ctx context.Context, res *Result) {
	if v.OnConflict != nil {
		if err := v.OnConflict(ctx, res); err != nil {
			v.logger.Warn("OnConflict hook: %v", err)
		}
	}
	v.logger.Warn("ledger conflict: mismatched=%v digests_match=%v", res.Mismatched, res.DigestsMatch)
}
