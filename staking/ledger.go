package staking

import (
	"math"
	"time"

	"github.com/crowdstake/crowdstake-server/common/utils"
	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/shopspring/decimal"
)

// MaxPeriodMonths bounds the lock period of a stake.
const MaxPeriodMonths = 120

var monthsPerYearPercent = decimal.NewFromInt(1200)

// ProjectedReward is amount * apy/100 * months/12. apy is a percentage.
func ProjectedReward(amount, apy decimal.Decimal, months int) decimal.Decimal {
	return amount.Mul(apy).Mul(decimal.NewFromInt(int64(months))).Div(monthsPerYearPercent)
}

// MaturityDate adds calendar months to start in UTC.
func MaturityDate(start time.Time, months int) time.Time {
	return utils.MonthsLater(start, months)
}

// TimeElapsedPct is the share of [start, end] already passed at now, clamped to 0..100.
func TimeElapsedPct(start, end, now time.Time) int {
	total := end.Sub(start)
	if total <= 0 {
		if now.Before(end) {
			return 0
		}
		return 100
	}
	ratio := float64(now.Sub(start)) / float64(total)
	ratio = math.Max(0, math.Min(1, ratio))
	return int(math.Round(ratio * 100))
}

// Withdrawable reports whether s may be withdrawn at now.
func Withdrawable(s *crowdfund.Stake, now time.Time) bool {
	return !s.Withdrawn && !now.Before(s.EndTs)
}

// StakeView is a stake with its read-time projections.
type StakeView struct {
	*crowdfund.Stake
	ProjectedRewards decimal.Decimal `json:"projectedRewards"`
	TimeElapsedPct   int             `json:"timeElapsedPct"`
	Withdrawable     bool            `json:"withdrawable"`
}

// View projects s at now.
func View(s *crowdfund.Stake, now time.Time) *StakeView {
	return &StakeView{
		Stake:            s,
		ProjectedRewards: ProjectedReward(s.Amount, s.APY, s.PeriodMonths),
		TimeElapsedPct:   TimeElapsedPct(s.StartTs, s.EndTs, now),
		Withdrawable:     Withdrawable(s, now),
	}
}
