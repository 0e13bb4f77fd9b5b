package staking

import (
	"testing"
	"time"

	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProjectedReward(t *testing.T) {
	cases := []struct {
		amount, apy string
		months      int
		want        string
	}{
		{"1000", "12", 12, "120"},
		{"1000", "12", 6, "60"},
		{"1000", "0", 12, "0"},
		{"250.5", "8", 3, "5.01"},
		{"1", "100", 120, "10"},
	}
	for _, c := range cases {
		got := ProjectedReward(d(c.amount), d(c.apy), c.months)
		assert.True(t, got.Equal(d(c.want)), "%s %s %d: got %s", c.amount, c.apy, c.months, got)
	}
}

func TestMaturityDate(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), MaturityDate(start, 3))
	require.Equal(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), MaturityDate(start, 12))

	local := time.Date(2024, 1, 15, 10, 0, 0, 0, time.FixedZone("X", 3600))
	require.Equal(t, time.UTC, MaturityDate(local, 1).Location())
}

func TestTimeElapsedPct(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(100 * time.Hour)

	require.Equal(t, 0, TimeElapsedPct(start, end, start.Add(-time.Hour)))
	require.Equal(t, 0, TimeElapsedPct(start, end, start))
	require.Equal(t, 25, TimeElapsedPct(start, end, start.Add(25*time.Hour)))
	require.Equal(t, 50, TimeElapsedPct(start, end, start.Add(49*time.Hour+30*time.Minute)))
	require.Equal(t, 100, TimeElapsedPct(start, end, end))
	require.Equal(t, 100, TimeElapsedPct(start, end, end.Add(time.Hour)))

	require.Equal(t, 100, TimeElapsedPct(start, start, start))
}

func TestView(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &crowdfund.Stake{
		Amount:       d("1000"),
		APY:          d("12"),
		PeriodMonths: 12,
		StartTs:      start,
		EndTs:        MaturityDate(start, 12),
	}

	v := View(s, start.Add(24*time.Hour))
	require.True(t, v.ProjectedRewards.Equal(d("120")))
	require.False(t, v.Withdrawable)

	v = View(s, s.EndTs)
	require.True(t, v.Withdrawable)
	require.Equal(t, 100, v.TimeElapsedPct)

	s.Withdrawn = true
	require.False(t, View(s, s.EndTs.Add(time.Hour)).Withdrawable)
}

func TestRequestValidation(t *testing.T) {
	ok := &StakeRequest{UserID: 1, PoolID: 1, Amount: d("10"), PeriodMonths: 6}
	require.NoError(t, ok.Validate())

	bad := []*StakeRequest{
		{PoolID: 1, Amount: d("10"), PeriodMonths: 6},
		{UserID: 1, Amount: d("10"), PeriodMonths: 6},
		{UserID: 1, PoolID: 1, Amount: d("0"), PeriodMonths: 6},
		{UserID: 1, PoolID: 1, Amount: d("-1"), PeriodMonths: 6},
		{UserID: 1, PoolID: 1, Amount: d("10")},
		{UserID: 1, PoolID: 1, Amount: d("10"), PeriodMonths: MaxPeriodMonths + 1},
	}
	for i, r := range bad {
		require.Error(t, r.Validate(), "case %d", i)
	}

	require.Error(t, (&WithdrawRequest{StakeID: 1}).Validate())
	require.NoError(t, (&WithdrawRequest{StakeID: 1, UserID: 2}).Validate())

	require.Error(t, (&PoolRequest{TokenID: " ", Name: "x"}).Validate())
	require.Error(t, (&PoolRequest{TokenID: "MCB", Name: "x", APY: d("-1")}).Validate())
	require.NoError(t, (&PoolRequest{TokenID: "MCB", Name: "x", APY: d("5")}).Validate())

	require.Error(t, (&DepositRequest{UserID: 1, TokenID: "MCB"}).Validate())
	require.NoError(t, (&DepositRequest{UserID: 1, TokenID: "MCB", Amount: d("1")}).Validate())
}
