package ledger_test

import (
	"testing"
	"time"

	"github.com/arcadia/coin-engine/ledger"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateCredit_RewardDenominations(t *testing.T) {
	// GIVEN: The default policy's closed set of reward amounts
	// THEN: Exactly those amounts are allowed; everything else rejected
	//       without a signal

	policy := ledger.DefaultPolicy()

	for _, amount := range []int64{100, 250, 500, 1000, 2500} {
		allowed, signals := policy.EvaluateCredit(ledger.SourceReward, amount, time.Minute, true)
		assert.True(t, allowed, "denomination %d", amount)
		assert.Empty(t, signals)
	}

	for _, amount := range []int64{1, 99, 101, 333, 2499, 2501, 1000000} {
		allowed, signals := policy.EvaluateCredit(ledger.SourceReward, amount, time.Minute, true)
		assert.False(t, allowed, "amount %d must be rejected", amount)
		assert.Empty(t, signals, "rejection must stay silent")
	}
}

func TestEvaluateCredit_GameplaySignals(t *testing.T) {
	policy := ledger.DefaultPolicy()

	tests := []struct {
		name      string
		amount    int64
		sinceLast time.Duration
		hasPrior  bool
		want      []string
	}{
		{"small credit, no signals", 100, time.Second, true, nil},
		{"at the high-score threshold", 5000, time.Minute, true, nil},
		{"above the high-score threshold", 5001, time.Minute, true, []string{ledger.EventHighScore}},
		{"fast large credit", 2000, 800 * time.Millisecond, true, []string{ledger.EventVelocityCoins}},
		{"fast large credit without a prior mutation", 2000, 800 * time.Millisecond, false, nil},
		{"large credit outside the window", 2000, 6 * time.Second, true, nil},
		{"fast huge credit trips both", 9000, time.Second, true, []string{ledger.EventHighScore, ledger.EventVelocityCoins}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, signals := policy.EvaluateCredit(ledger.SourceGameplay, tt.amount, tt.sinceLast, tt.hasPrior)

			assert.True(t, allowed, "gameplay credits are never blocked")
			var actions []string
			for _, s := range signals {
				actions = append(actions, s.Action)
			}
			assert.Equal(t, tt.want, actions)
		})
	}
}

func TestEvaluateCredit_PurchaseAndAchievementUngated(t *testing.T) {
	// GIVEN: Purchase and achievement credits of arbitrary size
	// THEN: They pass with no signals; purchases are validated on an
	//       independent trust path

	policy := ledger.DefaultPolicy()

	for _, source := range []ledger.CreditSource{ledger.SourcePurchase, ledger.SourceAchievement} {
		allowed, signals := policy.EvaluateCredit(source, 999999, time.Millisecond, true)
		assert.True(t, allowed, "source %s", source)
		assert.Empty(t, signals)
	}
}
