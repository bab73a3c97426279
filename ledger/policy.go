/*
policy.go - Stateless anti-cheat rules applied before credits

PURPOSE:
  Evaluates heuristic rules before a credit is accepted. The rules are
  deliberately a fixed set of configuration constants, not a generic
  rules engine.

RULES:
  Gameplay credits:
    - Amount > 5000 in one call: "high_score" report. Informational; the
      credit still goes through because legitimate high-skill runs can
      exceed naive thresholds.
    - Amount > 1000 arriving < 5000ms after the previous validated
      mutation: "velocity_coins" report. Informational.

  Reward credits:
    - Must equal one of a fixed allow-listed set of denominations.
      Anything else is rejected outright: reward amounts come from a
      closed set of UI-triggered grants, so any deviation is unambiguous
      tampering or a logic bug.

  Purchase and achievement credits pass through ungated here. Purchases
  are validated server-side on an independent trust path.

SEE ALSO:
  - ledger.go: Invokes EvaluateCredit under the mutation lock
*/
package ledger

import "time"

// =============================================================================
// POLICY CONFIGURATION
// =============================================================================

// Policy holds the anti-cheat thresholds. Stateless: evaluation depends
// only on the arguments passed in.
type Policy struct {
	// HighScoreThreshold is the single-call gameplay credit above which a
	// high_score report is emitted.
	HighScoreThreshold int64

	// VelocityThreshold and VelocityWindow flag large gameplay credits
	// arriving too soon after the previous validated mutation.
	VelocityThreshold int64
	VelocityWindow    time.Duration

	// RewardDenominations is the closed set of accepted reward amounts.
	RewardDenominations []int64
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		HighScoreThreshold:  5000,
		VelocityThreshold:   1000,
		VelocityWindow:      5000 * time.Millisecond,
		RewardDenominations: []int64{100, 250, 500, 1000, 2500},
	}
}

// =============================================================================
// EVALUATION
// =============================================================================

// Signal is an informational security report produced by evaluation.
type Signal struct {
	Action   string
	Metadata map[string]any
}

// EvaluateCredit applies the rules for one credit. sinceLast is the time
// elapsed since the previous validated mutation; hasPrior is false for
// the first mutation after load.
//
// Returns whether the credit is allowed and any informational signals to
// report. Signals never block. A blocked credit produces no signal: the
// rejection stays silent so tampered clients learn nothing.
func (p Policy) EvaluateCredit(source CreditSource, amount int64, sinceLast time.Duration, hasPrior bool) (bool, []Signal) {
	switch source {
	case SourceReward:
		for _, d := range p.RewardDenominations {
			if amount == d {
				return true, nil
			}
		}
		return false, nil

	case SourceGameplay:
		var signals []Signal
		if amount > p.HighScoreThreshold {
			signals = append(signals, Signal{
				Action:   EventHighScore,
				Metadata: map[string]any{"amount": amount},
			})
		}
		if amount > p.VelocityThreshold && hasPrior && sinceLast < p.VelocityWindow {
			signals = append(signals, Signal{
				Action:   EventVelocityCoins,
				Metadata: map[string]any{"amount": amount, "since_ms": sinceLast.Milliseconds()},
			})
		}
		return true, signals
	}

	return true, nil
}
