// Package reputation turns judgment history into a deterministic score, tier,
// and payout multiplier. The engine is pure; persistence lives in Service.
package reputation

import "math"

// History is the aggregate judgment history the engine scores from.
type History struct {
	TotalJudgments     int
	HelpfulVotes       int
	TotalVotes         int
	AgreementRate      float64 // fraction of judgments agreeing with majority, 0-1
	AvgReasoningLength float64 // characters
	RecentActivityDays int     // days since last judgment
}

// Tier thresholds, highest first. The first row whose minimums the judge
// meets wins, so ties resolve to the higher tier.
var tierThresholds = []struct {
	Tier         string
	MinJudgments int
	MinScore     int
}{
	{"elite", 250, 85},
	{"master", 100, 75},
	{"expert", 50, 65},
	{"verified", 10, 40},
	{"new", 0, 0},
}

// payoutRates maps tier to the credit-to-cash multiplier in cents per credit.
// Judges below verified are not cash-out eligible.
var payoutRates = map[string]int{
	"verified": 10,
	"expert":   12,
	"master":   15,
	"elite":    20,
}

// Score computes the 0-100 reputation score:
// volume (0-20) + helpfulness (0-30) + agreement (0-20) +
// reasoning depth (0-15) + recency (5-15).
func Score(h History) int {
	volume := math.Min(20, float64(h.TotalJudgments)/25)

	helpfulness := 15.0
	if h.TotalVotes > 0 {
		helpfulness = float64(h.HelpfulVotes) / float64(h.TotalVotes) * 30
	}

	agreement := h.AgreementRate * 20

	reasoning := math.Min(15, h.AvgReasoningLength/50*15)

	recency := 5.0
	switch {
	case h.RecentActivityDays <= 7:
		recency = 15
	case h.RecentActivityDays <= 30:
		recency = 10
	}

	return int(math.Round(volume + helpfulness + agreement + reasoning + recency))
}

// TierFor returns the tier a judge qualifies for with the given score and
// judgment count.
func TierFor(totalJudgments, score int) string {
	for _, t := range tierThresholds {
		if totalJudgments >= t.MinJudgments && score >= t.MinScore {
			return t.Tier
		}
	}
	return "new"
}

// tierRank orders tiers for the advance-only rule.
var tierRank = map[string]int{
	"new":      0,
	"verified": 1,
	"expert":   2,
	"master":   3,
	"elite":    4,
}

// HigherTier returns the higher of the two tiers. Tiers never demote, so the
// snapshot keeps whichever is greater.
func HigherTier(a, b string) string {
	if tierRank[b] > tierRank[a] {
		return b
	}
	return a
}

// PayoutRate returns the cents-per-credit rate for the tier and whether the
// tier is cash-out eligible at all.
func PayoutRate(tier string) (centsPerCredit int, eligible bool) {
	rate, ok := payoutRates[tier]
	return rate, ok
}
