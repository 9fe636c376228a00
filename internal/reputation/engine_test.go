package reputation

import "testing"

// ---------------------------------------------------------------------------
// 1. TestScore_Bounds
//    The score stays in [0, 100] across extremes of every component.
// ---------------------------------------------------------------------------

func TestScore_Bounds(t *testing.T) {
	cases := []struct {
		name string
		h    History
	}{
		{"empty history", History{RecentActivityDays: 9999}},
		{"maxed out", History{
			TotalJudgments:     100000,
			HelpfulVotes:       5000,
			TotalVotes:         5000,
			AgreementRate:      1.0,
			AvgReasoningLength: 100000,
			RecentActivityDays: 0,
		}},
		{"no votes received", History{TotalJudgments: 500, AgreementRate: 0.9, AvgReasoningLength: 200, RecentActivityDays: 3}},
		{"all votes unhelpful", History{TotalJudgments: 500, HelpfulVotes: 0, TotalVotes: 1000, RecentActivityDays: 400}},
	}
	for _, tc := range cases {
		got := Score(tc.h)
		if got < 0 || got > 100 {
			t.Errorf("%s: score %d out of [0,100]", tc.name, got)
		}
	}
}

// ---------------------------------------------------------------------------
// 2. TestScore_Components
// ---------------------------------------------------------------------------

func TestScore_Components(t *testing.T) {
	// Empty history with stale activity: only the default helpfulness (15)
	// and minimum recency (5) contribute.
	if got := Score(History{RecentActivityDays: 9999}); got != 20 {
		t.Errorf("empty history score: got %d, want 20", got)
	}

	// A perfect, active judge caps every component: 20+30+20+15+15 = 100.
	perfect := History{
		TotalJudgments:     500,
		HelpfulVotes:       100,
		TotalVotes:         100,
		AgreementRate:      1.0,
		AvgReasoningLength: 50,
		RecentActivityDays: 7,
	}
	if got := Score(perfect); got != 100 {
		t.Errorf("perfect history score: got %d, want 100", got)
	}

	// Volume saturates at 500 judgments (20 points at 25 per point).
	atCap := perfect
	atCap.TotalJudgments = 100000
	if Score(atCap) != Score(perfect) {
		t.Error("volume component should saturate at the cap")
	}

	// Recency bands: <=7 days 15, <=30 days 10, older 5.
	base := History{RecentActivityDays: 7}
	mid := History{RecentActivityDays: 30}
	old := History{RecentActivityDays: 31}
	if Score(base)-Score(mid) != 5 {
		t.Errorf("recency 7d vs 30d: got %d vs %d, want gap of 5", Score(base), Score(mid))
	}
	if Score(mid)-Score(old) != 5 {
		t.Errorf("recency 30d vs 31d: got %d vs %d, want gap of 5", Score(mid), Score(old))
	}
}

// ---------------------------------------------------------------------------
// 3. TestTierFor
// ---------------------------------------------------------------------------

func TestTierFor(t *testing.T) {
	cases := []struct {
		judgments int
		score     int
		want      string
	}{
		{0, 0, "new"},
		{5, 95, "new"},       // too few judgments for any higher tier
		{10, 39, "new"},      // score below verified threshold
		{10, 40, "verified"}, // exact thresholds qualify
		{10, 60, "verified"},
		{49, 90, "verified"}, // one judgment short of expert
		{50, 65, "expert"},
		{100, 75, "master"},
		{249, 99, "master"},
		{250, 85, "elite"},
		{500, 95, "elite"},
		{500, 84, "master"}, // elite needs both minimums
	}
	for _, tc := range cases {
		if got := TierFor(tc.judgments, tc.score); got != tc.want {
			t.Errorf("TierFor(%d, %d): got %q, want %q", tc.judgments, tc.score, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// 4. TestHigherTier
// ---------------------------------------------------------------------------

func TestHigherTier(t *testing.T) {
	if got := HigherTier("master", "verified"); got != "master" {
		t.Errorf("HigherTier(master, verified): got %q, want master", got)
	}
	if got := HigherTier("verified", "elite"); got != "elite" {
		t.Errorf("HigherTier(verified, elite): got %q, want elite", got)
	}
	if got := HigherTier("expert", "expert"); got != "expert" {
		t.Errorf("HigherTier(expert, expert): got %q, want expert", got)
	}
}

// ---------------------------------------------------------------------------
// 5. TestPayoutRate
// ---------------------------------------------------------------------------

func TestPayoutRate(t *testing.T) {
	cases := []struct {
		tier     string
		rate     int
		eligible bool
	}{
		{"new", 0, false},
		{"verified", 10, true},
		{"expert", 12, true},
		{"master", 15, true},
		{"elite", 20, true},
	}
	for _, tc := range cases {
		rate, eligible := PayoutRate(tc.tier)
		if rate != tc.rate || eligible != tc.eligible {
			t.Errorf("PayoutRate(%q): got (%d, %v), want (%d, %v)", tc.tier, rate, eligible, tc.rate, tc.eligible)
		}
	}
}
