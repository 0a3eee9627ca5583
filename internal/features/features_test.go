package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeterminism(t *testing.T) {
	a := Build(3, 7, 50, 2, -3)
	b := Build(3, 7, 50, 2, -3)
	assert.Equal(t, a, b)
}

func TestBuildCoversVocabulary(t *testing.T) {
	f := Build(1, 10, 75, 1, 0)
	vocab := Vocabulary()
	require.Len(t, f, len(vocab))
	for _, name := range vocab {
		_, ok := f[name]
		assert.True(t, ok, "missing feature %s", name)
	}
}

func TestWithPlayTypeMutualExclusivity(t *testing.T) {
	f := Build(2, 5, 40, 1, 0)

	pass := WithPlayType(f, PlayTypePass)
	assert.Equal(t, 1.0, pass["is_pass"])
	assert.Equal(t, 0.0, pass["is_run"])

	run := WithPlayType(f, PlayTypeRun)
	assert.Equal(t, 0.0, run["is_pass"])
	assert.Equal(t, 1.0, run["is_run"])

	// The original vector is not mutated.
	assert.Equal(t, 0.0, f["is_pass"])
	assert.Equal(t, 0.0, f["is_run"])
}

// Sweep the full constrained input domain and check the bucket invariants.
func TestBucketConsistency(t *testing.T) {
	for down := 1; down <= 4; down++ {
		for ytg := 1; ytg <= 30; ytg++ {
			for dist := 1; dist <= 99; dist++ {
				f := Build(down, ytg, dist, 1, 0)

				yardageBuckets := f["short_yardage"] + f["medium_yardage"] + f["long_yardage"]
				require.Equal(t, 1.0, yardageBuckets,
					"down=%d ytg=%d dist=%d", down, ytg, dist)

				if f["goal_line"] == 1 {
					require.Equal(t, 1.0, f["red_zone"],
						"goal_line implies red_zone at dist=%d", dist)
				}
				require.False(t, f["third_down"] == 1 && f["fourth_down"] == 1)
			}
		}
	}
}

func TestQuarterOneHot(t *testing.T) {
	names := []string{"first_quarter", "second_quarter", "third_quarter", "fourth_quarter"}
	for q := 1; q <= 4; q++ {
		f := Build(1, 10, 50, q, 0)
		for i, name := range names {
			want := 0.0
			if i+1 == q {
				want = 1.0
			}
			assert.Equal(t, want, f[name], "quarter=%d feature=%s", q, name)
		}
		assert.Equal(t, f["first_half"], b2f(q <= 2))
		assert.Equal(t, f["second_half"], b2f(q >= 3))
	}
}

func TestCompoundFlags(t *testing.T) {
	tests := []struct {
		name            string
		down, ytg, dist int
		flag            string
		want            float64
	}{
		{"2nd and 8 is a passing down", 2, 8, 50, "passing_down", 1},
		{"3rd and 5 is a passing down", 3, 5, 50, "passing_down", 1},
		{"3rd and 4 is not a passing down", 3, 4, 50, "passing_down", 0},
		{"1st and 3 is a running down", 1, 3, 50, "running_down", 1},
		{"3rd and 3 is not a running down", 3, 3, 50, "running_down", 0},
		{"3rd and 10 is an obvious pass", 3, 10, 50, "obvious_pass", 1},
		{"3rd and 9 is not an obvious pass", 3, 9, 50, "obvious_pass", 0},
		{"2nd and 1 is an obvious run", 2, 1, 50, "obvious_run", 1},
		{"4th and 1 is not an obvious run", 4, 1, 50, "obvious_run", 0},
		{"3rd and 7 is third and long", 3, 7, 50, "third_and_long", 1},
		{"3rd and 3 is third and short", 3, 3, 50, "third_and_short", 1},
		{"4th and 2 is fourth and short", 4, 2, 50, "fourth_and_short", 1},
		{"4th and 3 is not fourth and short", 4, 3, 50, "fourth_and_short", 0},
		{"3rd down in red zone", 3, 5, 15, "red_zone_third_down", 1},
		{"1st down in red zone", 1, 5, 15, "red_zone_third_down", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Build(tt.down, tt.ytg, tt.dist, 1, 0)
			assert.Equal(t, tt.want, f[tt.flag])
		})
	}
}

func TestGoalLineBoundary(t *testing.T) {
	// ydstogo >= distance_to_goal inside the 5 means goal to go.
	f := Build(1, 5, 5, 1, 0)
	assert.Equal(t, 1.0, f["goal_line"])
	assert.Equal(t, 1.0, f["goal_line_situation"])

	// First and goal from the 5 with 4 to go is not goal-to-go.
	f = Build(1, 4, 5, 1, 0)
	assert.Equal(t, 1.0, f["goal_line"])
	assert.Equal(t, 0.0, f["goal_line_situation"])
}

func TestGameContextBuckets(t *testing.T) {
	tests := []struct {
		scoreDiff int
		losing    float64
		winning   float64
		tied      float64
		close     float64
		blowout   float64
	}{
		{-21, 1, 0, 0, 0, 1},
		{-7, 1, 0, 0, 1, 0},
		{0, 0, 0, 1, 1, 0},
		{3, 0, 1, 0, 1, 0},
		{15, 0, 1, 0, 0, 1},
		{14, 0, 1, 0, 0, 0},
	}

	for _, tt := range tests {
		f := Build(1, 10, 50, 1, tt.scoreDiff)
		assert.Equal(t, tt.losing, f["losing"], "diff=%d", tt.scoreDiff)
		assert.Equal(t, tt.winning, f["winning"], "diff=%d", tt.scoreDiff)
		assert.Equal(t, tt.tied, f["tied"], "diff=%d", tt.scoreDiff)
		assert.Equal(t, tt.close, f["close_game"], "diff=%d", tt.scoreDiff)
		assert.Equal(t, tt.blowout, f["blowout"], "diff=%d", tt.scoreDiff)
	}
}

func TestYardsPerDown(t *testing.T) {
	f := Build(4, 2, 30, 1, 0)
	assert.InDelta(t, 0.5, f["yards_per_down"], 1e-12)
}
