// Package features derives the model's engineered feature vector from the
// five pre-snap situational inputs. Everything here is pure: the same inputs
// always produce the same mapping.
package features

const (
	PlayTypeRun  = "run"
	PlayTypePass = "pass"
)

// vocabulary is the canonical ordered feature schema. Training and inference
// both select columns in this order, so the position of a name is part of the
// model contract.
var vocabulary = []string{
	"down",
	"ydstogo",
	"distance_to_goal",
	"is_pass",
	"is_run",
	"third_down",
	"fourth_down",
	"short_yardage",
	"medium_yardage",
	"long_yardage",
	"yards_per_down",
	"red_zone",
	"green_zone",
	"goal_line",
	"midfield",
	"own_territory",
	"score_diff",
	"losing",
	"winning",
	"tied",
	"close_game",
	"blowout",
	"first_quarter",
	"second_quarter",
	"third_quarter",
	"fourth_quarter",
	"first_half",
	"second_half",
	"passing_down",
	"running_down",
	"obvious_pass",
	"obvious_run",
	"third_and_long",
	"third_and_short",
	"fourth_and_short",
	"red_zone_third_down",
	"goal_line_situation",
}

// Vocabulary returns a copy of the canonical ordered feature-name list.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Build maps a play situation to the full engineered feature vector. The
// play-type indicators is_pass/is_run are left at 0; callers force them per
// hypothesis with WithPlayType (they are the only features that depend on the
// play type rather than the situation).
//
// Callers are responsible for the input domain: down and quarter in 1..4,
// yardsToGo > 0, distanceToGoal in 1..99.
func Build(down, yardsToGo, distanceToGoal, quarter, scoreDiff int) map[string]float64 {
	f := make(map[string]float64, len(vocabulary))

	// Identity passthroughs
	f["down"] = float64(down)
	f["ydstogo"] = float64(yardsToGo)
	f["distance_to_goal"] = float64(distanceToGoal)

	f["is_pass"] = 0
	f["is_run"] = 0

	// Down and distance
	f["third_down"] = b2f(down == 3)
	f["fourth_down"] = b2f(down == 4)
	f["short_yardage"] = b2f(yardsToGo <= 3)
	f["medium_yardage"] = b2f(yardsToGo >= 4 && yardsToGo <= 7)
	f["long_yardage"] = b2f(yardsToGo >= 8)
	f["yards_per_down"] = float64(yardsToGo) / float64(down)

	// Field position
	f["red_zone"] = b2f(distanceToGoal <= 20)
	f["green_zone"] = b2f(distanceToGoal <= 10)
	f["goal_line"] = b2f(distanceToGoal <= 5)
	f["midfield"] = b2f(distanceToGoal >= 40 && distanceToGoal <= 60)
	f["own_territory"] = b2f(distanceToGoal >= 50)

	// Game context
	f["score_diff"] = float64(scoreDiff)
	f["losing"] = b2f(scoreDiff < 0)
	f["winning"] = b2f(scoreDiff > 0)
	f["tied"] = b2f(scoreDiff == 0)
	absDiff := scoreDiff
	if absDiff < 0 {
		absDiff = -absDiff
	}
	f["close_game"] = b2f(absDiff <= 7)
	f["blowout"] = b2f(absDiff > 14)

	// Time context
	f["first_quarter"] = b2f(quarter == 1)
	f["second_quarter"] = b2f(quarter == 2)
	f["third_quarter"] = b2f(quarter == 3)
	f["fourth_quarter"] = b2f(quarter == 4)
	f["first_half"] = b2f(quarter <= 2)
	f["second_half"] = b2f(quarter >= 3)

	// Compound situational flags
	f["passing_down"] = b2f((down == 2 && yardsToGo >= 8) || (down == 3 && yardsToGo >= 5))
	f["running_down"] = b2f(down <= 2 && yardsToGo <= 4)
	f["obvious_pass"] = b2f(down == 3 && yardsToGo >= 10)
	f["obvious_run"] = b2f(yardsToGo <= 2 && down <= 3)
	f["third_and_long"] = b2f(down == 3 && yardsToGo >= 7)
	f["third_and_short"] = b2f(down == 3 && yardsToGo <= 3)
	f["fourth_and_short"] = b2f(down == 4 && yardsToGo <= 2)
	f["red_zone_third_down"] = b2f(distanceToGoal <= 20 && down == 3)
	f["goal_line_situation"] = b2f(distanceToGoal <= 5 && yardsToGo >= distanceToGoal)

	return f
}

// WithPlayType returns a copy of the feature vector with the play-type
// indicator pair forced to the given hypothesis. Exactly one of
// is_pass/is_run is 1 in the result.
func WithPlayType(f map[string]float64, playType string) map[string]float64 {
	out := make(map[string]float64, len(f)+2)
	for k, v := range f {
		out[k] = v
	}
	if playType == PlayTypePass {
		out["is_pass"] = 1
		out["is_run"] = 0
	} else {
		out["is_pass"] = 0
		out["is_run"] = 1
	}
	return out
}
