package match

// PredictionView is a match joined with its prediction, as read by publishers.
type PredictionView struct {
	Match      Match
	Prediction Prediction
}

// HalfTimeGoalPick is a match with a half-time goal prediction and the
// percentages backing it.
type HalfTimeGoalPick struct {
	Match      Match
	Prediction string
	Over05     int
	Over15     int
}

// SettledResult is a finished match with the predictions made before kickoff.
type SettledResult struct {
	Match      Match
	Prediction Prediction
	Score      Score
}
