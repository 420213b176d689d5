package judge

// Outcome is the result of gating one Verdict against the certainty
// threshold. Decision is PASS iff the verdict's status is PASS and its
// certainty meets the threshold; a confident FAIL stays FAIL, and a
// low-certainty PASS is downgraded.
type Outcome struct {
	Verdict      Verdict
	ThresholdMet bool
	Decision     Status

	// Attempts is the number of attempts the scenario driver made to reach
	// this outcome. Decide itself always reports 1.
	Attempts int
}

// Decide gates a Verdict against the certainty threshold (inclusive). Pure
// comparison; the verdict's reasoning passes through untouched for
// diagnostic attachment regardless of outcome.
func Decide(v Verdict, threshold float64) Outcome {
	thresholdMet := v.Certainty >= threshold
	decision := StatusFail
	if v.Status == StatusPass && thresholdMet {
		decision = StatusPass
	}
	return Outcome{
		Verdict:      v,
		ThresholdMet: thresholdMet,
		Decision:     decision,
		Attempts:     1,
	}
}
