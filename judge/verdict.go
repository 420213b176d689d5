package judge

import "github.com/c360studio/vizjudge/gateway"

// Status is the judge's categorical answer.
type Status string

const (
	// StatusPass means the judge believes the expectation holds.
	StatusPass Status = "PASS"
	// StatusFail means the judge believes the expectation does not hold.
	StatusFail Status = "FAIL"
)

// Verdict is the canonical, validated judge output. Invariants: Status is
// exactly PASS or FAIL, Certainty is within [0, 1], Reasoning is non-empty.
// A payload violating these never becomes a Verdict; it is replaced by a
// synthetic failure.
type Verdict struct {
	Status    Status  `json:"status"`
	Certainty float64 `json:"certainty"`
	Reasoning string  `json:"reasoning"`

	// Usage is best-effort token telemetry from the gateway sidecar. It is
	// kept apart from the wire verdict fields and never feeds the decision.
	Usage gateway.Usage `json:"-"`
}

// SyntheticFailure builds the Verdict that stands in for a judge-side
// failure: FAIL at zero certainty with the failure description as reasoning
// and zero usage. Transport errors and malformed responses both degrade to
// this shape so the decision and retry machinery run uniformly.
func SyntheticFailure(reason string) Verdict {
	return Verdict{
		Status:    StatusFail,
		Certainty: 0.0,
		Reasoning: reason,
	}
}
