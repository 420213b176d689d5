// Package judge turns captured visual evidence and a natural-language test
// contract into a judged pass/fail outcome. It assembles the judge request,
// normalizes the judge's structured verdict, gates it on a certainty
// threshold, and drives bounded retry attempts over a capture source.
package judge

// TestContext is the per-scenario test contract: a structured
// natural-language description of what the judge should verify. It is built
// by the caller and never mutated after construction.
type TestContext struct {
	// Subject identifies the visual entity under test ("the red crate").
	Subject string

	// Action describes the simulated user input ("pressed the D key").
	Action string

	// Expectation describes the visual change the action should cause.
	Expectation string

	// Warnings lists distractors the judge must ignore ("the skybox
	// shifts slightly with camera perspective").
	Warnings []string

	// PassCondition states the exact condition under which the scenario
	// passes.
	PassCondition string

	// Notes carries optional free-form context for the judge.
	Notes string
}
