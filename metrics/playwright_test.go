package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failingReport = `{
	"suites": [
		{
			"title": "crate.spec.ts",
			"suites": [
				{
					"title": "crate movement",
					"specs": [
						{
							"title": "moves right on D",
							"ok": false,
							"tests": [
								{
									"results": [
										{
											"status": "failed",
											"error": {"message": "judge verdict: crate did not move\n\nexpected PASS\nreceived FAIL"}
										}
									]
								}
							]
						},
						{
							"title": "stays blue",
							"ok": true,
							"tests": [{"results": [{"status": "passed"}]}]
						}
					]
				}
			]
		}
	],
	"stats": {"expected": 1, "unexpected": 1, "flaky": 0, "skipped": 0}
}`

func TestParseRunReport_Failing(t *testing.T) {
	failing, reasons, err := parseRunReport([]byte(failingReport))

	require.NoError(t, err)
	assert.Equal(t, 1, failing)
	// Error messages are truncated to their first line.
	require.Len(t, reasons, 1)
	assert.Equal(t, "judge verdict: crate did not move", reasons[0])
}

func TestParseRunReport_AllPassing(t *testing.T) {
	report := `{
		"suites": [{"title": "s", "specs": [{"title": "t", "ok": true, "tests": [{"results": [{"status": "passed"}]}]}]}],
		"stats": {"expected": 1, "unexpected": 0}
	}`

	failing, reasons, err := parseRunReport([]byte(report))

	require.NoError(t, err)
	assert.Zero(t, failing)
	assert.Empty(t, reasons)
}

func TestParseRunReport_NoStatsFallsBackToSuiteWalk(t *testing.T) {
	report := `{
		"suites": [{"title": "s", "specs": [
			{"title": "a", "ok": false, "tests": [{"results": [{"status": "failed", "error": {"message": "boom"}}]}]},
			{"title": "b", "ok": false, "tests": [{"results": [{"status": "failed", "error": {"message": "bang"}}]}]}
		]}]
	}`

	failing, reasons, err := parseRunReport([]byte(report))

	require.NoError(t, err)
	assert.Equal(t, 2, failing)
	assert.Equal(t, []string{"boom", "bang"}, reasons)
}

func TestParseRunReport_Unparseable(t *testing.T) {
	_, _, err := parseRunReport([]byte("not a report"))
	require.Error(t, err)

	_, _, err = parseRunReport(nil)
	require.Error(t, err)

	// Valid JSON but not a run report.
	_, _, err = parseRunReport([]byte(`{"hello": "world"}`))
	require.Error(t, err)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "first", firstLine("first\nsecond"))
	assert.Equal(t, "first", firstLine("\n\n  first  \nsecond"))
	assert.Empty(t, firstLine("\n \n"))
}
