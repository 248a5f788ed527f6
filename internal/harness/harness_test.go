package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_TestdataScenariosPass(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(f)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_TraceRecordsEverySetupAndFlowStep(t *testing.T) {
	result, err := Run(mustParse(t, `
name: trace
description: trace
setup:
  - op: create
    client: Acme
    as: a1
flow:
  - op: create
    client: Acme
    as: a2
  - op: delete
    ref: "#7"
    expect:
      error: not_found
`))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, TraceEvent{Seq: 1, Op: OpCreate, Ref: "a1", Outcome: OutcomeOK, RecordID: 1}, result.Trace[0])
	assert.Equal(t, TraceEvent{Seq: 2, Op: OpCreate, Ref: "a2", Outcome: OutcomeOK, RecordID: 2}, result.Trace[1])
	assert.Equal(t, TraceEvent{Seq: 3, Op: OpDelete, Ref: "#7", Outcome: OutcomeNotFound}, result.Trace[2])

	require.Len(t, result.Records, 2)
	assert.Equal(t, RecordState{ID: 2, Client: "Acme", GlobalOrder: 2, ClientOrder: 2, FirstAppearance: 1}, result.Records[1])
}

func TestRun_FailedExpectationsAreReported(t *testing.T) {
	result, err := Run(mustParse(t, `
name: wrong
description: wrong expectations
flow:
  - op: create
    client: Acme
    as: a1
    expect:
      record:
        client_order: 5
  - op: delete
    ref: a1
    expect:
      error: not_found
  - op: create
    client: Acme
    expect:
      imported: 1
assertions:
  - type: count
    count: 9
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "client_order: expected 5, got 1")
	assert.Contains(t, result.Errors[1], "expected outcome not_found, got ok")
	assert.Contains(t, result.Errors[2], "imported/skipped only apply to merge")
	assert.Contains(t, result.Errors[3], "expected 9 records, got 1")
}

func TestRun_UnexpectedErrorWithoutExpect(t *testing.T) {
	result, err := Run(mustParse(t, `
name: boom
description: unexpected error
flow:
  - op: delete
    ref: "#1"
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_UnknownAlias(t *testing.T) {
	_, err := Run(mustParse(t, `
name: alias
description: unknown alias
flow:
  - op: delete
    ref: ghost
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown record alias "ghost"`)
}

func TestRun_SetupFailureAborts(t *testing.T) {
	_, err := Run(mustParse(t, `
name: setup
description: failing setup
setup:
  - op: reorder
    dragged: "#1"
    target: "#2"
flow:
  - op: create
    client: Acme
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0] reorder failed")
}

func TestRun_SkipLabelsOverride(t *testing.T) {
	result, err := Run(mustParse(t, `
name: skip
description: custom placeholder labels
skip_labels: ["n/a"]
flow:
  - op: merge
    rows:
      - client: "N/A"
      - client: "nan"
    expect:
      imported: 1
      skipped: 1
assertions:
  - type: groups
    clients: ["nan"]
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ScenariosAreIsolated(t *testing.T) {
	scenario := mustParse(t, `
name: isolated
description: each run starts empty
flow:
  - op: create
    client: Acme
    expect:
      record:
        global_order: 1
`)

	for i := 0; i < 2; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d errors: %v", i, result.Errors)
	}
}
