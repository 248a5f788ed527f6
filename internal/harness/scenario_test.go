package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
name: test_scenario
description: "Test scenario for validation"
flow:
  - op: create
    client: Acme
    as: a1
    content:
      people_connected: "Jane"
    expect:
      record:
        client_order: 1
assertions:
  - type: count
    count: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	require.Len(t, scenario.Flow, 1)
	assert.Equal(t, OpCreate, scenario.Flow[0].Op)
	assert.Equal(t, "Jane", scenario.Flow[0].Content.PeopleConnected)
	require.NotNil(t, scenario.Flow[0].Expect.Record.ClientOrder)
	assert.Equal(t, int64(1), *scenario.Flow[0].Expect.Record.ClientOrder)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_MergeRows(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: merge
description: rows
flow:
  - op: merge
    rows:
      - client: Acme
        actions: "Intro"
        meeting_date: "2024-12-02"
    aliases: [a1]
`))
	require.NoError(t, err)

	rows := scenario.Flow[0].Rows
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Client)
	assert.Equal(t, "Intro", rows[0].Actions)
	assert.Equal(t, "2024-12-02", rows[0].MeetingDate)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: y\nflow:\n  - op: create\n    clinet: Acme\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: y\nflow:\n  - op: create\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nflow:\n  - op: create\n",
			want: "description is required",
		},
		{
			name: "empty flow",
			yaml: "name: x\ndescription: y\nflow: []\n",
			want: "flow list is required",
		},
		{
			name: "unknown op",
			yaml: "name: x\ndescription: y\nflow:\n  - op: explode\n",
			want: `unknown op "explode"`,
		},
		{
			name: "update without ref",
			yaml: "name: x\ndescription: y\nflow:\n  - op: update\n    client: Acme\n",
			want: "update requires ref",
		},
		{
			name: "reorder without target",
			yaml: "name: x\ndescription: y\nflow:\n  - op: reorder\n    dragged: a1\n",
			want: "reorder requires dragged and target",
		},
		{
			name: "too many merge aliases",
			yaml: "name: x\ndescription: y\nflow:\n  - op: merge\n    rows:\n      - client: Acme\n    aliases: [a1, a2]\n",
			want: "2 aliases for 1 rows",
		},
		{
			name: "unknown error kind",
			yaml: "name: x\ndescription: y\nflow:\n  - op: delete\n    ref: a1\n    expect:\n      error: boom\n",
			want: `unknown error kind "boom"`,
		},
		{
			name: "setup with expect",
			yaml: "name: x\ndescription: y\nsetup:\n  - op: create\n    expect:\n      count: 1\nflow:\n  - op: create\n",
			want: "setup steps cannot have expect",
		},
		{
			name: "record assertion without expect",
			yaml: "name: x\ndescription: y\nflow:\n  - op: create\nassertions:\n  - type: record\n    ref: a1\n",
			want: "record assertion requires ref and expect",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: y\nflow:\n  - op: create\nassertions:\n  - type: vibes\n",
			want: `unknown assertion type "vibes"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_Testdata(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		_, err := LoadScenario(f)
		assert.NoError(t, err, f)
	}
}
