package export

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/record"
)

func sampleGroups() []engine.Group {
	return []engine.Group{
		{
			Client:          "Globex",
			FirstAppearance: 1,
			Records: []record.Record{
				{ID: 1, Client: "Globex", ClientOrder: 2, GlobalOrder: 1, ClientFirstAppearance: 1, Content: record.Content{
					PeopleConnected: "Bob",
					Actions:         "Send revised quote, then call",
					NextMeeting:     "Friday",
					Address:         "Springfield",
					ActionsTaken:    "Emailed deck",
				}},
				{ID: 3, Client: "Globex", ClientOrder: 1, GlobalOrder: 3, ClientFirstAppearance: 1, Content: record.Content{
					Actions: `Ask about "Q3" budget`,
				}},
			},
		},
		{
			Client:          "Acme",
			FirstAppearance: 2,
			Records: []record.Record{
				{ID: 2, Client: "Acme", ClientOrder: 1, GlobalOrder: 2, ClientFirstAppearance: 2, Content: record.Content{
					PeopleConnected: "Jane, Raj",
					NextMeeting:     "TBD",
				}},
			},
		},
	}
}

func TestCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV{}.Render(&buf, sampleGroups()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "grouped.csv", buf.Bytes())
}

func TestCSV_NoGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV{}.Render(&buf, nil))
	assert.Equal(t, "Client,Update #,People Connected,Actions,Next Meeting,Address,Actions Taken\n", buf.String())
}

func TestXLSX_Render(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX{}.Render(&buf, sampleGroups()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"Globex", "2", "Bob", "Send revised quote, then call", "Friday", "Springfield", "Emailed deck"}, pad(rows[1]))
	assert.Equal(t, []string{"Globex", "1", "", `Ask about "Q3" budget`, "", "", ""}, pad(rows[2]))
	assert.Equal(t, []string{"Acme", "1", "Jane, Raj", "", "TBD", "", ""}, pad(rows[3]))

	width, err := f.GetColWidth(DefaultSheet, "D")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)

	styleID, err := f.GetCellStyle(DefaultSheet, "G1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

// pad extends a row read back from a workbook to the full column count;
// excelize drops trailing empty cells.
func pad(row []string) []string {
	for len(row) < len(Header) {
		row = append(row, "")
	}
	return row
}

func TestXLSX_NamedSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX{Sheet: "Q4"}.Render(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Q4"}, f.GetSheetList())
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
	}{
		{"csv", ".csv"},
		{".CSV", ".csv"},
		{"xlsx", ".xlsx"},
		{"excel", ".xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := ForFormat(tt.format, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, r.Extension())
			assert.Equal(t, "meetings_export"+tt.wantExt, Filename(r))
		})
	}

	_, err := ForFormat("pdf", "")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
