package importer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/record"
	"github.com/roach88/updatelog/internal/testutil"
)

func TestReadCSV(t *testing.T) {
	src := "Client,People Connected,Actions,Next Meeting,Address,Actions Taken\n" +
		"Acme,Jane,\"Send quote, follow up\",Friday,HQ,Called\n" +
		",,,,,\n" +
		"Globex,Bob\n"

	rows, err := ReadCSV(strings.NewReader(src), Options{})
	require.NoError(t, err)

	assert.Equal(t, []engine.Row{
		{Client: "Acme", Content: record.Content{
			PeopleConnected: "Jane",
			Actions:         "Send quote, follow up",
			NextMeeting:     "Friday",
			Address:         "HQ",
			ActionsTaken:    "Called",
		}},
		{},
		{Client: "Globex", Content: record.Content{PeopleConnected: "Bob"}},
	}, rows)
}

func TestReadCSV_KeepsEmptyLines(t *testing.T) {
	src := "Client,Actions\nAcme,a\n\n\"Initech\",\"two\nlines\"\n\nGlobex,b\n\n"

	rows, err := ReadCSV(strings.NewReader(src), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Acme", rows[0].Client)
	assert.Equal(t, engine.Row{}, rows[1])
	assert.Equal(t, "two\nlines", rows[2].Actions)
	assert.Equal(t, engine.Row{}, rows[3])
	assert.Equal(t, "Globex", rows[4].Client)
}

func TestReadCSV_EmptyLineKeepsMergePosition(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("Client,Actions\nAcme,a\n\nGlobex,b\n"), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	e := engine.New(testutil.NewStore(t), engine.WithClock(testutil.NewStepClock(time.Second)))
	result, err := e.Merge(context.Background(), rows, engine.MergeOptions{Source: "meetings.csv"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "Globex", result.Records[1].Client)
	assert.Equal(t, int64(3), result.Records[1].GlobalOrder)
	assert.Equal(t, int64(3), result.Records[1].ClientFirstAppearance)
}

func TestReadCSV_HeaderMatching(t *testing.T) {
	src := "\xef\xbb\xbf  client ,NOTES,actions,Actions\nAcme,ignored,first,second\n"

	rows, err := ReadCSV(strings.NewReader(src), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Client)
	assert.Equal(t, "first", rows[0].Actions, "leftmost duplicate column wins")
}

func TestReadCSV_CustomClientColumn(t *testing.T) {
	src := "Customer,Actions\nAcme,call\n"

	rows, err := ReadCSV(strings.NewReader(src), Options{ClientColumn: "Customer"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Client)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "empty file"},
		{"no client column", "Actions,Address\ncall,HQ\n", `missing "Client" column`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.src), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func workbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadXLSX_FirstSheet(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]any{
		{"Client", "Actions", "Next Meeting"},
		{"Acme", "Send deck", "Monday"},
		{"nan", "", ""},
		{"Globex", "Review", ""},
	})

	rows, err := ReadXLSX(buf, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Acme", rows[0].Client)
	assert.Equal(t, "Monday", rows[0].NextMeeting)
	assert.Equal(t, "nan", rows[1].Client, "placeholders are left for Merge to skip")
	assert.Equal(t, "Review", rows[2].Actions)
}

func TestReadXLSX_NamedSheet(t *testing.T) {
	buf := workbook(t, "March", [][]any{
		{"Client", "Address"},
		{"Initech", "Austin"},
	})

	rows, err := ReadXLSX(buf, Options{Sheet: "March"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Austin", rows[0].Address)

	_, err = ReadXLSX(workbook(t, "March", nil), Options{Sheet: "April"})
	require.Error(t, err)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("Client\nAcme\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestReadYAML(t *testing.T) {
	src := `
- client: Acme
  actions: Send the revised quote
  next_meeting: Friday
- client: ""
- client: Globex
  meeting_date: "2024-12-02"
`
	rows, err := ReadYAML(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []engine.Row{
		{Client: "Acme", Content: record.Content{Actions: "Send the revised quote", NextMeeting: "Friday"}},
		{},
		{Client: "Globex", Content: record.Content{MeetingDate: "2024-12-02"}},
	}, rows)
}

func TestReadYAML_UnknownField(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("- client: Acme\n  agenda: lunch\n"))
	require.Error(t, err)
}

func TestReadYAML_Empty(t *testing.T) {
	rows, err := ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRead_DispatchesOnExtension(t *testing.T) {
	rows, err := Read("batch.CSV", strings.NewReader("Client\nAcme\n"), Options{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = Read("batch.yml", strings.NewReader("- client: Acme\n"), Options{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = Read("batch.pdf", strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
