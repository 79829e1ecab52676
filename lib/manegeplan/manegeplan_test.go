package manegeplan

import (
	"bytes"
	"inzetbooster/lib/roster"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t testing.TB, rows [][]any) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var exportRows = [][]any{
	{"Gebruiker_id", "Voornaam", "Tussen", "Achternaam", "Email", "", ""},
	{"PRS100", "Alice", "in", "Chains", "alice@rock.me"},
	{},
	{"PRS103", "Madonna", nil, nil, "madonna", "stray value"},
	{},
}

var expectPersons = []roster.Person{
	{ID: "PRS100", Firstname: "Alice", Preposition: "in", Surname: "Chains", Email: "alice@rock.me"},
	{ID: "PRS103", Firstname: "Madonna", Email: "madonna"},
}

func TestReadExport(t *testing.T) {
	persons, err := ReadExport(writeWorkbook(t, exportRows))
	require.NoError(t, err)
	if diff := cmp.Diff(expectPersons, persons); diff != "" {
		t.Fatalf("persons mismatch (-want +got):\n%s", diff)
	}
	require.True(t, persons[0].IsValid())
	require.False(t, persons[1].IsValid())
}

func TestReadExportFile(t *testing.T) {
	buf := writeWorkbook(t, exportRows)
	path := filepath.Join(t.TempDir(), "manegeplan-export.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	persons, err := ReadExportFile(path)
	require.NoError(t, err)
	require.Len(t, persons, 2)
}

func TestReadExportMissingColumn(t *testing.T) {
	_, err := ReadExport(writeWorkbook(t, [][]any{
		{"Gebruiker_id", "Voornaam", "Achternaam", "Email"},
		{"PRS1", "A", "B", "c@d.e"},
	}))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 1, parseErr.Row)
	require.Contains(t, err.Error(), "Tussen")
}

func TestParseRowsTrailingCellsOnly(t *testing.T) {
	persons, err := parseRows([][]string{
		{"Gebruiker_id", "Voornaam", "Tussen", "Achternaam", "Email"},
		{"PRS100", "Alice", "in", "Chains", "alice@rock.me"},
		{"", "", "", "", "", "", "leftover note"},
		{"", "", ""},
	})
	require.NoError(t, err)
	require.Len(t, persons, 2)
	require.Equal(t, roster.Person{}, persons[1])
	require.False(t, persons[1].IsValid())
}

func TestParseRowsEmpty(t *testing.T) {
	_, err := parseRows(nil)
	require.Error(t, err)
}
