// Package manegeplan reads the member export of the Manegeplan registration
// system, the source of truth for who should have a roster account.
package manegeplan

import (
	"errors"
	"fmt"
	"inzetbooster/lib/roster"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var requiredLabels = []string{
	"Gebruiker_id",
	"Voornaam",
	"Tussen",
	"Achternaam",
	"Email",
}

type ParseError struct {
	Row int
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manegeplan export row %d: %s", e.Row, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func ReadExportFile(path string) ([]roster.Person, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWorkbook(f)
}

func ReadExport(in io.Reader) ([]roster.Person, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]roster.Person, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, errors.New("workbook has no active sheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRows(rows [][]string) ([]roster.Person, error) {
	if len(rows) == 0 {
		return nil, &ParseError{Row: 1, Err: errors.New("missing header row")}
	}

	header := rows[0]
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	index := make(map[string]int, len(header))
	for i, label := range header {
		index[strings.TrimSpace(label)] = i
	}
	for _, label := range requiredLabels {
		if _, ok := index[label]; !ok {
			return nil, &ParseError{Row: 1, Err: fmt.Errorf("missing column %q", label)}
		}
	}

	cell := func(cells []string, label string) string {
		i := index[label]
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	var persons []roster.Person
	for _, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		if len(cells) > len(header) {
			cells = cells[:len(header)]
		}
		persons = append(persons, roster.Person{
			ID:          cell(cells, "Gebruiker_id"),
			Firstname:   cell(cells, "Voornaam"),
			Preposition: cell(cells, "Tussen"),
			Surname:     cell(cells, "Achternaam"),
			Email:       cell(cells, "Email"),
		})
	}
	return persons, nil
}
