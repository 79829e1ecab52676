package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"inzetbooster/lib/timezone"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseError points at the exported row and column that could not be read.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s (%q): %s", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingColumn = errors.New("missing column")
	ErrTruncatedRow  = errors.New("truncated row")
)

// record is one CSV row addressed by header name.
type record struct {
	line   int
	index  map[string]int
	values []string
}

func (r record) get(column string) (string, error) {
	i, ok := r.index[column]
	if !ok {
		return "", &ParseError{Line: r.line, Column: column, Err: ErrMissingColumn}
	}
	if i >= len(r.values) {
		return "", &ParseError{Line: r.line, Column: column, Err: fmt.Errorf("%w: row has %d fields, header has %d", ErrTruncatedRow, len(r.values), len(r.index))}
	}
	return r.values[i], nil
}

func (r record) fail(column, value string, err error) error {
	return &ParseError{Line: r.line, Column: column, Value: value, Err: err}
}

func (r record) integer(column string) (int, error) {
	value, err := r.get(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, r.fail(column, value, err)
	}
	return n, nil
}

func (r record) optional(column string) (string, error) {
	value, err := r.get(column)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// timestamp parses layout in the roster's time zone, an empty cell is nil.
func (r record) timestamp(column, layout string) (*time.Time, error) {
	value, err := r.optional(column)
	if err != nil || value == "" {
		return nil, err
	}
	t, err := time.ParseInLocation(layout, value, timezone.Location)
	if err != nil {
		return nil, r.fail(column, value, err)
	}
	return &t, nil
}

func (r record) required(column, layout string) (time.Time, error) {
	t, err := r.timestamp(column, layout)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, r.fail(column, "", errors.New("value is required"))
	}
	return *t, nil
}

// readRecords reads a header row followed by data rows, calling fn for each.
func readRecords(in io.Reader, required []string, fn func(record) error) error {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &ParseError{Line: 1, Err: errors.New("empty export, no header row")}
	}
	if err != nil {
		return err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		// excel likes to prepend a BOM to the first cell
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		index[name] = i
	}
	for _, column := range required {
		if _, ok := index[column]; !ok {
			return &ParseError{Line: 1, Column: column, Err: ErrMissingColumn}
		}
	}

	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := reader.FieldPos(0)
		err = fn(record{line: line, index: index, values: values})
		if err != nil {
			return err
		}
	}
}
