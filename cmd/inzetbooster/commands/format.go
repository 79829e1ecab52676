package commands

import (
	"fmt"
	"inzetbooster/lib/timezone"
	"time"
)

const (
	formatCSV   = "csv"
	formatTable = "table"
)

func checkFormat(format string) error {
	switch format {
	case formatCSV, formatTable:
		return nil
	}
	return fmt.Errorf("unknown format %q, expected csv or table", format)
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.ParseInLocation("2006-01-02", value, timezone.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return date, nil
}

func formatDate(date *time.Time, layout string) string {
	if date == nil {
		return ""
	}
	return date.Format(layout)
}
