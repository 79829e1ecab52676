package roster

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	shiftDateLayout = "02-01-2006"
	clockLayout     = "15:04"
)

// ShiftColumns is the header of the shift CSV export, in export order.
var ShiftColumns = []string{
	"Dienst_id",
	"Groep_id",
	"Groep_naam",
	"Datum",
	"Dag",
	"Starttijd",
	"Eindtijd",
	"Tijdsduur",
	"Gebruiker_id",
	"Naam",
	"Email",
	"Telefoon",
	"Locatie_id",
	"Locatie_naam",
	"Afwezig",
	"Geannuleerd",
	"Starred",
	"Opmerkingen",
}

var shiftRequiredColumns = []string{
	"Dienst_id",
	"Groep_id",
	"Groep_naam",
	"Datum",
	"Starttijd",
	"Eindtijd",
	"Gebruiker_id",
	"Naam",
	"Email",
	"Opmerkingen",
}

type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the moment this time of day falls on date.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

type Shift struct {
	ID        int
	GroupID   int
	GroupName string
	// midnight of the shift day in timezone.Location
	Date     time.Time
	Start    TimeOfDay
	End      TimeOfDay
	Comments string

	// empty when the shift is not covered
	UserID    string
	UserName  string
	UserEmail string
}

func (s Shift) IsCovered() bool {
	return s.UserID != ""
}

func (r record) clock(column string) (TimeOfDay, error) {
	t, err := r.required(column, clockLayout)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func shiftFromRecord(r record) (Shift, error) {
	var s Shift
	var err error

	if s.ID, err = r.integer("Dienst_id"); err != nil {
		return Shift{}, err
	}
	if s.GroupID, err = r.integer("Groep_id"); err != nil {
		return Shift{}, err
	}
	if s.GroupName, err = r.get("Groep_naam"); err != nil {
		return Shift{}, err
	}
	if s.Date, err = r.required("Datum", shiftDateLayout); err != nil {
		return Shift{}, err
	}
	if s.Start, err = r.clock("Starttijd"); err != nil {
		return Shift{}, err
	}
	if s.End, err = r.clock("Eindtijd"); err != nil {
		return Shift{}, err
	}
	if s.UserID, err = r.optional("Gebruiker_id"); err != nil {
		return Shift{}, err
	}
	if s.UserName, err = r.optional("Naam"); err != nil {
		return Shift{}, err
	}
	if s.UserEmail, err = r.optional("Email"); err != nil {
		return Shift{}, err
	}
	if s.Comments, err = r.get("Opmerkingen"); err != nil {
		return Shift{}, err
	}
	return s, nil
}

// ParseShifts reads a shift CSV export, one Shift per row in export order.
func ParseShifts(in io.Reader) ([]Shift, error) {
	var shifts []Shift
	err := readRecords(in, shiftRequiredColumns, func(r record) error {
		s, err := shiftFromRecord(r)
		if err != nil {
			return err
		}
		shifts = append(shifts, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func ParseShiftsString(in string) ([]Shift, error) {
	return ParseShifts(strings.NewReader(in))
}
