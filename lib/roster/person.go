package roster

import (
	"encoding/csv"
	"errors"
	"inzetbooster/lib/textutil"
	"io"
	"strings"
	"time"
)

const (
	personDateLayout = "2006-01-02"
	lastLoginLayout  = "2006-01-02 15:04"
	DefaultIDPrefix  = "PRS"
)

// PersonColumns is the header of the user CSV export, in export order.
var PersonColumns = []string{
	"Gebruiker_id",
	"Voornaam",
	"Tussen",
	"Achternaam",
	"Email",
	"Gebruikersnaam",
	"Vrijgesteld",
	"Actief_datum",
	"Inactief_datum",
	"Rol",
	"Opmerkingen",
	"Laatst_ingelogd",
	"Groepen",
}

// UploadColumns is the header the user import accepts.
var UploadColumns = []string{
	"Gebruiker_id",
	"Voornaam",
	"Tussen",
	"Achternaam",
	"Email",
	"Inactief_datum",
}

var personRequiredColumns = []string{
	"Gebruiker_id",
	"Voornaam",
	"Tussen",
	"Achternaam",
	"Email",
}

type Person struct {
	ID          string
	Firstname   string
	Preposition string
	Surname     string
	Email       string

	// only filled from the roster export, absent values are empty/nil
	Username     string
	Exempt       *bool
	ActiveFrom   *time.Time
	InactiveFrom *time.Time
	Role         string
	Remarks      string
	LastLogin    *time.Time
}

func (p Person) IsValid() bool {
	return p.Firstname != "" && p.Surname != "" && p.Email != ""
}

// IsManegeplanUser reports whether the account was created from the
// Manegeplan registration feed, which hands out ids starting with prefix.
func (p Person) IsManegeplanUser(prefix string) bool {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return strings.HasPrefix(p.ID, prefix)
}

func (p Person) FullName() string {
	return textutil.FullName(p.Firstname, p.Preposition, p.Surname)
}

func (r record) boolean(column string) (*bool, error) {
	value, err := r.optional(column)
	if err != nil || value == "" {
		return nil, err
	}
	switch value {
	case "true":
		b := true
		return &b, nil
	case "false":
		b := false
		return &b, nil
	}
	return nil, r.fail(column, value, errors.New(`expected "true" or "false"`))
}

// optionalColumn is like optional but tolerates exports that omit the column.
func (r record) optionalColumn(column string) (string, error) {
	if _, ok := r.index[column]; !ok {
		return "", nil
	}
	return r.optional(column)
}

func personFromRecord(r record) (Person, error) {
	var p Person
	var err error

	if p.ID, err = r.optional("Gebruiker_id"); err != nil {
		return Person{}, err
	}
	if p.Firstname, err = r.optional("Voornaam"); err != nil {
		return Person{}, err
	}
	if p.Preposition, err = r.optional("Tussen"); err != nil {
		return Person{}, err
	}
	if p.Surname, err = r.optional("Achternaam"); err != nil {
		return Person{}, err
	}
	if p.Email, err = r.optional("Email"); err != nil {
		return Person{}, err
	}

	if p.Username, err = r.optionalColumn("Gebruikersnaam"); err != nil {
		return Person{}, err
	}
	if p.Role, err = r.optionalColumn("Rol"); err != nil {
		return Person{}, err
	}
	if p.Remarks, err = r.optionalColumn("Opmerkingen"); err != nil {
		return Person{}, err
	}

	if _, ok := r.index["Vrijgesteld"]; ok {
		if p.Exempt, err = r.boolean("Vrijgesteld"); err != nil {
			return Person{}, err
		}
	}
	if _, ok := r.index["Actief_datum"]; ok {
		if p.ActiveFrom, err = r.timestamp("Actief_datum", personDateLayout); err != nil {
			return Person{}, err
		}
	}
	if _, ok := r.index["Inactief_datum"]; ok {
		if p.InactiveFrom, err = r.timestamp("Inactief_datum", personDateLayout); err != nil {
			return Person{}, err
		}
	}
	if _, ok := r.index["Laatst_ingelogd"]; ok {
		if p.LastLogin, err = r.timestamp("Laatst_ingelogd", lastLoginLayout); err != nil {
			return Person{}, err
		}
	}
	return p, nil
}

// ParsePersons reads a user CSV export.
func ParsePersons(in io.Reader) ([]Person, error) {
	var persons []Person
	err := readRecords(in, personRequiredColumns, func(r record) error {
		p, err := personFromRecord(r)
		if err != nil {
			return err
		}
		persons = append(persons, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return persons, nil
}

// WriteUpload serializes persons in the user import format.
func WriteUpload(out io.Writer, persons []Person) error {
	w := csv.NewWriter(out)
	err := w.Write(UploadColumns)
	if err != nil {
		return err
	}
	for _, p := range persons {
		inactive := ""
		if p.InactiveFrom != nil {
			inactive = p.InactiveFrom.Format(personDateLayout)
		}
		err = w.Write([]string{
			p.ID,
			p.Firstname,
			p.Preposition,
			p.Surname,
			p.Email,
			inactive,
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
