package roster

import (
	"bytes"
	"inzetbooster/lib/timezone"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestPersonIsValid(t *testing.T) {
	cases := []struct {
		person Person
		valid  bool
	}{
		{Person{ID: "PN1", Firstname: "Jane", Surname: "Doe", Email: "jane@example.com"}, true},
		{Person{ID: "PN2", Surname: "Doe", Email: "jane@example.com"}, false},
		{Person{ID: "PN3", Firstname: "Jane", Email: "jane@example.com"}, false},
		{Person{ID: "PN4", Firstname: "Jane", Surname: "Doe"}, false},
	}
	for _, test := range cases {
		require.Equal(t, test.valid, test.person.IsValid(), test.person.ID)
	}
}

func TestPersonIsManegeplanUser(t *testing.T) {
	require.True(t, Person{ID: "PRS100"}.IsManegeplanUser(""))
	require.False(t, Person{ID: "48213"}.IsManegeplanUser(""))
	require.True(t, Person{ID: "MP-7"}.IsManegeplanUser("MP-"))
}

func TestPersonFullName(t *testing.T) {
	require.Equal(t, "Alice in Chains", Person{Firstname: "Alice", Preposition: "in", Surname: "Chains"}.FullName())
	require.Equal(t, "Madonna", Person{Firstname: "Madonna"}.FullName())
}

const personExport = `Gebruiker_id,Voornaam,Tussen,Achternaam,Email,Gebruikersnaam,Vrijgesteld,Actief_datum,Inactief_datum,Rol,Opmerkingen,Laatst_ingelogd,Groepen
PRS100,Alice,in,Chains,alice@rock.me,alice,false,2023-09-01,,Vrijwilliger,,2024-01-12 20:15,Bar
48213,Bob,,Builder,bob@example.com,,true,,2024-02-01,Beheerder,sleutelhouder,,
`

func ptr[T any](v T) *T {
	return &v
}

func TestParsePersons(t *testing.T) {
	persons, err := ParsePersons(strings.NewReader(personExport))
	require.NoError(t, err)

	expect := []Person{
		{
			ID:          "PRS100",
			Firstname:   "Alice",
			Preposition: "in",
			Surname:     "Chains",
			Email:       "alice@rock.me",
			Username:    "alice",
			Exempt:      ptr(false),
			ActiveFrom:  ptr(time.Date(2023, time.September, 1, 0, 0, 0, 0, timezone.Location)),
			Role:        "Vrijwilliger",
			LastLogin:   ptr(time.Date(2024, time.January, 12, 20, 15, 0, 0, timezone.Location)),
		},
		{
			ID:           "48213",
			Firstname:    "Bob",
			Surname:      "Builder",
			Email:        "bob@example.com",
			Exempt:       ptr(true),
			InactiveFrom: ptr(time.Date(2024, time.February, 1, 0, 0, 0, 0, timezone.Location)),
			Role:         "Beheerder",
			Remarks:      "sleutelhouder",
		},
	}
	if diff := cmp.Diff(expect, persons); diff != "" {
		t.Fatalf("persons mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePersonsBadExempt(t *testing.T) {
	_, err := ParsePersons(strings.NewReader(`Gebruiker_id,Voornaam,Tussen,Achternaam,Email,Vrijgesteld
1,A,,B,a@b.c,yes
`))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "Vrijgesteld", parseErr.Column)
	require.Equal(t, 2, parseErr.Line)
}

func TestPersonExportHeader(t *testing.T) {
	header, _, _ := strings.Cut(personExport, "\n")
	require.Equal(t, strings.Join(PersonColumns, ","), header)
}

func TestParsePersonsTruncatedRow(t *testing.T) {
	_, err := ParsePersons(strings.NewReader(strings.Join(PersonColumns, ",") + `
PRS100,Alice,in,Chains,alice@rock.me
`))
	require.ErrorIs(t, err, ErrTruncatedRow)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 2, parseErr.Line)
	require.Equal(t, "Gebruikersnaam", parseErr.Column)
}

func TestParsePersonsOptionalColumnsAbsent(t *testing.T) {
	persons, err := ParsePersons(strings.NewReader(`Gebruiker_id,Voornaam,Tussen,Achternaam,Email
PRS100,Alice,in,Chains,alice@rock.me
`))
	require.NoError(t, err)
	require.Len(t, persons, 1)
	require.Empty(t, persons[0].Username)
	require.Empty(t, persons[0].Remarks)
}

func TestWriteUpload(t *testing.T) {
	var out bytes.Buffer
	err := WriteUpload(&out, []Person{
		{ID: "PRS100", Firstname: "Alice", Preposition: "in", Surname: "Chains", Email: "alice@rock.me"},
		{
			ID:           "48213",
			Firstname:    "Bob",
			Surname:      "Builder",
			Email:        "bob@example.com",
			InactiveFrom: ptr(time.Date(2024, time.February, 1, 0, 0, 0, 0, timezone.Location)),
		},
	})
	require.NoError(t, err)
	require.Equal(t, `Gebruiker_id,Voornaam,Tussen,Achternaam,Email,Inactief_datum
PRS100,Alice,in,Chains,alice@rock.me,
48213,Bob,,Builder,bob@example.com,2024-02-01
`, out.String())
}
