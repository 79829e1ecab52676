package usersync

import (
	"context"
	"errors"
	"inzetbooster/lib/roster"
	"inzetbooster/lib/timezone"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, timezone.Location)
	return &d
}

var (
	alice = roster.Person{ID: "PRS100", Firstname: "Alice", Surname: "in Chains", Email: "alice@example.com"}
	bob   = roster.Person{ID: "PRS101", Firstname: "Bob", Surname: "Dylan", Email: "bob@example.com"}
	carol = roster.Person{ID: "PRS102", Firstname: "Carol", Preposition: "van", Surname: "Dijk", Email: "carol@example.com"}
	// created by hand in the roster service
	dirk = roster.Person{ID: "3120", Firstname: "Dirk", Surname: "Beheer", Email: "dirk@example.com"}
	// left last year
	erik = roster.Person{ID: "PRS090", Firstname: "Erik", Surname: "Oud", Email: "erik@example.com", InactiveFrom: date(2023, time.March, 1)}
)

func syncer() Syncer {
	return Syncer{
		Today: func() time.Time { return *date(2024, time.June, 1) },
	}
}

func TestPlan(t *testing.T) {
	existing := []roster.Person{alice, bob, dirk, erik}
	carolTwin := roster.Person{ID: "PRS104", Firstname: "Carol", Surname: "van Dijk", Email: "c.vandijk@example.com"}
	invalid := roster.Person{ID: "PRS105", Firstname: "Nameless", Email: "x@example.com"}
	// back in the member export after leaving
	erikBack := erik
	erikBack.InactiveFrom = nil
	incoming := []roster.Person{alice, carol, erikBack, invalid}

	plan := syncer().Plan(existing, incoming)

	expect := Plan{
		Upload:      []roster.Person{alice, carol, erikBack, dirk},
		Added:       []roster.Person{carol, erikBack},
		Removed:     []roster.Person{bob},
		Reactivated: []roster.Person{dirk},
		Invalid:     []roster.Person{invalid},
	}
	if diff := cmp.Diff(expect, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	require.False(t, plan.IsNoop())

	plan = syncer().Plan([]roster.Person{carol}, []roster.Person{carolTwin})
	require.Len(t, plan.Duplicates, 1)
	require.Equal(t, carol, plan.Duplicates[0].Existing)
	require.Equal(t, carolTwin, plan.Duplicates[0].Incoming)
	require.GreaterOrEqual(t, plan.Duplicates[0].Similarity, DuplicateThreshold)
}

func TestPlanNoop(t *testing.T) {
	plan := syncer().Plan(
		[]roster.Person{alice, bob, dirk},
		[]roster.Person{bob, alice, alice},
	)
	require.True(t, plan.IsNoop())
	require.Equal(t, []roster.Person{bob, alice, dirk}, plan.Upload)
	require.Empty(t, plan.Duplicates)
}

func TestPlanCustomPrefix(t *testing.T) {
	s := syncer()
	s.Prefix = "MP"
	mp := roster.Person{ID: "MP1", Firstname: "Mia", Surname: "Paard", Email: "mia@example.com"}

	plan := s.Plan([]roster.Person{mp, alice}, nil)
	require.Equal(t, []roster.Person{mp}, plan.Removed)
	require.Equal(t, []roster.Person{alice}, plan.Reactivated)
}

type fakeRemote struct {
	calls     []string
	uploaded  string
	importErr error
}

func (f *fakeRemote) MakeAllUsersInactive(context.Context) error {
	f.calls = append(f.calls, "inactive")
	return nil
}

func (f *fakeRemote) ImportUsers(_ context.Context, csv []byte) error {
	f.calls = append(f.calls, "import")
	f.uploaded = string(csv)
	return f.importErr
}

func TestApply(t *testing.T) {
	remote := &fakeRemote{}
	plan := syncer().Plan([]roster.Person{alice, dirk}, []roster.Person{alice, carol})

	err := syncer().Apply(context.Background(), remote, plan)
	require.NoError(t, err)
	require.Equal(t, []string{"inactive", "import"}, remote.calls)

	lines := strings.Split(strings.TrimSpace(remote.uploaded), "\n")
	require.Equal(t, []string{
		"Gebruiker_id,Voornaam,Tussen,Achternaam,Email,Inactief_datum",
		"PRS100,Alice,,in Chains,alice@example.com,",
		"PRS102,Carol,van,Dijk,carol@example.com,",
		"3120,Dirk,,Beheer,dirk@example.com,",
	}, lines)
}

func TestApplyNoop(t *testing.T) {
	remote := &fakeRemote{}
	plan := syncer().Plan([]roster.Person{alice}, []roster.Person{alice})

	err := syncer().Apply(context.Background(), remote, plan)
	require.NoError(t, err)
	require.Empty(t, remote.calls)
}

func TestApplyImportFailure(t *testing.T) {
	boom := errors.New("boom")
	remote := &fakeRemote{importErr: boom}
	plan := syncer().Plan(nil, []roster.Person{alice})

	err := syncer().Apply(context.Background(), remote, plan)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"inactive", "import"}, remote.calls)
}
