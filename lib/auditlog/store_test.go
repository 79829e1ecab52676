package auditlog

import (
	"context"
	configlibsql "inzetbooster/lib/configutil/libsql"
	"inzetbooster/lib/testutil"
	"inzetbooster/lib/timezone"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) Store {
	store, err := Open(context.Background(), testutil.OpenDB(t, "auditlog"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestNotificationLog(t *testing.T) {
	store := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	notified, err := store.WasNotified(ctx, 145, "bar-shift", "alice@example.com")
	require.NoError(t, err)
	require.False(t, notified)

	err = store.RecordNotification(ctx, 145, "bar-shift", "alice@example.com", "msgid")
	require.NoError(t, err)

	notified, err = store.WasNotified(ctx, 145, "bar-shift", "alice@example.com")
	require.NoError(t, err)
	require.True(t, notified)

	notified, err = store.WasNotified(ctx, 146, "bar-shift", "alice@example.com")
	require.NoError(t, err)
	require.False(t, notified)

	notified, err = store.WasNotified(ctx, 145, "shift-cancelled", "alice@example.com")
	require.NoError(t, err)
	require.False(t, notified)

	notified, err = store.WasNotified(ctx, 145, "bar-shift", "bob@example.com")
	require.NoError(t, err)
	require.False(t, notified)
}

func TestSurvivesReopen(t *testing.T) {
	testutil.Setup(t, "auditlog")
	ctx := context.Background()
	source := configlibsql.Struct{File: filepath.Join(t.TempDir(), "audit", "inzetbooster.db")}

	database, err := source.OpenDB()
	require.NoError(t, err)
	first, err := Open(ctx, database)
	require.NoError(t, err)
	require.NoError(t, first.RecordNotification(ctx, 1, "shift-10736", "alice@example.com", "<a@b>"))
	require.NoError(t, database.Close())

	database, err = source.OpenDB()
	require.NoError(t, err)
	defer database.Close()
	second, err := Open(ctx, database)
	require.NoError(t, err)
	notified, err := second.WasNotified(ctx, 1, "shift-10736", "alice@example.com")
	require.NoError(t, err)
	require.True(t, notified)
}

func TestList(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	clock := time.Date(2024, time.January, 13, 12, 0, 0, 0, timezone.Location)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.RecordNotification(ctx, 1, "shift-10736", "alice@example.com", "<1@example.com>"))
	clock = clock.Add(time.Minute)
	require.NoError(t, store.RecordNotification(ctx, 2, "shift-12079", "bob@example.com", "<2@example.com>"))

	entries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, entries[0].ShiftID)
	require.Equal(t, "bob@example.com", entries[0].Email)
	require.Equal(t, "<2@example.com>", entries[0].MessageID)
	require.True(t, clock.Equal(entries[0].Time))
	require.Equal(t, 1, entries[1].ShiftID)

	entries, err = store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
