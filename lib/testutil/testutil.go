package testutil

import (
	"database/sql"
	"fmt"
	configlibsql "inzetbooster/lib/configutil/libsql"
	"inzetbooster/lib/telemetry"
	"testing"
)

// Setup prepares logging and telemetry for the tests of one package.
func Setup(t testing.TB, name string) {
	t.Cleanup(telemetry.SetupForTesting(fmt.Sprintf("test:%s", name)))
}

// OpenDB returns a fresh in-memory sqlite database that is closed when
// the test ends.
func OpenDB(t testing.TB, name string) *sql.DB {
	Setup(t, name)

	db, err := configlibsql.Struct{File: ":memory:"}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
