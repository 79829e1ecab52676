package configlibsql

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct points at a database, either a local sqlite file or a remote
// libsql server (libsql://, http://, https://).
type Struct struct {
	File string `json:"file"`
	// auth token for remote libsql servers, ignored for local files.
	AuthToken string `json:"auth_token"`
}

func (config Struct) IsRemote() bool {
	for _, scheme := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(config.File, scheme) {
			return true
		}
	}
	return false
}

func (config Struct) OpenDB() (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if config.IsRemote() {
		return config.openRemote()
	}
	if config.File == ":memory:" {
		return openSqlite(config.File)
	}

	dir := filepath.Dir(config.File)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(config.File)
	if os.IsNotExist(statErr) {
		f, err := os.Create(config.File)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	db, err := openSqlite(config.File)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openSqlite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	return db, nil
}

func (config Struct) openRemote() (*sql.DB, error) {
	dsn := config.File
	if config.AuthToken != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn = fmt.Sprintf("%s%sauthToken=%s", dsn, sep, config.AuthToken)
	}
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
