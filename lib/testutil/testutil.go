package testutil

import (
	"context"
	"database/sql"
	"testing"

	"covidtracker/lib/store"

	_ "modernc.org/sqlite"
)

// OpenMemoryDB opens a private in-memory sqlite database. It is limited
// to one connection since every connection to :memory: is its own
// database.
func OpenMemoryDB(t testing.TB) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// SetupStore returns an initialized store backed by an in-memory database.
func SetupStore(t testing.TB) *store.Store {
	s := store.NewStore(OpenMemoryDB(t))
	err := s.Init(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return s
}
