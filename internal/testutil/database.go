// Package testutil provides shared test fixtures: a migrated in-memory
// contact database and a fluent builder for realistic prospects.
package testutil

import (
	"context"
	"testing"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
)

// TestDB is a migrated in-memory contact database with its seeded prospects.
type TestDB struct {
	Storage   *storage.SQLiteStorage
	t         *testing.T
	Prospects []model.Prospect
}

// TestDBOptions configures SetupTestDBWithOptions.
type TestDBOptions struct {
	Clock          common.Clock
	CustomSetup    func(context.Context, service.ContactStore) error
	Prospects      []model.Prospect
	SkipMigrations bool
}

// SetupTestDB creates a migrated in-memory database seeded with prospects.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewProspectBuilder(t).
//			WithFixture(testutil.FixtureHealthcare).
//			Build(),
//	)
func SetupTestDB(t *testing.T, prospects []model.Prospect) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Prospects: prospects})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryDSN, opts.Clock)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Prospects) > 0 {
		if _, err := store.SaveContacts(ctx, opts.Prospects); err != nil {
			t.Fatalf("failed to seed prospects: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:   store,
		Prospects: opts.Prospects,
		t:         t,
	}
}

// MustGetContact returns the stored contact for email or fails the test.
func (db *TestDB) MustGetContact(email string) model.Prospect {
	db.t.Helper()
	p, err := db.Storage.GetContact(context.Background(), email)
	if err != nil {
		db.t.Fatalf("contact %s: %v", email, err)
	}
	return *p
}
