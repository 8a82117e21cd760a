package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateReachesExpectedVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
	assert.Len(t, migrations, ExpectedSchemaVersion)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Migrate(context.Background()))
}

func TestMigrationCreatesOverrideIndex(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	var indexCount int
	err := store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_invoices_override'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestMigrationResetsPaidOverrides(t *testing.T) {
	store, err := NewSQLiteStorage(MemoryPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Stop at version 3 so a stale pinned Paid row can exist.
	for _, m := range migrations[:3] {
		require.NoError(t, m.apply(context.Background(), store.db))
	}

	_, err = store.db.Exec(`
		INSERT INTO invoices (id, vendor, category, invoice_date, due_date, amount, importance, status, override)
		VALUES ('VEND-OLD001', 'Landlord', 'Rent', '2024-01-01 00:00:00', '2024-01-31 00:00:00', 900, 'Critical', 'Paid', 'ManualApproved')
	`)
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	var override string
	require.NoError(t, store.db.QueryRow(`SELECT override FROM invoices WHERE id = 'VEND-OLD001'`).Scan(&override))
	assert.Equal(t, "Auto", override)
}
