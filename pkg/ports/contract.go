package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	key := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(key, time.Now())
		session.Phase = domain.PhaseCollecting
		session.Step = 2
		session.Answers["size"] = "2.5m x 2m"

		err := store.Save(ctx, key, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.PhaseCollecting, loaded.Phase)
		assert.Equal(t, 2, loaded.Step)
		assert.Equal(t, "2.5m x 2m", loaded.Answers["size"])
	})

	t.Run("Isolation", func(t *testing.T) {
		session := domain.NewSession(key, time.Now())
		session.Answers["style"] = "Modern"
		require.NoError(t, store.Save(ctx, key, session))

		// Mutating the caller's copy must not leak into the store.
		session.Answers["style"] = "Classic"

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Modern", loaded.Answers["style"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, domain.NewSession(key, time.Now()))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, time.Now()))
		_ = store.Save(ctx, id2, domain.NewSession(id2, time.Now()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}

// LedgerReader is implemented by ledgers that can read their rows back.
// It is only needed by the contract suite.
type LedgerReader interface {
	Ledger
	Rows(ctx context.Context) ([][]string, error)
}

// RunLedgerContract verifies that appended rows are kept in order and
// column-for-column.
func RunLedgerContract(t *testing.T, ledger LedgerReader) {
	ctx := context.Background()

	t.Run("Append Preserves Columns", func(t *testing.T) {
		row := []string{"2026-01-02 15:04", "Ann", "@ann", "42", "3m x 2m", "Modern", "MDF", "none"}
		require.NoError(t, ledger.AppendRow(ctx, row))

		rows, err := ledger.Rows(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, row, rows[len(rows)-1])
	})

	t.Run("Append Is Ordered", func(t *testing.T) {
		before, err := ledger.Rows(ctx)
		require.NoError(t, err)

		require.NoError(t, ledger.AppendRow(ctx, []string{"first"}))
		require.NoError(t, ledger.AppendRow(ctx, []string{"second", ""}))

		rows, err := ledger.Rows(ctx)
		require.NoError(t, err)
		require.Len(t, rows, len(before)+2)
		assert.Equal(t, []string{"first"}, rows[len(before)])
		assert.Equal(t, []string{"second", ""}, rows[len(before)+1])
	})
}
