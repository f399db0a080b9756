package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func openTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_AppendFetchMarkSent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, j.Append(ctx, &entity.AuditLog{
		ID:       uuid.New(),
		Action:   entity.AuditSaleCompleted,
		UserID:   &userID,
		Username: "cashier1",
		Details:  datatypes.JSONMap{"billNumber": "INV-2026-0001", "itemCount": 3},
	}))
	require.NoError(t, j.Append(ctx, &entity.AuditLog{ID: uuid.New(), Action: entity.AuditProductAdded}))

	pending, err := j.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, entity.AuditSaleCompleted, pending[0].Entry.Action)
	assert.Equal(t, "INV-2026-0001", pending[0].Entry.Details["billNumber"])
	assert.Equal(t, &userID, pending[0].Entry.UserID)

	require.NoError(t, j.MarkSent(ctx, pending[0].ID))

	pending, err = j.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entity.AuditProductAdded, pending[0].Entry.Action)

	n, err := j.PendingCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestJournal_FetchPendingRespectsLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, &entity.AuditLog{ID: uuid.New(), Action: entity.AuditCustomerAdded}))
	}

	pending, err := j.FetchPending(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
	assert.Less(t, pending[0].ID, pending[1].ID)
}

func TestJournal_UndecodableRowIsQuarantined(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, &entity.AuditLog{ID: uuid.New(), Action: entity.AuditProductAdded}))
	_, err := j.db.ExecContext(ctx, `INSERT INTO audit_journal (payload) VALUES (?)`, "{not json")
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, &entity.AuditLog{ID: uuid.New(), Action: entity.AuditCustomerAdded}))

	pending, err := j.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, entity.AuditProductAdded, pending[0].Entry.Action)
	assert.Equal(t, entity.AuditCustomerAdded, pending[1].Entry.Action)

	quarantined, err := j.QuarantinedCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, quarantined)

	n, err := j.PendingCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestOpen_CreatesMissingDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool", "nested", "audit.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(context.Background(), &entity.AuditLog{ID: uuid.New(), Action: entity.AuditProductAdded}))
	assert.FileExists(t, path)
}
