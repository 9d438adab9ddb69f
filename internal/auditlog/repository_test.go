package auditlog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestRepository_Create(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	entry := &AuditLog{
		RequestID: "req-1",
		EventID:   "evt-1",
		Action:    "EVENT_CREATED",
		Details:   datatypes.JSON(`{"op":"create"}`),
		IPAddress: "10.0.0.1",
		Status:    StatusSuccess,
		Attempts:  1,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, uint(7), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByFilter(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "audit_logs" WHERE event_id = $1 AND status = $2`)).
		WithArgs("evt-1", StatusFailure).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_logs" WHERE event_id = $1 AND status = $2 ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "event_id", "action", "details", "ip_address", "status", "attempts", "created_at"}).
			AddRow(3, "req-3", "evt-1", "EVENT_UPDATED", []byte(`{"error":"document not found"}`), "", StatusFailure, 1, now))

	logs, total, err := repo.GetByFilter(context.Background(), AuditLogFilter{EventID: "evt-1", Status: StatusFailure})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "EVENT_UPDATED", logs[0].Action)
	assert.JSONEq(t, `{"error":"document not found"}`, string(logs[0].Details))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_logs" WHERE "audit_logs"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "status"}).AddRow(9, "EVENT_DELETED", StatusSuccess))

	entry, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, uint(9), entry.ID)
	assert.Equal(t, "EVENT_DELETED", entry.Action)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.GetByID(context.Background(), 10)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
