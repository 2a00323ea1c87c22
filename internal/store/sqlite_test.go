package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIR-hl/syncpilot/internal/logger"
)

func newMockSQLiteKV(t *testing.T) (*sqliteKeyValue, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &sqliteKeyValue{db: db, log: logger.Nop()}, mock
}

func TestSQLiteKeyValue_Get_MissingKey(t *testing.T) {
	kv, mock := newMockSQLiteKV(t)

	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs("absent").
		WillReturnError(sql.ErrNoRows)

	v, err := kv.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteKeyValue_Get_ReturnsValue(t *testing.T) {
	kv, mock := newMockSQLiteKV(t)

	rows := sqlmock.NewRows([]string{"value"}).AddRow(`{"x":true}`)
	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs("k").
		WillReturnRows(rows)

	v, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":true}`, string(v))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteKeyValue_Set_Upserts(t *testing.T) {
	kv, mock := newMockSQLiteKV(t)

	mock.ExpectExec("INSERT INTO kv").
		WithArgs("k", `{"x":1}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := kv.Set(context.Background(), "k", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
