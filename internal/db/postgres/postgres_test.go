package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hybridqa/internal/db"
)

func TestOpen_RequiresURL(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

func TestPinger_Ping(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()

	gdb, err := OpenWithConn(conn)
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, NewPinger(gdb).Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = NewPinger(gdb).Ping(context.Background())
	var dbErr *db.Error
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, db.OpPing, dbErr.Op)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPinger_WaitForReadyTimeout(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()

	gdb, err := OpenWithConn(conn)
	require.NoError(t, err)

	for range 5 {
		mock.ExpectPing().WillReturnError(errors.New("down"))
	}
	err = NewPinger(gdb).WaitForReady(context.Background(), 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres not ready")
}

func TestMigrationFiles_Paired(t *testing.T) {
	names, err := MigrationFiles()
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups++
		case strings.HasSuffix(n, ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, 2, ups)
	assert.Equal(t, ups, downs)
}
