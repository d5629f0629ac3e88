package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mockDialector(t *testing.T, dbs map[string]*sql.DB) func(dsn string) gorm.Dialector {
	return func(dsn string) gorm.Dialector {
		conn, ok := dbs[dsn]
		require.True(t, ok, "unexpected dsn %s", dsn)
		return postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"})
	}
}

func TestPostgresOpener_DSN(t *testing.T) {
	o := NewPostgresOpener("postgres://crm:secret@db:5432/ignored?sslmode=disable", false, PoolConfig{}, nil)

	dsn, err := o.DSN("salon_crm_biz0001")
	require.NoError(t, err)
	assert.Equal(t, "postgres://crm:secret@db:5432/salon_crm_biz0001?sslmode=disable", dsn)

	_, err = NewPostgresOpener("mysql://db/x", false, PoolConfig{}, nil).DSN("x")
	assert.Error(t, err)
}

func TestPostgresOpener_CreatesMissingDatabase(t *testing.T) {
	adminDB, adminMock, err := sqlmock.New()
	require.NoError(t, err)
	storeDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer storeDB.Close()

	base := "postgres://crm@db:5432/"
	o := NewPostgresOpener(base, true, PoolConfig{MaxOpenConns: 5, MaxIdleConns: 2}, nil)
	o.Dialector = mockDialector(t, map[string]*sql.DB{
		"postgres://crm@db:5432/postgres":          adminDB,
		"postgres://crm@db:5432/salon_crm_biz0001": storeDB,
	})

	adminMock.ExpectQuery(`SELECT count\(\*\) FROM pg_database WHERE datname = \$1`).
		WithArgs("salon_crm_biz0001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	adminMock.ExpectExec(`CREATE DATABASE "salon_crm_biz0001"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	db, err := o.Open(context.Background(), "salon_crm_biz0001")
	require.NoError(t, err)
	assert.NotNil(t, db)

	adminMock.ExpectClose()
	require.NoError(t, o.Close())
	assert.NoError(t, adminMock.ExpectationsWereMet())
}

func TestPostgresOpener_ExistingDatabase(t *testing.T) {
	adminDB, adminMock, err := sqlmock.New()
	require.NoError(t, err)
	defer adminDB.Close()
	storeDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer storeDB.Close()

	o := NewPostgresOpener("postgres://db/", true, PoolConfig{}, nil)
	o.Dialector = mockDialector(t, map[string]*sql.DB{
		"postgres://db/postgres":       adminDB,
		"postgres://db/salon_crm_main": storeDB,
	})

	adminMock.ExpectQuery(`SELECT count\(\*\) FROM pg_database`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err = o.Open(context.Background(), "salon_crm_main")
	require.NoError(t, err)
	assert.NoError(t, adminMock.ExpectationsWereMet())
}

func TestPostgresOpener_PingFailure(t *testing.T) {
	storeDB, storeMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	noAutoPing := func(string) *gorm.Config { return &gorm.Config{DisableAutomaticPing: true} }
	o := NewPostgresOpener("postgres://db/", false, PoolConfig{}, noAutoPing)
	o.Dialector = mockDialector(t, map[string]*sql.DB{"postgres://db/salon_crm_main": storeDB})

	storeMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	storeMock.ExpectClose()

	_, err = o.Open(context.Background(), "salon_crm_main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
	assert.NoError(t, storeMock.ExpectationsWereMet())
}
