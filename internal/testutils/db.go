package testutils

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/db"
	"github.com/faithinsite/core/internal/repo"
)

var TestDB = config.Database{
	Host: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "localhost",
	},
	User: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "postgres",
	},
	Secret: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "secret",
	},
	Name: "fi",
	Port: "5433",
}

type TestDBConfigOpt func(*TestDBConfig)

type TestDBConfig struct {
	dbCon config.Database

	// If true create a dedicated database for the test instead of sharing
	// the default one
	CreateDatabase bool

	// Tables that the test should contain. Defaults to every persisted model.
	Models []any
}

func WithDatabase(db config.Database) TestDBConfigOpt {
	return func(c *TestDBConfig) {
		c.dbCon = db
	}
}

// NewTestDB sets up a test database connection with migrated tables.
// By default it uses the TestDB configuration and truncates the tables so
// every test starts from an empty state. Use opts to customize the setup.
// This function is intended for use in unit tests.
func NewTestDB(tb testing.TB, cfg TestDBConfig, opts ...TestDBConfigOpt) *gorm.DB {
	tb.Helper()

	cfg.dbCon = TestDB
	for _, o := range opts {
		o(&cfg)
	}

	con := newTestDBCon(tb, cfg)

	tb.Cleanup(func() {
		sqlDB, _ := con.DB()
		sqlDB.Close()
	})

	if len(cfg.Models) == 0 {
		cfg.Models = db.Models()
	}

	require.NoError(tb, con.AutoMigrate(cfg.Models...))

	// Children before parents so foreign keys never block the truncation.
	for i := len(cfg.Models) - 1; i >= 0; i-- {
		stmt := &gorm.Statement{DB: con}
		require.NoError(tb, stmt.Parse(cfg.Models[i]))
		require.NoError(tb, con.Exec(fmt.Sprintf("DELETE FROM %s;", stmt.Schema.Table)).Error)
	}

	return con
}

func CreateTestEntities(ctx context.Context, tb testing.TB, r repo.Repo, scope repo.Scope, entities ...repo.Resource) {
	tb.Helper()

	for _, e := range entities {
		err := r.Create(ctx, scope, e)
		assert.NoError(tb, err)
	}
}

func DeleteTestEntities(ctx context.Context, tb testing.TB, r repo.Repo, scope repo.Scope, entities ...repo.Resource) {
	tb.Helper()

	for _, e := range entities {
		_, err := r.Delete(ctx, scope, e, *repo.NewQuery())
		assert.NoError(tb, err)
	}
}

const MaxPSQLNameLen = 64

// tb.Name() returns following format TESTA/SUBTESTB
// Postgres does not support database names with "/" character and has max len 63 char
func processNameForDB(n string) string {
	name := strings.ToLower(n)
	name = strings.ReplaceAll(name, "/", "_")

	name = regexp.MustCompile(`[^a-z0-9_]+`).ReplaceAllString(name, "")
	if len(name) >= MaxPSQLNameLen {
		name = name[:MaxPSQLNameLen-1]
	}

	return name
}

// NewIsolatedDB recreates a database named after the test on the given
// instance and returns a config pointing at it. Tests that drive goose
// themselves use this so version tables never leak between tests.
func NewIsolatedDB(tb testing.TB, instance config.Database) config.Database {
	tb.Helper()

	con, err := db.StartDBConnection(
		context.Background(),
		instance,
		[]config.Database{},
	)
	assert.NoError(tb, err)

	defer func() {
		sqlDB, _ := con.DB()
		sqlDB.Close()
	}()

	name := processNameForDB(tb.Name())

	err = con.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s;", name)).Error
	assert.NoError(tb, err)
	err = con.Exec(fmt.Sprintf("CREATE DATABASE %s;", name)).Error
	assert.NoError(tb, err)

	instance.Name = name

	return instance
}

// newTestDBCon gets a PostgreSQL instance for the tests
// If cfg.CreateDatabase recreate a database named after the test
//
// This is intended for internal use. In most cases please use NewTestDB
// to setup a db for unit tests
func newTestDBCon(tb testing.TB, cfg TestDBConfig) *gorm.DB {
	tb.Helper()

	con, err := db.StartDBConnection(
		context.Background(),
		cfg.dbCon,
		[]config.Database{},
	)
	assert.NoError(tb, err)

	if !cfg.CreateDatabase {
		return con
	}

	name := processNameForDB(tb.Name())

	// No need to t.CleanUp as it only throws error on db error
	err = con.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s;", name)).Error
	assert.NoError(tb, err)
	err = con.Exec(fmt.Sprintf("CREATE DATABASE %s;", name)).Error
	assert.NoError(tb, err)

	cfg.dbCon.Name = name

	con, err = db.StartDBConnection(
		context.Background(),
		cfg.dbCon,
		[]config.Database{},
	)
	assert.NoError(tb, err)

	return con
}
