package tracking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"tablediff/internal/pipeline"
)

type testMySQLContainer struct {
	container *mysql.MySQLContainer
	dsn       string
}

func setupMySQL(t *testing.T) *testMySQLContainer {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := mysqlContainer.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	require.NoError(t, db.Close())

	return &testMySQLContainer{container: mysqlContainer, dsn: dsn}
}

func TestTrackerLogAndLookupIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupMySQL(t)
	ctx := context.Background()

	tracker, err := Open(ctx, tc.dsn)
	require.NoError(t, err)
	defer tracker.Close()

	_, ok, err := tracker.LastStatus(ctx, "before.csv", "after.csv")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tracker.LogComparison(ctx, "before.csv", "after.csv", pipeline.StatusDifferencesFound, "", time.Now()))

	status, ok, err := tracker.LastStatus(ctx, "before.csv", "after.csv")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pipeline.StatusDifferencesFound, status)

	processed, err := tracker.HasBeenProcessed(ctx, "before.csv", "after.csv")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, tracker.LogComparison(ctx, "before.csv", "after.csv", pipeline.StatusChecksumMatch, "report.html", time.Now()))

	processed, err = tracker.HasBeenProcessed(ctx, "before.csv", "after.csv")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestTrackerInvalidDSNFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	_, err := Open(context.Background(), "invalid:user@tcp(127.0.0.1:1)/nope")
	assert.Error(t, err)
}
