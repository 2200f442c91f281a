package waitlist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/akeren/launchlist/internal/models"
	"github.com/akeren/launchlist/pkg/circuitbreaker"
	"github.com/akeren/launchlist/pkg/constants"
	apperrors "github.com/akeren/launchlist/pkg/errors"
	"github.com/akeren/launchlist/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection to :memory: would get its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.ModelRegistry...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newEntry(name, email string) *models.WaitlistEntry {
	return &models.WaitlistEntry{
		Name:        name,
		Email:       email,
		IPAddress:   constants.UnknownIPAddress,
		ProjectName: constants.WaitlistProjectName,
	}
}

func TestWaitlistRepository_CreateEntry(t *testing.T) {
	db := newTestDB(t)
	repo := NewWaitlistRepository(db, nil)

	stored, err := repo.CreateEntry(context.Background(), newEntry("Alice", "alice@example.com"))

	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	var reloaded models.WaitlistEntry
	require.NoError(t, db.First(&reloaded, stored.ID).Error)
	assert.Equal(t, "Alice", reloaded.Name)
	assert.Equal(t, "alice@example.com", reloaded.Email)
	assert.Equal(t, constants.UnknownIPAddress, reloaded.IPAddress)
	assert.Equal(t, constants.WaitlistProjectName, reloaded.ProjectName)
}

func TestWaitlistRepository_DuplicateEmailsAreKept(t *testing.T) {
	db := newTestDB(t)
	repo := NewWaitlistRepository(db, nil)

	_, err := repo.CreateEntry(context.Background(), newEntry("Alice", "alice@example.com"))
	require.NoError(t, err)
	_, err = repo.CreateEntry(context.Background(), newEntry("Alice", "alice@example.com"))
	require.NoError(t, err)

	count, err := repo.CountEntries(context.Background(), constants.WaitlistProjectName)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestWaitlistRepository_CountEntriesFiltersByProject(t *testing.T) {
	db := newTestDB(t)
	repo := NewWaitlistRepository(db, nil)

	other := newEntry("Bob", "bob@example.com")
	other.ProjectName = "some-other-product"
	require.NoError(t, db.Create(other).Error)

	_, err := repo.CreateEntry(context.Background(), newEntry("Alice", "alice@example.com"))
	require.NoError(t, err)

	count, err := repo.CountEntries(context.Background(), constants.WaitlistProjectName)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestWaitlistRepository_NilEntry(t *testing.T) {
	repo := NewWaitlistRepository(newTestDB(t), nil)

	_, err := repo.CreateEntry(context.Background(), nil)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
}

func TestWaitlistRepository_BreakerOpensOnRepeatedFailures(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	breaker := circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Hour,
		SuccessThreshold: 1,
	})
	repo := NewWaitlistRepositoryWithBreaker(db, breaker)

	for i := 0; i < 2; i++ {
		_, err := repo.CreateEntry(context.Background(), newEntry("Alice", "alice@example.com"))
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
		assert.False(t, errors.Is(err, circuitbreaker.ErrCircuitOpen))
	}

	_, err = repo.CreateEntry(context.Background(), newEntry("Alice", "alice@example.com"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, circuitbreaker.ErrCircuitOpen))
	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
	assert.Equal(t, circuitbreaker.Open, breaker.State())
}

func TestWaitlistRepository_CanceledCallersDoNotOpenBreaker(t *testing.T) {
	db := newTestDB(t)
	breaker := circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Hour,
		SuccessThreshold: 1,
	})
	repo := NewWaitlistRepositoryWithBreaker(db, breaker)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		_, err := repo.CreateEntry(canceled, newEntry("Alice", "alice@example.com"))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
	}
	assert.Equal(t, circuitbreaker.Closed, breaker.State())

	stored, err := repo.CreateEntry(context.Background(), newEntry("Grace", "grace@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
}

func TestWaitlistRepository_ExpiredDeadlineDoesNotOpenBreaker(t *testing.T) {
	db := newTestDB(t)
	breaker := circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Hour,
		SuccessThreshold: 1,
	})
	repo := NewWaitlistRepositoryWithBreaker(db, breaker)

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := repo.CreateEntry(expired, newEntry("Alice", "alice@example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, circuitbreaker.Closed, breaker.State())
}

func openSQLiteFile(t *testing.T, path string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestWaitlistRepository_CreateEntryOnMigratedSQLiteSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "launchlist.db")
	cfg := migrations.Config{Dir: "../../migrations/sqlite", Driver: migrations.DriverSQLite}

	migrateDB, err := openSQLiteFile(t, path).DB()
	require.NoError(t, err)
	require.NoError(t, migrations.Up(ctx, migrateDB, cfg))

	// The sqlite migrate driver closes the handle it was given.
	assert.Error(t, migrateDB.Ping())

	repo := NewWaitlistRepository(openSQLiteFile(t, path), nil)
	stored, err := repo.CreateEntry(ctx, newEntry("Zoë", "zoe@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)

	count, err := repo.CountEntries(ctx, constants.WaitlistProjectName)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	statusDB, err := openSQLiteFile(t, path).DB()
	require.NoError(t, err)
	status, err := migrations.CurrentStatus(ctx, statusDB, cfg)
	require.NoError(t, err)
	assert.Equal(t, migrations.Status{Version: 1}, status)
}
