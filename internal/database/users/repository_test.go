package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/okarpenko/podhaven/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Podcast{},
		&entities.LikedPodcast{},
	)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewRepository(db), cleanup
}

func createTestUser(t *testing.T, repo *Repository, name, email string) *entities.User {
	user := &entities.User{Name: name, Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(user))
	return user
}

func TestRepository_Create_DuplicateEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, repo, "Alice", "alice@example.com")

	err := repo.Create(&entities.User{Name: "Other", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepository_Update_DuplicateEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, repo, "Alice", "alice@example.com")
	bob := createTestUser(t, repo, "Bob", "bob@example.com")

	bob.Email = "alice@example.com"
	err := repo.Update(bob)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepository_GetByEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, repo, "Alice", "alice@example.com")

	found, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = repo.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_UpdatePassword(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, repo, "Alice", "alice@example.com")

	require.NoError(t, repo.UpdatePassword(alice.ID, "newhash"))

	found, err := repo.GetByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)
}

func TestRepository_CreatorName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, repo, "Alice", "alice@example.com")

	name, err := repo.CreatorName(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = repo.CreatorName(999)
	assert.Error(t, err)
}

func TestRepository_AddLike_Idempotent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, repo, "Alice", "alice@example.com")

	require.NoError(t, repo.AddLike(alice.ID, 10))
	// Liking again must be a no-op, not an error.
	require.NoError(t, repo.AddLike(alice.ID, 10))

	ids, err := repo.LikedPodcastIDs(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{10}, ids)
}

func TestRepository_LikedPodcastIDs_InsertionOrder(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, repo, "Alice", "alice@example.com")

	require.NoError(t, repo.AddLike(alice.ID, 30))
	require.NoError(t, repo.AddLike(alice.ID, 10))
	require.NoError(t, repo.AddLike(alice.ID, 20))

	ids, err := repo.LikedPodcastIDs(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{30, 10, 20}, ids)
}

func TestRepository_RemoveLike(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, repo, "Alice", "alice@example.com")
	bob := createTestUser(t, repo, "Bob", "bob@example.com")

	require.NoError(t, repo.AddLike(alice.ID, 10))
	require.NoError(t, repo.AddLike(bob.ID, 10))

	require.NoError(t, repo.RemoveLike(alice.ID, 10))
	// Removing an absent row is a no-op.
	require.NoError(t, repo.RemoveLike(alice.ID, 10))

	ids, err := repo.LikedPodcastIDs(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Bob's set is untouched.
	ids, err = repo.LikedPodcastIDs(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{10}, ids)
}
