package auth

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/okarpenko/podhaven/internal/config"
	"github.com/okarpenko/podhaven/internal/database/users"
	"github.com/okarpenko/podhaven/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *users.Repository, *gorm.DB, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.User{}))

	repo := users.NewRepository(db)
	service := NewService(repo, config.Auth{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  4,
	})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, repo, db, cleanup
}

func TestService_Register(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	user, token, err := service.Register("Alice", "alice@example.com", "secret123")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestService_Register_Validation(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"missing name", "", "a@example.com", "secret123", ErrNameRequired},
		{"missing email", "Alice", "", "secret123", ErrEmailRequired},
		{"missing password", "Alice", "a@example.com", "", ErrPasswordRequired},
		{"invalid email", "Alice", "not-an-email", "secret123", ErrEmailInvalid},
		{"short password", "Alice", "a@example.com", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.Register(tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	_, _, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = service.Register("Imposter", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Login(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	registered, _, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	user, token, err := service.Login("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	_, _, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = service.Login("alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_TokenRoundTrip(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	registered, token, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	user, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestService_ValidateToken_Invalid(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	service, repo, _, cleanup := setupTestService(t)
	defer cleanup()

	_, token, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	other := NewService(repo, config.Auth{
		JWTSecret:   "different-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  4,
	})

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_DanglingUser(t *testing.T) {
	service, _, db, cleanup := setupTestService(t)
	defer cleanup()

	registered, token, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	// Remove the user behind a still-valid token.
	require.NoError(t, db.Delete(&entities.User{}, registered.ID).Error)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_ChangePassword(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	registered, _, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, service.ChangePassword(registered.ID, "secret123", "newsecret456"))

	_, _, err = service.Login("alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login("alice@example.com", "newsecret456")
	assert.NoError(t, err)
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	service, _, _, cleanup := setupTestService(t)
	defer cleanup()

	registered, _, err := service.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	err = service.ChangePassword(registered.ID, "wrong-password", "newsecret456")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}
