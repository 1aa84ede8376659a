package auth

import (
	"testing"

	"boligmatch-backend/internal/database"
	"boligmatch-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{Fullname: "Test User", Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestLoginUser_Success(t *testing.T) {
	db := setupAuthTest(t)
	seedUser(t, db, "mette@example.com", "hemmeligt", domain.RoleSeller)

	u, err := LoginUser(db, LoginInput{Email: "mette@example.com", Password: "hemmeligt"})
	require.NoError(t, err)
	assert.Equal(t, "mette@example.com", u.Email)
	assert.Equal(t, domain.RoleSeller, u.Role)
}

func TestLoginUser_MissingFields(t *testing.T) {
	db := setupAuthTest(t)

	_, err := LoginUser(db, LoginInput{Email: "", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)

	_, err = LoginUser(db, LoginInput{Email: "a@b.dk", Password: ""})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
}

func TestLoginUser_UnknownEmail(t *testing.T) {
	db := setupAuthTest(t)

	_, err := LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	db := setupAuthTest(t)
	seedUser(t, db, "mette@example.com", "hemmeligt", domain.RoleSeller)

	_, err := LoginUser(db, LoginInput{Email: "mette@example.com", Password: "forkert"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestVerifyUser_ValidSession(t *testing.T) {
	shape, err := VerifyUser(map[string]interface{}{
		"user_id":     "7b0c2b6e-0000-0000-0000-000000000001",
		"fullname":    "Anders Agent",
		"email":       "anders@maegler.dk",
		"role":        domain.RoleAgent,
		"agency_name": "Hjem & Bolig",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anders Agent", shape.Fullname)
	assert.Equal(t, domain.RoleAgent, shape.Role)
	assert.Equal(t, "Hjem & Bolig", shape.AgencyName)
	assert.Empty(t, shape.Impersonator)
}

func TestVerifyUser_CarriesImpersonator(t *testing.T) {
	shape, err := VerifyUser(map[string]interface{}{
		"user_id":      "7b0c2b6e-0000-0000-0000-000000000001",
		"role":         domain.RoleAgent,
		"impersonator": "7b0c2b6e-0000-0000-0000-000000000099",
	})
	require.NoError(t, err)
	assert.Equal(t, "7b0c2b6e-0000-0000-0000-000000000099", shape.Impersonator)
}

func TestVerifyUser_NotAuthenticated(t *testing.T) {
	_, err := VerifyUser(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser("garbage")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser(map[string]interface{}{"role": domain.RoleSeller})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
