package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boligmatch-backend/internal/database"
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type impersonationFixture struct {
	app   *fiber.App
	redis *miniredis.Miniredis
	db    *gorm.DB
	admin *domain.User
	agent *domain.User
}

func setupImpersonationTest(t *testing.T) *impersonationFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	admin := &domain.User{Fullname: "Alice Admin", Email: "alice@boligmatch.dk", PasswordHash: "x", Role: domain.RoleAdmin}
	agent := &domain.User{Fullname: "Anders Agent", Email: "anders@maegler.dk", PasswordHash: "x", Role: domain.RoleAgent, AgencyName: "Hjem & Bolig"}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(agent).Error)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	h := &Handlers{Service: &Service{DB: db}}
	app := fiber.New()
	app.Use(middleware.SessionWithClient(rdb))
	grp := app.Group("/api/v1/admin", middleware.RequireAuth())
	grp.Post("/impersonate", middleware.RequireRole(domain.RoleAdmin), h.Impersonate)
	grp.Post("/return", h.ReturnToAdmin)

	return &impersonationFixture{app: app, redis: mr, db: db, admin: admin, agent: agent}
}

// seedSession writes a logged-in session straight into Redis and returns
// the session id to put in the cookie.
func (f *impersonationFixture) seedSession(t *testing.T, user map[string]interface{}) string {
	sid := uuid.NewString()
	b, err := json.Marshal(map[string]interface{}{"user": user})
	require.NoError(t, err)
	require.NoError(t, f.redis.Set("session:"+sid, string(b)))
	return sid
}

func (f *impersonationFixture) post(t *testing.T, path, sid string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sid})
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sessionUser(t *testing.T, mr *miniredis.Miniredis, sid string) map[string]interface{} {
	raw, err := mr.Get("session:" + sid)
	require.NoError(t, err)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	user, _ := data["user"].(map[string]interface{})
	require.NotNil(t, user)
	return user
}

func TestImpersonate_SwapsSessionAndRecordsImpersonator(t *testing.T) {
	f := setupImpersonationTest(t)
	sid := f.seedSession(t, map[string]interface{}{
		"user_id": f.admin.UserID.String(), "fullname": f.admin.Fullname,
		"email": f.admin.Email, "role": domain.RoleAdmin,
	})

	resp := f.post(t, "/api/v1/admin/impersonate", sid, fiber.Map{"user_id": f.agent.UserID.String()})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	user := sessionUser(t, f.redis, sid)
	assert.Equal(t, f.agent.UserID.String(), user["user_id"])
	assert.Equal(t, domain.RoleAgent, user["role"])
	assert.Equal(t, f.admin.UserID.String(), user["impersonator"])
}

func TestImpersonate_RequiresAdminRole(t *testing.T) {
	f := setupImpersonationTest(t)
	sid := f.seedSession(t, map[string]interface{}{
		"user_id": f.agent.UserID.String(), "role": domain.RoleAgent,
	})

	resp := f.post(t, "/api/v1/admin/impersonate", sid, fiber.Map{"user_id": f.admin.UserID.String()})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestImpersonate_CannotTargetAdmin(t *testing.T) {
	f := setupImpersonationTest(t)
	other := &domain.User{Fullname: "Bob Admin", Email: "bob@boligmatch.dk", PasswordHash: "x", Role: domain.RoleAdmin}
	require.NoError(t, f.db.Create(other).Error)
	sid := f.seedSession(t, map[string]interface{}{
		"user_id": f.admin.UserID.String(), "role": domain.RoleAdmin,
	})

	resp := f.post(t, "/api/v1/admin/impersonate", sid, fiber.Map{"user_id": other.UserID.String()})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestImpersonate_NoNesting(t *testing.T) {
	f := setupImpersonationTest(t)
	sid := f.seedSession(t, map[string]interface{}{
		"user_id": f.admin.UserID.String(), "role": domain.RoleAdmin,
		"impersonator": uuid.NewString(),
	})

	resp := f.post(t, "/api/v1/admin/impersonate", sid, fiber.Map{"user_id": f.agent.UserID.String()})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestReturnToAdmin_RestoresAdminSession(t *testing.T) {
	f := setupImpersonationTest(t)
	sid := f.seedSession(t, map[string]interface{}{
		"user_id": f.agent.UserID.String(), "role": domain.RoleAgent,
		"impersonator": f.admin.UserID.String(),
	})

	resp := f.post(t, "/api/v1/admin/return", sid, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	user := sessionUser(t, f.redis, sid)
	assert.Equal(t, f.admin.UserID.String(), user["user_id"])
	assert.Equal(t, domain.RoleAdmin, user["role"])
	_, hasImpersonator := user["impersonator"]
	assert.False(t, hasImpersonator)
}

func TestReturnToAdmin_PlainSessionCannotElevate(t *testing.T) {
	f := setupImpersonationTest(t)
	sid := f.seedSession(t, map[string]interface{}{
		"user_id": f.agent.UserID.String(), "role": domain.RoleAgent,
	})

	resp := f.post(t, "/api/v1/admin/return", sid, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminRoutes_Unauthenticated(t *testing.T) {
	f := setupImpersonationTest(t)

	resp := f.post(t, "/api/v1/admin/impersonate", "", fiber.Map{"user_id": f.agent.UserID.String()})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
