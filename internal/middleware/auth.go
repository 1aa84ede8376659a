package middleware

import (
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"
const actorLocal = "actor"

// RequireAuth ensures a user is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		actor, ok := actorFromSession(user)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(actorLocal, actor)
		return c.Next()
	}
}

// RequireRole restricts a route to the given roles. Must run after
// RequireAuth. An impersonated session acts with the target's role, not
// the admin's.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals(actorLocal).(domain.Actor)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}
}

// GetActor returns the acting identity set by RequireAuth.
func GetActor(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorLocal).(domain.Actor)
	return actor, ok
}

// GetUser returns the raw session user map (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

func actorFromSession(user interface{}) (domain.Actor, bool) {
	m, ok := user.(map[string]interface{})
	if !ok {
		return domain.Actor{}, false
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return domain.Actor{}, false
	}
	actor := domain.Actor{ID: id, Role: str(m["role"])}
	if imp, _ := m["impersonator"].(string); imp != "" {
		if impID, err := uuid.Parse(imp); err == nil {
			actor.Impersonator = &impID
		}
	}
	return actor, true
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
