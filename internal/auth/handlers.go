package auth

import (
	"context"

	"boligmatch-backend/internal/middleware"
	"boligmatch-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login — authenticate, create session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidEmail, ErrIncorrectPassword:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:     user.UserID.String(),
		Fullname:   user.Fullname,
		Email:      user.Email,
		Role:       user.Role,
		AgencyName: user.AgencyName,
	})

	if h.Rdb != nil {
		if err := h.Rdb.SAdd(context.Background(), userSessionsPrefix+user.UserID.String(), sessionID).Err(); err != nil {
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":     user.UserID.String(),
			"fullname":    user.Fullname,
			"email":       user.Email,
			"role":        user.Role,
			"agency_name": user.AgencyName,
		},
	}, nil)
}

// Me GET /api/v1/auth/me — return current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout — remove session from Redis, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	sessionUser := middleware.GetUser(c)

	if h.Rdb != nil && sessionID != "" {
		ctx := context.Background()
		if u, err := VerifyUser(sessionUser); err == nil {
			h.Rdb.SRem(ctx, userSessionsPrefix+u.UserID, sessionID)
		}
		h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID)
	}

	middleware.DestroySession(c)
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logout successful", nil, nil)
}
