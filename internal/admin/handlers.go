package admin

import (
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/middleware"
	"boligmatch-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// ForceStatus POST /api/v1/admin/cases/:case_id/force-status
func (h *Handlers) ForceStatus(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	updated, err := h.Service.ForceStatus(c.Context(), caseID, domain.CaseStatus(body.Status), actor.ID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Status override saved", fiber.Map{"case": updated}, nil)
}

// ListCases GET /api/v1/admin/cases
func (h *Handlers) ListCases(c *fiber.Ctx) error {
	views, err := h.Service.ListCases(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Cases fetched", fiber.Map{"cases": views}, nil)
}

// Impersonate POST /api/v1/admin/impersonate — swap the session user for
// the target while recording the admin as impersonator. The back-reference
// in the session is the only way back; it is never re-derived from the
// impersonated identity.
func (h *Handlers) Impersonate(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" {
		return response.Error(c, "user_id is required", fiber.StatusBadRequest, nil)
	}
	targetID, err := uuid.Parse(body.UserID)
	if err != nil {
		return response.Error(c, "Invalid user_id", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)
	if actor.Role != domain.RoleAdmin {
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}
	if actor.Impersonator != nil {
		return response.Error(c, "Already impersonating; return to admin first", fiber.StatusConflict, nil)
	}

	target, err := h.Service.FindUser(c.Context(), targetID)
	if err != nil {
		return response.AppError(c, err)
	}
	if target.Role == domain.RoleAdmin {
		return response.Error(c, "Cannot impersonate another admin", fiber.StatusForbidden, nil)
	}

	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:       target.UserID.String(),
		Fullname:     target.Fullname,
		Email:        target.Email,
		Role:         target.Role,
		AgencyName:   target.AgencyName,
		Impersonator: actor.ID.String(),
	})
	return response.Success(c, "Impersonation started", fiber.Map{
		"user": fiber.Map{
			"user_id":      target.UserID.String(),
			"fullname":     target.Fullname,
			"role":         target.Role,
			"impersonator": actor.ID.String(),
		},
	}, nil)
}

// ReturnToAdmin POST /api/v1/admin/return — only a session holding the
// impersonator back-reference may return; a plain session cannot elevate.
func (h *Handlers) ReturnToAdmin(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok || actor.Impersonator == nil {
		return response.Error(c, "Not impersonating", fiber.StatusForbidden, nil)
	}

	adminUser, err := h.Service.FindUser(c.Context(), *actor.Impersonator)
	if err != nil {
		return response.AppError(c, err)
	}
	if adminUser.Role != domain.RoleAdmin {
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}

	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:     adminUser.UserID.String(),
		Fullname:   adminUser.Fullname,
		Email:      adminUser.Email,
		Role:       adminUser.Role,
		AgencyName: adminUser.AgencyName,
	})
	return response.Success(c, "Returned to admin", fiber.Map{
		"user": fiber.Map{
			"user_id":  adminUser.UserID.String(),
			"fullname": adminUser.Fullname,
			"role":     adminUser.Role,
		},
	}, nil)
}
