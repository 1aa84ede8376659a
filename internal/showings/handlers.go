package showings

import (
	"time"

	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/middleware"
	"boligmatch-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// ScheduleShowing POST /api/v1/showings/:case_id/schedule
func (h *Handlers) ScheduleShowing(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		ScheduledAt string `json:"scheduled_at"` // RFC3339
	}
	if err := c.BodyParser(&body); err != nil || body.ScheduledAt == "" {
		return response.Error(c, "scheduled_at is required", fiber.StatusBadRequest, nil)
	}
	at, err := time.Parse(time.RFC3339, body.ScheduledAt)
	if err != nil {
		return response.Error(c, "scheduled_at must be RFC3339", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	rec, err := h.Service.ScheduleShowing(c.Context(), caseID, at, actor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Showing scheduled", fiber.Map{"showing": rec}, nil)
}

// RegisterAgent POST /api/v1/showings/:case_id/register
func (h *Handlers) RegisterAgent(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Outcome string `json:"outcome"`
	}
	if err := c.BodyParser(&body); err != nil || body.Outcome == "" {
		return response.Error(c, "outcome is required", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	// Agent display fields come from the session user, not the body.
	name, agency := sessionNames(c)
	reg, err := h.Service.RegisterAgent(c.Context(), caseID, RegisterAgentInput{
		AgentID:    actor.ID,
		AgentName:  name,
		AgencyName: agency,
		Outcome:    domain.RegistrationOutcome(body.Outcome),
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Registration saved", fiber.Map{"registration": reg}, nil)
}

// CompleteShowing POST /api/v1/showings/:case_id/complete
func (h *Handlers) CompleteShowing(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	rec, err := h.Service.CompleteShowing(c.Context(), caseID, actor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Showing completed", fiber.Map{"showing": rec}, nil)
}

func sessionNames(c *fiber.Ctx) (fullname, agency string) {
	if m, ok := middleware.GetUser(c).(map[string]interface{}); ok {
		fullname, _ = m["fullname"].(string)
		agency, _ = m["agency_name"].(string)
	}
	return
}
