package selection

import (
	"boligmatch-backend/internal/middleware"
	"boligmatch-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// SelectOffer POST /api/v1/selection/:case_id/select
func (h *Handlers) SelectOffer(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		OfferID string `json:"offer_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.OfferID == "" {
		return response.Error(c, "offer_id is required", fiber.StatusBadRequest, nil)
	}
	offerID, err := uuid.Parse(body.OfferID)
	if err != nil {
		return response.Error(c, "Invalid offer_id", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	sel, err := h.Service.SelectOffer(c.Context(), caseID, offerID, actor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Broker selected", fiber.Map{"selection": sel}, nil)
}

// CompleteCase POST /api/v1/selection/:case_id/complete
func (h *Handlers) CompleteCase(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	done, err := h.Service.CompleteCase(c.Context(), caseID, actor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Case completed", fiber.Map{"case": done}, nil)
}
