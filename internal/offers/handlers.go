package offers

import (
	"boligmatch-backend/internal/middleware"
	"boligmatch-backend/internal/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

var validate = validator.New()

// SubmitOfferRequest is the submit/edit offer body. Commission is an
// absolute DKK amount.
type SubmitOfferRequest struct {
	ExpectedPrice       float64  `json:"expected_price" validate:"required,gt=0"`
	Commission          float64  `json:"commission" validate:"gte=0"`
	BindingPeriodMonths int      `json:"binding_period_months" validate:"required,gte=1,lte=36"`
	MarketingChannels   []string `json:"marketing_channels"`
	MarketingStrategy   string   `json:"marketing_strategy"`
}

// SubmitOffer POST /api/v1/offers/:case_id
func (h *Handlers) SubmitOffer(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	var req SubmitOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validate.Struct(req); err != nil {
		return response.Error(c, "Validation failed", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	result, err := h.Service.SubmitOffer(c.Context(), caseID, actor.ID, OfferDraft{
		ExpectedPrice:       req.ExpectedPrice,
		Commission:          req.Commission,
		BindingPeriodMonths: req.BindingPeriodMonths,
		MarketingChannels:   req.MarketingChannels,
		MarketingStrategy:   req.MarketingStrategy,
	})
	if err != nil {
		return response.AppError(c, err)
	}

	var meta interface{}
	if result.CommissionWarning != "" {
		meta = fiber.Map{"commission_warning": result.CommissionWarning}
	}
	return response.Success(c, "Offer submitted", fiber.Map{"offer": result.Offer}, meta)
}

// ListOffers GET /api/v1/offers/:case_id
func (h *Handlers) ListOffers(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	list, err := h.Service.ListOffers(c.Context(), caseID, actor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Offers fetched", fiber.Map{"offers": list}, nil)
}
