package cases

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

// CreateCaseRequest is the create-case body.
type CreateCaseRequest struct {
	Address          string  `json:"address" validate:"required"`
	PostalCode       string  `json:"postal_code" validate:"required,min=3,max=10"`
	Municipality     string  `json:"municipality"`
	PropertyType     string  `json:"property_type"`
	SizeM2           float64 `json:"size_m2" validate:"omitempty,gt=0"`
	RoomCount        int     `json:"room_count" validate:"omitempty,gte=1"`
	ConstructionYear int     `json:"construction_year" validate:"omitempty,gte=1500"`
	EnergyLabel      string  `json:"energy_label"`
	ExpectedPrice    float64 `json:"expected_price" validate:"required,gt=0"`
	SellerNotes      string  `json:"seller_notes"`
	Priorities       string  `json:"priorities"`
}

// CreateCase POST /api/v1/cases/create-case
func (h *Handlers) CreateCase(c *fiber.Ctx) error {
	var req CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validate.Struct(req); err != nil {
		return response.Error(c, "Validation failed", fiber.StatusBadRequest, validationDetails(err))
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	created, err := h.Service.CreateCase(c.Context(), CreateCaseInput{
		SellerID:         actor.ID,
		Address:          req.Address,
		PostalCode:       req.PostalCode,
		Municipality:     req.Municipality,
		PropertyType:     req.PropertyType,
		SizeM2:           req.SizeM2,
		RoomCount:        req.RoomCount,
		ConstructionYear: req.ConstructionYear,
		EnergyLabel:      req.EnergyLabel,
		ExpectedPrice:    req.ExpectedPrice,
		SellerNotes:      req.SellerNotes,
		Priorities:       req.Priorities,
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Case created", fiber.Map{"case": created}, nil)
}

// UpdateCase PATCH /api/v1/cases/:case_id
func (h *Handlers) UpdateCase(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	var req UpdateCaseInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	updated, err := h.Service.UpdateCase(c.Context(), caseID, actor, req)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Case updated", fiber.Map{"case": updated}, nil)
}

// SubmitCase POST /api/v1/cases/:case_id/submit
func (h *Handlers) SubmitCase(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	submitted, err := h.Service.SubmitCase(c.Context(), caseID, actor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Case submitted", fiber.Map{"case": submitted}, nil)
}

// WithdrawCase POST /api/v1/cases/:case_id/withdraw
func (h *Handlers) WithdrawCase(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	actor, _ := middleware.GetActor(c)

	withdrawn, err := h.Service.WithdrawCase(c.Context(), caseID, actor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Case withdrawn", fiber.Map{"case": withdrawn}, nil)
}

// GetCase GET /api/v1/cases/:case_id
func (h *Handlers) GetCase(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("case_id"))
	if err != nil {
		return response.Error(c, "Invalid case_id", fiber.StatusBadRequest, nil)
	}
	view, err := h.Service.GetCase(c.Context(), caseID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Case fetched", fiber.Map{"case": view}, nil)
}

// ListMyCases GET /api/v1/cases/my-cases
func (h *Handlers) ListMyCases(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	views, err := h.Service.ListSellerCases(c.Context(), actor.ID)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Cases fetched", fiber.Map{"cases": views}, nil)
}

// BrowseOpenCases GET /api/v1/cases/open
func (h *Handlers) BrowseOpenCases(c *fiber.Ctx) error {
	views, err := h.Service.BrowseOpenCases(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Open cases fetched", fiber.Map{"cases": views}, nil)
}

func validationDetails(err error) map[string]interface{} {
	details := map[string]interface{}{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}
