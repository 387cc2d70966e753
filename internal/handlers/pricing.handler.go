package handlers

import (
	"staylane/internal/app"
	pricingController "staylane/internal/controllers/pricing"
	"staylane/internal/handlers/middleware"
	"staylane/internal/models"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PricingHandler struct {
	Handler
	pricingController pricingController.PricingControllerInterface
}

type overrideBody struct {
	Price        decimal.Decimal  `json:"price"`
	HalfDayPrice *decimal.Decimal `json:"halfDayPrice,omitempty"`
	Reason       *string          `json:"reason,omitempty"`
}

func NewPricingHandler(app app.App, router fiber.Router) *PricingHandler {
	log := logger.New("handlers").File("pricing_handler")
	return &PricingHandler{
		pricingController: app.Controllers.Pricing,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PricingHandler) Register() {
	// Booking quotes under /properties are public; auth is per route here.
	properties := h.router.Group("/properties/:id")
	auth := []fiber.Handler{h.middleware.RequireAuth(), h.middleware.RequireRole(models.RoleOwner, models.RoleAdmin)}

	properties.Put("/pricing/weekly", append(auth, h.setWeeklyPricing)...)
	properties.Get("/pricing/overrides", append(auth, h.listDateOverrides)...)
	properties.Put("/pricing/overrides/:date", append(auth, h.upsertDateOverride)...)
	properties.Delete("/pricing/overrides/:date", append(auth, h.deleteDateOverride)...)

	properties.Get("/rate-plans", append(auth, h.listRatePlans)...)
	properties.Post("/rate-plans", append(auth, h.createRatePlan)...)
	properties.Put("/rate-plans/:planId", append(auth, h.updateRatePlan)...)
	properties.Delete("/rate-plans/:planId", append(auth, h.deactivateRatePlan)...)
}

func (h *PricingHandler) setWeeklyPricing(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("setWeeklyPricing")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	var req pricingController.WeeklyPricingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	pricing, err := h.pricingController.SetWeeklyPricing(c.UserContext(), user, propertyID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to update weekly pricing")
	}

	return c.JSON(fiber.Map{
		"weeklyPricing": pricing,
	})
}

func (h *PricingHandler) listDateOverrides(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listDateOverrides")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	overrides, err := h.pricingController.ListDateOverrides(c.UserContext(), user, propertyID)
	if err != nil {
		return respondError(c, log, err, "Failed to retrieve date overrides")
	}

	return c.JSON(fiber.Map{
		"overrides": overrides,
	})
}

func (h *PricingHandler) upsertDateOverride(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("upsertDateOverride")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	date, err := utils.ParseDate(c.Params("date"))
	if err != nil {
		return badRequest(c, "Invalid date")
	}

	var body overrideBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	override, err := h.pricingController.UpsertDateOverride(
		c.UserContext(),
		user,
		propertyID,
		pricingController.DateOverrideRequest{
			Date:         date,
			Price:        body.Price,
			HalfDayPrice: body.HalfDayPrice,
			Reason:       body.Reason,
		},
	)
	if err != nil {
		return respondError(c, log, err, "Failed to save date override")
	}

	return c.JSON(fiber.Map{
		"override": override,
	})
}

func (h *PricingHandler) deleteDateOverride(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("deleteDateOverride")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	date, err := utils.ParseDate(c.Params("date"))
	if err != nil {
		return badRequest(c, "Invalid date")
	}

	if err := h.pricingController.DeleteDateOverride(c.UserContext(), user, propertyID, date); err != nil {
		return respondError(c, log, err, "Failed to delete date override")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PricingHandler) listRatePlans(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listRatePlans")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	plans, err := h.pricingController.ListRatePlans(c.UserContext(), user, propertyID)
	if err != nil {
		return respondError(c, log, err, "Failed to retrieve rate plans")
	}

	return c.JSON(fiber.Map{
		"ratePlans": plans,
	})
}

func (h *PricingHandler) createRatePlan(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("createRatePlan")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	var req pricingController.RatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	plan, err := h.pricingController.CreateRatePlan(c.UserContext(), user, propertyID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to create rate plan")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ratePlan": plan,
	})
}

func (h *PricingHandler) updateRatePlan(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateRatePlan")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	planID, ok := uuidParam(c, "planId")
	if !ok {
		return badRequest(c, "Invalid rate plan ID")
	}

	var req pricingController.RatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	plan, err := h.pricingController.UpdateRatePlan(c.UserContext(), user, propertyID, planID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to update rate plan")
	}

	return c.JSON(fiber.Map{
		"ratePlan": plan,
	})
}

func (h *PricingHandler) deactivateRatePlan(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("deactivateRatePlan")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid property ID")
	}

	planID, ok := uuidParam(c, "planId")
	if !ok {
		return badRequest(c, "Invalid rate plan ID")
	}

	if err := h.pricingController.DeactivateRatePlan(c.UserContext(), user, propertyID, planID); err != nil {
		return respondError(c, log, err, "Failed to deactivate rate plan")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
