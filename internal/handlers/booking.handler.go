package handlers

import (
	"staylane/internal/app"
	bookingController "staylane/internal/controllers/booking"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookingHandler struct {
	Handler
	bookingController bookingController.BookingControllerInterface
}

type bookingRequest struct {
	CheckIn    string     `json:"checkIn"`
	CheckOut   string     `json:"checkOut"`
	GuestCount int        `json:"guestCount"`
	IsHalfDay  bool       `json:"isHalfDay"`
	RatePlanID *uuid.UUID `json:"ratePlanId,omitempty"`
}

func NewBookingHandler(app app.App, router fiber.Router) *BookingHandler {
	log := logger.New("handlers").File("booking_handler")
	return &BookingHandler{
		bookingController: app.Controllers.Booking,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *BookingHandler) Register() {
	properties := h.router.Group("/properties")

	properties.Post("/:id/booking-options", h.calculateBookingOptions)
	properties.Post("/:id/booking-price", h.calculateBookingPrice)
}

// criteria reads the property from the path and the stay from the body.
func (h *BookingHandler) criteria(c *fiber.Ctx) (bookingController.BookingCriteria, *uuid.UUID, string) {
	propertyID, ok := uuidParam(c, "id")
	if !ok {
		return bookingController.BookingCriteria{}, nil, "Invalid property ID"
	}

	var req bookingRequest
	if err := c.BodyParser(&req); err != nil {
		return bookingController.BookingCriteria{}, nil, "Invalid request body"
	}

	checkIn, err := utils.ParseDate(req.CheckIn)
	if err != nil {
		return bookingController.BookingCriteria{}, nil, "Invalid checkIn: " + err.Error()
	}
	checkOut, err := utils.ParseDate(req.CheckOut)
	if err != nil {
		return bookingController.BookingCriteria{}, nil, "Invalid checkOut: " + err.Error()
	}

	return bookingController.BookingCriteria{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.GuestCount,
		IsHalfDay:  req.IsHalfDay,
	}, req.RatePlanID, ""
}

func (h *BookingHandler) calculateBookingOptions(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("calculateBookingOptions")

	criteria, _, problem := h.criteria(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	options, err := h.bookingController.CalculateBookingOptions(c.UserContext(), criteria)
	if err != nil {
		return respondError(c, log, err, "Failed to calculate booking options")
	}

	return c.JSON(options)
}

func (h *BookingHandler) calculateBookingPrice(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("calculateBookingPrice")

	criteria, ratePlanID, problem := h.criteria(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	option, err := h.bookingController.CalculateBookingPrice(c.UserContext(), criteria, ratePlanID)
	if err != nil {
		return respondError(c, log, err, "Failed to calculate booking price")
	}

	return c.JSON(fiber.Map{
		"option": option,
	})
}
