package handlers

import (
	"staylane/internal/app"
	cancellationController "staylane/internal/controllers/cancellation"
	"staylane/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ReservationHandler struct {
	Handler
	cancellationController cancellationController.CancellationControllerInterface
}

type cancelBody struct {
	Reason         string `json:"reason"`
	ReasonCategory string `json:"reasonCategory"`
	InitiatedBy    string `json:"initiatedBy"`
}

func NewReservationHandler(app app.App, router fiber.Router) *ReservationHandler {
	log := logger.New("handlers").File("reservation_handler")
	return &ReservationHandler{
		cancellationController: app.Controllers.Cancellation,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReservationHandler) Register() {
	reservations := h.router.Group("/reservations", h.middleware.RequireAuth())

	reservations.Get("/:id/cancellation-preview", h.getCancellationPreview)
	reservations.Post("/:id/cancel", h.cancelReservation)
}

func (h *ReservationHandler) getCancellationPreview(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getCancellationPreview")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reservationID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid reservation ID")
	}

	preview, err := h.cancellationController.GetCancellationPreview(c.UserContext(), reservationID, user.ID)
	if err != nil {
		return respondError(c, log, err, "Failed to preview cancellation")
	}

	return c.JSON(fiber.Map{
		"preview": preview,
	})
}

func (h *ReservationHandler) cancelReservation(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("cancelReservation")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reservationID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid reservation ID")
	}

	var body cancelBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.cancellationController.ProcessCancellation(
		c.UserContext(),
		cancellationController.CancellationRequest{
			ReservationID:  reservationID,
			UserID:         user.ID,
			Reason:         body.Reason,
			ReasonCategory: body.ReasonCategory,
			InitiatedBy:    body.InitiatedBy,
		},
	)
	if err != nil {
		return respondError(c, log, err, "Failed to cancel reservation")
	}

	log.Info("Reservation cancelled", "reservationID", reservationID, "userID", user.ID)
	return c.JSON(result)
}
