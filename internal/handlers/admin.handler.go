package handlers

import (
	"staylane/internal/app"
	auditController "staylane/internal/controllers/audit"
	"staylane/internal/handlers/middleware"
	"staylane/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	auditController  auditController.AuditControllerInterface
	schedulerService *services.SchedulerService
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	log := logger.New("handlers").File("admin_handler")
	return &AdminHandler{
		auditController:  app.Controllers.Audit,
		schedulerService: app.Services.Scheduler,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireAuth(), h.middleware.RequireAdmin())

	admin.Get("/audit", h.getSystemAuditLog)
	admin.Get("/scheduler", h.getSchedulerStatus)
	admin.Post("/scheduler/:job/trigger", h.triggerJob)
}

func (h *AdminHandler) getSystemAuditLog(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getSystemAuditLog")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	query, err := parseAuditQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	page, err := h.auditController.GetSystemAuditLog(c.UserContext(), user, query)
	if err != nil {
		return respondError(c, log, err, "Failed to retrieve system audit log")
	}

	return c.JSON(page)
}

func (h *AdminHandler) getSchedulerStatus(c *fiber.Ctx) error {
	return c.JSON(h.schedulerService.Status())
}

func (h *AdminHandler) triggerJob(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("triggerJob")

	jobName := c.Params("job")
	if err := h.schedulerService.TriggerJobByName(jobName); err != nil {
		return respondError(c, log, err, "Failed to trigger job")
	}

	log.Info("Job triggered", "job", jobName, "userID", middleware.GetUser(c).ID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job":       jobName,
		"triggered": true,
	})
}
