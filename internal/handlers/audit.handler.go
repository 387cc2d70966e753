package handlers

import (
	"fmt"
	"strings"
	"time"

	"staylane/internal/app"
	auditController "staylane/internal/controllers/audit"
	"staylane/internal/handlers/middleware"
	"staylane/internal/models"
	"staylane/internal/services"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuditHandler struct {
	Handler
	auditController auditController.AuditControllerInterface
}

func NewAuditHandler(app app.App, router fiber.Router) *AuditHandler {
	log := logger.New("handlers").File("audit_handler")
	return &AuditHandler{
		auditController: app.Controllers.Audit,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuditHandler) Register() {
	audit := h.router.Group("/audit", h.middleware.RequireAuth())

	audit.Get("/trail", h.getAuditTrail)
	audit.Get("/stats", h.getAuditStats)
	audit.Get("/export", h.exportAuditLog)
}

func optionalUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &id, nil
}

// optionalBound parses from/to. A plain date for "to" covers that whole day.
func optionalBound(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		parsed = parsed.UTC()
		return &parsed, nil
	}

	date, err := utils.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	if endOfDay {
		date = date.Add(24*time.Hour - time.Nanosecond)
	}
	return &date, nil
}

func parseAuditQuery(c *fiber.Ctx) (auditController.AuditQuery, error) {
	var query auditController.AuditQuery
	var err error

	if query.ReservationID, err = optionalUUID(c, "reservationId"); err != nil {
		return query, err
	}
	if query.UserID, err = optionalUUID(c, "userId"); err != nil {
		return query, err
	}
	if query.From, err = optionalBound(c, "from", false); err != nil {
		return query, err
	}
	if query.To, err = optionalBound(c, "to", true); err != nil {
		return query, err
	}

	if action := strings.TrimSpace(c.Query("action")); action != "" {
		query.Action = utils.Ptr(models.AuditAction(action))
	}
	if field := strings.TrimSpace(c.Query("field")); field != "" {
		query.Field = &field
	}

	query.Page = c.QueryInt("page", 1)
	query.PageSize = c.QueryInt("pageSize", 0)

	return query, nil
}

func (h *AuditHandler) getAuditTrail(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getAuditTrail")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	query, err := parseAuditQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	page, err := h.auditController.GetAuditTrail(c.UserContext(), user, query)
	if err != nil {
		return respondError(c, log, err, "Failed to retrieve audit trail")
	}

	return c.JSON(page)
}

func (h *AuditHandler) getAuditStats(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getAuditStats")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	query, err := parseAuditQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	stats, err := h.auditController.GetAuditStats(c.UserContext(), user, query)
	if err != nil {
		return respondError(c, log, err, "Failed to retrieve audit stats")
	}

	return c.JSON(stats)
}

func (h *AuditHandler) exportAuditLog(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("exportAuditLog")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	query, err := parseAuditQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	format := services.ExportFormat(c.Query("format", string(services.ExportJSON)))
	body, contentType, err := h.auditController.ExportAuditLog(c.UserContext(), user, query, format)
	if err != nil {
		return respondError(c, log, err, "Failed to export audit log")
	}

	c.Attachment(fmt.Sprintf("audit-log.%s", format))
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}
