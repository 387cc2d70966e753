package auditController

import (
	"context"
	"fmt"
	"time"

	"staylane/config"
	"staylane/internal/constants"
	"staylane/internal/database"
	. "staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/services"
	"staylane/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditQuery struct {
	ReservationID *uuid.UUID   `json:"reservationId,omitempty"`
	UserID        *uuid.UUID   `json:"userId,omitempty"`
	Action        *AuditAction `json:"action,omitempty"`
	Field         *string      `json:"field,omitempty"`
	From          *time.Time   `json:"from,omitempty"`
	To            *time.Time   `json:"to,omitempty"`
	Page          int          `json:"page"`
	PageSize      int          `json:"pageSize"`
}

type AuditPage struct {
	Entries  []*AuditLogEntry `json:"entries"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

type AuditControllerInterface interface {
	GetAuditTrail(ctx context.Context, user *User, query AuditQuery) (*AuditPage, error)
	GetAuditStats(ctx context.Context, user *User, query AuditQuery) (*services.AuditStats, error)
	GetSystemAuditLog(ctx context.Context, user *User, query AuditQuery) (*AuditPage, error)
	ExportAuditLog(
		ctx context.Context,
		user *User,
		query AuditQuery,
		format services.ExportFormat,
	) ([]byte, string, error)
}

type AuditController struct {
	auditRepo       repositories.AuditLogRepository
	reservationRepo repositories.ReservationRepository
	propertyRepo    repositories.PropertyRepository
	auditLedger     *services.AuditLedgerService
	db              database.DB
	Config          config.Config
	log             logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) AuditControllerInterface {
	return &AuditController{
		auditRepo:       repos.AuditLog,
		reservationRepo: repos.Reservation,
		propertyRepo:    repos.Property,
		auditLedger:     services.AuditLedger,
		db:              db,
		Config:          config,
		log:             logger.New("auditController"),
	}
}

func (q AuditQuery) filter() (repositories.AuditFilter, error) {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return repositories.AuditFilter{}, fmt.Errorf("%w: audit range ends before it starts", types.ErrValidation)
	}

	return repositories.AuditFilter{
		ReservationID: q.ReservationID,
		UserID:        q.UserID,
		Action:        q.Action,
		Field:         q.Field,
		From:          q.From,
		To:            q.To,
	}, nil
}

// paginate clamps page and size and sets the filter's window.
func (q AuditQuery) paginate(filter *repositories.AuditFilter) (page int, size int) {
	page, size = q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = constants.DefaultAuditPageSize
	}
	if size > constants.MaxAuditPageSize {
		size = constants.MaxAuditPageSize
	}

	filter.Limit = size
	filter.Offset = (page - 1) * size
	return page, size
}

// scopedFilter applies the caller's visibility: guests see nothing, owners see
// reservations on their own properties, admins see everything.
func (c *AuditController) scopedFilter(
	ctx context.Context,
	tx *gorm.DB,
	user *User,
	query AuditQuery,
) (repositories.AuditFilter, error) {
	filter, err := query.filter()
	if err != nil {
		return filter, err
	}

	switch {
	case user.IsElevated():
		return filter, nil
	case user.Role == RoleOwner:
		filter.OwnerID = &user.ID
	default:
		return filter, types.ErrPermissionDenied
	}

	if query.ReservationID != nil {
		reservation, err := c.reservationRepo.GetByID(ctx, tx, *query.ReservationID)
		if err != nil {
			return filter, err
		}
		if _, err := c.propertyRepo.GetOwnedBy(ctx, tx, reservation.PropertyID, user.ID); err != nil {
			return filter, err
		}
	}

	return filter, nil
}

func (c *AuditController) page(
	ctx context.Context,
	tx *gorm.DB,
	filter repositories.AuditFilter,
	query AuditQuery,
) (*AuditPage, error) {
	page, size := query.paginate(&filter)

	entries, total, err := c.auditRepo.Find(ctx, tx, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*AuditLogEntry{}
	}

	return &AuditPage{Entries: entries, Total: total, Page: page, PageSize: size}, nil
}

func (c *AuditController) GetAuditTrail(
	ctx context.Context,
	user *User,
	query AuditQuery,
) (*AuditPage, error) {
	tx := c.db.SQLWithContext(ctx)

	filter, err := c.scopedFilter(ctx, tx, user, query)
	if err != nil {
		return nil, err
	}

	return c.page(ctx, tx, filter, query)
}

func (c *AuditController) GetAuditStats(
	ctx context.Context,
	user *User,
	query AuditQuery,
) (*services.AuditStats, error) {
	tx := c.db.SQLWithContext(ctx)

	filter, err := c.scopedFilter(ctx, tx, user, query)
	if err != nil {
		return nil, err
	}

	entries, err := c.auditRepo.FindAll(ctx, tx, filter)
	if err != nil {
		return nil, err
	}

	stats := services.BuildStats(entries)
	return &stats, nil
}

// GetSystemAuditLog is the cross-property view and is limited to admins.
func (c *AuditController) GetSystemAuditLog(
	ctx context.Context,
	user *User,
	query AuditQuery,
) (*AuditPage, error) {
	log := c.log.Function("GetSystemAuditLog")

	if !user.IsElevated() {
		log.Warn("Non-admin requested system audit log", "userID", user.ID, "role", user.Role)
		return nil, types.ErrPermissionDenied
	}

	filter, err := query.filter()
	if err != nil {
		return nil, err
	}

	return c.page(ctx, c.db.SQLWithContext(ctx), filter, query)
}

func (c *AuditController) ExportAuditLog(
	ctx context.Context,
	user *User,
	query AuditQuery,
	format services.ExportFormat,
) ([]byte, string, error) {
	if format != services.ExportJSON && format != services.ExportCSV {
		return nil, "", fmt.Errorf("%w: unsupported export format %q", types.ErrValidation, format)
	}

	tx := c.db.SQLWithContext(ctx)

	filter, err := c.scopedFilter(ctx, tx, user, query)
	if err != nil {
		return nil, "", err
	}

	entries, err := c.auditRepo.FindAll(ctx, tx, filter)
	if err != nil {
		return nil, "", err
	}

	return c.auditLedger.Export(entries, format)
}
