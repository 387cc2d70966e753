package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"staylane/internal/database"
	"staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/types"
	"staylane/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ChangeDetails are the optional parts of an audit entry.
type ChangeDetails struct {
	Field    *string
	OldValue *string
	NewValue *string
	Metadata map[string]any
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AuditStats struct {
	TotalEntries int                        `json:"totalEntries"`
	ByAction     map[models.AuditAction]int `json:"byAction"`
	ByUser       map[uuid.UUID]int          `json:"byUser"`
	ByField      map[string]int             `json:"byField"`
	Timeline     []DailyCount               `json:"timeline"`
	MostRecent   *models.AuditLogEntry      `json:"mostRecent,omitempty"`
}

type AuditLedgerService struct {
	db        database.DB
	auditRepo repositories.AuditLogRepository
	clock     utils.Clock
	log       logger.Logger
}

func NewAuditLedgerService(
	db database.DB,
	repos repositories.Repository,
	clock utils.Clock,
) *AuditLedgerService {
	return &AuditLedgerService{
		db:        db,
		auditRepo: repos.AuditLog,
		clock:     clock,
		log:       logger.New("auditLedgerService"),
	}
}

type describeFunc func(d ChangeDetails) string

var actionDescriptions = map[models.AuditAction]describeFunc{
	models.AuditActionCreated: func(d ChangeDetails) string {
		return "Reservation created"
	},
	models.AuditActionCancelled: func(d ChangeDetails) string {
		if reason, ok := d.Metadata["reason"].(string); ok && reason != "" {
			return fmt.Sprintf("Reservation cancelled: %s", reason)
		}
		return "Reservation cancelled"
	},
	models.AuditActionStatusChanged: func(d ChangeDetails) string {
		return fmt.Sprintf("Status changed from %s to %s", value(d.OldValue), value(d.NewValue))
	},
	models.AuditActionDatesChanged: func(d ChangeDetails) string {
		return fmt.Sprintf("Dates changed from %s to %s", value(d.OldValue), value(d.NewValue))
	},
	models.AuditActionGuestCountChanged: func(d ChangeDetails) string {
		return fmt.Sprintf("Guest count changed from %s to %s", value(d.OldValue), value(d.NewValue))
	},
	models.AuditActionPriceChanged: func(d ChangeDetails) string {
		return fmt.Sprintf("Total price changed from %s to %s", value(d.OldValue), value(d.NewValue))
	},
	models.AuditActionRatePlanChanged: func(d ChangeDetails) string {
		return fmt.Sprintf("Rate plan changed from %s to %s", value(d.OldValue), value(d.NewValue))
	},
	models.AuditActionRefundIssued: func(d ChangeDetails) string {
		return fmt.Sprintf("Refund of %s issued", value(d.NewValue))
	},
	models.AuditActionNoteAdded: func(d ChangeDetails) string {
		return "Note added"
	},
	models.AuditActionFieldUpdated: func(d ChangeDetails) string {
		return fmt.Sprintf("%s updated from %s to %s", value(d.Field), value(d.OldValue), value(d.NewValue))
	},
}

func value(s *string) string {
	if s == nil || *s == "" {
		return "(none)"
	}
	return *s
}

// DescribeChange renders the human readable description stored with an entry.
func DescribeChange(action models.AuditAction, details ChangeDetails) string {
	if describe, ok := actionDescriptions[action]; ok {
		return describe(details)
	}
	if details.Field != nil {
		return fmt.Sprintf("%s recorded for %s", action, *details.Field)
	}
	return fmt.Sprintf("%s recorded", action)
}

// LogChange appends one entry using tx so it commits or rolls back with the
// change it records.
func (s *AuditLedgerService) LogChange(
	ctx context.Context,
	tx *gorm.DB,
	reservationID uuid.UUID,
	userID uuid.UUID,
	role models.UserRole,
	action models.AuditAction,
	details ChangeDetails,
) (*models.AuditLogEntry, error) {
	entry := &models.AuditLogEntry{
		ReservationID: reservationID,
		UserID:        userID,
		UserRole:      role,
		Action:        action,
		Field:         details.Field,
		OldValue:      details.OldValue,
		NewValue:      details.NewValue,
		Description:   DescribeChange(action, details),
		CreatedAt:     s.clock.Now(),
	}
	if len(details.Metadata) > 0 {
		entry.Metadata = datatypes.JSONMap(details.Metadata)
	}

	if err := s.auditRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// BuildStats aggregates entries; timeline days are UTC and ascending.
func BuildStats(entries []*models.AuditLogEntry) AuditStats {
	stats := AuditStats{
		TotalEntries: len(entries),
		ByAction:     make(map[models.AuditAction]int),
		ByUser:       make(map[uuid.UUID]int),
		ByField:      make(map[string]int),
		Timeline:     []DailyCount{},
	}

	perDay := make(map[string]int)
	for _, entry := range entries {
		stats.ByAction[entry.Action]++
		stats.ByUser[entry.UserID]++
		if entry.Field != nil {
			stats.ByField[*entry.Field]++
		}
		perDay[utils.FormatDate(utils.DateOnly(entry.CreatedAt))]++

		if stats.MostRecent == nil || entry.CreatedAt.After(stats.MostRecent.CreatedAt) {
			stats.MostRecent = entry
		}
	}

	for day, count := range perDay {
		stats.Timeline = append(stats.Timeline, DailyCount{Date: day, Count: count})
	}
	sort.Slice(stats.Timeline, func(i, j int) bool {
		return stats.Timeline[i].Date < stats.Timeline[j].Date
	})

	return stats
}

var csvHeader = []string{
	"id",
	"created_at",
	"reservation_id",
	"user_id",
	"user_role",
	"action",
	"field",
	"old_value",
	"new_value",
	"description",
	"metadata",
}

// Export serialises entries and reports the content type to serve them with.
func (s *AuditLedgerService) Export(
	entries []*models.AuditLogEntry,
	format ExportFormat,
) ([]byte, string, error) {
	log := s.log.Function("Export")

	switch format {
	case ExportJSON:
		if entries == nil {
			entries = []*models.AuditLogEntry{}
		}
		body, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, "", log.Err("failed to encode audit export", err)
		}
		return body, "application/json", nil

	case ExportCSV:
		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		if err := writer.Write(csvHeader); err != nil {
			return nil, "", log.Err("failed to write csv header", err)
		}
		for _, entry := range entries {
			metadata := ""
			if len(entry.Metadata) > 0 {
				raw, err := entry.Metadata.MarshalJSON()
				if err != nil {
					return nil, "", log.Err("failed to encode metadata", err, "entryID", entry.ID)
				}
				metadata = string(raw)
			}
			record := []string{
				entry.ID.String(),
				entry.CreatedAt.UTC().Format(time.RFC3339),
				entry.ReservationID.String(),
				entry.UserID.String(),
				string(entry.UserRole),
				string(entry.Action),
				deref(entry.Field),
				deref(entry.OldValue),
				deref(entry.NewValue),
				entry.Description,
				metadata,
			}
			if err := writer.Write(record); err != nil {
				return nil, "", log.Err("failed to write csv record", err, "entryID", entry.ID)
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", log.Err("failed to flush csv export", err)
		}
		return buf.Bytes(), "text/csv", nil
	}

	return nil, "", fmt.Errorf("%w: unsupported export format %q", types.ErrValidation, format)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PurgeExpired deletes entries older than retentionDays and returns how many
// were removed. This is the only path that ever deletes audit entries.
func (s *AuditLedgerService) PurgeExpired(ctx context.Context, retentionDays int) (int64, error) {
	log := s.log.Function("PurgeExpired")

	if retentionDays <= 0 {
		return 0, log.Error("retention must be positive", "retentionDays", retentionDays)
	}

	cutoff := s.clock.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.auditRepo.DeleteOlderThan(ctx, s.db.SQLWithContext(ctx), cutoff)
	if err != nil {
		return 0, err
	}

	log.Info("Purged expired audit entries", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
