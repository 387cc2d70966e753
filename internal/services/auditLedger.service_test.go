package services

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/testhelpers"
	"staylane/internal/types"
	"staylane/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeChange(t *testing.T) {
	tests := []struct {
		name    string
		action  models.AuditAction
		details ChangeDetails
		want    string
	}{
		{name: "created", action: models.AuditActionCreated, want: "Reservation created"},
		{
			name:    "cancelled with reason",
			action:  models.AuditActionCancelled,
			details: ChangeDetails{Metadata: map[string]any{"reason": "Flight cancelled"}},
			want:    "Reservation cancelled: Flight cancelled",
		},
		{name: "cancelled without reason", action: models.AuditActionCancelled, want: "Reservation cancelled"},
		{
			name:    "status changed",
			action:  models.AuditActionStatusChanged,
			details: ChangeDetails{OldValue: utils.Ptr("confirmed"), NewValue: utils.Ptr("cancelled")},
			want:    "Status changed from confirmed to cancelled",
		},
		{
			name:    "missing old value",
			action:  models.AuditActionGuestCountChanged,
			details: ChangeDetails{NewValue: utils.Ptr("4")},
			want:    "Guest count changed from (none) to 4",
		},
		{
			name:    "field updated",
			action:  models.AuditActionFieldUpdated,
			details: ChangeDetails{Field: utils.Ptr("notes"), OldValue: utils.Ptr("a"), NewValue: utils.Ptr("b")},
			want:    "notes updated from a to b",
		},
		{name: "unknown action", action: "checked_in", want: "checked_in recorded"},
		{
			name:    "unknown action with field",
			action:  "checked_in",
			details: ChangeDetails{Field: utils.Ptr("status")},
			want:    "checked_in recorded for status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeChange(tt.action, tt.details))
		})
	}
}

func auditEntry(action models.AuditAction, user uuid.UUID, at time.Time, field *string) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		ID:            uuid.New(),
		ReservationID: uuid.New(),
		UserID:        user,
		UserRole:      models.RoleGuest,
		Action:        action,
		Field:         field,
		Description:   DescribeChange(action, ChangeDetails{Field: field}),
		CreatedAt:     at,
	}
}

func TestBuildStats(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	entries := []*models.AuditLogEntry{
		auditEntry(models.AuditActionCreated, alice, day, nil),
		auditEntry(models.AuditActionFieldUpdated, alice, day.Add(2*time.Hour), utils.Ptr("notes")),
		auditEntry(models.AuditActionFieldUpdated, bob, day.AddDate(0, 0, 2), utils.Ptr("notes")),
		auditEntry(models.AuditActionCancelled, bob, day.AddDate(0, 0, 1), nil),
	}

	stats := BuildStats(entries)

	assert.Equal(t, 4, stats.TotalEntries)
	assert.Equal(t, 2, stats.ByAction[models.AuditActionFieldUpdated])
	assert.Equal(t, 1, stats.ByAction[models.AuditActionCancelled])
	assert.Equal(t, 2, stats.ByUser[alice])
	assert.Equal(t, 2, stats.ByUser[bob])
	assert.Equal(t, map[string]int{"notes": 2}, stats.ByField)
	assert.Equal(t, []DailyCount{
		{Date: "2025-06-01", Count: 2},
		{Date: "2025-06-02", Count: 1},
		{Date: "2025-06-03", Count: 1},
	}, stats.Timeline)
	require.NotNil(t, stats.MostRecent)
	assert.Equal(t, entries[2].ID, stats.MostRecent.ID)

	empty := BuildStats(nil)
	assert.Zero(t, empty.TotalEntries)
	assert.Empty(t, empty.Timeline)
	assert.Nil(t, empty.MostRecent)
}

func TestAuditLedgerService_Export(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	service := NewAuditLedgerService(h.DB, repositories.New(h.DB), h.Clock)

	entry := auditEntry(models.AuditActionCancelled, uuid.New(), testhelpers.DefaultNow, nil)
	entry.Description = "Reservation cancelled: plans changed, sorry"
	entry.Metadata = map[string]any{"refundAmount": "500.00"}
	entries := []*models.AuditLogEntry{entry}

	t.Run("csv", func(t *testing.T) {
		body, contentType, err := service.Export(entries, ExportCSV)
		require.NoError(t, err)
		assert.Equal(t, "text/csv", contentType)

		records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, csvHeader, records[0])
		assert.Equal(t, entry.ID.String(), records[1][0])
		assert.Equal(t, "2025-06-01T09:00:00Z", records[1][1])
		assert.Equal(t, "CANCELLED", records[1][5])
		assert.Equal(t, entry.Description, records[1][9])
		assert.JSONEq(t, `{"refundAmount":"500.00"}`, records[1][10])
	})

	t.Run("json", func(t *testing.T) {
		body, contentType, err := service.Export(entries, ExportJSON)
		require.NoError(t, err)
		assert.Equal(t, "application/json", contentType)

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(body, &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "CANCELLED", decoded[0]["action"])
	})

	t.Run("empty json is an array", func(t *testing.T) {
		body, _, err := service.Export(nil, ExportJSON)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(body))
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := service.Export(entries, "xml")
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestAuditLedgerService_LogChangeAndPurge(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	repos := repositories.New(h.DB)
	reservationID, userID := uuid.New(), uuid.New()

	old := NewAuditLedgerService(h.DB, repos, utils.FixedClock{At: testhelpers.DefaultNow.AddDate(-2, 0, 0)})
	current := NewAuditLedgerService(h.DB, repos, h.Clock)

	_, err := old.LogChange(h.Ctx, h.DB.SQL, reservationID, userID, models.RoleGuest, models.AuditActionCreated, ChangeDetails{})
	require.NoError(t, err)

	entry, err := current.LogChange(
		h.Ctx,
		h.DB.SQL,
		reservationID,
		userID,
		models.RoleGuest,
		models.AuditActionCancelled,
		ChangeDetails{Metadata: map[string]any{"reason": "Weather"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "Reservation cancelled: Weather", entry.Description)
	assert.Equal(t, testhelpers.DefaultNow, entry.CreatedAt)
	assert.Equal(t, int64(2), h.Count(&models.AuditLogEntry{}, "reservation_id = ?", reservationID))

	_, err = current.PurgeExpired(h.Ctx, 0)
	assert.Error(t, err)

	deleted, err := current.PurgeExpired(h.Ctx, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, int64(1), h.Count(&models.AuditLogEntry{}, "reservation_id = ?", reservationID))

	deleted, err = current.PurgeExpired(h.Ctx, 365)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
