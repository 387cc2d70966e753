package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"staylane/config"
	"staylane/internal/models"
	"staylane/internal/repositories"
	"staylane/internal/testhelpers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *testhelpers.TestHelper) {
	h := testhelpers.NewTestHelper(t)
	m := New(h.DB, config.Config{JWTSecret: testSecret, JWTIssuer: "staylane"}, repositories.New(h.DB))

	app := fiber.New()
	app.Use(m.TraceID())
	app.Get("/me", m.RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(GetUser(c).ID.String())
	})
	app.Get("/admin", m.RequireAuth(), m.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app, h
}

func bearer(t *testing.T, secret, issuer string, userID uuid.UUID, ttl time.Duration) string {
	token, err := IssueToken(secret, issuer, userID, ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRequireAuth(t *testing.T) {
	app, h := newTestApp(t)
	guest := h.CreateTestUser(models.RoleGuest)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: fiber.StatusUnauthorized},
		{name: "not a bearer token", header: "Basic abc", wantStatus: fiber.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: fiber.StatusUnauthorized},
		{
			name:       "wrong secret",
			header:     bearer(t, "other-secret", "staylane", guest.ID, time.Hour),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "wrong issuer",
			header:     bearer(t, testSecret, "someone-else", guest.ID, time.Hour),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "expired",
			header:     bearer(t, testSecret, "staylane", guest.ID, -time.Minute),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "unknown user",
			header:     bearer(t, testSecret, "staylane", uuid.New(), time.Hour),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "valid token",
			header:     bearer(t, testSecret, "staylane", guest.ID, time.Hour),
			wantStatus: fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusOK {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, guest.ID.String(), string(body))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app, h := newTestApp(t)

	tests := []struct {
		name       string
		role       models.UserRole
		wantStatus int
	}{
		{name: "guest", role: models.RoleGuest, wantStatus: fiber.StatusForbidden},
		{name: "owner", role: models.RoleOwner, wantStatus: fiber.StatusForbidden},
		{name: "admin", role: models.RoleAdmin, wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := h.CreateTestUser(tt.role)

			req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
			req.Header.Set(fiber.HeaderAuthorization, bearer(t, testSecret, "staylane", user.ID, time.Hour))

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestTraceID(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(TraceIDHeader, "trace-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "trace-123", resp.Header.Get(TraceIDHeader))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get(TraceIDHeader))
	assert.NoError(t, err, "generated trace id should be a uuid")
}
