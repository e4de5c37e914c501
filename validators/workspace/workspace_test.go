package workspaceValidator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"certdesk/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, app *fiber.App, method, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestWorkspaceID(t *testing.T) {
	app := fiber.New(fiber.Config{Immutable: true})
	app.Get("/w/:id", WorkspaceID(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("workspaceID").(string))
	})

	assert.Equal(t, 200, send(t, app, "GET", "/w/"+uuid.NewString(), ""))
	assert.Equal(t, 404, send(t, app, "GET", "/w/not-a-uuid", ""))
}

func TestUpdateDraft(t *testing.T) {
	var got models.DraftPatch
	app := fiber.New(fiber.Config{Immutable: true})
	app.Put("/", UpdateDraft(), func(c *fiber.Ctx) error {
		got = c.Locals("draftPatch").(models.DraftPatch)
		return c.SendStatus(204)
	})

	assert.Equal(t, 204, send(t, app, "PUT", "/", `{"recipient_name":"Ada","course_type":"academic"}`))
	require.NotNil(t, got.RecipientName)
	assert.Equal(t, "Ada", *got.RecipientName)
	assert.Nil(t, got.CourseName)

	assert.Equal(t, 422, send(t, app, "PUT", "/", `{"course_type":"cooking"}`))
	assert.Equal(t, 400, send(t, app, "PUT", "/", `{`))
}

func TestChatValidators(t *testing.T) {
	app := fiber.New(fiber.Config{Immutable: true})
	app.Post("/send", ChatSend(), func(c *fiber.Ctx) error { return c.SendStatus(204) })
	app.Post("/scan", ChatScan(), func(c *fiber.Ctx) error { return c.SendStatus(204) })

	assert.Equal(t, 204, send(t, app, "POST", "/send", `{"text":"C-1"}`))
	assert.Equal(t, 422, send(t, app, "POST", "/send", `{"text":"   "}`))
	assert.Equal(t, 204, send(t, app, "POST", "/scan", `{"certificate_id":"C-1"}`))
	assert.Equal(t, 422, send(t, app, "POST", "/scan", `{}`))
}
