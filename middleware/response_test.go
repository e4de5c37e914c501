package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"certdesk/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperr.Validation("submit", map[string]string{"course_name": "Course name is required!"}), 422, "Validation failed!"},
		{"busy", apperr.ErrBusy, 409, "A request is already in progress!"},
		{"invalid state", fmt.Errorf("acknowledge: %w", apperr.ErrInvalidState), 409, "Action not allowed right now!"},
		{"not found", apperr.NotFound("fetch certificate pdf", "c-404"), 404, "Not found!"},
		{"network", apperr.Network("verify", errors.New("refused")), 502, "Upstream service failed!"},
		{"service", apperr.Service("verify", 500, "boom"), 502, "Upstream service failed!"},
		{"other", errors.New("boom"), 500, "Something went wrong!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return ErrorResponse(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body struct {
				Status  bool   `json:"status"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.False(t, body.Status)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}
