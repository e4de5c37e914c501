package workspaceValidator

import (
	"strings"

	"certdesk/middleware"
	"certdesk/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// WorkspaceID checks the :id route param
func WorkspaceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		if _, err := uuid.Parse(id); err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workspace not found!", nil)
		}
		c.Locals("workspaceID", id)
		return c.Next()
	}
}

func UpdateDraft() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(models.DraftPatch)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Course type must be one of the known types
		if reqData.CourseType != nil && !reqData.CourseType.Valid() {
			errors["course_type"] = "Course type must be one of technical, academic, professional!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("draftPatch", *reqData)
		return c.Next()
	}
}

func ChatSend() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Text string `json:"text" form:"text"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Text) == "" {
			errors["text"] = "Message is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("chatText", reqData.Text)
		return c.Next()
	}
}

func ChatScan() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CertificateID string `json:"certificate_id" form:"certificate_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.CertificateID) == "" {
			errors["certificate_id"] = "Certificate ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("certificateID", strings.TrimSpace(reqData.CertificateID))
		return c.Next()
	}
}
