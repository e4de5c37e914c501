package workspaceRoutes

import (
	controllers "certdesk/controllers/workspace"
	validators "certdesk/validators/workspace"

	"github.com/gofiber/fiber/v2"
)

// NewApp builds the fiber app. Request values are kept in workspaces past the handler,
// so they must not alias fasthttp's reused buffers.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		Immutable: true,
	})
}

func SetupWorkspaceRoutes(app *fiber.App, h *controllers.Handler) {
	workspaceGroup := app.Group("/workspaces")

	workspaceGroup.Post("/", h.CreateWorkspace)
	workspaceGroup.Get("/:id", validators.WorkspaceID(), h.GetWorkspace)
	workspaceGroup.Delete("/:id", validators.WorkspaceID(), h.DeleteWorkspace)

	// Certificate form
	workspaceGroup.Put("/:id/form", validators.WorkspaceID(), validators.UpdateDraft(), h.UpdateDraft)
	workspaceGroup.Post("/:id/form/submit", validators.WorkspaceID(), h.SubmitForm)
	workspaceGroup.Post("/:id/form/acknowledge", validators.WorkspaceID(), h.AcknowledgeForm)
	workspaceGroup.Get("/:id/form/pdf", validators.WorkspaceID(), h.DownloadFormPDF)

	// Verification chat
	workspaceGroup.Get("/:id/chat", validators.WorkspaceID(), h.GetChat)
	workspaceGroup.Post("/:id/chat/send", validators.WorkspaceID(), validators.ChatSend(), h.ChatSend)
	workspaceGroup.Post("/:id/chat/scan", validators.WorkspaceID(), validators.ChatScan(), h.ChatScan)

	// Preview
	workspaceGroup.Get("/:id/preview", validators.WorkspaceID(), h.GetPreview)
	workspaceGroup.Get("/:id/preview/text", validators.WorkspaceID(), h.GetPreviewText)
	workspaceGroup.Get("/:id/preview.png", validators.WorkspaceID(), h.GetPreviewPNG)
	workspaceGroup.Get("/:id/preview/pdf", validators.WorkspaceID(), h.DownloadPreviewPDF)
}
