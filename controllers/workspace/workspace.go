package controllers

import (
	"bytes"

	"certdesk/controllers/previewRenderer"
	"certdesk/logger"
	"certdesk/middleware"
	"certdesk/models"
	"certdesk/session"
	"certdesk/utils/pipeline"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the workspace endpoints
type Handler struct {
	log   *logger.Logger
	store *session.Store
	pdf   previewRenderer.PDFFetcher
}

func NewHandler(log *logger.Logger, store *session.Store, pdf previewRenderer.PDFFetcher) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{log: log, store: store, pdf: pdf}
}

func (h *Handler) workspace(c *fiber.Ctx) (*session.Workspace, error) {
	id, _ := c.Locals("workspaceID").(string)
	return h.store.Get(id)
}

func workspaceView(w *session.Workspace) fiber.Map {
	return fiber.Map{
		"workspace_id": w.ID,
		"form":         w.Form.Snapshot(),
		"chat":         w.Chat.Session(),
		"chat_sending": w.Chat.Sending(),
		"preview":      w.Preview(),
	}
}

// CreateWorkspace opens a new workspace
func (h *Handler) CreateWorkspace(c *fiber.Ctx) error {
	w := h.store.Create()
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Workspace created successfully!", workspaceView(w))
}

func (h *Handler) GetWorkspace(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Workspace fetched successfully!", workspaceView(w))
}

func (h *Handler) DeleteWorkspace(c *fiber.Ctx) error {
	id, _ := c.Locals("workspaceID").(string)
	if !h.store.Delete(id) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Workspace not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Workspace closed successfully!", nil)
}

// UpdateDraft edits the certificate form fields
func (h *Handler) UpdateDraft(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	patch := c.Locals("draftPatch").(models.DraftPatch)

	draft, err := w.Form.UpdateDraft(patch)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Draft updated successfully!", draft)
}

// SubmitForm runs the appreciation and generation steps for the current draft
func (h *Handler) SubmitForm(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if _, err := w.Form.Submit(c.UserContext()); err != nil {
		if step := pipeline.FailedStep(err); step != "" {
			h.log.Warn("certificate submission failed", "workspace_id", w.ID, "step", step, "error", err)
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Error generating certificate. Please try again.", w.Form.Snapshot())
		}
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate generated successfully!", workspaceView(w))
}

// AcknowledgeForm dismisses a failed submission
func (h *Handler) AcknowledgeForm(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := w.Form.Acknowledge(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Form ready for editing!", w.Form.Snapshot())
}

// DownloadFormPDF streams the PDF of the certificate the form issued
func (h *Handler) DownloadFormPDF(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	body, name, err := w.Form.DownloadPDF(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	c.Attachment(name)
	return c.Send(body)
}

// ChatSend posts a user message to the verification conversation
func (h *Handler) ChatSend(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reply, err := w.Chat.Send(c.UserContext(), c.Locals("chatText").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Message sent successfully!", fiber.Map{
		"reply":   reply,
		"session": w.Chat.Session(),
	})
}

// ChatScan verifies a certificate id read off a QR code
func (h *Handler) ChatScan(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reply, err := w.Chat.Scan(c.UserContext(), c.Locals("certificateID").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate scanned successfully!", fiber.Map{
		"reply":   reply,
		"session": w.Chat.Session(),
	})
}

func (h *Handler) GetChat(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Conversation fetched successfully!", fiber.Map{
		"session": w.Chat.Session(),
		"sending": w.Chat.Sending(),
	})
}

// GetPreview returns the preview document of the current certificate
func (h *Handler) GetPreview(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Preview fetched successfully!", w.Preview())
}

func (h *Handler) GetPreviewText(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	c.Type("txt", "utf-8")
	return c.SendString(w.Preview().Text())
}

func (h *Handler) GetPreviewPNG(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	var buf bytes.Buffer
	if err := previewRenderer.EncodePNG(w.Preview(), &buf); err != nil {
		h.log.Error("preview rendering failed", "workspace_id", w.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to render preview!", nil)
	}
	c.Type("png")
	return c.Send(buf.Bytes())
}

// DownloadPreviewPDF is the preview panel's download action
func (h *Handler) DownloadPreviewPDF(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	body, name, err := previewRenderer.DownloadPDF(c.UserContext(), h.pdf, w.Current())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	c.Attachment(name)
	return c.Send(body)
}
