package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-metrics/internal/api/dto"
	"github.com/spec-kit/ticket-metrics/internal/auth"
	"github.com/spec-kit/ticket-metrics/internal/service"
	apperrors "github.com/spec-kit/ticket-metrics/pkg/util"
)

const uploadField = "file"

// DocumentsHandler manages the session's uploaded CSV.
type DocumentsHandler struct {
	service *service.DocumentService
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(documentService *service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{service: documentService}
}

// UploadAck POST /api/upload-csv. It accepts any body and always acknowledges.
func (h *DocumentsHandler) UploadAck(c *fiber.Ctx) error {
	return c.JSON(dto.UploadAckResponse{Message: "CSV upload endpoint ready", Received: true})
}

// Upload POST /api/documents.
func (h *DocumentsHandler) Upload(c *fiber.Ctx) error {
	principal, err := auth.RequireSession(c)
	if err != nil {
		return err
	}

	input, err := readUpload(c)
	if err != nil {
		return err
	}

	doc, err := h.service.Store(c.UserContext(), principal.SessionID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewDocumentResponse(doc)})
}

// Get GET /api/documents.
func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Get(c.UserContext(), principal.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDocumentResponse(doc)})
}

// Delete DELETE /api/documents.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Clear(c.UserContext(), principal.SessionID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func readUpload(c *fiber.Ctx) (service.DocumentInput, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return service.DocumentInput{
			FileName: c.Query("filename"),
			Content:  append([]byte(nil), c.Body()...),
		}, nil
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		return service.DocumentInput{}, apperrors.NewValidationError("multipart upload requires a \"file\" field", nil)
	}
	f, err := header.Open()
	if err != nil {
		return service.DocumentInput{}, apperrors.NewInternalError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.DocumentInput{}, apperrors.NewInternalError(err)
	}
	return service.DocumentInput{FileName: header.Filename, Content: content}, nil
}
