package handler

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docmark/internal/http/middleware"
	"docmark/internal/service"
)

// ListDocuments lists the caller's documents with limit & offset, each with a fresh read URL.
//
//	@Summary	List documents
//	@Tags		documents
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"page size"	default(10)
//	@Param		offset	query		int	false	"offset"	default(0)
//	@Success	200		{object}	service.DocumentListResult
//	@Failure	400		{object}	errorPayload
//	@Failure	503		{object}	errorPayload
//	@Router		/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), middleware.OwnerID(c), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument stores a PDF (multipart/form-data, field name: file, optional title).
//
//	@Summary	Upload a PDF
//	@Tags		documents
//	@Security	BearerAuth
//	@Accept		multipart/form-data
//	@Param		file	formData	file	true	"PDF document"
//	@Param		title	formData	string	false	"display title, defaults to the file name"
//	@Success	201		{object}	service.DocumentView
//	@Failure	400		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Failure	415		{object}	errorPayload
//	@Failure	429		{object}	errorPayload
//	@Failure	503		{object}	errorPayload
//	@Router		/documents [post]
func UploadDocument(docSvc service.DocumentService, maxSize int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if maxSize > 0 && fh.Size > maxSize {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				"file exceeds the "+humanize.Bytes(uint64(maxSize))+" limit")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		title := strings.Clone(c.FormValue("title"))
		if title == "" {
			title = fh.Filename
		}

		doc, err := docSvc.Create(c.UserContext(), middleware.OwnerID(c), title, f, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns one owned document with its highlights and a fresh read URL.
//
//	@Summary	Get a document
//	@Tags		documents
//	@Security	BearerAuth
//	@Param		id	path		string	true	"document id"
//	@Success	200	{object}	service.DocumentView
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Failure	503	{object}	errorPayload
//	@Router		/documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), middleware.OwnerID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes the stored object, then the record.
//
//	@Summary	Delete a document
//	@Tags		documents
//	@Security	BearerAuth
//	@Param		id	path	string	true	"document id"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Failure	503	{object}	errorPayload
//	@Router		/documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), middleware.OwnerID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseID(c *fiber.Ctx, param string) (string, bool) {
	id := strings.Clone(c.Params(param))
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
