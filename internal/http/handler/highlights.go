package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docmark/internal/http/middleware"
	"docmark/internal/model"
	"docmark/internal/reconcile"
	"docmark/internal/service"
)

type highlightList struct {
	Data []model.Highlight `json:"data"`
}

type highlightRemoved struct {
	HighlightID string `json:"highlight_id"`
	Message     string `json:"message"`
}

type locateRequest struct {
	Runs []reconcile.Run `json:"runs"`
}

type placementList struct {
	Data []reconcile.Placement `json:"data"`
}

// ListHighlights returns the document's anchors in creation order.
//
//	@Summary	List highlights
//	@Tags		highlights
//	@Security	BearerAuth
//	@Param		id	path		string	true	"document id"
//	@Success	200	{object}	highlightList
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{id}/highlights [get]
func ListHighlights(hlSvc service.HighlightService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		list, err := hlSvc.List(c.UserContext(), middleware.OwnerID(c), docID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(highlightList{Data: list})
	}
}

// AddHighlight anchors captured text on a page of the document.
//
//	@Summary	Add a highlight
//	@Tags		highlights
//	@Security	BearerAuth
//	@Accept		json
//	@Param		id		path		string						true	"document id"
//	@Param		body	body		service.AddHighlightInput	true	"anchor"
//	@Success	201		{object}	model.Highlight
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/documents/{id}/highlights [post]
func AddHighlight(hlSvc service.HighlightService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.AddHighlightInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		}
		h, err := hlSvc.Add(c.UserContext(), middleware.OwnerID(c), docID, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	}
}

// UpdateHighlight changes only the fields present in the body.
//
//	@Summary	Update a highlight
//	@Tags		highlights
//	@Security	BearerAuth
//	@Accept		json
//	@Param		id		path		string						true	"document id"
//	@Param		hid		path		string						true	"highlight id"
//	@Param		body	body		service.UpdateHighlightInput	true	"fields to change"
//	@Success	200		{object}	model.Highlight
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/documents/{id}/highlights/{hid} [put]
func UpdateHighlight(hlSvc service.HighlightService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		hid, ok := parseID(c, "hid")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid highlight id format")
		}
		var in service.UpdateHighlightInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		}
		h, err := hlSvc.Update(c.UserContext(), middleware.OwnerID(c), docID, hid, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(h)
	}
}

// DeleteHighlight removes one anchor.
//
//	@Summary	Delete a highlight
//	@Tags		highlights
//	@Security	BearerAuth
//	@Param		id	path		string	true	"document id"
//	@Param		hid	path		string	true	"highlight id"
//	@Success	200	{object}	highlightRemoved
//	@Failure	404	{object}	errorPayload
//	@Failure	503	{object}	errorPayload
//	@Router		/documents/{id}/highlights/{hid} [delete]
func DeleteHighlight(hlSvc service.HighlightService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		hid, ok := parseID(c, "hid")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid highlight id format")
		}
		if err := hlSvc.Remove(c.UserContext(), middleware.OwnerID(c), docID, hid); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(highlightRemoved{HighlightID: hid, Message: "highlight removed"})
	}
}

// LocateHighlights matches the document's anchors on one page against its freshly rendered runs.
//
//	@Summary	Re-attach highlights to rendered text runs
//	@Tags		highlights
//	@Security	BearerAuth
//	@Accept		json
//	@Param		id		path		string			true	"document id"
//	@Param		page	path		int				true	"1-indexed page"
//	@Param		body	body		locateRequest	true	"runs in render order"
//	@Success	200		{object}	placementList
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/documents/{id}/pages/{page}/locate [post]
func LocateHighlights(hlSvc service.HighlightService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		page, err := strconv.Atoi(c.Params("page"))
		if err != nil || page < 1 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
		}
		var req locateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		}
		placements, err := hlSvc.Locate(c.UserContext(), middleware.OwnerID(c), docID, page, req.Runs)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(placementList{Data: placements})
	}
}
