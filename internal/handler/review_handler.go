package handler

import (
	"net/http"

	"estimatehub/internal/middleware"
	"estimatehub/internal/service"
	"estimatehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/api/review/sessions", middleware.RequireAuth())
	{
		sessions.POST("", h.StartSession)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/advance", h.AdvanceStep)
		sessions.POST("/:id/retreat", h.RetreatStep)
		sessions.POST("/:id/jump", h.JumpToDocument)
		sessions.PUT("/:id/assignment", h.SetAssignment)
		sessions.POST("/:id/finish", h.FinishCurrentDocument)

		sessions.PATCH("/:id/items/:itemID", h.UpdateItem)
		sessions.DELETE("/:id/items/:itemID", h.DeleteItem)
		sessions.POST("/:id/items/:itemID/fields", h.AddField)
		sessions.PATCH("/:id/fields/:fieldID", h.UpdateField)
		sessions.DELETE("/:id/fields/:fieldID", h.DeleteField)
	}
}

// StartSession opens a review session over a batch of extracted estimates
// @Summary      Start a batch review session
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.StartSessionRequest  true  "Estimate IDs in review order"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/review/sessions [post]
func (h *ReviewHandler) StartSession(c *gin.Context) {
	var req service.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	view, err := h.reviewService.StartSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, view))
}

// GetSession returns the full session view
// @Summary      Get a review session
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/review/sessions/{id} [get]
func (h *ReviewHandler) GetSession(c *gin.Context) {
	view, err := h.reviewService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// AdvanceStep moves Customer -> LineItems within the current document
// @Summary      Advance one step
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Router       /api/review/sessions/{id}/advance [post]
func (h *ReviewHandler) AdvanceStep(c *gin.Context) {
	view, err := h.reviewService.AdvanceStep(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// RetreatStep moves LineItems -> Customer within the current document
// @Summary      Retreat one step
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Router       /api/review/sessions/{id}/retreat [post]
func (h *ReviewHandler) RetreatStep(c *gin.Context) {
	view, err := h.reviewService.RetreatStep(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

type jumpRequest struct {
	DocumentIndex *int `json:"document_index" binding:"required"`
}

// JumpToDocument repositions the wizard via the progress strip
// @Summary      Jump to a document
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string       true  "Session ID"
// @Param        payload  body  jumpRequest  true  "Target document index"
// @Success      200  {object}  response.Response
// @Router       /api/review/sessions/{id}/jump [post]
func (h *ReviewHandler) JumpToDocument(c *gin.Context) {
	var req jumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	view, err := h.reviewService.JumpToDocument(c.Request.Context(), c.Param("id"), *req.DocumentIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// SetAssignment records the customer decision for the current document
// @Summary      Set customer assignment
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Session ID"
// @Param        payload  body  service.AssignmentRequest  true  "Assignment mode and selection"
// @Success      200  {object}  response.Response
// @Router       /api/review/sessions/{id}/assignment [put]
func (h *ReviewHandler) SetAssignment(c *gin.Context) {
	var req service.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	view, err := h.reviewService.SetAssignment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// FinishCurrentDocument commits the assignment and advances the batch
// @Summary      Finish the current document
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/review/sessions/{id}/finish [post]
func (h *ReviewHandler) FinishCurrentDocument(c *gin.Context) {
	view, err := h.reviewService.FinishCurrentDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// UpdateItem edits a line item's label/code/quantity
// @Summary      Update a line item
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Session ID"
// @Param        itemID   path  string                     true  "Item ID"
// @Param        payload  body  service.UpdateItemRequest  true  "Item fields"
// @Success      200  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/review/sessions/{id}/items/{itemID} [patch]
func (h *ReviewHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	view, err := h.reviewService.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("itemID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// DeleteItem removes a line item (and its fields)
// @Summary      Delete a line item
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Param        id      path  string  true  "Session ID"
// @Param        itemID  path  string  true  "Item ID"
// @Success      200  {object}  response.Response
// @Router       /api/review/sessions/{id}/items/{itemID} [delete]
func (h *ReviewHandler) DeleteItem(c *gin.Context) {
	view, err := h.reviewService.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("itemID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// AddField attaches a manual field to a line item
// @Summary      Add a field
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Session ID"
// @Param        itemID   path  string                   true  "Item ID"
// @Param        payload  body  service.AddFieldRequest  true  "Field payload"
// @Success      201  {object}  response.Response
// @Router       /api/review/sessions/{id}/items/{itemID}/fields [post]
func (h *ReviewHandler) AddField(c *gin.Context) {
	var req service.AddFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	view, err := h.reviewService.AddField(c.Request.Context(), c.Param("id"), c.Param("itemID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, view))
}

// UpdateField edits a field's value/label/type
// @Summary      Update a field
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Session ID"
// @Param        fieldID  path  string                      true  "Field ID"
// @Param        payload  body  service.UpdateFieldRequest  true  "Field changes"
// @Success      200  {object}  response.Response
// @Router       /api/review/sessions/{id}/fields/{fieldID} [patch]
func (h *ReviewHandler) UpdateField(c *gin.Context) {
	var req service.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	view, err := h.reviewService.UpdateField(c.Request.Context(), c.Param("id"), c.Param("fieldID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// DeleteField removes a field from a line item
// @Summary      Delete a field
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Param        id       path  string  true  "Session ID"
// @Param        fieldID  path  string  true  "Field ID"
// @Success      200  {object}  response.Response
// @Router       /api/review/sessions/{id}/fields/{fieldID} [delete]
func (h *ReviewHandler) DeleteField(c *gin.Context) {
	view, err := h.reviewService.DeleteField(c.Request.Context(), c.Param("id"), c.Param("fieldID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}
