package handler

import (
	"net/http"

	"estimatehub/internal/middleware"
	"estimatehub/internal/service"
	"estimatehub/pkg/pagination"
	"estimatehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type FieldDefinitionHandler struct {
	fieldDefService service.FieldDefinitionService
}

func NewFieldDefinitionHandler(fieldDefService service.FieldDefinitionService) *FieldDefinitionHandler {
	return &FieldDefinitionHandler{fieldDefService: fieldDefService}
}

func (h *FieldDefinitionHandler) RegisterRoutes(router *gin.RouterGroup) {
	defs := router.Group("/api/field-definitions", middleware.RequireRole("admin"))
	{
		defs.GET("", h.ListFieldDefinitions)
		defs.PUT("/:id/approve", h.ApproveFieldDefinition)
		defs.PUT("/:id/reject", h.RejectFieldDefinition)
		defs.PATCH("/:id", h.UpdateFieldDefinition)
		defs.DELETE("/:id", h.DeleteFieldDefinition)
		defs.POST("/approve-all", h.ApproveAllFieldDefinitions)
	}
}

// ListFieldDefinitions returns the governed schema, optionally by status
// @Summary      List field definitions
// @Tags         field-definitions
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Param        status  query     string  false  "Filter by status: pending_review, approved"
// @Success      200     {object}  response.Response
// @Router       /api/field-definitions [get]
func (h *FieldDefinitionHandler) ListFieldDefinitions(c *gin.Context) {
	p := pagination.Parse(c)
	defs, total, err := h.fieldDefService.List(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, defs, p.Page, p.Limit, total))
}

// ApproveFieldDefinition marks a key as part of the trusted schema
// @Summary      Approve field definition
// @Tags         field-definitions
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Field definition ID"
// @Success      200  {object}  response.Response
// @Router       /api/field-definitions/{id}/approve [put]
func (h *FieldDefinitionHandler) ApproveFieldDefinition(c *gin.Context) {
	def, err := h.fieldDefService.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, def))
}

// RejectFieldDefinition demotes a key back to pending_review (not a delete)
// @Summary      Reject field definition
// @Tags         field-definitions
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Field definition ID"
// @Success      200  {object}  response.Response
// @Router       /api/field-definitions/{id}/reject [put]
func (h *FieldDefinitionHandler) RejectFieldDefinition(c *gin.Context) {
	def, err := h.fieldDefService.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, def))
}

// UpdateFieldDefinition edits label/description/type at any status
// @Summary      Update field definition
// @Tags         field-definitions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                                true  "Field definition ID"
// @Param        payload  body  service.UpdateFieldDefinitionRequest  true  "Changes"
// @Success      200  {object}  response.Response
// @Router       /api/field-definitions/{id} [patch]
func (h *FieldDefinitionHandler) UpdateFieldDefinition(c *gin.Context) {
	var req service.UpdateFieldDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	def, err := h.fieldDefService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, def))
}

// DeleteFieldDefinition hard-deletes a definition; item fields keep their data
// @Summary      Delete field definition
// @Tags         field-definitions
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Field definition ID"
// @Success      200  {object}  response.Response
// @Router       /api/field-definitions/{id} [delete]
func (h *FieldDefinitionHandler) DeleteFieldDefinition(c *gin.Context) {
	if err := h.fieldDefService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Field definition deleted successfully"}))
}

// ApproveAllFieldDefinitions approves every pending definition independently
// @Summary      Approve all pending field definitions
// @Tags         field-definitions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/field-definitions/approve-all [post]
func (h *FieldDefinitionHandler) ApproveAllFieldDefinitions(c *gin.Context) {
	result, err := h.fieldDefService.ApproveAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
