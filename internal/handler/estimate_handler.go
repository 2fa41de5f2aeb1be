package handler

import (
	"net/http"

	"estimatehub/internal/middleware"
	"estimatehub/internal/service"
	"estimatehub/pkg/pagination"
	"estimatehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type EstimateHandler struct {
	estimateService service.EstimateService
	exportService   service.ExportService
}

func NewEstimateHandler(estimateService service.EstimateService, exportService service.ExportService) *EstimateHandler {
	return &EstimateHandler{estimateService: estimateService, exportService: exportService}
}

func (h *EstimateHandler) RegisterRoutes(router *gin.RouterGroup) {
	estimates := router.Group("/api/estimates", middleware.RequireAuth())
	{
		estimates.GET("", h.ListEstimates)
		estimates.GET("/:id", h.GetEstimate)
		estimates.DELETE("/:id", h.DeleteEstimate)
		estimates.POST("/:id/process", h.ProcessEstimate)
		estimates.GET("/:id/preview", h.PreviewEstimate)
		estimates.GET("/:id/export", h.ExportEstimate)
	}
}

// ListEstimates returns paginated estimates with optional status/search filter
// @Summary      List estimates
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Param        status  query     string  false  "Filter by extraction status: pending, processing, done, error"
// @Param        search  query     string  false  "Search by file name or extracted customer name"
// @Success      200     {object}  response.Response
// @Router       /api/estimates [get]
func (h *EstimateHandler) ListEstimates(c *gin.Context) {
	p := pagination.Parse(c)
	status := c.Query("status")
	search := c.Query("search")

	estimates, total, err := h.estimateService.List(c.Request.Context(), status, search, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, estimates, p.Page, p.Limit, total))
}

// GetEstimate returns one estimate with its full item/field tree
// @Summary      Get estimate
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/estimates/{id} [get]
func (h *EstimateHandler) GetEstimate(c *gin.Context) {
	detail, err := h.estimateService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// DeleteEstimate removes an estimate; items and fields cascade
// @Summary      Delete estimate
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Router       /api/estimates/{id} [delete]
func (h *EstimateHandler) DeleteEstimate(c *gin.Context) {
	if err := h.estimateService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Estimate deleted successfully"}))
}

// ProcessEstimate hands the document to the extraction engine
// @Summary      Run extraction
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/estimates/{id}/process [post]
func (h *EstimateHandler) ProcessEstimate(c *gin.Context) {
	result, err := h.estimateService.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// PreviewEstimate returns a time-limited signed URL for inline preview
// @Summary      Get preview URL
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/estimates/{id}/preview [get]
func (h *EstimateHandler) PreviewEstimate(c *gin.Context) {
	url, err := h.estimateService.PreviewURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"url": url}))
}

// ExportEstimate downloads the line-item tree as an XLSX workbook
// @Summary      Export estimate items
// @Tags         estimates
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id  path  string  true  "Estimate ID"
// @Success      200  {file}  binary
// @Router       /api/estimates/{id}/export [get]
func (h *EstimateHandler) ExportEstimate(c *gin.Context) {
	data, name, err := h.exportService.ExportEstimateXLSX(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
