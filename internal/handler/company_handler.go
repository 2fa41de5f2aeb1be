package handler

import (
	"net/http"

	"estimatehub/internal/middleware"
	"estimatehub/internal/service"
	"estimatehub/pkg/pagination"
	"estimatehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/api/companies", middleware.RequireAuth())
	{
		companies.GET("", h.ListCompanies)
		companies.POST("", h.CreateCompany)
		companies.GET("/:id", h.GetCompany)
	}
}

// ListCompanies returns the customer directory
// @Summary      List companies
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Param        search  query     string  false  "Search by name, contact, or email"
// @Success      200     {object}  response.Response
// @Router       /api/companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	p := pagination.Parse(c)
	companies, total, err := h.companyService.GetCompanies(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, companies, p.Page, p.Limit, total))
}

// CreateCompany adds a customer directory entry
// @Summary      Create company
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateCompanyRequest  true  "Company payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// GetCompany returns one directory entry
// @Summary      Get company
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.companyService.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}
