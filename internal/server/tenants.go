package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
)

func (s *Server) ListTenants(c *gin.Context) {
	active, err := parseBoolParam(c.Query("active"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.tenantSvc.List(c.Request.Context(), tenantdomain.ListRequest{
		Active: active,
		Name:   c.Query("name"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetTenant(c *gin.Context) {
	item, err := s.tenantSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req tenantdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.tenantSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateTenant(c *gin.Context) {
	var req tenantdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.tenantSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) TenantDependencies(c *gin.Context) {
	s.cascadeDependencies(c, cascadedomain.KindTenant)
}

func (s *Server) DeactivateTenant(c *gin.Context) {
	s.cascadeDeactivate(c, cascadedomain.KindTenant)
}

func (s *Server) DeleteTenant(c *gin.Context) {
	s.cascadeDelete(c, cascadedomain.KindTenant)
}
