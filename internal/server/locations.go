package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
)

func (s *Server) ListLocations(c *gin.Context) {
	active, err := parseBoolParam(c.Query("active"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.locationSvc.List(c.Request.Context(), locationdomain.ListRequest{
		Active: active,
		Name:   c.Query("name"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetLocation(c *gin.Context) {
	item, err := s.locationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateLocation(c *gin.Context) {
	var req locationdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.locationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateLocation(c *gin.Context) {
	var req locationdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.locationSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) AssignLocationTenant(c *gin.Context) {
	var req struct {
		TenantID string `json:"tenant_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.locationSvc.AssignTenant(c.Request.Context(), c.Param("id"), req.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UnassignLocationTenant(c *gin.Context) {
	item, err := s.locationSvc.UnassignTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) LocationDependencies(c *gin.Context) {
	s.cascadeDependencies(c, cascadedomain.KindLocation)
}

func (s *Server) DeactivateLocation(c *gin.Context) {
	s.cascadeDeactivate(c, cascadedomain.KindLocation)
}

func (s *Server) DeleteLocation(c *gin.Context) {
	s.cascadeDelete(c, cascadedomain.KindLocation)
}
