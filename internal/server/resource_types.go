package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
)

func (s *Server) ListResourceTypes(c *gin.Context) {
	active, err := parseBoolParam(c.Query("active"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.resourceTypeSvc.List(c.Request.Context(), resourcetypedomain.ListRequest{
		Active: active,
		Name:   c.Query("name"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetResourceType(c *gin.Context) {
	item, err := s.resourceTypeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateResourceType(c *gin.Context) {
	var req resourcetypedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.resourceTypeSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateResourceType(c *gin.Context) {
	var req resourcetypedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.resourceTypeSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ResourceTypeDependencies(c *gin.Context) {
	s.cascadeDependencies(c, cascadedomain.KindResourceType)
}

func (s *Server) DeactivateResourceType(c *gin.Context) {
	s.cascadeDeactivate(c, cascadedomain.KindResourceType)
}

func (s *Server) DeleteResourceType(c *gin.Context) {
	s.cascadeDelete(c, cascadedomain.KindResourceType)
}
