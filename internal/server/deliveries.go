package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
)

func (s *Server) ListDeliveries(c *gin.Context) {
	items, err := s.deliverySvc.List(c.Request.Context(), deliverydomain.ListRequest{
		LocationID:     c.Query("location_id"),
		ResourceTypeID: c.Query("energy_resource_type_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetDelivery(c *gin.Context) {
	item, err := s.deliverySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateDelivery(c *gin.Context) {
	var req deliverydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.deliverySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateDelivery(c *gin.Context) {
	var req deliverydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.deliverySvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteDelivery(c *gin.Context) {
	if err := s.deliverySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
