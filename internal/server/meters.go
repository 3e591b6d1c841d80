package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
)

func (s *Server) ListMeters(c *gin.Context) {
	active, err := parseBoolParam(c.Query("active"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.meterSvc.List(c.Request.Context(), meterdomain.ListRequest{
		Active:         active,
		SerialNumber:   c.Query("serial_number"),
		LocationID:     c.Query("location_id"),
		ResourceTypeID: c.Query("energy_resource_type_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetMeter(c *gin.Context) {
	item, err := s.meterSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateMeter(c *gin.Context) {
	var req meterdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.meterSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateMeter(c *gin.Context) {
	var req meterdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.meterSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) MeterDependencies(c *gin.Context) {
	s.cascadeDependencies(c, cascadedomain.KindMeter)
}

func (s *Server) DeactivateMeter(c *gin.Context) {
	s.cascadeDeactivate(c, cascadedomain.KindMeter)
}

func (s *Server) DeleteMeter(c *gin.Context) {
	s.cascadeDelete(c, cascadedomain.KindMeter)
}
