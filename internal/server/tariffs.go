package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
)

func (s *Server) ListTariffs(c *gin.Context) {
	items, err := s.tariffSvc.List(c.Request.Context(), tariffdomain.ListRequest{
		LocationID:     c.Query("location_id"),
		ResourceTypeID: c.Query("energy_resource_type_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetTariff(c *gin.Context) {
	item, err := s.tariffSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// ResolveTariff answers which tariff applies to a (location, resource
// type) pair on a date; the date defaults to today.
func (s *Server) ResolveTariff(c *gin.Context) {
	onDate := s.clock.Now()
	if parsed, err := parseDateParam(c.Query("on_date")); err != nil {
		AbortWithError(c, err)
		return
	} else if parsed != nil {
		onDate = *parsed
	}

	item, err := s.tariffSvc.Resolve(c.Request.Context(), tariffdomain.ResolveRequest{
		LocationID:     c.Query("location_id"),
		ResourceTypeID: c.Query("energy_resource_type_id"),
		OnDate:         onDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateTariff(c *gin.Context) {
	var req tariffdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.tariffSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateTariff(c *gin.Context) {
	var req tariffdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.tariffSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteTariff(c *gin.Context) {
	if err := s.tariffSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
