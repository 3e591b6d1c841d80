package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
)

func (s *Server) ListReadings(c *gin.Context) {
	dateFrom, err := parseDateParam(c.Query("date_from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	dateTo, err := parseDateParam(c.Query("date_to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.readingSvc.List(c.Request.Context(), readingdomain.ListRequest{
		MeterTenantID: c.Query("meter_tenant_id"),
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		Method:        c.Query("calculation_method"),
		ActNumber:     c.Query("act_number"),
		ExecutorName:  c.Query("executor_name"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetReading(c *gin.Context) {
	item, err := s.readingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ReadingSummary(c *gin.Context) {
	dateFrom, err := parseDateParam(c.Query("date_from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	dateTo, err := parseDateParam(c.Query("date_to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.readingSvc.Summary(c.Request.Context(), readingdomain.SummaryRequest{
		DateFrom: dateFrom,
		DateTo:   dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (s *Server) CreateReading(c *gin.Context) {
	var req readingdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.CreatedBy = actorID(c)

	item, err := s.readingSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateReading(c *gin.Context) {
	var req readingdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.readingSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteReading(c *gin.Context) {
	if err := s.readingSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
