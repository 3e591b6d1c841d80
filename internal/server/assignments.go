package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
)

func (s *Server) ListAssignments(c *gin.Context) {
	activeOnly := false
	if v := c.Query("active_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		activeOnly = parsed
	}

	items, err := s.assignmentSvc.List(c.Request.Context(), assignmentdomain.ListRequest{
		MeterID:    c.Query("meter_id"),
		TenantID:   c.Query("tenant_id"),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetAssignment(c *gin.Context) {
	item, err := s.assignmentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateAssignment(c *gin.Context) {
	var req assignmentdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.assignmentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateAssignment(c *gin.Context) {
	var req assignmentdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.assignmentSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteAssignment(c *gin.Context) {
	if err := s.assignmentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
