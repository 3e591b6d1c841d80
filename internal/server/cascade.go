package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
)

func (s *Server) cascadeDependencies(c *gin.Context, kind cascadedomain.Kind) {
	report, err := s.cascadeSvc.Dependencies(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// cascadeDeactivate flips the parent and its dependents as of an
// explicit instant: the as_of query date when given, else now.
func (s *Server) cascadeDeactivate(c *gin.Context, kind cascadedomain.Kind) {
	asOf := s.clock.Now()
	if parsed, err := parseDateParam(c.Query("as_of")); err != nil {
		AbortWithError(c, err)
		return
	} else if parsed != nil {
		asOf = *parsed
	}

	result, err := s.cascadeSvc.Deactivate(c.Request.Context(), kind, c.Param("id"), asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) cascadeDelete(c *gin.Context, kind cascadedomain.Kind) {
	result, err := s.cascadeSvc.Delete(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
