package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/handler/http/dto"
)

// ErrorHandler centralizes error handling for HTTP responses
func ErrorHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// SuccessHandler centralizes success responses
func SuccessHandler(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// MessageHandler centralizes message responses
func MessageHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.MessageResponse{Message: message})
}

// entityURI binds the :domain/:id path parameters. The domain is validated
// by the registered contentdomain rule.
type entityURI struct {
	Domain string `uri:"domain" binding:"required,contentdomain"`
	ID     string `uri:"id" binding:"required"`
}

// entityParams binds and validates the :domain and :id path parameters,
// replying 400 on an unknown domain. The bool result reports whether the
// request may proceed.
func entityParams(c *gin.Context) (entity.ContentDomain, string, bool) {
	var params entityURI
	if err := c.ShouldBindUri(&params); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return entity.ContentDomain(params.Domain), params.ID, true
}
