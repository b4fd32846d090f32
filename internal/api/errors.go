package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/internal/outreach"
	"github.com/themobileprof/mamacare-be/internal/risk"
)

// abortWithError writes the typed error body {"error": kind, "message": ...}
func abortWithError(c *gin.Context, err error) {
	var verr *risk.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   outreach.InvalidArgument,
			"message": "Missing required fields",
			"fields":  verr.Fields,
		})
		return
	}

	e := outreach.AsError(err)
	c.AbortWithStatusJSON(e.HTTPStatus(), gin.H{
		"error":   e.Kind,
		"message": e.Message,
	})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   outreach.InvalidArgument,
		"message": message,
	})
}
