package middleware

import (
	"github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound answers unknown routes with ErrorNotFoundAPI, echoing method and path in details
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFoundAPI.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
