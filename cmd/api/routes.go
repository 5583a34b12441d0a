package main

import (
	"log/slog"
	"net/http"

	"contact-dialer/internal/httpapi"
	"contact-dialer/pkg/logger"

	"github.com/gin-gonic/gin"
)

func newRouter(log *slog.Logger, h httpapi.Handlers, operatorMW gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.SetHTMLTemplate(httpapi.Templates)

	registerRoutes(r, h, operatorMW)
	return r
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, operatorMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Twilio webhooks (public).
	// NOTE: These should be protected by Twilio signature validation in production.
	r.POST("/voice", h.Voice)
	r.POST("/message", h.Message)
	r.POST("/status", h.Status)

	// operator routes; token-protected when OPERATOR_JWT_SECRET is set
	op := r.Group("/")
	if operatorMW != nil {
		op.Use(operatorMW)
	}
	{
		op.GET("/", h.ListContacts)
		op.GET("/call", h.PlaceCall)
		op.GET("/play-message", h.PlayMessage)
		op.GET("/calls/current", h.CurrentCall)
		op.GET("/events", h.ListEvents)
	}
}
