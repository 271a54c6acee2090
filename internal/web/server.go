// Package web serves the status endpoints the hosting platform polls:
// health checks, service status, a relay smoke test and a webhook sink.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"multiai-bot/internal/domain"
)

const (
	version    = "1.0.0"
	testPrompt = "Hello, this is a test."
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Multi-AI Relay Bot</title></head>
<body>
<h1>Multi-AI Relay Bot</h1>
<p>The bot is running. See <a href="/status">/status</a> for service health.</p>
</body>
</html>
`

// Dispatcher fans a prompt out to every configured AI service.
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt string) domain.AggregateResult
	ServiceNames() []string
}

// Server exposes the HTTP status surface next to the Telegram bot.
type Server struct {
	engine   *gin.Engine
	dispatch Dispatcher
	start    time.Time
}

// New builds the Server and registers its routes.
func New(dispatch Dispatcher) (*Server, error) {
	if dispatch == nil {
		return nil, errors.New("web: dispatcher must not be nil")
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		dispatch: dispatch,
		start:    time.Now(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/status", s.handleStatus)
	s.engine.GET("/services/test", s.handleServicesTest)
	s.engine.GET("/config", s.handleConfig)
	s.engine.POST("/webhook", s.handleWebhook)
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"bot_running": true,
		"services":    s.dispatch.ServiceNames(),
		"uptime":      time.Since(s.start).Round(time.Second).String(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleServicesTest pushes a canned prompt through the relay so operators
// can verify every backend end to end.
func (s *Server) handleServicesTest(c *gin.Context) {
	result := s.dispatch.Dispatch(c.Request.Context(), testPrompt)
	c.JSON(http.StatusOK, gin.H{
		"test_message": testPrompt,
		"outcomes":     result,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services_configured": s.dispatch.ServiceNames(),
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
	})
}

// handleWebhook accepts Telegram webhook updates. The bot consumes updates
// via long polling, so incoming webhooks are only logged and acknowledged.
func (s *Server) handleWebhook(c *gin.Context) {
	var update map[string]any
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	slog.Info("received webhook update", "fields", len(update))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
