package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	Env     string
	started time.Time

	// PingStore reports store reachability; nil means the store needs no
	// connection (in-memory mode).
	PingStore func() error
}

func NewSystemHandler(env string, pingStore func() error) *SystemHandler {
	return &SystemHandler{Env: env, started: time.Now(), PingStore: pingStore}
}

func (h *SystemHandler) Health(c *gin.Context) {
	Success(c, http.StatusOK, "Service is healthy", gin.H{
		"status":      "ok",
		"environment": h.Env,
		"uptime":      time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *SystemHandler) DBCheck(c *gin.Context) {
	if h.PingStore != nil {
		if err := h.PingStore(); err != nil {
			Fail(c, http.StatusServiceUnavailable, "Database unreachable", err)
			return
		}
	}
	Success(c, http.StatusOK, "Database connection is healthy", nil)
}
