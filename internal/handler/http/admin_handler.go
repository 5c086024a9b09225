package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deokive/BE-sub001/internal/scheduler"
)

// AdminHandler exposes operator force-runs of the background jobs. Each
// runner is registered under "<name>:<domain>", e.g. "writeback:post".
type AdminHandler struct {
	runners map[string]*scheduler.Runner
}

func NewAdminHandler(runners ...*scheduler.Runner) *AdminHandler {
	h := &AdminHandler{runners: make(map[string]*scheduler.Runner)}
	for _, r := range runners {
		h.runners[r.Key()] = r
	}
	return h
}

// TriggerJobHandler force-runs the named job for the domain. A run already
// in flight yields 409 rather than a queued second run.
func (h *AdminHandler) TriggerJobHandler(c *gin.Context) {
	key := c.Param("job") + ":" + c.Param("domain")
	runner, ok := h.runners[key]
	if !ok {
		ErrorHandler(c, http.StatusNotFound, "unknown job "+key)
		return
	}

	if err := runner.TriggerNow(c.Request.Context()); err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			ErrorHandler(c, http.StatusConflict, err.Error())
			return
		}
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "job "+key+" completed")
}
