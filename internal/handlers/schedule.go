package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusOK                = "ok"
	statusShutdownRequested = "shutdown_requested"
	statusAlreadyPending    = "already_pending"

	errGetState        = "failed to load state"
	errInvalidQuery    = "invalid query: "
	errAtInvalid       = "invalid 'at' time; use RFC3339"
	errVoltageNegative = "'voltage' must not be negative"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// previewQuery binds /schedule/preview parameters.
type previewQuery struct {
	At      string   `form:"at"`
	Voltage *float64 `form:"voltage" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current schedule
// @Description  Window, on/off durations, voltage thresholds, fallback flag and session of the current run
// @Tags         schedule
// @Produce      json
// @Success      200  {object}  service.ScheduleInfo
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/schedule [get]
// @Security     BearerAuth
func (h *Handler) getSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Scheduler.Schedule())
}

// @Summary      Preview a shutdown decision
// @Description  Computes the wake time for a hypothetical time and battery voltage. Nothing is written to the RTC.
// @Tags         schedule
// @Produce      json
// @Param        at       query  string  false  "Evaluation time (RFC3339), defaults to now"  example(2025-05-14T16:50:00Z)
// @Param        voltage  query  number  true   "Battery voltage in volts"  example(3.2)
// @Success      200  {object}  schedule.WakePlan
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/schedule/preview [get]
// @Security     BearerAuth
func (h *Handler) previewSchedule(c *gin.Context) {
	var q previewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidQuery + err.Error()})
		return
	}
	if *q.Voltage < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errVoltageNegative})
		return
	}

	at := time.Now().UTC()
	if q.At != "" {
		parsed, err := time.Parse(time.RFC3339, q.At)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errAtInvalid})
			return
		}
		at = parsed.UTC()
	}

	c.JSON(http.StatusOK, h.services.Scheduler.Preview(at, *q.Voltage))
}

// @Summary      Request shutdown
// @Description  Asks the supervisor to program the wake alarm and power down at its next tick
// @Tags         schedule
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/schedule/shutdown [post]
// @Security     BearerAuth
func (h *Handler) requestShutdown(c *gin.Context) {
	operator := "unknown"
	if id, ok := c.Get(operatorIDKey); ok {
		if n, ok := id.(int); ok {
			operator = strconv.Itoa(n)
		}
	}

	status := statusShutdownRequested
	if !h.services.Scheduler.RequestShutdown(c.Request.Context(), operator) {
		status = statusAlreadyPending
	}
	c.JSON(http.StatusAccepted, gin.H{"status": status})
}

// @Summary      Device state
// @Description  Persisted snapshot of the current run with the live shutdown flag
// @Tags         schedule
// @Produce      json
// @Success      200  {object}  models.DeviceState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
