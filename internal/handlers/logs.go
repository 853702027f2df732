package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wake_scheduler/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errRangeInvalid = "'from' must be <= 'to'"
	errLoadJournal  = "failed to load journal"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// journalQuery binds /logs parameters.
type journalQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Type  string `form:"type"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// @Summary      List journal events
// @Description  Filter the journal by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD') and type. A date-only 'to' covers the whole day. 'limit' keeps the newest N events.
// @Tags         logs
// @Produce      json
// @Param        from   query   string  false  "Start of range"  example(2025-05-01)
// @Param        to     query   string  false  "End of range. Date-only treated as end of day."  example(2025-05-31)
// @Param        type   query   string  false  "Event type"  Enums(BOOT,CONFIG_FALLBACK,SHUTDOWN_REQUESTED,LOW_VOLTAGE,WAKE_SCHEDULED,ERROR)
// @Param        limit  query   int     false  "Keep only the newest N events (1-1000)"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var q journalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidQuery + err.Error()})
		return
	}

	filter, msg := journalFilter(q)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	if errors.Is(err, service.ErrUnknownEventType) || errors.Is(err, service.ErrInvalidTimeRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadJournal, "logs_list_failed", err,
			"from", filter.From, "to", filter.To, "type", filter.Type)
		return
	}
	if q.Limit > 0 && len(events) > q.Limit {
		events = events[len(events)-q.Limit:]
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// journalFilter converts query strings into a LogFilter. The second result
// is a user-facing error message, empty on success.
func journalFilter(q journalQuery) (service.LogFilter, string) {
	typ, err := service.ParseEventType(q.Type)
	if err != nil {
		return service.LogFilter{}, err.Error()
	}
	f := service.LogFilter{Type: typ}

	if q.From != "" {
		from, err := parseQueryTime(q.From)
		if err != nil {
			return service.LogFilter{}, errFromInvalid
		}
		f.From = from
	}
	if q.To != "" {
		to, err := parseQueryTime(q.To)
		if err != nil {
			return service.LogFilter{}, errToInvalid
		}
		if isDateOnly(q.To) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = to
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return service.LogFilter{}, errRangeInvalid
	}
	return f, ""
}

func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseQueryTime accepts RFC3339, 'YYYY-MM-DD HH:MM:SS' and 'YYYY-MM-DD', normalized to UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
